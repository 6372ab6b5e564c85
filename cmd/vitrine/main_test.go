package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-admin/vitrine/internal/app"
	"github.com/vitrine-admin/vitrine/internal/dashboard/svg"
	_ "github.com/vitrine-admin/vitrine/testing"
)

func TestMainSkipsInTestMode(t *testing.T) {
	app.RefreshTestMode()
	require.True(t, app.InTestMode())
	main()
}

func TestBuildSourceFixtures(t *testing.T) {
	source, err := buildSource(&app.Config{DataSource: app.DataSourceFixtures}, nil)
	require.NoError(t, err)
	orders, err := source.Orders(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, orders)

	path := filepath.Join("..", "..", "internal", "storefront", "fixtures", "dashboard.yaml")
	fromDisk, err := buildSource(&app.Config{DataSource: app.DataSourceFixtures, FixturesPath: path}, nil)
	require.NoError(t, err)
	diskOrders, err := fromDisk.Orders(context.Background())
	require.NoError(t, err)
	assert.Len(t, diskOrders, len(orders))
}

func TestBuildSourceErrors(t *testing.T) {
	_, err := buildSource(&app.Config{DataSource: app.DataSourceFixtures, FixturesPath: filepath.Join(t.TempDir(), "missing.yaml")}, nil)
	require.Error(t, err)

	_, err = buildSource(&app.Config{DataSource: app.DataSourcePostgres}, nil)
	require.Error(t, err)
}

func TestRenderersDelegateToSVG(t *testing.T) {
	line, err := lineRenderer{}.Line(svg.DefaultWidth, svg.DefaultHeight, []float64{1, 2, 3}, []string{"a", "b", "c"}, svg.LineOpts{Title: "Vendas"})
	require.NoError(t, err)
	assert.Contains(t, string(line), "<svg")

	bars, err := barRenderer{}.Bars(svg.DefaultWidth, svg.DefaultHeight, []float64{1, 2}, []float64{2, 1}, []string{"a", "b"}, svg.BarOpts{Title: "Vendas"})
	require.NoError(t, err)
	assert.Contains(t, string(bars), "<svg")
}
