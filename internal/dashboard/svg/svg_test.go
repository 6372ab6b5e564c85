package svg

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func brl(v float64) string { return "R$" + strings.Replace(formatTick(v), ".", ",", 1) }

func TestBarsProducesSVG(t *testing.T) {
	html, err := Bars(420, 220, []float64{500, 600}, []float64{300, 320}, []string{"Jan", "Fev"}, BarOpts{
		Title:        "Vendas",
		Description:  "Vendas mensais",
		SeriesALabel: "2024",
		SeriesBLabel: "2023",
		Format:       brl,
	})
	require.NoError(t, err)
	output := string(html)
	assert.True(t, strings.HasPrefix(output, "<svg"))
	assert.Equal(t, 6, strings.Count(output, "<rect"), "4 bars plus 2 legend swatches")
	assert.Contains(t, output, "<title>2024 · Jan · R$500</title>")
	assert.Contains(t, output, "vendas-bar-title")
}

func TestBarsSingleSeries(t *testing.T) {
	html, err := Bars(0, 0, []float64{1, 2, 3}, nil, []string{"a", "b", "c"}, BarOpts{})
	require.NoError(t, err)
	assert.Contains(t, string(html), "Série A")
	assert.NotContains(t, string(html), "Série B")
}

func TestBarsValidation(t *testing.T) {
	_, err := Bars(100, 100, nil, nil, []string{"a"}, BarOpts{})
	assert.Error(t, err)
	_, err = Bars(100, 100, []float64{1}, nil, nil, BarOpts{})
	assert.Error(t, err)
	_, err = Bars(100, 100, []float64{1, 2}, nil, []string{"a"}, BarOpts{})
	assert.Error(t, err)
	_, err = Bars(100, 100, []float64{1}, []float64{1, 2}, []string{"a"}, BarOpts{})
	assert.Error(t, err)
	_, err = Bars(40, 40, []float64{1}, nil, []string{"a"}, BarOpts{})
	assert.Error(t, err)
}

func TestLineProducesSVG(t *testing.T) {
	html, err := Line(400, 200, []float64{100, 200, math.NaN()}, []string{"Jan", "Fev", "Mar"}, LineOpts{
		Title:    "Vendas 2024",
		ShowDots: true,
	})
	require.NoError(t, err)
	output := string(html)
	assert.True(t, strings.HasPrefix(output, "<svg"))
	assert.Contains(t, output, "<path")
	assert.Contains(t, output, "aria-labelledby")
	assert.Equal(t, 3, strings.Count(output, "<circle"))
	assert.NotContains(t, output, "NaN")
}

func TestLineValidation(t *testing.T) {
	_, err := Line(100, 100, nil, nil, LineOpts{})
	assert.Error(t, err)
	_, err = Line(100, 100, []float64{1}, []string{"a", "b"}, LineOpts{})
	assert.Error(t, err)
}

func TestBarPositionStaysInsideChart(t *testing.T) {
	y, h := barPosition(1000, 1, 100, 20, 100)
	assert.Equal(t, 20.0, y)
	assert.Equal(t, 80.0, h)

	y, h = barPosition(-50, 1, 80, 20, 100)
	assert.Equal(t, 80.0, y)
	assert.Equal(t, 20.0, h)
}

func TestFormatTick(t *testing.T) {
	assert.Equal(t, "1.5k", formatTick(1500))
	assert.Equal(t, "2.0M", formatTick(2_000_000))
	assert.Equal(t, "12", formatTick(12))
	assert.Equal(t, "0.50", formatTick(0.5))
}

func TestMakeID(t *testing.T) {
	assert.Equal(t, "chart-x", makeID("  ", "x"))
	assert.Equal(t, "vendas-2024-line-title", makeID("Vendas 2024", "line-title"))
}
