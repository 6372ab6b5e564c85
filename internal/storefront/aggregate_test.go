package storefront

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeOrders(t *testing.T) {
	window := MonthWindow(time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC))
	orders := []Order{
		{Customer: "Ana", Quantity: 1, Total: decimal.RequireFromString("150.50"), OrderedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Status: StatusDelivered},
		{Customer: "ana ", Quantity: 2, Total: decimal.RequireFromString("49.50"), OrderedAt: time.Date(2024, 6, 30, 23, 0, 0, 0, time.UTC), Status: StatusPending},
		{Customer: "Bruno", Quantity: 5, Total: decimal.RequireFromString("999"), OrderedAt: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), Status: StatusCancelled},
		{Customer: "Carla", Quantity: 9, Total: decimal.RequireFromString("10"), OrderedAt: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), Status: StatusDelivered},
	}

	summary := SummarizeOrders(orders, window)

	assert.True(t, summary.Revenue.Equal(decimal.RequireFromString("200")), summary.Revenue.String())
	assert.Equal(t, 3, summary.Orders)
	assert.Equal(t, 3, summary.Units)
	assert.Equal(t, 2, summary.Customers)
}

func TestMonthWindow(t *testing.T) {
	window := MonthWindow(time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), window.From)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), window.To)
	assert.False(t, window.Contains(window.To))
	assert.True(t, window.Contains(window.From))
}

func TestBuildSalesPoints(t *testing.T) {
	points := BuildSalesPoints(2024, map[int][]float64{
		2024: {100, 200, -5},
		2023: {50},
	})
	require.Len(t, points, 12)
	assert.Equal(t, SalesPoint{Period: "Jan", Current: 100, Previous: 50}, points[0])
	assert.Equal(t, SalesPoint{Period: "Fev", Current: 200, Previous: 0}, points[1])
	assert.Equal(t, 0.0, points[2].Current)
	assert.Equal(t, "Dez", points[11].Period)
}

func TestBuildSalesPointsWithoutData(t *testing.T) {
	points := BuildSalesPoints(2030, map[int][]float64{2024: {1}})
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestNewStatMetric(t *testing.T) {
	up := NewStatMetric("Vendas", "R$110,00", 110, 100, "vs. mês anterior")
	assert.Equal(t, ChangeIncrease, up.ChangeType)
	assert.Equal(t, 10.0, up.Change)
	assert.Equal(t, "R$110,00", up.Value)

	down := NewStatMetric("Pedidos", "3", 3, 4, "")
	assert.Equal(t, ChangeDecrease, down.ChangeType)
	assert.Equal(t, 25.0, down.Change)

	flat := NewStatMetric("Clientes", "0", 0, 0, "")
	assert.Equal(t, ChangeFlat, flat.ChangeType)
	assert.Zero(t, flat.Change)

	fromZero := NewStatMetric("Clientes", "4", 4, 0, "")
	assert.Equal(t, ChangeIncrease, fromZero.ChangeType)
	assert.Equal(t, 100.0, fromZero.Change)

	rounded := NewStatMetric("Vendas", "", 1000.4, 1000, "")
	assert.Equal(t, ChangeFlat, rounded.ChangeType)
}
