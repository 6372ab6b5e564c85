package storefront

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFixturesLoad(t *testing.T) {
	src, err := DefaultFixtures()
	require.NoError(t, err)

	ctx := context.Background()
	orders, err := src.Orders(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, orders)
	assert.Equal(t, "#1001", orders[0].Number)
	assert.Equal(t, StatusDelivered, orders[0].Status)
	assert.True(t, orders[0].Total.Equal(decimal.RequireFromString("150.5")))

	products, err := src.Products(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, products)
	assert.True(t, products[0].HasSales())

	sales, err := src.Sales(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, sales, 12)
	assert.Equal(t, 4000.0, sales[0].Current)
	assert.Equal(t, 3200.0, sales[0].Previous)

	assert.Equal(t, []int{2024, 2023}, src.Years())
	assert.Len(t, src.SalesSeries(2023), 12)
}

func TestFixtureOrdersAreCopies(t *testing.T) {
	src, err := DefaultFixtures()
	require.NoError(t, err)
	first, err := src.Orders(context.Background())
	require.NoError(t, err)
	first[0].Customer = "mutated"
	second, err := src.Orders(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", second[0].Customer)
}

func TestParseFixturesRejectsNegativeTotal(t *testing.T) {
	doc := []byte(`
orders:
  - number: "#9"
    product: Caneca
    customer: Zé
    quantity: 1
    total: "-10"
    ordered_at: "2024-01-02"
    status: Entregue
`)
	_, err := ParseFixtures(doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRecord))
}

func TestParseFixturesRejectsUnknownStatus(t *testing.T) {
	doc := []byte(`
orders:
  - number: "#9"
    product: Caneca
    customer: Zé
    quantity: 1
    total: "10"
    ordered_at: "2024-01-02"
    status: Extraviado
`)
	_, err := ParseFixtures(doc)
	require.ErrorIs(t, err, ErrInvalidRecord)
}

func TestParseFixturesDerivesMissingID(t *testing.T) {
	doc := []byte(`
orders:
  - number: "#9"
    product: Caneca
    customer: Zé
    quantity: 1
    total: "10"
    ordered_at: "2024-01-02"
    status: pending
`)
	src, err := ParseFixtures(doc)
	require.NoError(t, err)
	again, err := ParseFixtures(doc)
	require.NoError(t, err)
	assert.Equal(t, src.orders[0].ID, again.orders[0].ID)
	assert.NotEqual(t, [16]byte{}, [16]byte(src.orders[0].ID))
}

func TestFixtureSourceHonoursCancellation(t *testing.T) {
	src, err := DefaultFixtures()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Orders(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
