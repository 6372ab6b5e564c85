package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedExec struct {
	sql  string
	args []any
}

type recordingTx struct {
	calls  []recordedExec
	failAt int
}

func (r *recordingTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.calls = append(r.calls, recordedExec{sql: sql, args: args})
	if r.failAt > 0 && len(r.calls) == r.failAt {
		return pgconn.CommandTag{}, &pgconn.PgError{Code: "23514", ConstraintName: "orders_total_check"}
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestSeedInsertsEveryFixture(t *testing.T) {
	fixtures, err := loadFixtures("")
	require.NoError(t, err)
	orders, err := fixtures.Orders(context.Background())
	require.NoError(t, err)
	products, err := fixtures.Products(context.Background())
	require.NoError(t, err)
	months := 0
	for _, year := range fixtures.Years() {
		months += len(fixtures.SalesSeries(year))
	}

	tx := &recordingTx{}
	counts, err := seed(context.Background(), tx, fixtures)
	require.NoError(t, err)

	assert.Equal(t, len(orders), counts.Orders)
	assert.Equal(t, len(products), counts.Products)
	assert.Equal(t, months, counts.Sales)
	require.Len(t, tx.calls, 1+counts.Orders+counts.Products+counts.Sales)
	assert.True(t, strings.Contains(tx.calls[0].sql, "CREATE TABLE IF NOT EXISTS orders"))

	first := tx.calls[1]
	assert.Equal(t, upsertOrder, first.sql)
	assert.Equal(t, orders[0].Number, first.args[1])
	assert.Equal(t, orders[0].Total.StringFixed(2), first.args[6])
	assert.Equal(t, string(orders[0].Status), first.args[9])
}

func TestSeedStopsOnFirstFailure(t *testing.T) {
	fixtures, err := loadFixtures("")
	require.NoError(t, err)

	tx := &recordingTx{failAt: 2}
	_, err = seed(context.Background(), tx, fixtures)
	require.Error(t, err)
	assert.Len(t, tx.calls, 2)

	described := describe(err)
	assert.Contains(t, described.Error(), "code=23514")
	assert.Contains(t, described.Error(), "constraint=orders_total_check")
}

func TestDescribePassesPlainErrors(t *testing.T) {
	err := fmt.Errorf("wrap: %w", errors.New("plain"))
	assert.Equal(t, err, describe(err))
}

func TestGetenv(t *testing.T) {
	t.Setenv("VITRINE_SEED_TEST", "")
	assert.Equal(t, "fallback", getenv("VITRINE_SEED_TEST", "fallback"))
	t.Setenv("VITRINE_SEED_TEST", "set")
	assert.Equal(t, "set", getenv("VITRINE_SEED_TEST", "fallback"))
}
