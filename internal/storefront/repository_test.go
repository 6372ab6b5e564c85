package storefront

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderRow struct {
	id       uuid.UUID
	number   string
	customer string
	total    string
	status   string
	delivery *time.Time
}

func (r orderRow) Scan(dest ...any) error {
	if len(dest) != 10 {
		return errors.New("unexpected column count")
	}
	*dest[0].(*uuid.UUID) = r.id
	*dest[1].(*string) = r.number
	*dest[2].(*string) = "Camiseta básica"
	*dest[3].(*string) = ""
	*dest[4].(*string) = r.customer
	*dest[5].(*int) = 2
	*dest[6].(*string) = r.total
	*dest[7].(*time.Time) = time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	*dest[8].(**time.Time) = r.delivery
	*dest[9].(*string) = r.status
	return nil
}

func TestScanOrder(t *testing.T) {
	delivered := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	order, err := scanOrder(orderRow{
		id: uuid.New(), number: "#1001", customer: "Ana Souza", total: "150.50", status: "Entregue", delivery: &delivered,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, order.Status)
	assert.Equal(t, "150.5", order.Total.String())
	assert.Equal(t, delivered, order.DeliveryAt)
}

func TestScanOrderRejectsInvalidRecords(t *testing.T) {
	cases := map[string]orderRow{
		"negative total":   {id: uuid.New(), number: "#1002", customer: "Ana Souza", total: "-1.00", status: "pending"},
		"missing customer": {id: uuid.New(), number: "#1003", total: "10.00", status: "pending"},
		"unknown status":   {id: uuid.New(), number: "#1004", customer: "Ana Souza", total: "10.00", status: "shipped"},
		"malformed total":  {id: uuid.New(), number: "#1005", customer: "Ana Souza", total: "dez", status: "pending"},
	}
	for name, row := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := scanOrder(row)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}
