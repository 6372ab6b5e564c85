// Package storefront holds the read-only records rendered by the admin dashboard
// and the sources that load them.
package storefront

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the closed set of order lifecycle states shown on the dashboard.
type OrderStatus string

const (
	StatusDelivered OrderStatus = "delivered"
	StatusPending   OrderStatus = "pending"
	StatusCancelled OrderStatus = "cancelled"
	// StatusUnknown is returned when a label does not belong to the closed set.
	StatusUnknown OrderStatus = ""
)

// ChangeType tells whether a metric moved up, down or not at all.
type ChangeType string

const (
	ChangeIncrease ChangeType = "increase"
	ChangeDecrease ChangeType = "decrease"
	ChangeFlat     ChangeType = "flat"
)

// Order is a single storefront order row.
type Order struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Number       string          `json:"number" db:"number" validate:"required,max=32"`
	Product      string          `json:"product" db:"product" validate:"required,max=200"`
	ProductImage string          `json:"product_image,omitempty" db:"product_image"`
	Customer     string          `json:"customer" db:"customer" validate:"required,max=200"`
	Quantity     int             `json:"quantity" db:"quantity" validate:"gte=0"`
	Total        decimal.Decimal `json:"total" db:"total" validate:"gte=0"`
	OrderedAt    time.Time       `json:"ordered_at" db:"ordered_at" validate:"required"`
	DeliveryAt   time.Time       `json:"delivery_at" db:"delivery_at"`
	Status       OrderStatus     `json:"status" db:"status" validate:"oneof=delivered pending cancelled"`
}

// Product is a catalogue entry, optionally carrying sale metrics for the top products card.
type Product struct {
	ID           string           `json:"id" db:"id" validate:"required,max=64"`
	Name         string           `json:"name" db:"name" validate:"required,max=200"`
	Image        string           `json:"image,omitempty" db:"image"`
	Price        *decimal.Decimal `json:"price,omitempty" db:"price" validate:"omitempty,gte=0"`
	Stock        *int             `json:"stock,omitempty" db:"stock" validate:"omitempty,gte=0"`
	Category     *string          `json:"category,omitempty" db:"category" validate:"omitempty,max=100"`
	QuantitySold *int             `json:"quantity_sold,omitempty" db:"quantity_sold" validate:"omitempty,gte=0"`
	Percentage   *float64         `json:"percentage,omitempty" db:"percentage" validate:"omitempty,gte=0,lte=100"`
}

// HasSales reports whether the product carries sale metrics.
func (p Product) HasSales() bool {
	return p.QuantitySold != nil
}

// SalesPoint compares one period of the current year with the same period of the prior year.
type SalesPoint struct {
	Period   string  `json:"period" validate:"required"`
	Current  float64 `json:"current" validate:"gte=0"`
	Previous float64 `json:"previous" validate:"gte=0"`
}

// StatMetric is a headline card: a formatted value plus its change against the previous period.
type StatMetric struct {
	Title      string     `json:"title" validate:"required"`
	Value      string     `json:"value"`
	Change     float64    `json:"change" validate:"gte=0"`
	ChangeType ChangeType `json:"change_type" validate:"oneof=increase decrease flat"`
	Period     string     `json:"period,omitempty"`
}

// OrderSummary aggregates the orders placed inside a window.
type OrderSummary struct {
	Revenue   decimal.Decimal `json:"revenue"`
	Orders    int             `json:"orders"`
	Units     int             `json:"units"`
	Customers int             `json:"customers"`
}

// Window is a half-open time range [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// MonthWindow returns the calendar month containing t, in UTC.
func MonthWindow(t time.Time) Window {
	t = t.UTC()
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Window{From: from, To: from.AddDate(0, 1, 0)}
}

// Source loads dashboard records. Implementations must be safe for concurrent use.
type Source interface {
	Orders(ctx context.Context) ([]Order, error)
	Products(ctx context.Context) ([]Product, error)
	Sales(ctx context.Context, year int) ([]SalesPoint, error)
	Summary(ctx context.Context, window Window) (OrderSummary, error)
}
