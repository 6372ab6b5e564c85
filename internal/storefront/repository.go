package storefront

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository reads dashboard records from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectOrders = `
SELECT id, number, product, product_image, customer, quantity, total::text,
       ordered_at, delivery_at, status
FROM orders
ORDER BY ordered_at DESC, number DESC`

// Orders returns every order, newest first.
func (r *Repository) Orders(ctx context.Context) ([]Order, error) {
	rows, err := r.pool.Query(ctx, selectOrders)
	if err != nil {
		return nil, fmt.Errorf("storefront: query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storefront: iterate orders: %w", err)
	}
	return orders, nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		order    Order
		total    string
		delivery *time.Time
		status   string
	)
	if err := row.Scan(&order.ID, &order.Number, &order.Product, &order.ProductImage, &order.Customer,
		&order.Quantity, &total, &order.OrderedAt, &delivery, &status); err != nil {
		return Order{}, fmt.Errorf("storefront: scan order: %w", err)
	}
	amount, err := decimal.NewFromString(total)
	if err != nil {
		return Order{}, fmt.Errorf("%w: order %s total: %v", ErrInvalidRecord, order.Number, err)
	}
	order.Total = amount
	if delivery != nil {
		order.DeliveryAt = *delivery
	}
	parsed, ok := ParseOrderStatus(status)
	if !ok {
		return Order{}, fmt.Errorf("%w: order %s status %q", ErrInvalidRecord, order.Number, status)
	}
	order.Status = parsed
	if err := Validate(order); err != nil {
		return Order{}, fmt.Errorf("storefront: order %s: %w", order.Number, err)
	}
	return order, nil
}

const selectProducts = `
SELECT id, name, image, price::text, stock, category, quantity_sold, percentage::float8
FROM products
ORDER BY name`

// Products returns the catalogue ordered by name.
func (r *Repository) Products(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, selectProducts)
	if err != nil {
		return nil, fmt.Errorf("storefront: query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var (
			product Product
			price   *string
		)
		if err := rows.Scan(&product.ID, &product.Name, &product.Image, &price, &product.Stock,
			&product.Category, &product.QuantitySold, &product.Percentage); err != nil {
			return nil, fmt.Errorf("storefront: scan product: %w", err)
		}
		if price != nil {
			amount, err := decimal.NewFromString(*price)
			if err != nil {
				return nil, fmt.Errorf("%w: product %s price: %v", ErrInvalidRecord, product.ID, err)
			}
			product.Price = &amount
		}
		if err := Validate(product); err != nil {
			return nil, fmt.Errorf("storefront: product %s: %w", product.ID, err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storefront: iterate products: %w", err)
	}
	return products, nil
}

const selectSales = `
SELECT year, month, amount::float8
FROM sales_monthly
WHERE year IN ($1, $1 - 1)
ORDER BY year, month`

// Sales pairs the monthly sales of year with those of year-1.
func (r *Repository) Sales(ctx context.Context, year int) ([]SalesPoint, error) {
	rows, err := r.pool.Query(ctx, selectSales, year)
	if err != nil {
		return nil, fmt.Errorf("storefront: query sales: %w", err)
	}
	defer rows.Close()

	monthly := make(map[int][]float64, 2)
	for rows.Next() {
		var (
			y, m   int
			amount float64
		)
		if err := rows.Scan(&y, &m, &amount); err != nil {
			return nil, fmt.Errorf("storefront: scan sales: %w", err)
		}
		if m < 1 || m > len(MonthLabels) {
			continue
		}
		series := monthly[y]
		if series == nil {
			series = make([]float64, len(MonthLabels))
			monthly[y] = series
		}
		series[m-1] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storefront: iterate sales: %w", err)
	}
	return BuildSalesPoints(year, monthly), nil
}

const selectSummary = `
SELECT COALESCE(SUM(total) FILTER (WHERE status <> 'cancelled'), 0)::text,
       COUNT(*),
       COALESCE(SUM(quantity) FILTER (WHERE status <> 'cancelled'), 0),
       COUNT(DISTINCT lower(trim(customer)))
FROM orders
WHERE ordered_at >= $1 AND ordered_at < $2`

// Summary aggregates orders placed inside window.
func (r *Repository) Summary(ctx context.Context, window Window) (OrderSummary, error) {
	var (
		summary OrderSummary
		revenue string
	)
	err := r.pool.QueryRow(ctx, selectSummary, window.From, window.To).
		Scan(&revenue, &summary.Orders, &summary.Units, &summary.Customers)
	if err != nil {
		return OrderSummary{}, fmt.Errorf("storefront: query summary: %w", err)
	}
	amount, err := decimal.NewFromString(revenue)
	if err != nil {
		return OrderSummary{}, fmt.Errorf("%w: summary revenue: %v", ErrInvalidRecord, err)
	}
	summary.Revenue = amount
	return summary, nil
}
