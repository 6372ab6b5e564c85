// Package dashboard assembles the storefront admin dashboard data behind a versioned cache.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vitrine-admin/vitrine/internal/display"
	"github.com/vitrine-admin/vitrine/internal/storefront"
)

const (
	DefaultOrderLimit   = 10
	DefaultProductLimit = 5
	MaxLimit            = 100

	periodLayout     = "2006-01"
	comparisonPeriod = "vs. mês anterior"
)

// StatsFilter selects the month summarised by the stat cards.
type StatsFilter struct {
	Period string
}

// SalesFilter selects the year compared against its predecessor.
type SalesFilter struct {
	Year int
}

// OrderFilter narrows the recent orders table.
type OrderFilter struct {
	Limit  int
	Status storefront.OrderStatus
}

// ProductFilter narrows the top products card.
type ProductFilter struct {
	Limit int
}

// Service coordinates source loads with the cache layer.
type Service struct {
	source storefront.Source
	cache  *Cache
}

// NewService wires a Source with a Cache helper. A nil cache loads directly.
func NewService(source storefront.Source, cache *Cache) *Service {
	return &Service{source: source, cache: cache}
}

// Bump invalidates every cached dashboard entry.
func (s *Service) Bump(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// GetStats builds the headline cards for the month in filter.Period against the month before.
func (s *Service) GetStats(ctx context.Context, filter StatsFilter) ([]storefront.StatMetric, error) {
	month, err := time.Parse(periodLayout, filter.Period)
	if err != nil {
		return nil, fmt.Errorf("dashboard: period %q: %w", filter.Period, err)
	}
	return cached(ctx, s, keyStats(filter.Period), func(ctx context.Context) ([]storefront.StatMetric, error) {
		current, err := s.source.Summary(ctx, storefront.MonthWindow(month))
		if err != nil {
			return nil, err
		}
		previous, err := s.source.Summary(ctx, storefront.MonthWindow(month.AddDate(0, -1, 0)))
		if err != nil {
			return nil, err
		}
		return BuildStats(current, previous), nil
	})
}

// BuildStats turns two consecutive monthly summaries into the four headline cards.
func BuildStats(current, previous storefront.OrderSummary) []storefront.StatMetric {
	revenue, _ := current.Revenue.Float64()
	prevRevenue, _ := previous.Revenue.Float64()
	return []storefront.StatMetric{
		storefront.NewStatMetric("Vendas totais", display.FormatCurrencyBRL(current.Revenue), revenue, prevRevenue, comparisonPeriod),
		storefront.NewStatMetric("Pedidos", display.FormatQuantity(current.Orders), float64(current.Orders), float64(previous.Orders), comparisonPeriod),
		storefront.NewStatMetric("Produtos vendidos", display.FormatQuantity(current.Units), float64(current.Units), float64(previous.Units), comparisonPeriod),
		storefront.NewStatMetric("Clientes", display.FormatQuantity(current.Customers), float64(current.Customers), float64(previous.Customers), comparisonPeriod),
	}
}

// GetSales returns the monthly sales of filter.Year alongside the prior year.
func (s *Service) GetSales(ctx context.Context, filter SalesFilter) ([]storefront.SalesPoint, error) {
	return cached(ctx, s, keySales(filter.Year), func(ctx context.Context) ([]storefront.SalesPoint, error) {
		return s.source.Sales(ctx, filter.Year)
	})
}

// GetRecentOrders returns the newest orders, optionally restricted to one status.
func (s *Service) GetRecentOrders(ctx context.Context, filter OrderFilter) ([]storefront.Order, error) {
	orders, err := s.allOrders(ctx)
	if err != nil {
		return nil, err
	}
	limit := clampLimit(filter.Limit, DefaultOrderLimit)
	out := make([]storefront.Order, 0, min(limit, len(orders)))
	for _, order := range orders {
		if filter.Status != storefront.StatusUnknown && order.Status != filter.Status {
			continue
		}
		out = append(out, order)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// GetOrder looks an order up by its display number.
func (s *Service) GetOrder(ctx context.Context, number string) (storefront.Order, error) {
	orders, err := s.allOrders(ctx)
	if err != nil {
		return storefront.Order{}, err
	}
	want := normalizeNumber(number)
	for _, order := range orders {
		if normalizeNumber(order.Number) == want {
			return order, nil
		}
	}
	return storefront.Order{}, fmt.Errorf("dashboard: order %s: %w", number, storefront.ErrNotFound)
}

func (s *Service) allOrders(ctx context.Context) ([]storefront.Order, error) {
	orders, err := cached(ctx, s, keyOrders(), s.source.Orders)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].OrderedAt.After(orders[j].OrderedAt)
	})
	return orders, nil
}

// GetTopProducts returns products with sale metrics, best sellers first.
func (s *Service) GetTopProducts(ctx context.Context, filter ProductFilter) ([]storefront.Product, error) {
	products, err := cached(ctx, s, keyProducts(), s.source.Products)
	if err != nil {
		return nil, err
	}
	top := make([]storefront.Product, 0, len(products))
	for _, product := range products {
		if product.HasSales() {
			top = append(top, product)
		}
	}
	sort.SliceStable(top, func(i, j int) bool {
		if *top[i].QuantitySold != *top[j].QuantitySold {
			return *top[i].QuantitySold > *top[j].QuantitySold
		}
		return top[i].Name < top[j].Name
	})
	if limit := clampLimit(filter.Limit, DefaultProductLimit); len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func cached[T any](ctx context.Context, s *Service, keyBase string, load func(context.Context) (T, error)) (T, error) {
	var zero T
	if s.cache == nil {
		return load(ctx)
	}
	key, err := s.cache.BuildKey(ctx, keyBase)
	if err != nil {
		return zero, err
	}
	var value T
	if err := s.cache.FetchJSON(ctx, key, &value, func(ctx context.Context) (interface{}, error) {
		return load(ctx)
	}); err != nil {
		return zero, err
	}
	return value, nil
}

func clampLimit(limit, fallback int) int {
	switch {
	case limit <= 0:
		return fallback
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

func normalizeNumber(number string) string {
	return strings.TrimPrefix(strings.TrimSpace(number), "#")
}
