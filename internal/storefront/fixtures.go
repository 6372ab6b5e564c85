package storefront

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures/dashboard.yaml
var defaultFixtures []byte

const fixtureDateLayout = "2006-01-02"

type fixtureDocument struct {
	Orders   []fixtureOrder    `yaml:"orders"`
	Products []fixtureProduct  `yaml:"products"`
	Sales    map[int][]float64 `yaml:"sales"`
}

type fixtureOrder struct {
	ID         string `yaml:"id"`
	Number     string `yaml:"number"`
	Product    string `yaml:"product"`
	Image      string `yaml:"image"`
	Customer   string `yaml:"customer"`
	Quantity   int    `yaml:"quantity"`
	Total      string `yaml:"total"`
	OrderedAt  string `yaml:"ordered_at"`
	DeliveryAt string `yaml:"delivery_at"`
	Status     string `yaml:"status"`
}

type fixtureProduct struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Image        string   `yaml:"image"`
	Price        *string  `yaml:"price"`
	Stock        *int     `yaml:"stock"`
	Category     *string  `yaml:"category"`
	QuantitySold *int     `yaml:"quantity_sold"`
	Percentage   *float64 `yaml:"percentage"`
}

// FixtureSource serves the mock dashboard data set from YAML.
type FixtureSource struct {
	orders   []Order
	products []Product
	sales    map[int][]float64
}

// DefaultFixtures parses the embedded mock data set.
func DefaultFixtures() (*FixtureSource, error) {
	return ParseFixtures(defaultFixtures)
}

// LoadFixtures reads a YAML fixture file from disk.
func LoadFixtures(path string) (*FixtureSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("storefront: read fixtures: %w", err)
	}
	return ParseFixtures(raw)
}

// ParseFixtures maps a YAML document to typed, validated records.
func ParseFixtures(raw []byte) (*FixtureSource, error) {
	var doc fixtureDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("storefront: decode fixtures: %w", err)
	}
	src := &FixtureSource{
		orders:   make([]Order, 0, len(doc.Orders)),
		products: make([]Product, 0, len(doc.Products)),
		sales:    doc.Sales,
	}
	if src.sales == nil {
		src.sales = map[int][]float64{}
	}
	for i, rec := range doc.Orders {
		order, err := rec.toOrder()
		if err != nil {
			return nil, fmt.Errorf("storefront: order %d: %w", i, err)
		}
		if err := Validate(order); err != nil {
			return nil, fmt.Errorf("storefront: order %s: %w", order.Number, err)
		}
		src.orders = append(src.orders, order)
	}
	for i, rec := range doc.Products {
		product, err := rec.toProduct()
		if err != nil {
			return nil, fmt.Errorf("storefront: product %d: %w", i, err)
		}
		if err := Validate(product); err != nil {
			return nil, fmt.Errorf("storefront: product %s: %w", product.ID, err)
		}
		src.products = append(src.products, product)
	}
	for year, months := range src.sales {
		if len(months) > len(MonthLabels) {
			return nil, fmt.Errorf("%w: sales %d has %d months", ErrInvalidRecord, year, len(months))
		}
	}
	return src, nil
}

func (f fixtureOrder) toOrder() (Order, error) {
	var order Order
	var err error
	if strings.TrimSpace(f.ID) == "" {
		order.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("vitrine:order:"+f.Number))
	} else if order.ID, err = uuid.Parse(f.ID); err != nil {
		return Order{}, fmt.Errorf("%w: id: %v", ErrInvalidRecord, err)
	}
	order.Number = strings.TrimSpace(f.Number)
	order.Product = strings.TrimSpace(f.Product)
	order.ProductImage = strings.TrimSpace(f.Image)
	order.Customer = strings.TrimSpace(f.Customer)
	order.Quantity = f.Quantity
	if order.Total, err = decimal.NewFromString(strings.TrimSpace(f.Total)); err != nil {
		return Order{}, fmt.Errorf("%w: total: %v", ErrInvalidRecord, err)
	}
	if order.OrderedAt, err = parseFixtureDate(f.OrderedAt); err != nil {
		return Order{}, fmt.Errorf("%w: ordered_at: %v", ErrInvalidRecord, err)
	}
	if strings.TrimSpace(f.DeliveryAt) != "" {
		if order.DeliveryAt, err = parseFixtureDate(f.DeliveryAt); err != nil {
			return Order{}, fmt.Errorf("%w: delivery_at: %v", ErrInvalidRecord, err)
		}
	}
	status, ok := ParseOrderStatus(f.Status)
	if !ok {
		return Order{}, fmt.Errorf("%w: status %q", ErrInvalidRecord, f.Status)
	}
	order.Status = status
	return order, nil
}

func (f fixtureProduct) toProduct() (Product, error) {
	product := Product{
		ID:           strings.TrimSpace(f.ID),
		Name:         strings.TrimSpace(f.Name),
		Image:        strings.TrimSpace(f.Image),
		Stock:        f.Stock,
		Category:     f.Category,
		QuantitySold: f.QuantitySold,
		Percentage:   f.Percentage,
	}
	if f.Price != nil {
		price, err := decimal.NewFromString(strings.TrimSpace(*f.Price))
		if err != nil {
			return Product{}, fmt.Errorf("%w: price: %v", ErrInvalidRecord, err)
		}
		product.Price = &price
	}
	return product, nil
}

func parseFixtureDate(raw string) (time.Time, error) {
	return time.ParseInLocation(fixtureDateLayout, strings.TrimSpace(raw), time.UTC)
}

// Orders returns a copy of the fixture orders.
func (s *FixtureSource) Orders(ctx context.Context) ([]Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Order, len(s.orders))
	copy(out, s.orders)
	return out, nil
}

// Products returns a copy of the fixture products.
func (s *FixtureSource) Products(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

// Sales pairs the fixture series of year and year-1.
func (s *FixtureSource) Sales(ctx context.Context, year int) ([]SalesPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return BuildSalesPoints(year, s.sales), nil
}

// Summary aggregates fixture orders inside window.
func (s *FixtureSource) Summary(ctx context.Context, window Window) (OrderSummary, error) {
	if err := ctx.Err(); err != nil {
		return OrderSummary{}, err
	}
	return SummarizeOrders(s.orders, window), nil
}

// Years lists the years with sales fixtures, newest first.
func (s *FixtureSource) Years() []int {
	years := make([]int, 0, len(s.sales))
	for year := range s.sales {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// SalesSeries returns the raw monthly amounts recorded for year.
func (s *FixtureSource) SalesSeries(year int) []float64 {
	series := s.sales[year]
	out := make([]float64, len(series))
	copy(out, series)
	return out
}
