package storefront

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MonthLabels are the pt-BR short month names used as sales periods.
var MonthLabels = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// SummarizeOrders aggregates the orders placed inside window. Cancelled orders
// count towards Orders but not towards Revenue or Units.
func SummarizeOrders(orders []Order, window Window) OrderSummary {
	summary := OrderSummary{Revenue: decimal.Zero}
	customers := make(map[string]struct{})
	for _, order := range orders {
		if !window.Contains(order.OrderedAt) {
			continue
		}
		summary.Orders++
		if key := strings.ToLower(strings.TrimSpace(order.Customer)); key != "" {
			customers[key] = struct{}{}
		}
		if order.Status == StatusCancelled {
			continue
		}
		summary.Revenue = summary.Revenue.Add(order.Total)
		summary.Units += order.Quantity
	}
	summary.Customers = len(customers)
	return summary
}

// BuildSalesPoints pairs the monthly amounts of year with those of year-1.
// Missing months are zero; negative amounts are floored at zero.
func BuildSalesPoints(year int, monthly map[int][]float64) []SalesPoint {
	current, hasCurrent := monthly[year]
	previous, hasPrevious := monthly[year-1]
	if !hasCurrent && !hasPrevious {
		return []SalesPoint{}
	}
	points := make([]SalesPoint, 0, len(MonthLabels))
	for i, label := range MonthLabels {
		points = append(points, SalesPoint{
			Period:   label,
			Current:  monthAmount(current, i),
			Previous: monthAmount(previous, i),
		})
	}
	return points
}

func monthAmount(series []float64, idx int) float64 {
	if idx >= len(series) {
		return 0
	}
	v := series[idx]
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

// NewStatMetric builds a headline card from the raw values of two consecutive periods.
// The value string is produced by the caller so the record stays presentation-free.
func NewStatMetric(title, value string, current, previous float64, period string) StatMetric {
	metric := StatMetric{Title: title, Value: value, Period: period, ChangeType: ChangeFlat}
	switch {
	case previous == 0 && current == 0:
		return metric
	case previous == 0:
		metric.Change = 100
		metric.ChangeType = ChangeIncrease
		if current < 0 {
			metric.ChangeType = ChangeDecrease
		}
		return metric
	}
	delta := (current - previous) / math.Abs(previous) * 100
	metric.Change = math.Round(math.Abs(delta)*10) / 10
	switch {
	case metric.Change == 0:
		metric.ChangeType = ChangeFlat
	case delta > 0:
		metric.ChangeType = ChangeIncrease
	default:
		metric.ChangeType = ChangeDecrease
	}
	return metric
}
