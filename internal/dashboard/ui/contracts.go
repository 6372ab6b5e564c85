// Package ui holds the typed view models rendered by the dashboard templates.
package ui

import (
	"html/template"
	"strconv"

	"github.com/vitrine-admin/vitrine/internal/dashboard/svg"
	"github.com/vitrine-admin/vitrine/internal/display"
	"github.com/vitrine-admin/vitrine/internal/storefront"
)

const missingValue = "—"

// DashboardFilters represents sanitized query filters used by the dashboard.
type DashboardFilters struct {
	Period string                 `json:"period"`
	Year   int                    `json:"year"`
	Limit  int                    `json:"limit,omitempty"`
	Status storefront.OrderStatus `json:"status,omitempty"`
}

// StatCardView is a headline metric ready for rendering.
type StatCardView struct {
	Title      string `json:"title"`
	Value      string `json:"value"`
	Change     string `json:"change"`
	ChangeType string `json:"change_type"`
	Icon       string `json:"icon"`
	ColorClass string `json:"color_class"`
	Period     string `json:"period,omitempty"`
}

// OrderRowView is one row of the recent orders table.
type OrderRowView struct {
	Number       string `json:"number"`
	Product      string `json:"product"`
	ProductImage string `json:"product_image,omitempty"`
	Customer     string `json:"customer"`
	Quantity     string `json:"quantity"`
	Total        string `json:"total"`
	OrderedAt    string `json:"ordered_at"`
	DeliveryAt   string `json:"delivery_at"`
	Status       string `json:"status"`
	StatusClass  string `json:"status_class"`
}

// ProductRowView is one entry of the top products card.
type ProductRowView struct {
	Name       string       `json:"name"`
	Image      string       `json:"image,omitempty"`
	Category   string       `json:"category"`
	Price      string       `json:"price"`
	Sold       string       `json:"sold"`
	Percentage float64      `json:"percentage"`
	BarStyle   template.CSS `json:"-"`
}

// TooltipPayload is the hover text of one sales chart period.
type TooltipPayload struct {
	Label    string `json:"label"`
	Current  string `json:"current"`
	Previous string `json:"previous"`
}

// SalesSeriesView is the sales chart data for a year and its predecessor.
type SalesSeriesView struct {
	Labels        []string         `json:"labels"`
	Current       []float64        `json:"current"`
	Previous      []float64        `json:"previous"`
	CurrentLabel  string           `json:"current_label"`
	PreviousLabel string           `json:"previous_label"`
	TotalCurrent  string           `json:"total_current"`
	TotalPrevious string           `json:"total_previous"`
	Tooltips      []TooltipPayload `json:"tooltips"`
}

// Empty reports whether there is nothing to chart.
func (s SalesSeriesView) Empty() bool {
	return len(s.Labels) == 0
}

// DashboardViewModel combines all dashboard data for rendering.
type DashboardViewModel struct {
	Filters  DashboardFilters `json:"filters"`
	Stats    []StatCardView   `json:"stats"`
	Sales    SalesSeriesView  `json:"sales"`
	Orders   []OrderRowView   `json:"orders"`
	Products []ProductRowView `json:"products"`
	Statuses []StatusOption   `json:"-"`
	SalesSVG template.HTML    `json:"-"`
	TrendSVG template.HTML    `json:"-"`
}

// StatusOption feeds the status filter select.
type StatusOption struct {
	Value    string
	Label    string
	Selected bool
}

// LineRenderer abstracts SVG line chart rendering for the dashboard.
type LineRenderer interface {
	Line(width, height int, series []float64, labels []string, opts svg.LineOpts) (template.HTML, error)
}

// BarRenderer abstracts SVG bar chart rendering for the dashboard.
type BarRenderer interface {
	Bars(width, height int, seriesA, seriesB []float64, labels []string, opts svg.BarOpts) (template.HTML, error)
}

// BuildStatCards converts stat metrics into cards.
func BuildStatCards(metrics []storefront.StatMetric) []StatCardView {
	cards := make([]StatCardView, 0, len(metrics))
	for _, metric := range metrics {
		dir := display.ChangeDirection(metric.ChangeType)
		cards = append(cards, StatCardView{
			Title:      metric.Title,
			Value:      metric.Value,
			Change:     display.FormatChange(metric.Change),
			ChangeType: string(storefront.ParseChangeType(string(metric.ChangeType))),
			Icon:       dir.Icon,
			ColorClass: dir.ColorClass,
			Period:     metric.Period,
		})
	}
	return cards
}

// BuildOrderRows converts orders into table rows.
func BuildOrderRows(orders []storefront.Order) []OrderRowView {
	rows := make([]OrderRowView, 0, len(orders))
	for _, order := range orders {
		rows = append(rows, BuildOrderRow(order))
	}
	return rows
}

// BuildOrderRow derives the display attributes of a single order.
func BuildOrderRow(order storefront.Order) OrderRowView {
	delivery := display.FormatDate(order.DeliveryAt)
	if delivery == "" {
		delivery = missingValue
	}
	return OrderRowView{
		Number:       order.Number,
		Product:      order.Product,
		ProductImage: order.ProductImage,
		Customer:     order.Customer,
		Quantity:     display.FormatQuantity(order.Quantity),
		Total:        display.FormatCurrencyBRL(order.Total),
		OrderedAt:    display.FormatDate(order.OrderedAt),
		DeliveryAt:   delivery,
		Status:       order.Status.Label(),
		StatusClass:  string(display.StatusStyle(order.Status)),
	}
}

// BuildProductRows converts products into top product rows.
func BuildProductRows(products []storefront.Product) []ProductRowView {
	rows := make([]ProductRowView, 0, len(products))
	for _, product := range products {
		row := ProductRowView{
			Name:     product.Name,
			Image:    product.Image,
			Category: missingValue,
			Price:    missingValue,
			Sold:     "0",
		}
		if product.Category != nil && *product.Category != "" {
			row.Category = *product.Category
		}
		if product.Price != nil {
			row.Price = display.FormatCurrencyBRL(*product.Price)
		}
		if product.QuantitySold != nil {
			row.Sold = display.FormatQuantity(*product.QuantitySold)
		}
		if product.Percentage != nil {
			row.Percentage = display.BarWidthPercent(*product.Percentage)
		}
		row.BarStyle = display.BarWidthStyle(row.Percentage)
		rows = append(rows, row)
	}
	return rows
}

// BuildSalesSeries splits sales points into chart series for year and year-1.
func BuildSalesSeries(points []storefront.SalesPoint, year int) SalesSeriesView {
	view := SalesSeriesView{
		Labels:        make([]string, 0, len(points)),
		Current:       make([]float64, 0, len(points)),
		Previous:      make([]float64, 0, len(points)),
		Tooltips:      make([]TooltipPayload, 0, len(points)),
		CurrentLabel:  strconv.Itoa(year),
		PreviousLabel: strconv.Itoa(year - 1),
	}
	var totalCurrent, totalPrevious float64
	for _, point := range points {
		view.Labels = append(view.Labels, point.Period)
		view.Current = append(view.Current, point.Current)
		view.Previous = append(view.Previous, point.Previous)
		view.Tooltips = append(view.Tooltips, TooltipPayload{
			Label:    point.Period,
			Current:  display.FormatCurrencyBRLFloat(point.Current),
			Previous: display.FormatCurrencyBRLFloat(point.Previous),
		})
		totalCurrent += point.Current
		totalPrevious += point.Previous
	}
	view.TotalCurrent = display.FormatCurrencyBRLFloat(totalCurrent)
	view.TotalPrevious = display.FormatCurrencyBRLFloat(totalPrevious)
	return view
}

// BuildStatusOptions lists the status filter choices with selected marked.
func BuildStatusOptions(selected storefront.OrderStatus) []StatusOption {
	options := []StatusOption{{Value: "", Label: "Todos", Selected: selected == storefront.StatusUnknown}}
	for _, status := range storefront.OrderStatuses() {
		options = append(options, StatusOption{
			Value:    string(status),
			Label:    status.Label(),
			Selected: status == selected,
		})
	}
	return options
}
