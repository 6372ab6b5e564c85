// Package export renders the dashboard view model as CSV or PDF.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/vitrine-admin/vitrine/internal/dashboard/ui"
)

type csvSection func(w io.Writer, vm ui.DashboardViewModel) error

// WriteDashboardCSV writes every dashboard section, separated by blank lines.
func WriteDashboardCSV(w io.Writer, vm ui.DashboardViewModel) error {
	sections := []csvSection{
		func(w io.Writer, vm ui.DashboardViewModel) error {
			return WriteStatsCSV(w, vm.Stats, vm.Filters.Period)
		},
		func(w io.Writer, vm ui.DashboardViewModel) error { return WriteSalesCSV(w, vm.Sales) },
		func(w io.Writer, vm ui.DashboardViewModel) error { return WriteOrdersCSV(w, vm.Orders) },
		func(w io.Writer, vm ui.DashboardViewModel) error { return WriteProductsCSV(w, vm.Products) },
	}
	for i, section := range sections {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := section(w, vm); err != nil {
			return err
		}
	}
	return nil
}

// WriteStatsCSV serialises the headline cards.
func WriteStatsCSV(w io.Writer, stats []ui.StatCardView, period string) error {
	records := [][]string{{"Métrica", "Valor", "Variação", "Direção"}, {"Período", period, "", ""}}
	for _, stat := range stats {
		records = append(records, []string{stat.Title, stat.Value, stat.Change, stat.ChangeType})
	}
	return writeAll(w, records)
}

// WriteSalesCSV emits the monthly sales comparison.
func WriteSalesCSV(w io.Writer, sales ui.SalesSeriesView) error {
	records := [][]string{{"Mês", sales.CurrentLabel, sales.PreviousLabel}}
	for _, tip := range sales.Tooltips {
		records = append(records, []string{tip.Label, tip.Current, tip.Previous})
	}
	records = append(records, []string{"Total", sales.TotalCurrent, sales.TotalPrevious})
	return writeAll(w, records)
}

// WriteOrdersCSV emits the recent orders table.
func WriteOrdersCSV(w io.Writer, orders []ui.OrderRowView) error {
	records := [][]string{{"Pedido", "Produto", "Cliente", "Quantidade", "Total", "Data do pedido", "Entrega", "Status"}}
	for _, order := range orders {
		records = append(records, []string{
			order.Number,
			order.Product,
			order.Customer,
			order.Quantity,
			order.Total,
			order.OrderedAt,
			order.DeliveryAt,
			order.Status,
		})
	}
	return writeAll(w, records)
}

// WriteProductsCSV emits the top products card.
func WriteProductsCSV(w io.Writer, products []ui.ProductRowView) error {
	records := [][]string{{"Produto", "Categoria", "Preço", "Vendidos", "Percentual"}}
	for _, product := range products {
		records = append(records, []string{
			product.Name,
			product.Category,
			product.Price,
			product.Sold,
			strconv.FormatFloat(product.Percentage, 'f', -1, 64),
		})
	}
	return writeAll(w, records)
}

func writeAll(w io.Writer, records [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return writer.Error()
}
