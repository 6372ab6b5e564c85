package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/vitrine-admin/vitrine/internal/dashboard/ui"
)

// HTMLRenderer converts an HTML document into PDF bytes.
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// PDFExporter renders the dashboard through a Gotenberg backed HTMLRenderer.
type PDFExporter struct {
	renderer HTMLRenderer
	now      func() time.Time
}

// NewPDFExporter constructs the exporter.
func NewPDFExporter(renderer HTMLRenderer) *PDFExporter {
	return &PDFExporter{renderer: renderer, now: time.Now}
}

// RenderDashboard builds the printable HTML for vm and returns the PDF bytes.
func (p *PDFExporter) RenderDashboard(ctx context.Context, vm ui.DashboardViewModel) ([]byte, error) {
	if p == nil || p.renderer == nil {
		return nil, fmt.Errorf("pdf exporter not initialised")
	}
	html, err := BuildHTML(vm, p.now())
	if err != nil {
		return nil, err
	}
	return p.renderer.RenderHTML(ctx, html)
}

var printable = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="pt-BR"><head><meta charset="utf-8"><title>Dashboard {{.VM.Filters.Period}}</title>
<style>
body{font-family:sans-serif;margin:24px;color:#111827}
h1{font-size:20px}h2{font-size:15px;margin-top:24px}
table{width:100%;border-collapse:collapse}
th,td{border:1px solid #e5e7eb;padding:6px;text-align:left;font-size:12px}
th{background:#f9fafb}
.num{text-align:right}
.delivered-green{color:#15803d}.pending-yellow{color:#a16207}.cancelled-red{color:#b91c1c}.neutral-gray{color:#4b5563}
.text-green{color:#15803d}.text-red{color:#b91c1c}.text-gray{color:#4b5563}
</style></head><body>
<h1>Dashboard – {{.VM.Filters.Period}}</h1>
<p>Gerado em {{.Generated}}</p>
<h2>Resumo</h2>
<table><tbody>
{{range .VM.Stats}}<tr><td>{{.Title}}</td><td class="num">{{.Value}}</td><td class="num {{.ColorClass}}">{{.Icon}} {{.Change}}</td></tr>
{{end}}</tbody></table>
{{if not .VM.Sales.Empty}}<h2>Vendas {{.VM.Sales.CurrentLabel}} x {{.VM.Sales.PreviousLabel}}</h2>
<table><thead><tr><th>Mês</th><th class="num">{{.VM.Sales.CurrentLabel}}</th><th class="num">{{.VM.Sales.PreviousLabel}}</th></tr></thead><tbody>
{{range .VM.Sales.Tooltips}}<tr><td>{{.Label}}</td><td class="num">{{.Current}}</td><td class="num">{{.Previous}}</td></tr>
{{end}}<tr><th>Total</th><th class="num">{{.VM.Sales.TotalCurrent}}</th><th class="num">{{.VM.Sales.TotalPrevious}}</th></tr>
</tbody></table>{{end}}
<h2>Pedidos recentes</h2>
<table><thead><tr><th>Pedido</th><th>Produto</th><th>Cliente</th><th>Data</th><th class="num">Total</th><th>Status</th></tr></thead><tbody>
{{range .VM.Orders}}<tr><td>{{.Number}}</td><td>{{.Product}}</td><td>{{.Customer}}</td><td>{{.OrderedAt}}</td><td class="num">{{.Total}}</td><td class="{{.StatusClass}}">{{.Status}}</td></tr>
{{else}}<tr><td colspan="6">Nenhum pedido</td></tr>
{{end}}</tbody></table>
<h2>Produtos mais vendidos</h2>
<table><thead><tr><th>Produto</th><th>Categoria</th><th class="num">Preço</th><th class="num">Vendidos</th><th class="num">%</th></tr></thead><tbody>
{{range .VM.Products}}<tr><td>{{.Name}}</td><td>{{.Category}}</td><td class="num">{{.Price}}</td><td class="num">{{.Sold}}</td><td class="num">{{.Percentage}}</td></tr>
{{end}}</tbody></table>
</body></html>`))

// BuildHTML renders the printable document for vm.
func BuildHTML(vm ui.DashboardViewModel, generated time.Time) (string, error) {
	var buf bytes.Buffer
	err := printable.Execute(&buf, struct {
		VM        ui.DashboardViewModel
		Generated string
	}{VM: vm, Generated: generated.Format("02/01/2006 15:04")})
	if err != nil {
		return "", fmt.Errorf("export: render html: %w", err)
	}
	return buf.String(), nil
}
