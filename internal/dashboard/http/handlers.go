package dashboardhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/vitrine-admin/vitrine/internal/dashboard"
	"github.com/vitrine-admin/vitrine/internal/dashboard/export"
	"github.com/vitrine-admin/vitrine/internal/dashboard/svg"
	"github.com/vitrine-admin/vitrine/internal/dashboard/ui"
	"github.com/vitrine-admin/vitrine/internal/display"
	"github.com/vitrine-admin/vitrine/internal/platform/httpx"
	"github.com/vitrine-admin/vitrine/internal/storefront"
	"github.com/vitrine-admin/vitrine/internal/view"
)

var periodRegex = regexp.MustCompile(`^\d{4}-\d{2}$`)

const (
	periodLayout   = "2006-01"
	requestTimeout = 2 * time.Second
)

// DashboardService defines the dashboard data contract used by the handler.
type DashboardService interface {
	GetStats(ctx context.Context, filter dashboard.StatsFilter) ([]storefront.StatMetric, error)
	GetSales(ctx context.Context, filter dashboard.SalesFilter) ([]storefront.SalesPoint, error)
	GetRecentOrders(ctx context.Context, filter dashboard.OrderFilter) ([]storefront.Order, error)
	GetTopProducts(ctx context.Context, filter dashboard.ProductFilter) ([]storefront.Product, error)
	GetOrder(ctx context.Context, number string) (storefront.Order, error)
}

// PDFService renders dashboard content to PDF bytes.
type PDFService interface {
	RenderDashboard(ctx context.Context, vm ui.DashboardViewModel) ([]byte, error)
}

// Options carries the configurable defaults of the handler.
type Options struct {
	// DefaultPeriod is used when the request has no period; empty means the current month.
	DefaultPeriod string
	OrderLimit    int
	ProductLimit  int
	AppEnv        string
}

// Handler coordinates HTTP requests for the storefront dashboard.
type Handler struct {
	logger    *slog.Logger
	service   DashboardService
	templates *view.Engine
	line      ui.LineRenderer
	bar       ui.BarRenderer
	pdf       PDFService
	opts      Options
	csvPool   sync.Pool
	now       func() time.Time
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, service DashboardService, templates *view.Engine, line ui.LineRenderer, bar ui.BarRenderer, pdf PDFService, opts Options) *Handler {
	if opts.OrderLimit <= 0 {
		opts.OrderLimit = dashboard.DefaultOrderLimit
	}
	if opts.ProductLimit <= 0 {
		opts.ProductLimit = dashboard.DefaultProductLimit
	}
	h := &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		line:      line,
		bar:       bar,
		pdf:       pdf,
		opts:      opts,
		now:       time.Now,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r, h.opts.OrderLimit)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	vm, ok := h.dashboardViewModel(w, r, filters, true)
	if !ok {
		return
	}
	h.render(w, r, "pages/dashboard.html", "Dashboard", vm)
}

func (h *Handler) handleOrders(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r, dashboard.MaxLimit)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	orders, err := h.service.GetRecentOrders(ctx, dashboard.OrderFilter{Limit: filters.Limit, Status: filters.Status})
	if err != nil {
		h.handleServerError(w, "load orders", err)
		return
	}
	vm := ui.DashboardViewModel{
		Filters:  filters,
		Orders:   ui.BuildOrderRows(orders),
		Statuses: ui.BuildStatusOptions(filters.Status),
	}
	h.render(w, r, "pages/orders.html", "Pedidos", vm)
}

func (h *Handler) handleAPI(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r, h.opts.OrderLimit)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data, err := h.loadDashboardData(ctx, filters)
	if err != nil {
		h.logError("load dashboard", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, buildViewModel(filters, data))
}

func (h *Handler) handleOrderAPI(w http.ResponseWriter, r *http.Request) {
	number := strings.TrimSpace(chi.URLParam(r, "number"))
	if number == "" {
		httpx.RespondError(w, fmt.Errorf("%w: order number required", httpx.ErrValidation))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	order, err := h.service.GetOrder(ctx, number)
	if err != nil {
		if !errors.Is(err, storefront.ErrNotFound) {
			h.logError("load order", err)
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ui.BuildOrderRow(order))
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		h.handleServerError(w, "pdf exporter", errors.New("pdf exporter not configured"))
		return
	}
	filters, err := h.parseFilters(r, h.opts.OrderLimit)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	vm, ok := h.dashboardViewModel(w, r, filters, false)
	if !ok {
		return
	}

	pdfBytes, err := h.pdf.RenderDashboard(r.Context(), vm)
	if err != nil {
		h.handleServerError(w, "render pdf", err)
		return
	}

	filename := fmt.Sprintf("dashboard-%s.pdf", filters.Period)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(pdfBytes); err != nil {
		h.logError("stream pdf", err)
	}
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r, h.opts.OrderLimit)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	vm, ok := h.dashboardViewModel(w, r, filters, false)
	if !ok {
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteDashboardCSV(buf, vm); err != nil {
		h.handleServerError(w, "write dashboard csv", err)
		return
	}

	filename := fmt.Sprintf("dashboard-%s.csv", filters.Period)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

// dashboardViewModel loads and assembles the view model, writing the error response itself on failure.
func (h *Handler) dashboardViewModel(w http.ResponseWriter, r *http.Request, filters ui.DashboardFilters, charts bool) (ui.DashboardViewModel, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data, err := h.loadDashboardData(ctx, filters)
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return ui.DashboardViewModel{}, false
	}
	vm := buildViewModel(filters, data)
	if charts {
		if err := h.renderCharts(&vm); err != nil {
			h.handleServerError(w, "render charts", err)
			return ui.DashboardViewModel{}, false
		}
	}
	return vm, true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name, title string, vm ui.DashboardViewModel) {
	viewData := view.TemplateData{
		Title:       title,
		CurrentPath: r.URL.Path,
		AppEnv:      h.opts.AppEnv,
		Data:        vm,
	}
	if err := h.templates.Render(w, name, viewData); err != nil {
		h.handleServerError(w, "render template", err)
	}
}

func (h *Handler) parseFilters(r *http.Request, defaultLimit int) (ui.DashboardFilters, error) {
	query := r.URL.Query()
	period := strings.TrimSpace(query.Get("period"))
	if period == "" {
		period = h.opts.DefaultPeriod
	}
	if period == "" {
		period = h.now().UTC().Format(periodLayout)
	}
	if !periodRegex.MatchString(period) {
		return ui.DashboardFilters{}, validationError{field: "period"}
	}
	month, err := time.Parse(periodLayout, period)
	if err != nil {
		return ui.DashboardFilters{}, validationError{field: "period"}
	}

	limit := defaultLimit
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 || value > dashboard.MaxLimit {
			return ui.DashboardFilters{}, validationError{field: "limit"}
		}
		limit = value
	}

	var status storefront.OrderStatus
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		parsed, ok := storefront.ParseOrderStatus(raw)
		if !ok {
			return ui.DashboardFilters{}, validationError{field: "status"}
		}
		status = parsed
	}

	return ui.DashboardFilters{Period: period, Year: month.Year(), Limit: limit, Status: status}, nil
}

type dashboardData struct {
	stats    []storefront.StatMetric
	sales    []storefront.SalesPoint
	orders   []storefront.Order
	products []storefront.Product
}

func (h *Handler) loadDashboardData(ctx context.Context, filters ui.DashboardFilters) (dashboardData, error) {
	var data dashboardData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := h.service.GetStats(ctx, dashboard.StatsFilter{Period: filters.Period})
		if err != nil {
			return err
		}
		data.stats = stats
		return nil
	})

	g.Go(func() error {
		points, err := h.service.GetSales(ctx, dashboard.SalesFilter{Year: filters.Year})
		if err != nil {
			return err
		}
		data.sales = points
		return nil
	})

	g.Go(func() error {
		orders, err := h.service.GetRecentOrders(ctx, dashboard.OrderFilter{Limit: filters.Limit, Status: filters.Status})
		if err != nil {
			return err
		}
		data.orders = orders
		return nil
	})

	g.Go(func() error {
		products, err := h.service.GetTopProducts(ctx, dashboard.ProductFilter{Limit: h.opts.ProductLimit})
		if err != nil {
			return err
		}
		data.products = products
		return nil
	})

	if err := g.Wait(); err != nil {
		return dashboardData{}, err
	}
	return data, nil
}

func buildViewModel(filters ui.DashboardFilters, data dashboardData) ui.DashboardViewModel {
	return ui.DashboardViewModel{
		Filters:  filters,
		Stats:    ui.BuildStatCards(data.stats),
		Sales:    ui.BuildSalesSeries(data.sales, filters.Year),
		Orders:   ui.BuildOrderRows(data.orders),
		Products: ui.BuildProductRows(data.products),
		Statuses: ui.BuildStatusOptions(filters.Status),
	}
}

func (h *Handler) renderCharts(vm *ui.DashboardViewModel) error {
	if h.line == nil || h.bar == nil {
		return fmt.Errorf("svg renderer missing")
	}
	if vm.Sales.Empty() {
		return nil
	}
	bars, err := h.bar.Bars(svg.DefaultWidth, svg.DefaultHeight, vm.Sales.Current, vm.Sales.Previous, vm.Sales.Labels, svg.BarOpts{
		Title:        "Vendas mensais",
		Description:  fmt.Sprintf("Vendas de %s comparadas com %s", vm.Sales.CurrentLabel, vm.Sales.PreviousLabel),
		SeriesALabel: vm.Sales.CurrentLabel,
		SeriesBLabel: vm.Sales.PreviousLabel,
		Format:       display.FormatCurrencyBRLFloat,
	})
	if err != nil {
		return err
	}
	vm.SalesSVG = bars

	line, err := h.line.Line(svg.DefaultWidth, svg.DefaultHeight/2, vm.Sales.Current, vm.Sales.Labels, svg.LineOpts{
		Title:       "Tendência " + vm.Sales.CurrentLabel,
		Description: "Evolução mensal das vendas",
		ShowDots:    true,
		Format:      display.FormatCurrencyBRLFloat,
	})
	if err != nil {
		return err
	}
	vm.TrendSVG = line
	return nil
}

func (h *Handler) handleFilterError(w http.ResponseWriter, err error) {
	var vErr validationError
	if errors.As(err, &vErr) {
		http.Error(w, "Parâmetro inválido: "+vErr.field, http.StatusBadRequest)
		return
	}
	h.handleServerError(w, "parse filters", err)
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

type validationError struct {
	field string
}

func (v validationError) Error() string {
	return fmt.Sprintf("invalid %s", v.field)
}
