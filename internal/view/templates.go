// Package view renders the embedded HTML templates.
package view

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/vitrine-admin/vitrine/internal/display"
	"github.com/vitrine-admin/vitrine/internal/storefront"
	"github.com/vitrine-admin/vitrine/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CurrentPath string
	AppEnv      string
	Data        any
}

// FuncMap exposes the display derivations the pages call directly.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"quantity": display.FormatQuantity,
		"statusClass": func(status storefront.OrderStatus) string {
			return string(display.StatusStyle(status))
		},
		"statusLabel": func(status storefront.OrderStatus) string {
			return status.Label()
		},
	}
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	tpl, err := template.New("root").Funcs(FuncMap()).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}
