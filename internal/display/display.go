// Package display derives presentation attributes from storefront records.
//
// Every function here is pure and total: out-of-range input is clamped or
// mapped to a neutral default rather than rejected.
package display

import (
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vitrine-admin/vitrine/internal/storefront"
)

// StyleClass is a CSS token applied to a status badge.
type StyleClass string

const (
	StyleDelivered StyleClass = "delivered-green"
	StylePending   StyleClass = "pending-yellow"
	StyleCancelled StyleClass = "cancelled-red"
	StyleNeutral   StyleClass = "neutral-gray"
)

var statusStyles = map[storefront.OrderStatus]StyleClass{
	storefront.StatusDelivered: StyleDelivered,
	storefront.StatusPending:   StylePending,
	storefront.StatusCancelled: StyleCancelled,
}

// StatusStyle maps an order status to its badge style. Labels outside the
// closed set get StyleNeutral.
func StatusStyle(status storefront.OrderStatus) StyleClass {
	if style, ok := statusStyles[status]; ok {
		return style
	}
	if parsed, ok := storefront.ParseOrderStatus(string(status)); ok {
		return statusStyles[parsed]
	}
	return StyleNeutral
}

const currencySymbol = "R$"

var quantityPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatCurrencyBRL renders amount as R$ with a decimal comma and exactly two
// fractional digits, without thousands grouping. Negative amounts keep their sign.
func FormatCurrencyBRL(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	out := currencySymbol + strings.Replace(fixed, ".", ",", 1)
	if amount.Round(2).IsNegative() {
		return "-" + out
	}
	return out
}

// FormatCurrencyBRLFloat is FormatCurrencyBRL for float inputs. NaN and
// infinities render as zero.
func FormatCurrencyBRLFloat(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return FormatCurrencyBRL(decimal.Zero)
	}
	return FormatCurrencyBRL(decimal.NewFromFloat(amount))
}

// BarWidthPercent clamps p to [0,100]. NaN maps to 0.
func BarWidthPercent(p float64) float64 {
	switch {
	case math.IsNaN(p), p <= 0:
		return 0
	case p >= 100:
		return 100
	default:
		return p
	}
}

// BarWidthStyle renders the clamped width as an inline CSS declaration.
func BarWidthStyle(p float64) template.CSS {
	w := strconv.FormatFloat(BarWidthPercent(p), 'f', -1, 64)
	return template.CSS(fmt.Sprintf("width: %s%%", w))
}

// Direction is the arrow and colour for a metric change.
type Direction struct {
	Icon       string `json:"icon"`
	ColorClass string `json:"color_class"`
}

var (
	directionUp   = Direction{Icon: "▲", ColorClass: "text-green"}
	directionDown = Direction{Icon: "▼", ColorClass: "text-red"}
	directionFlat = Direction{Icon: "▬", ColorClass: "text-gray"}
)

// ChangeDirection maps a change type to its arrow. Anything other than
// increase or decrease is rendered flat.
func ChangeDirection(changeType storefront.ChangeType) Direction {
	switch storefront.ParseChangeType(string(changeType)) {
	case storefront.ChangeIncrease:
		return directionUp
	case storefront.ChangeDecrease:
		return directionDown
	default:
		return directionFlat
	}
}

// FormatChange renders a change magnitude with one decimal and a percent sign, e.g. "12,5%".
func FormatChange(change float64) string {
	if math.IsNaN(change) || math.IsInf(change, 0) {
		change = 0
	}
	return strings.Replace(decimal.NewFromFloat(math.Abs(change)).StringFixed(1), ".", ",", 1) + "%"
}

// FormatDate renders t as dd/mm/yyyy; the zero time renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

// FormatQuantity renders a unit count with pt-BR digit grouping, e.g. "1.250".
func FormatQuantity(n int) string {
	return quantityPrinter.Sprintf("%d", n)
}
