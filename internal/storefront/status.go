package storefront

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var statusAliases = map[string]OrderStatus{
	"delivered": StatusDelivered,
	"entregue":  StatusDelivered,
	"pending":   StatusPending,
	"pendente":  StatusPending,
	"cancelled": StatusCancelled,
	"canceled":  StatusCancelled,
	"cancelado": StatusCancelled,
}

var statusLabels = map[OrderStatus]string{
	StatusDelivered: "Entregue",
	StatusPending:   "Pendente",
	StatusCancelled: "Cancelado",
}

// ParseOrderStatus resolves canonical values and pt-BR labels, ignoring case and accents.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	status, ok := statusAliases[foldLabel(raw)]
	if !ok {
		return StatusUnknown, false
	}
	return status, true
}

// Valid reports whether s belongs to the closed status set.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusDelivered, StatusPending, StatusCancelled:
		return true
	default:
		return false
	}
}

// Label returns the pt-BR label shown in the orders table.
func (s OrderStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	if parsed, ok := ParseOrderStatus(string(s)); ok {
		return statusLabels[parsed]
	}
	return strings.TrimSpace(string(s))
}

// OrderStatuses lists the closed set in display order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{StatusDelivered, StatusPending, StatusCancelled}
}

// ParseChangeType resolves a change direction; anything unrecognised is flat.
func ParseChangeType(raw string) ChangeType {
	switch ChangeType(foldLabel(raw)) {
	case ChangeIncrease:
		return ChangeIncrease
	case ChangeDecrease:
		return ChangeDecrease
	default:
		return ChangeFlat
	}
}

func foldLabel(raw string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, strings.TrimSpace(raw))
	if err != nil {
		stripped = strings.TrimSpace(raw)
	}
	return cases.Fold().String(stripped)
}
