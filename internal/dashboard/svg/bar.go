package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Bars renders a grouped bar chart comparing two series, e.g. this year
// against last year. Every bar carries a hover tooltip.
func Bars(width, height int, seriesA, seriesB []float64, labels []string, opts BarOpts) (template.HTML, error) {
	if len(seriesA) == 0 && len(seriesB) == 0 {
		return "", fmt.Errorf("svg: at least one series required")
	}
	if len(labels) == 0 {
		return "", fmt.Errorf("svg: labels required")
	}
	if len(seriesA) > 0 && len(seriesA) != len(labels) {
		return "", fmt.Errorf("svg: seriesA length must match labels")
	}
	if len(seriesB) > 0 && len(seriesB) != len(labels) {
		return "", fmt.Errorf("svg: seriesB length must match labels")
	}

	minVal, maxVal := bounds(seriesA, seriesB)
	f, err := newFrame(width, height, opts.Padding, minVal, maxVal, opts.AxisColor, opts.GridColor)
	if err != nil {
		return "", err
	}
	colorA := fallback(opts.ColorA, "#4f46e5")
	colorB := fallback(opts.ColorB, "#c7d2fe")
	labelA := fallback(opts.SeriesALabel, "Série A")
	labelB := fallback(opts.SeriesBLabel, "Série B")

	zeroY := f.y(0)
	groupWidth := f.chartWidth / float64(len(labels))
	barWidth := groupWidth / 3

	var b strings.Builder
	f.open(&b, opts.Title, opts.Description, "bar", "Gráfico de barras", "Comparação entre séries")
	f.grid(&b, opts.TickCount)
	f.axes(&b, zeroY)

	writeBar := func(x, value float64, color, series, label string) {
		y, h := barPosition(finite(value), f.scale, zeroY, f.padding, f.bottom())
		fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\" aria-label=\"%s %s\">%s</rect>",
			x, y, barWidth, h, color, template.HTMLEscapeString(series), template.HTMLEscapeString(label), tooltip(opts.Format, series, label, value))
	}
	for i, label := range labels {
		baseX := f.padding + float64(i)*groupWidth
		if len(seriesA) > 0 {
			writeBar(baseX+barWidth*0.3, seriesA[i], colorA, labelA, label)
		}
		if len(seriesB) > 0 {
			writeBar(baseX+barWidth*1.4, seriesB[i], colorB, labelB, label)
		}
		f.label(&b, baseX+groupWidth/2, label)
	}

	legendY := math.Max(f.padding-12, 12)
	legendX := f.padding
	for _, entry := range []struct {
		present bool
		color   string
		label   string
	}{{len(seriesA) > 0, colorA, labelA}, {len(seriesB) > 0, colorB, labelB}} {
		if !entry.present {
			continue
		}
		fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" fill=\"%s\"></rect>", legendX, legendY-8, entry.color)
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"start\">%s</text>", legendX+14, legendY, f.axisColor, template.HTMLEscapeString(entry.label))
		legendX += 90
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func barPosition(value, scale, zeroY, top, bottom float64) (float64, float64) {
	if value >= 0 {
		height := value * scale
		y := zeroY - height
		if y < top {
			height -= top - y
			y = top
		}
		return y, math.Max(height, 0)
	}
	height := math.Abs(value * scale)
	if zeroY+height > bottom {
		height = bottom - zeroY
	}
	return zeroY, math.Max(height, 0)
}
