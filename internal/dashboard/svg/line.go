package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Line renders a responsive SVG line chart for the given series and labels.
func Line(width, height int, series []float64, labels []string, opts LineOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("svg: series required")
	}
	if len(series) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match series")
	}

	minVal, maxVal := bounds(series)
	f, err := newFrame(width, height, opts.Padding, minVal, maxVal, opts.AxisColor, opts.GridColor)
	if err != nil {
		return "", err
	}
	strokeColor := fallback(opts.StrokeColor, "#4f46e5")
	fillColor := fallback(opts.FillColor, "rgba(79,70,229,0.12)")

	xAt := func(i int) float64 {
		if len(series) == 1 {
			return f.padding + f.chartWidth/2
		}
		return f.padding + float64(i)*f.chartWidth/float64(len(series)-1)
	}

	var path strings.Builder
	for i, value := range series {
		cmd := " L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&path, "%s%.2f %.2f", cmd, xAt(i), f.y(finite(value)))
	}

	var b strings.Builder
	f.open(&b, opts.Title, opts.Description, "line", "Gráfico de linha", "Tendência")
	f.grid(&b, opts.TickCount)
	f.axes(&b, f.bottom())

	area := fmt.Sprintf("%s L%.2f %.2f L%.2f %.2f Z", path.String(), xAt(len(series)-1), f.bottom(), xAt(0), f.bottom())
	fmt.Fprintf(&b, "<path d=\"%s\" fill=\"%s\" stroke=\"none\" aria-hidden=\"true\"></path>", area, fillColor)
	fmt.Fprintf(&b, "<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"2\" stroke-linejoin=\"round\" stroke-linecap=\"round\"></path>", path.String(), strokeColor)

	if opts.ShowDots {
		for i, value := range series {
			fmt.Fprintf(&b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"3\" fill=\"%s\">%s</circle>", xAt(i), f.y(finite(value)), strokeColor, tooltip(opts.Format, opts.Title, labels[i], value))
		}
	}
	for i, label := range labels {
		f.label(&b, xAt(i), label)
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
