package svg

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/dtca-portal/dtca-portal/internal/presenter"
)

var donutPalette = []string{"#10b981", "#f59e0b", "#ef4444", "#3b82f6", "#8b5cf6", "#64748b"}

// Donut renders slices as stacked arcs on a circle of circumference 100. The
// slices are drawn in order starting at twelve o'clock.
func Donut(slices []Slice, opts DonutOpts) (template.HTML, error) {
	if len(slices) == 0 {
		return "", fmt.Errorf("svg: at least one slice required")
	}
	values := make([]float64, len(slices))
	for i, s := range slices {
		if s.Value < 0 {
			return "", fmt.Errorf("svg: negative slice %q", s.Label)
		}
		values[i] = s.Value
	}
	stroke := opts.StrokeWidth
	if stroke <= 0 {
		stroke = DefaultStrokeWidth
	}
	track := fallback(opts.TrackColor, "#e5e7eb")
	titleID := makeID(opts.Title, "donut-title")
	descID := makeID(opts.Title, "donut-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" class=\"donut\" role=\"img\" aria-labelledby=\"%s %s\">", CircleViewBox, CircleViewBox, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Donut chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Share of total"))))
	b.WriteString(circle(track, stroke, "", "", ""))

	// Rotate so offset zero starts at the top.
	b.WriteString(fmt.Sprintf("<g transform=\"rotate(-90 %s %s)\">", presenter.Length(CircleCenter), presenter.Length(CircleCenter)))
	for i, seg := range presenter.DonutArcSegments(values) {
		s := slices[i]
		color := fallback(s.Color, donutPalette[i%len(donutPalette)])
		b.WriteString(circle(color, stroke, presenter.DashArray(seg), presenter.Length(seg.StartOffset), s.Label))
	}
	b.WriteString("</g></svg>")
	return template.HTML(b.String()), nil
}

func circle(color string, stroke float64, dashArray, dashOffset, label string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<circle cx=\"%s\" cy=\"%s\" r=\"%.3f\" fill=\"transparent\" stroke=\"%s\" stroke-width=\"%s\"",
		presenter.Length(CircleCenter), presenter.Length(CircleCenter), CircleRadius, template.HTMLEscapeString(color), presenter.Length(stroke)))
	if dashArray != "" {
		b.WriteString(fmt.Sprintf(" stroke-dasharray=\"%s\" stroke-dashoffset=\"%s\"", dashArray, dashOffset))
	}
	if label != "" {
		b.WriteString(fmt.Sprintf(" aria-label=\"%s\"", template.HTMLEscapeString(label)))
	} else {
		b.WriteString(" aria-hidden=\"true\"")
	}
	b.WriteString("></circle>")
	return b.String()
}
