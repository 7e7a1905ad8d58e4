package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Bars renders actual-vs-target bars, one group per label. Values must not be
// negative.
func Bars(width, height int, groups []BarGroup, opts BarOpts) (template.HTML, error) {
	if len(groups) == 0 {
		return "", fmt.Errorf("svg: at least one group required")
	}
	for _, g := range groups {
		if g.Actual < 0 || g.Target < 0 {
			return "", fmt.Errorf("svg: negative value for %q", g.Label)
		}
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	padding := opts.Padding
	if padding <= 0 {
		padding = DefaultPadding
	}
	tickCount := opts.TickCount
	if tickCount <= 0 {
		tickCount = DefaultTicks
	}

	axisColor := fallback(opts.AxisColor, "#475569")
	gridColor := fallback(opts.GridColor, "#cbd5f5")
	actualColor := fallback(opts.ActualColor, "#7c3aed")
	targetColor := fallback(opts.TargetColor, "#cbd5e1")
	actualLabel := fallback(opts.ActualLabel, "Actual")
	targetLabel := fallback(opts.TargetLabel, "Target")

	chartWidth := float64(width) - 2*padding
	chartHeight := float64(height) - 2*padding
	if chartWidth <= 0 || chartHeight <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}

	maxVal := 0.0
	for _, g := range groups {
		maxVal = maxOf(maxVal, g.Actual, g.Target)
	}
	if almostEqual(maxVal, 0) {
		maxVal = 1
	}
	scale := chartHeight / maxVal
	bottom := padding + chartHeight

	groupWidth := chartWidth / float64(len(groups))
	barWidth := groupWidth / 3

	titleID := makeID(opts.Title, "bar-title")
	descID := makeID(opts.Title, "bar-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Bar chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Actual compared with target"))))

	for i := 0; i <= tickCount; i++ {
		ratio := float64(i) / float64(tickCount)
		y := bottom - ratio*chartHeight
		b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\" aria-hidden=\"true\"></line>", padding, y, padding+chartWidth, y, gridColor))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", padding-6, y+4, axisColor, template.HTMLEscapeString(formatTick(maxVal*ratio))))
	}

	b.WriteString(fmt.Sprintf("<g stroke=\"%s\" aria-label=\"Axes\">", axisColor))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", padding, padding, padding, bottom))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", padding, bottom, padding+chartWidth, bottom))
	b.WriteString("</g>")

	for i, g := range groups {
		baseX := padding + float64(i)*groupWidth
		label := template.HTMLEscapeString(g.Label)

		th := g.Target * scale
		b.WriteString(fmt.Sprintf("<rect class=\"bar-target\" x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\" aria-label=\"%s %s\"></rect>", baseX+barWidth*0.3, bottom-th, barWidth, th, targetColor, template.HTMLEscapeString(targetLabel), label))

		ah := g.Actual * scale
		class := "bar-actual"
		if g.Class != "" {
			class += " " + template.HTMLEscapeString(g.Class)
		}
		b.WriteString(fmt.Sprintf("<rect class=\"%s\" x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\" aria-label=\"%s %s\"></rect>", class, baseX+barWidth*1.4, bottom-ah, barWidth, ah, actualColor, template.HTMLEscapeString(actualLabel), label))

		center := baseX + groupWidth/2
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", center, bottom+14, axisColor, label))
	}

	legendY := padding - 12
	if legendY < 12 {
		legendY = 12
	}
	b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" fill=\"%s\"></rect>", padding, legendY-8, targetColor))
	b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"start\">%s</text>", padding+14, legendY, axisColor, template.HTMLEscapeString(targetLabel)))
	b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" fill=\"%s\"></rect>", padding+90, legendY-8, actualColor))
	b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"start\">%s</text>", padding+104, legendY, axisColor, template.HTMLEscapeString(actualLabel)))

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
