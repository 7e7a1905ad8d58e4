package svg

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/dtca-portal/dtca-portal/internal/presenter"
)

// Ring renders a single progress arc. Progress above 100 draws a full ring.
func Ring(progress float64, opts RingOpts) (template.HTML, error) {
	if progress < 0 {
		return "", fmt.Errorf("svg: negative progress")
	}
	r := presenter.RingProgress(progress)
	stroke := opts.StrokeWidth
	if stroke <= 0 {
		stroke = DefaultStrokeWidth
	}
	color := fallback(opts.Color, "#7c3aed")
	track := fallback(opts.TrackColor, "#e5e7eb")
	titleID := makeID(opts.Title, "ring-title")
	descID := makeID(opts.Title, "ring-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" class=\"ring\" role=\"img\" aria-labelledby=\"%s %s\">", CircleViewBox, CircleViewBox, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Progress"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s%% complete</desc>", descID, presenter.Length(progress)))
	b.WriteString(circle(track, stroke, "", "", ""))
	b.WriteString(fmt.Sprintf("<g transform=\"rotate(-90 %s %s)\">", presenter.Length(CircleCenter), presenter.Length(CircleCenter)))
	b.WriteString(circle(color, stroke, presenter.Length(r.Filled)+" "+presenter.Length(r.Remainder), "0", opts.Title))
	b.WriteString("</g>")
	if opts.ShowLabel {
		b.WriteString(fmt.Sprintf("<text x=\"%s\" y=\"%s\" text-anchor=\"middle\" dominant-baseline=\"middle\" font-size=\"8\" font-weight=\"600\">%s%%</text>", presenter.Length(CircleCenter), presenter.Length(CircleCenter), presenter.Length(progress)))
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
