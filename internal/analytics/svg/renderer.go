package svg

import "html/template"

// Renderer exposes the package renderers as methods so callers can depend
// on interfaces.
type Renderer struct{}

func (Renderer) Donut(slices []Slice, opts DonutOpts) (template.HTML, error) {
	return Donut(slices, opts)
}

func (Renderer) Ring(progress float64, opts RingOpts) (template.HTML, error) {
	return Ring(progress, opts)
}

func (Renderer) Bars(width, height int, groups []BarGroup, opts BarOpts) (template.HTML, error) {
	return Bars(width, height, groups, opts)
}
