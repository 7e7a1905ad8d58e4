package svg

// Slice is one donut segment. Value is a share of 100.
type Slice struct {
	Label string
	Value float64
	Color string
}

// BarGroup pairs an actual value with its target for one label.
type BarGroup struct {
	Label  string
	Actual float64
	Target float64
	// Class is added to the actual bar's class attribute.
	Class string
}

// DonutOpts customises the donut renderer.
type DonutOpts struct {
	Title       string
	Description string
	StrokeWidth float64
	TrackColor  string
}

// RingOpts customises the single progress ring renderer.
type RingOpts struct {
	Title       string
	Description string
	Color       string
	TrackColor  string
	StrokeWidth float64
	ShowLabel   bool
}

// BarOpts customises the actual-vs-target bar renderer.
type BarOpts struct {
	Title       string
	Description string
	ActualLabel string
	TargetLabel string
	ActualColor string
	TargetColor string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
}

// Chart geometry. A circle of radius CircleRadius has a circumference of
// 100, so arc lengths are percentages.
const (
	DefaultWidth       = 480
	DefaultHeight      = 220
	DefaultPadding     = 28.0
	DefaultTicks       = 4
	CircleViewBox      = 42
	CircleCenter       = 21.0
	CircleRadius       = 15.915
	DefaultStrokeWidth = 3.0
)
