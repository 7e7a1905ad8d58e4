// Package presenter turns metric numbers into chart geometry and colour
// classes. Every function is pure; NaN input yields an unspecified result.
package presenter

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Funnel and completion constants.
const (
	FunnelScale         = 10.0
	FunnelMinVisible    = 8.0
	OnTargetThreshold   = 100.0
	NearTargetThreshold = 80.0
)

// ColorClass is the threshold class attached to completion bars.
type ColorClass string

const (
	OnTarget     ColorClass = "on-target"
	NearTarget   ColorClass = "near-target"
	BehindTarget ColorClass = "behind-target"
)

// ArcSegment describes one donut slice along a circumference of 100.
type ArcSegment struct {
	StartOffset float64 `json:"start_offset"`
	Length      float64 `json:"length"`
}

// Ring holds the two arc lengths of a single-ring progress indicator.
type Ring struct {
	Filled    float64 `json:"filled"`
	Remainder float64 `json:"remainder"`
}

// BarWidthPercent clamps percent into [0, 100] for linear bars.
func BarWidthPercent(percent float64) float64 {
	return math.Min(math.Max(percent, 0), 100)
}

// FunnelSegmentWidthPercent scales a funnel stage percentage with the
// default visibility floor.
func FunnelSegmentWidthPercent(percent float64) float64 {
	return FunnelSegmentWidth(percent, FunnelMinVisible)
}

// FunnelSegmentWidth returns max(percent*FunnelScale, minVisible).
func FunnelSegmentWidth(percent, minVisible float64) float64 {
	return math.Max(percent*FunnelScale, minVisible)
}

// DonutArcSegments lays the values end to end around the circle. Each
// segment starts where the previous one ended; the ring is not closed when
// the values sum to less than 100.
func DonutArcSegments(values []float64) []ArcSegment {
	segments := make([]ArcSegment, 0, len(values))
	offset := 0.0
	for _, v := range values {
		segments = append(segments, ArcSegment{StartOffset: offset, Length: v})
		offset -= v
	}
	return segments
}

// DashArray formats a segment as an SVG stroke-dasharray value.
func DashArray(seg ArcSegment) string {
	return Length(seg.Length) + " " + Length(100-seg.Length)
}

// RingProgress clamps progress and splits the ring into filled and
// remaining arcs.
func RingProgress(progress float64) Ring {
	p := BarWidthPercent(progress)
	return Ring{Filled: p, Remainder: 100 - p}
}

// CompletionColorClass classifies a completion-vs-target percentage.
func CompletionColorClass(percent float64) ColorClass {
	switch {
	case percent >= OnTargetThreshold:
		return OnTarget
	case percent >= NearTargetThreshold:
		return NearTarget
	default:
		return BehindTarget
	}
}

// Initials returns the upper-cased first letter of each name token.
func Initials(fullName string) string {
	var b strings.Builder
	for _, token := range strings.Fields(fullName) {
		r, _ := utf8.DecodeRuneInString(token)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// StatusClass maps a student status to its badge class.
func StatusClass(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "active":
		return "status-active"
	case "completed":
		return "status-completed"
	default:
		return "status-unknown"
	}
}

// Length prints an SVG length with at most two decimals and no trailing
// zeros: 39.333 -> "39.33", 68.0 -> "68".
func Length(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
