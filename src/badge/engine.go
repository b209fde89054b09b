package badge

import "fmt"

// Engine generates SVG badges for registry metrics using a specific font.
type Engine struct {
	metrics *FontMetrics
}

// New creates a badge engine with the given font metrics.
func New(metrics *FontMetrics) *Engine {
	return &Engine{metrics: metrics}
}

// Badge defines the content and appearance of a single badge.
type Badge struct {
	Label string // left side text
	Value string // right side text
	Color string // hex color for right side (e.g. "#4c1")
}

// Generate produces a shields.io-compatible SVG badge string.
func (e *Engine) Generate(b Badge) string {
	return e.renderSVG(b)
}

// Badge colors, shields.io palette.
const (
	ColorGreen  = "#4c1"
	ColorYellow = "#dfb317"
	ColorRed    = "#e05d44"
	ColorBlue   = "#007ec6"
)

// CountBadge builds a badge for an integer registry metric, abbreviating
// the value the way shields.io does.
func CountBadge(label string, n int64) Badge {
	return Badge{Label: label, Value: CountValue(n), Color: ColorBlue}
}

// CountValue renders a metric count in shields.io's abbreviated form:
// 999 stays 999, 5200 becomes 5.2k, 1300000 becomes 1.3M.
func CountValue(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return trimmed(float64(n)/1e9) + "G"
	case n >= 1_000_000:
		return trimmed(float64(n)/1e6) + "M"
	case n >= 1_000:
		return trimmed(float64(n)/1e3) + "k"
	default:
		return fmt.Sprintf("%d", n)
	}
}

// trimmed formats with one decimal, dropping a trailing ".0".
func trimmed(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	if len(s) > 2 && s[len(s)-2:] == ".0" {
		return s[:len(s)-2]
	}
	return s
}
