// Package geometry maps pointer positions to fractional chart coordinates and
// back. Fractions are relative to the chart's plotting rectangle: 0 is the
// left/top edge and 1 is the right/bottom edge.
package geometry

import "math"

// Rect is a viewport rectangle in page pixels.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Degenerate reports whether the rect has no usable area.
func (r Rect) Degenerate() bool {
	return !(r.Width > 0) || !(r.Height > 0)
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// ToFraction converts a pointer position to a fractional coordinate within r.
// ok is false for a degenerate rect or when either fraction is not finite;
// the pointer may lie outside r, in which case the fractions fall outside
// [0,1].
func ToFraction(px, py float64, r Rect) (x, y float64, ok bool) {
	if r.Degenerate() {
		return 0, 0, false
	}
	x, y = (px-r.Left)/r.Width, (py-r.Top)/r.Height
	if !Finite(x) || !Finite(y) {
		return 0, 0, false
	}
	return x, y, true
}

// Finite reports whether v is neither NaN nor an infinity.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// InUnit reports whether both fractions are finite and within [0,1].
func InUnit(x, y float64) bool {
	return Finite(x) && Finite(y) && x >= 0 && x <= 1 && y >= 0 && y <= 1
}

// ToPixel is the inverse of ToFraction.
func ToPixel(x, y float64, r Rect) (px, py float64) {
	return r.Left + x*r.Width, r.Top + y*r.Height
}

// IsInside reports whether the pointer lies within r. Edges count as inside.
func IsInside(px, py float64, r Rect) bool {
	if r.Degenerate() {
		return false
	}
	if px < r.Left || px > r.Right() || py < r.Top || py > r.Bottom() {
		return false
	}
	return true
}
