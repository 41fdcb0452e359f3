package points

import (
	"github.com/dgnsrekt/compass_chart/internal/editimage"
)

// Visibility mirrors the CSS visibility value used when rendering a point.
type Visibility string

const (
	Hidden  Visibility = "hidden"
	Visible Visibility = "visible"
)

// DefaultName is the label given to a freshly placed point.
const DefaultName = "New point"

// Point is a labeled marker at a fractional position within a chart.
type Point struct {
	Name       string           `json:"name"`
	X          float64          `json:"x"`
	Y          float64          `json:"y"`
	Visibility Visibility       `json:"visibility"`
	Image      *editimage.Image `json:"image"`
}

// Placeholder returns an unplaced point with the default name.
func Placeholder() Point {
	return Point{Name: DefaultName, Visibility: Hidden}
}

// Clone returns a deep copy; the image is never shared between points.
func (p Point) Clone() Point {
	if p.Image != nil {
		img := *p.Image
		p.Image = &img
	}
	return p
}

// PlaceAt positions the point and makes it visible.
func (p *Point) PlaceAt(x, y float64) {
	p.X = x
	p.Y = y
	p.Visibility = Visible
}
