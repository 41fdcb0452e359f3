// Package editimage models the pannable, zoomable background image that can
// be attached to a chart point, and the view transform derived from it.
package editimage

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dgnsrekt/compass_chart/internal/apperr"
)

// DefaultZoom is the zoom of a freshly attached image (scale factor 1).
const DefaultZoom = 10

// Image is a background image owned by exactly one point.
type Image struct {
	ScrollX float64 `json:"scrollX"`
	ScrollY float64 `json:"scrollY"`
	Src     string  `json:"src"`
	Zoom    float64 `json:"zoom"`
}

// New returns an image for src with default zoom and no scroll.
func New(src string) Image {
	return Image{Src: strings.TrimSpace(src), Zoom: DefaultZoom}
}

// Validate rejects images that cannot be rendered.
func (img Image) Validate() error {
	if strings.TrimSpace(img.Src) == "" {
		return apperr.Validation("image src is required")
	}
	if !(img.Zoom > 0) || math.IsInf(img.Zoom, 0) {
		return apperr.Validation(fmt.Sprintf("image zoom must be > 0, got %v", img.Zoom))
	}
	if math.IsNaN(img.ScrollX) || math.IsNaN(img.ScrollY) {
		return apperr.Validation("image scroll must be a number")
	}
	return nil
}

// Length is a CSS calc() length: a percentage of the element's own box plus
// a pixel offset.
type Length struct {
	Percent float64 `json:"percent"`
	Pixels  float64 `json:"pixels"`
}

// Resolve returns the length in pixels for an element of the given size.
func (l Length) Resolve(size float64) float64 {
	return l.Percent/100*size + l.Pixels
}

func (l Length) css() string {
	return "calc(" + formatFloat(l.Percent) + "% + " + formatFloat(l.Pixels) + "px)"
}

// Transform is the view transform of an image inside its container.
type Transform struct {
	TranslateX Length  `json:"translate_x"`
	TranslateY Length  `json:"translate_y"`
	Scale      float64 `json:"scale"`
}

// ComputeTransform derives the transform for img rendered in a container of
// containerWidth pixels. The X shift is negated and the Y shift is not.
func ComputeTransform(img Image, containerWidth float64) Transform {
	scale := img.Zoom / 10
	translation := containerWidth / 2
	kx := -img.ScrollX / 100
	ky := img.ScrollY / 100
	return Transform{
		TranslateX: Length{Percent: noNegZero(kx * 50 * scale), Pixels: noNegZero(-kx * translation)},
		TranslateY: Length{Percent: noNegZero(ky * 50 * scale), Pixels: noNegZero(-ky * translation)},
		Scale:      scale,
	}
}

// CSS renders the transform as a CSS transform property value.
func (t Transform) CSS() string {
	return "translateX(" + t.TranslateX.css() + ") translateY(" + t.TranslateY.css() + ") scale(" + formatFloat(t.Scale) + ")"
}

func noNegZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
