// Package mode gates which interaction is active on the chart. Exactly one
// of Idle, NewPoint, MovePoint and EditPoint holds at any time; the move and
// edit states carry the point they act on.
package mode

import (
	"strings"

	"github.com/dgnsrekt/compass_chart/internal/editimage"
	"github.com/dgnsrekt/compass_chart/internal/points"
)

// Kind names an interaction mode.
type Kind int

const (
	Idle Kind = iota
	NewPoint
	MovePoint
	EditPoint
)

func (k Kind) String() string {
	switch k {
	case NewPoint:
		return "new_point"
	case MovePoint:
		return "move_point"
	case EditPoint:
		return "edit_point"
	default:
		return "idle"
	}
}

// Draft holds the edit form values. Image is ignored unless ImageEnabled.
type Draft struct {
	Name         string          `json:"name"`
	Image        editimage.Image `json:"image"`
	ImageEnabled bool            `json:"image_enabled"`
}

// DraftFrom opens a draft for p. The image sub-form is enabled only when p
// already has an image.
func DraftFrom(p points.Point) Draft {
	d := Draft{Name: p.Name}
	if p.Image != nil {
		d.Image = *p.Image
		d.ImageEnabled = true
	}
	return d
}

// Result returns the values a save writes back: the trimmed name and the
// image, which is nil when the image sub-form is disabled.
func (d Draft) Result() (string, *editimage.Image) {
	name := strings.TrimSpace(d.Name)
	if !d.ImageEnabled {
		return name, nil
	}
	img := d.Image
	return name, &img
}

// Controller is the mode state machine. The zero value is Idle.
type Controller struct {
	kind   Kind
	handle points.Handle
	held   points.Point
	draft  Draft
}

// Kind returns the active mode.
func (c *Controller) Kind() Kind { return c.kind }

// Handle returns the point the move or edit acts on.
func (c *Controller) Handle() (points.Handle, bool) {
	if c.kind != MovePoint && c.kind != EditPoint {
		return points.NoHandle, false
	}
	return c.handle, true
}

// ToggleNewPoint flips between Idle and NewPoint. It reports false and does
// nothing while a move or edit is active.
func (c *Controller) ToggleNewPoint() bool {
	switch c.kind {
	case Idle:
		c.kind = NewPoint
		return true
	case NewPoint:
		c.kind = Idle
		return true
	default:
		return false
	}
}

// PlaceNewPoint leaves NewPoint after a point was placed.
func (c *Controller) PlaceNewPoint() bool {
	if c.kind != NewPoint {
		return false
	}
	c.kind = Idle
	return true
}

// BeginMove takes custody of p while it is relocated. Only valid from Idle.
func (c *Controller) BeginMove(h points.Handle, p points.Point) bool {
	if c.kind != Idle || h == points.NoHandle {
		return false
	}
	c.kind = MovePoint
	c.handle = h
	c.held = p.Clone()
	return true
}

// Held returns the point under relocation.
func (c *Controller) Held() (points.Handle, points.Point, bool) {
	if c.kind != MovePoint {
		return points.NoHandle, points.Point{}, false
	}
	return c.handle, c.held.Clone(), true
}

// FinishMove releases the held point placed at (x, y) and returns to Idle.
func (c *Controller) FinishMove(x, y float64) (points.Handle, points.Point, bool) {
	h, p, ok := c.release()
	if !ok {
		return points.NoHandle, points.Point{}, false
	}
	p.PlaceAt(x, y)
	return h, p, true
}

// CancelMove releases the held point unchanged and returns to Idle.
func (c *Controller) CancelMove() (points.Handle, points.Point, bool) {
	return c.release()
}

// BeginEdit opens a draft for p. Only valid from Idle.
func (c *Controller) BeginEdit(h points.Handle, p points.Point) bool {
	if c.kind != Idle || h == points.NoHandle {
		return false
	}
	c.kind = EditPoint
	c.handle = h
	c.draft = DraftFrom(p)
	return true
}

// Draft returns the current edit draft.
func (c *Controller) Draft() (Draft, bool) {
	if c.kind != EditPoint {
		return Draft{}, false
	}
	return c.draft, true
}

// SetDraft replaces the name and image values of the draft. The enabled
// state of the image sub-form is left alone.
func (c *Controller) SetDraft(name string, img editimage.Image) bool {
	if c.kind != EditPoint {
		return false
	}
	c.draft.Name = name
	c.draft.Image = img
	return true
}

// EnableImage attaches a fresh image to the draft.
func (c *Controller) EnableImage(src string) bool {
	if c.kind != EditPoint {
		return false
	}
	c.draft.Image = editimage.New(src)
	c.draft.ImageEnabled = true
	return true
}

// DisableImage excludes the image from the saved result.
func (c *Controller) DisableImage() bool {
	if c.kind != EditPoint {
		return false
	}
	c.draft.ImageEnabled = false
	return true
}

// FinishEdit closes the draft and returns it for saving.
func (c *Controller) FinishEdit() (points.Handle, Draft, bool) {
	if c.kind != EditPoint {
		return points.NoHandle, Draft{}, false
	}
	h, d := c.handle, c.draft
	c.Reset()
	return h, d, true
}

// CancelEdit discards the draft.
func (c *Controller) CancelEdit() bool {
	if c.kind != EditPoint {
		return false
	}
	c.Reset()
	return true
}

// Reset returns to Idle, dropping anything held. Callers must cancel an
// active move first or the held point is lost.
func (c *Controller) Reset() {
	*c = Controller{}
}

func (c *Controller) release() (points.Handle, points.Point, bool) {
	if c.kind != MovePoint {
		return points.NoHandle, points.Point{}, false
	}
	h, p := c.handle, c.held
	c.Reset()
	return h, p, true
}
