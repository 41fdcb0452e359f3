// Package points holds the ordered point sequence of the loaded chart.
//
// Points live in an arena keyed by Handle so that selection, move and edit
// refer to a specific point even when two points are structurally equal.
// Handles are never reused within a Store. Every mutation of the visible
// sequence is followed by exactly one Persister call.
package points

import (
	"context"
	"log/slog"

	"github.com/dgnsrekt/compass_chart/internal/editimage"
)

// Handle identifies a point within a Store.
type Handle uint64

// NoHandle is the zero Handle; it never refers to a point.
const NoHandle Handle = 0

// Persister receives the full point sequence after every mutation.
type Persister interface {
	PersistPoints(ctx context.Context, pts []Point) error
}

// Entry pairs a point with its handle.
type Entry struct {
	Handle Handle `json:"handle"`
	Point  Point  `json:"point"`
}

// Store is the arena plus insertion order of the loaded chart's points.
type Store struct {
	persister Persister

	next     Handle
	arena    map[Handle]*Point
	order    []Handle
	selected Handle
}

// NewStore creates an empty Store. persister may be nil.
func NewStore(persister Persister) *Store {
	return &Store{
		persister: persister,
		arena:     make(map[Handle]*Point),
	}
}

// SetPersister replaces the persistence target.
func (s *Store) SetPersister(p Persister) {
	s.persister = p
}

// Reset replaces the sequence without persisting. Selection is cleared and
// all previous handles become invalid.
func (s *Store) Reset(pts []Point) {
	s.arena = make(map[Handle]*Point, len(pts))
	s.order = make([]Handle, 0, len(pts))
	s.selected = NoHandle
	for _, p := range pts {
		s.insert(p)
	}
}

// Add appends p and persists. The returned handle refers to the new point.
func (s *Store) Add(ctx context.Context, p Point) (Handle, error) {
	h := s.insert(p)
	slog.Debug("points add", "handle", h, "name", p.Name, "x", p.X, "y", p.Y)
	return h, s.persist(ctx)
}

// DeleteAt removes the point at index i and persists. Out of range is a
// no-op and reports false.
func (s *Store) DeleteAt(ctx context.Context, i int) (bool, error) {
	if i < 0 || i >= len(s.order) {
		return false, nil
	}
	h := s.order[i]
	s.remove(i)
	slog.Debug("points delete", "handle", h, "index", i)
	return true, s.persist(ctx)
}

// DeleteSelected deletes the selected point and clears the selection.
func (s *Store) DeleteSelected(ctx context.Context) (bool, error) {
	if s.selected == NoHandle {
		return false, nil
	}
	i := s.IndexOf(s.selected)
	s.selected = NoHandle
	return s.DeleteAt(ctx, i)
}

// SelectAt selects the point at index i. Out of range is a no-op.
func (s *Store) SelectAt(i int) bool {
	if i < 0 || i >= len(s.order) {
		return false
	}
	s.selected = s.order[i]
	return true
}

// SelectHandle selects h if it is in the visible sequence.
func (s *Store) SelectHandle(h Handle) bool {
	if s.IndexOf(h) < 0 {
		return false
	}
	s.selected = h
	return true
}

// ClearSelection drops the selection.
func (s *Store) ClearSelection() {
	s.selected = NoHandle
}

// Selected returns the selected handle and point.
func (s *Store) Selected() (Handle, Point, bool) {
	if s.selected == NoHandle {
		return NoHandle, Point{}, false
	}
	p, ok := s.arena[s.selected]
	if !ok {
		return NoHandle, Point{}, false
	}
	return s.selected, p.Clone(), true
}

// UpdateSelected overwrites name and image of the selected point in place and
// persists. The handle and position in the sequence are unchanged.
func (s *Store) UpdateSelected(ctx context.Context, name string, img *editimage.Image) (bool, error) {
	if s.selected == NoHandle {
		return false, nil
	}
	p, ok := s.arena[s.selected]
	if !ok {
		return false, nil
	}
	p.Name = name
	if img != nil {
		cp := *img
		p.Image = &cp
	} else {
		p.Image = nil
	}
	slog.Debug("points update", "handle", s.selected, "name", name, "has_image", img != nil)
	return true, s.persist(ctx)
}

// Detach removes h from the visible sequence without persisting and returns
// the point. The handle stays reserved so Reattach can bring it back.
func (s *Store) Detach(h Handle) (Point, bool) {
	i := s.IndexOf(h)
	if i < 0 {
		return Point{}, false
	}
	p := s.arena[h].Clone()
	s.remove(i)
	return p, true
}

// Reattach appends p under a handle previously returned by Detach and
// persists. A handle still in the sequence is rejected.
func (s *Store) Reattach(ctx context.Context, h Handle, p Point) (bool, error) {
	if h == NoHandle || h > s.next {
		return false, nil
	}
	if _, live := s.arena[h]; live {
		return false, nil
	}
	cp := p.Clone()
	s.arena[h] = &cp
	s.order = append(s.order, h)
	slog.Debug("points reattach", "handle", h, "x", p.X, "y", p.Y)
	return true, s.persist(ctx)
}

// Len returns the number of visible points.
func (s *Store) Len() int { return len(s.order) }

// At returns the point at index i.
func (s *Store) At(i int) (Point, bool) {
	if i < 0 || i >= len(s.order) {
		return Point{}, false
	}
	return s.arena[s.order[i]].Clone(), true
}

// HandleAt returns the handle at index i.
func (s *Store) HandleAt(i int) (Handle, bool) {
	if i < 0 || i >= len(s.order) {
		return NoHandle, false
	}
	return s.order[i], true
}

// IndexOf returns the index of h or -1.
func (s *Store) IndexOf(h Handle) int {
	if h == NoHandle {
		return -1
	}
	for i, oh := range s.order {
		if oh == h {
			return i
		}
	}
	return -1
}

// Points returns a copy of the visible sequence.
func (s *Store) Points() []Point {
	out := make([]Point, 0, len(s.order))
	for _, h := range s.order {
		out = append(out, s.arena[h].Clone())
	}
	return out
}

// Entries returns the visible sequence with handles.
func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, h := range s.order {
		out = append(out, Entry{Handle: h, Point: s.arena[h].Clone()})
	}
	return out
}

func (s *Store) insert(p Point) Handle {
	s.next++
	h := s.next
	cp := p.Clone()
	s.arena[h] = &cp
	s.order = append(s.order, h)
	return h
}

func (s *Store) remove(i int) {
	h := s.order[i]
	delete(s.arena, h)
	s.order = append(s.order[:i], s.order[i+1:]...)
	if s.selected == h {
		s.selected = NoHandle
	}
}

func (s *Store) persist(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	return s.persister.PersistPoints(ctx, s.Points())
}
