package state

import (
	"slices"

	"github.com/google/uuid"
)

// Collection is the ordered set of committed strokes. Order is z-order:
// later strokes are drawn on top.
//
// Every mutation installs a fresh slice, so the slice returned by Strokes is
// an immutable snapshot that a reader may keep while the owner goes on
// mutating the collection. Collection itself is not safe for concurrent use.
type Collection struct {
	strokes []*Stroke
}

// Strokes returns the current snapshot. It must not be modified.
func (c *Collection) Strokes() []*Stroke { return c.strokes }

func (c *Collection) Len() int { return len(c.strokes) }

func (c *Collection) Add(s *Stroke) {
	c.strokes = append(slices.Clip(c.strokes), s)
}

// Get returns the stroke with the given ID.
func (c *Collection) Get(id uuid.UUID) (*Stroke, bool) {
	i := c.index(id)
	if i < 0 {
		return nil, false
	}
	return c.strokes[i], true
}

func (c *Collection) Contains(id uuid.UUID) bool { return c.index(id) >= 0 }

// Replace swaps the stroke carrying s.ID for s, keeping its position.
// It reports whether such a stroke existed.
func (c *Collection) Replace(s *Stroke) bool {
	i := c.index(s.ID)
	if i < 0 {
		return false
	}
	next := slices.Clone(c.strokes)
	next[i] = s
	c.strokes = next
	return true
}

// ReplaceAll applies every replacement in one new snapshot. Strokes not in
// the collection are ignored. It returns the number replaced.
func (c *Collection) ReplaceAll(repl map[uuid.UUID]*Stroke) int {
	if len(repl) == 0 {
		return 0
	}
	next := slices.Clone(c.strokes)
	n := 0
	for i, s := range next {
		if r, ok := repl[s.ID]; ok {
			next[i] = r
			n++
		}
	}
	if n > 0 {
		c.strokes = next
	}
	return n
}

// Remove deletes every stroke whose ID is in ids and returns the removed
// strokes in z-order.
func (c *Collection) Remove(ids map[uuid.UUID]struct{}) []*Stroke {
	if len(ids) == 0 {
		return nil
	}
	var removed []*Stroke
	next := make([]*Stroke, 0, len(c.strokes))
	for _, s := range c.strokes {
		if _, ok := ids[s.ID]; ok {
			removed = append(removed, s)
			continue
		}
		next = append(next, s)
	}
	if len(removed) > 0 {
		c.strokes = next
	}
	return removed
}

// Reset replaces the whole collection.
func (c *Collection) Reset(strokes []*Stroke) {
	c.strokes = slices.Clip(slices.Clone(strokes))
}

func (c *Collection) Records() []Record {
	out := make([]Record, 0, len(c.strokes))
	for _, s := range c.strokes {
		out = append(out, s.Record())
	}
	return out
}

func (c *Collection) index(id uuid.UUID) int {
	return slices.IndexFunc(c.strokes, func(s *Stroke) bool { return s.ID == id })
}
