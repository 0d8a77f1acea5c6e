package state

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InkBoard/internal/geom"
)

func strokeAt(x, y float64) *Stroke {
	return NewStroke(black, 1, NewPoint(x, y, 1))
}

func TestCollectionOrderAndSnapshots(t *testing.T) {
	var c Collection
	a, b, d := strokeAt(0, 0), strokeAt(1, 1), strokeAt(2, 2)
	c.Add(a)
	c.Add(b)
	snap := c.Strokes()
	c.Add(d)

	require.Len(t, snap, 2)
	assert.Equal(t, []*Stroke{a, b, d}, c.Strokes())

	removed := c.Remove(map[uuid.UUID]struct{}{b.ID: {}})
	assert.Equal(t, []*Stroke{b}, removed)
	assert.Equal(t, []*Stroke{a, d}, c.Strokes())
	// the earlier snapshot is unchanged
	assert.Equal(t, []*Stroke{a, b}, snap)
}

func TestCollectionReplaceKeepsZOrder(t *testing.T) {
	var c Collection
	a, b := strokeAt(0, 0), strokeAt(1, 1)
	c.Add(a)
	c.Add(b)
	moved := a.Translated(geom.Vec2{X: 5})
	require.True(t, c.Replace(moved))
	assert.Equal(t, []*Stroke{moved, b}, c.Strokes())
	assert.False(t, c.Replace(strokeAt(9, 9)))

	n := c.ReplaceAll(map[uuid.UUID]*Stroke{b.ID: b.Translated(geom.Vec2{Y: 1})})
	assert.Equal(t, 1, n)
	got, ok := c.Get(b.ID)
	require.True(t, ok)
	assert.Equal(t, geom.Vec2{Y: 1}, got.Translation())
}

func TestCollectionRemoveNothing(t *testing.T) {
	var c Collection
	c.Add(strokeAt(0, 0))
	before := c.Strokes()
	assert.Empty(t, c.Remove(map[uuid.UUID]struct{}{uuid.New(): {}}))
	assert.Equal(t, before, c.Strokes())
}

func TestLedgerAdmitsOnce(t *testing.T) {
	local := NewClock()
	l := NewLedger(local)
	remote := NewClock()

	op := remote.Stamp(Op{Type: OpDeleteStroke, Targets: []string{"x"}})
	assert.True(t, l.Admit(op))
	assert.False(t, l.Admit(op))
	assert.Equal(t, op.Lamport, local.Now())

	own := local.Stamp(Op{Type: OpDeleteStroke})
	assert.False(t, l.Admit(own))
	assert.Greater(t, own.Lamport, op.Lamport)
	assert.Equal(t, 1, l.Len())
}

func TestLedgerLogsDuplicatesToPackageLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })

	l := NewLedger(NewClock())
	op := NewClock().Stamp(Op{Type: OpDeleteStroke, Targets: []string{"x"}})
	require.True(t, l.Admit(op))
	assert.Empty(t, buf.String())
	require.False(t, l.Admit(op))
	assert.Contains(t, buf.String(), "[CRDT] duplicate op ignored")
}
