package logx

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRef(t *testing.T) {
	var r Ref
	assert.False(t, r.Get().Enabled(t.Context(), slog.LevelError))

	var buf bytes.Buffer
	r.Set(slog.New(slog.NewTextHandler(&buf, nil)))
	r.Get().Info("[TEST] hello", "n", 1)
	assert.Contains(t, buf.String(), "[TEST] hello")

	r.Set(nil)
	assert.Same(t, Nop(), r.Get())
}
