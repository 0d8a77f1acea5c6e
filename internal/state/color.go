package state

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var ErrBadColor = errors.New("bad color")

var namedColors = map[string]color.NRGBA{
	"black":       {A: 255},
	"white":       {R: 255, G: 255, B: 255, A: 255},
	"red":         {R: 255, A: 255},
	"green":       {G: 255, A: 255},
	"blue":        {B: 255, A: 255},
	"yellow":      {R: 255, G: 255, A: 255},
	"transparent": {},
}

// ParseColor accepts #RGB, #RRGGBB, #AARRGGBB and a few color names.
// Eight-digit hex puts alpha first, the way the host platform writes it.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	a := uint8(255)
	if len(hex) == 8 {
		a = uint8(v >> 24)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: a}, nil
}

// FormatColor writes c as #RRGGBB, or #AARRGGBB when it is not opaque.
func FormatColor(c color.NRGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.A, c.R, c.G, c.B)
}
