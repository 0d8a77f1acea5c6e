// Package config reads the board settings file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"InkBoard/internal/engine"
	"InkBoard/internal/state"
)

// DefaultPath is read when no -config flag is given. A missing default file
// is not an error.
const DefaultPath = "inkboard.toml"

// ErrBadColor is wrapped by errors about unreadable color values.
var ErrBadColor = state.ErrBadColor

// File mirrors inkboard.toml.
type File struct {
	Board   Board   `toml:"board"`
	Predict Predict `toml:"predict"`
	Erase   Erase   `toml:"erase"`
	Net     Net     `toml:"net"`
}

type Board struct {
	Tool            string  `toml:"tool"`
	ThicknessFactor float64 `toml:"thickness_factor"`
	StrokeColor     string  `toml:"stroke_color"`
	BackgroundColor string  `toml:"background_color"`
	SelectionMargin float64 `toml:"selection_margin"`
	MaxStrokes      int     `toml:"max_strokes"`
	Width           int     `toml:"width"`
	Height          int     `toml:"height"`
}

type Predict struct {
	Multiplier float64 `toml:"multiplier"`
	AfterN     int     `toml:"after_n_points"`
	// Color is optional; empty draws the predicted segment in the stroke
	// color.
	Color string `toml:"color"`
}

type Erase struct {
	Radius  float64  `toml:"radius"`
	Delay   Duration `toml:"delay"`
	MaxWait Duration `toml:"max_wait"`
}

type Net struct {
	Port      int    `toml:"port"`
	Advertise bool   `toml:"advertise"`
	Name      string `toml:"name"`
}

// Duration reads TOML strings such as "16ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func Default() File {
	o := engine.DefaultOptions()
	return File{
		Board: Board{
			Tool:            o.Tool.String(),
			ThicknessFactor: o.ThicknessFactor,
			StrokeColor:     state.FormatColor(o.StrokeColor),
			BackgroundColor: state.FormatColor(o.BackgroundColor),
			SelectionMargin: o.SelectionMargin,
			MaxStrokes:      o.MaxStrokes,
			Width:           1000,
			Height:          700,
		},
		Predict: Predict{
			Multiplier: 3,
			AfterN:     o.PredictAfterNPoints,
		},
		Erase: Erase{
			Radius:  o.EraserRadius,
			Delay:   Duration{o.EraseDelay},
			MaxWait: Duration{o.EraseMaxWait},
		},
		Net: Net{
			Port:      8888,
			Advertise: true,
			Name:      "InkBoard",
		},
	}
}

// Load reads path over the defaults. A missing file is only an error when
// it is not DefaultPath.
func Load(path string) (File, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) && path == DefaultPath {
		return Default(), nil
	}
	if err != nil {
		return File{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	cfg, err := Decode(f)
	if err != nil {
		return File{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads TOML from r over the defaults and validates the result.
// Unknown keys are rejected so typos do not go unnoticed.
func Decode(r io.Reader) (File, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return File{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return File{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return File{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be used.
func (c File) Validate() error {
	if _, err := engine.ParseTool(c.Board.Tool); err != nil {
		return fmt.Errorf("board.tool: %w", err)
	}
	if _, err := state.ParseColor(c.Board.StrokeColor); err != nil {
		return fmt.Errorf("board.stroke_color: %w", err)
	}
	if _, err := state.ParseColor(c.Board.BackgroundColor); err != nil {
		return fmt.Errorf("board.background_color: %w", err)
	}
	if c.Predict.Color != "" {
		if _, err := state.ParseColor(c.Predict.Color); err != nil {
			return fmt.Errorf("predict.color: %w", err)
		}
	}
	switch {
	case c.Board.ThicknessFactor < 0:
		return fmt.Errorf("board.thickness_factor: must not be negative, got %g", c.Board.ThicknessFactor)
	case c.Board.SelectionMargin < 0:
		return fmt.Errorf("board.selection_margin: must not be negative, got %g", c.Board.SelectionMargin)
	case c.Predict.Multiplier < 0:
		return fmt.Errorf("predict.multiplier: must not be negative, got %g", c.Predict.Multiplier)
	case c.Predict.AfterN < 1:
		return fmt.Errorf("predict.after_n_points: must be positive, got %d", c.Predict.AfterN)
	case c.Erase.Radius <= 0:
		return fmt.Errorf("erase.radius: must be positive, got %g", c.Erase.Radius)
	case c.Erase.Delay.Duration <= 0:
		return fmt.Errorf("erase.delay: must be positive, got %s", c.Erase.Delay)
	case c.Net.Port <= 0 || c.Net.Port > 65535:
		return fmt.Errorf("net.port: out of range: %d", c.Net.Port)
	}
	return nil
}

// Options converts the board settings for engine.New. It expects a
// validated File.
func (c File) Options() (engine.Options, error) {
	o := engine.DefaultOptions()
	var err error
	if o.Tool, err = engine.ParseTool(c.Board.Tool); err != nil {
		return o, err
	}
	if o.StrokeColor, err = state.ParseColor(c.Board.StrokeColor); err != nil {
		return o, fmt.Errorf("board.stroke_color: %w", err)
	}
	if o.BackgroundColor, err = state.ParseColor(c.Board.BackgroundColor); err != nil {
		return o, fmt.Errorf("board.background_color: %w", err)
	}
	if c.Predict.Color != "" {
		pc, err := state.ParseColor(c.Predict.Color)
		if err != nil {
			return o, fmt.Errorf("predict.color: %w", err)
		}
		o.PredictedStrokeColor = &pc
	}
	o.ThicknessFactor = c.Board.ThicknessFactor
	o.SelectionMargin = c.Board.SelectionMargin
	o.MaxStrokes = c.Board.MaxStrokes
	o.PredictionMultiplier = c.Predict.Multiplier
	o.PredictAfterNPoints = c.Predict.AfterN
	o.EraserRadius = c.Erase.Radius
	o.EraseDelay = c.Erase.Delay.Duration
	o.EraseMaxWait = c.Erase.MaxWait.Duration
	return o, nil
}
