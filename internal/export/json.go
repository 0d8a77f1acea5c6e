package export

import (
	"encoding/json"
	"fmt"
	"io"

	"InkBoard/internal/state"
)

// WriteJSON saves records as an indented JSON array.
func WriteJSON(w io.Writer, records []state.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal strokes: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write strokes: %w", err)
	}
	return nil
}

// ReadJSON reads a stroke list written by WriteJSON. Every record is checked
// so a bad file is rejected before anything is loaded.
func ReadJSON(r io.Reader) ([]state.Record, error) {
	var records []state.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("parse strokes: %w", err)
	}
	for i, rec := range records {
		if _, err := state.FromRecord(rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return records, nil
}
