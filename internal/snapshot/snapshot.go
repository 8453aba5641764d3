package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Record is one wide-format row: OHLCV plus inline indicator columns.
// Nil marks a null in the file, which is preserved exactly on round-trip.
type Record struct {
	Timestamp  time.Time
	Open       *float64
	High       *float64
	Low        *float64
	Close      float64
	Volume     *float64
	Indicators map[string]*float64
}

var baseKeys = map[string]bool{
	"timestamp": true,
	"open":      true,
	"high":      true,
	"low":       true,
	"close":     true,
	"volume":    true,
}

// MarshalJSON inlines the indicator columns next to the OHLCV fields.
func (r Record) MarshalJSON() ([]byte, error) {
	obj := map[string]any{
		"timestamp": r.Timestamp.UTC().Format(time.RFC3339),
		"open":      r.Open,
		"high":      r.High,
		"low":       r.Low,
		"close":     r.Close,
		"volume":    r.Volume,
	}
	for name, value := range r.Indicators {
		obj[name] = value
	}
	return json.Marshal(obj)
}

// UnmarshalJSON splits OHLCV fields from inline indicator columns.
func (r *Record) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	rawTS, ok := obj["timestamp"]
	if !ok {
		return errors.New("record is missing timestamp")
	}
	var tsStr string
	if err := json.Unmarshal(rawTS, &tsStr); err != nil {
		return fmt.Errorf("parse timestamp: %w", err)
	}
	ts, err := time.Parse(time.RFC3339, tsStr)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", tsStr, err)
	}
	r.Timestamp = ts.UTC()

	rawClose, ok := obj["close"]
	if !ok {
		return errors.New("record is missing close")
	}
	if err := json.Unmarshal(rawClose, &r.Close); err != nil {
		return fmt.Errorf("parse close: %w", err)
	}

	optional := func(key string) (*float64, error) {
		raw, ok := obj[key]
		if !ok {
			return nil, nil
		}
		var value *float64
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("parse %s: %w", key, err)
		}
		return value, nil
	}

	if r.Open, err = optional("open"); err != nil {
		return err
	}
	if r.High, err = optional("high"); err != nil {
		return err
	}
	if r.Low, err = optional("low"); err != nil {
		return err
	}
	if r.Volume, err = optional("volume"); err != nil {
		return err
	}

	r.Indicators = make(map[string]*float64)
	for key, raw := range obj {
		if baseKeys[key] {
			continue
		}
		var value *float64
		if err := json.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("parse indicator %s: %w", key, err)
		}
		r.Indicators[key] = value
	}
	return nil
}

// Load reads a snapshot file, sniffing between the close-only pair format
// ([[iso-or-ms-timestamp, price], ...]) and the wide record format. Records
// are returned sorted by time ascending.
func Load(path string) ([]Record, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("snapshot file contains no rows")
	}

	var records []Record
	if bytes.HasPrefix(bytes.TrimSpace(raw[0]), []byte("[")) {
		records, err = decodePairs(raw)
	} else {
		records, err = decodeRecords(raw)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Timestamp.Before(records[j].Timestamp) })
	return records, nil
}

func decodePairs(raw []json.RawMessage) ([]Record, error) {
	records := make([]Record, 0, len(raw))
	for i, row := range raw {
		var pair []json.RawMessage
		if err := json.Unmarshal(row, &pair); err != nil {
			return nil, fmt.Errorf("decode pair row %d: %w", i, err)
		}
		if len(pair) != 2 {
			return nil, fmt.Errorf("pair row %d has %d elements, want 2", i, len(pair))
		}

		ts, err := parsePairTimestamp(pair[0])
		if err != nil {
			return nil, fmt.Errorf("pair row %d: %w", i, err)
		}
		var price float64
		if err := json.Unmarshal(pair[1], &price); err != nil {
			return nil, fmt.Errorf("pair row %d: parse price: %w", i, err)
		}

		records = append(records, Record{Timestamp: ts, Close: price})
	}
	return records, nil
}

func parsePairTimestamp(raw json.RawMessage) (time.Time, error) {
	var iso string
	if err := json.Unmarshal(raw, &iso); err == nil {
		ts, err := time.Parse(time.RFC3339, iso)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse timestamp %q: %w", iso, err)
		}
		return ts.UTC(), nil
	}

	var ms int64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return time.Time{}, fmt.Errorf("timestamp is neither ISO string nor epoch millis: %s", raw)
	}
	return time.UnixMilli(ms).UTC(), nil
}

func decodeRecords(raw []json.RawMessage) ([]Record, error) {
	records := make([]Record, 0, len(raw))
	for i, row := range raw {
		var rec Record
		if err := json.Unmarshal(row, &rec); err != nil {
			return nil, fmt.Errorf("decode record row %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Write persists records as a wide-format JSON snapshot, creating parent
// directories as needed.
func Write(path string, records []Record) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
