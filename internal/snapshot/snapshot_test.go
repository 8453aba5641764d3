package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func f(v float64) *float64 { return &v }

func TestRoundTripPreservesNulls(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "btc.json")

	records := []Record{
		{
			Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Close:     42000.5,
			Indicators: map[string]*float64{
				"SMA_20": nil,
				"RSI_14": nil,
			},
		},
		{
			Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Open:      f(42000.5),
			High:      f(43100),
			Low:       f(41800),
			Close:     43000,
			Volume:    f(1234.5),
			Indicators: map[string]*float64{
				"SMA_20": f(42500.25),
				"RSI_14": nil,
			},
		},
	}

	if err := Write(path, records); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("want 2 records, got %d", len(loaded))
	}

	first := loaded[0]
	if !first.Timestamp.Equal(records[0].Timestamp) || first.Close != records[0].Close {
		t.Fatalf("first record mismatch: %+v", first)
	}
	if first.Open != nil || first.High != nil || first.Low != nil || first.Volume != nil {
		t.Fatal("nulls in OHLCV columns must be preserved")
	}
	if v, ok := first.Indicators["SMA_20"]; !ok || v != nil {
		t.Fatal("null indicator column must round-trip as nil")
	}

	second := loaded[1]
	if second.Open == nil || *second.Open != 42000.5 {
		t.Fatal("defined open must round-trip")
	}
	if v := second.Indicators["SMA_20"]; v == nil || *v != 42500.25 {
		t.Fatal("defined indicator column must round-trip")
	}
	if v, ok := second.Indicators["RSI_14"]; !ok || v != nil {
		t.Fatal("null indicator next to a defined one must stay nil")
	}
}

func TestLoadSniffsPairFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pairs.json")
	payload := `[
		["2024-01-02T00:00:00Z", 43000.0],
		["2024-01-01T00:00:00Z", 42000.5]
	]`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	records, err := Load(path)
	if err != nil {
		t.Fatalf("load pair snapshot: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("want 2 records, got %d", len(records))
	}
	if !records[0].Timestamp.Before(records[1].Timestamp) {
		t.Fatal("records should be sorted ascending by time")
	}
	if records[0].Close != 42000.5 {
		t.Fatalf("unexpected close after sort: %f", records[0].Close)
	}
	if records[0].Open != nil || records[0].Volume != nil {
		t.Fatal("pair format is close-only; other columns must be nil")
	}
}

func TestLoadSniffsEpochMillisPairs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pairs_ms.json")
	payload := `[[1700000000000, 35000.5]]`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	records, err := Load(path)
	if err != nil {
		t.Fatalf("load pair snapshot: %v", err)
	}
	if !records[0].Timestamp.Equal(time.UnixMilli(1700000000000).UTC()) {
		t.Fatalf("unexpected timestamp: %s", records[0].Timestamp)
	}
}

func TestLoadRejectsEmptyAndMalformed(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte(`[]`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(empty); err == nil {
		t.Fatal("empty snapshot should return an error")
	}

	malformed := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(malformed, []byte(`[{"open": 1}]`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(malformed); err == nil {
		t.Fatal("record without timestamp should return an error")
	}
}
