package cli

import (
	"testing"
	"time"
)

func TestParseTimeFlag(t *testing.T) {
	ts, err := parseTimeFlag("2024-03-01T12:00:00Z")
	if err != nil {
		t.Fatalf("rfc3339: %v", err)
	}
	if !ts.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time: %s", ts)
	}

	ts, err = parseTimeFlag("2024-03-01")
	if err != nil {
		t.Fatalf("date only: %v", err)
	}
	if !ts.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time: %s", ts)
	}

	if empty, err := parseTimeFlag(""); err != nil || empty != nil {
		t.Fatal("empty value must map to nil without error")
	}

	if _, err := parseTimeFlag("yesterday"); err == nil {
		t.Fatal("garbage input must be rejected")
	}
}
