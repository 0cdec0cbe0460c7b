package utils

import (
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{"empty string", "", false},
		{"Local", "Local", false},
		{"UTC", "UTC", false},
		{"America/New_York", "America/New_York", false},
		{"invalid", "Invalid/Zone", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation(%q) error = %v, wantErr %v", tt.timezone, err, tt.wantErr)
			}
		})
	}
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("test", -5*3600)
	in := time.Date(2024, 1, 10, 23, 59, 59, 999, loc)
	got := StartOfDay(in)

	want := time.Date(2024, 1, 10, 0, 0, 0, 0, loc)
	if !got.Equal(want) || got.Location() != loc {
		t.Errorf("StartOfDay() = %v, want %v", got, want)
	}
}

func TestSameDay(t *testing.T) {
	utc := time.UTC
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}

	a := time.Date(2024, 1, 11, 2, 0, 0, 0, utc) // Jan 10 21:00 in New York
	b := time.Date(2024, 1, 10, 12, 0, 0, 0, utc)

	if SameDay(a, b, utc) {
		t.Error("different UTC days reported equal")
	}
	if !SameDay(a, b, ny) {
		t.Error("same New York day reported different")
	}
}

func TestParseDateInLocation(t *testing.T) {
	got, err := ParseDateInLocation("2024-01-10", time.UTC)
	if err != nil {
		t.Fatalf("ParseDateInLocation failed: %v", err)
	}
	if DayKey(got) != "2024-01-10" || got.Hour() != 0 {
		t.Errorf("unexpected date: %v", got)
	}

	if _, err := ParseDateInLocation("10/01/2024", time.UTC); err == nil {
		t.Error("expected error for malformed date")
	}
}
