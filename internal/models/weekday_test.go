package models

import (
	"reflect"
	"testing"
	"time"
)

func TestBitValues(t *testing.T) {
	tests := []struct {
		day  time.Weekday
		want WeekdayMask
	}{
		{time.Monday, 0b1000000},
		{time.Tuesday, 0b0100000},
		{time.Wednesday, 0b0010000},
		{time.Thursday, 0b0001000},
		{time.Friday, 0b0000100},
		{time.Saturday, 0b0000010},
		{time.Sunday, 0b0000001},
	}

	for _, tt := range tests {
		if got := Bit(tt.day); got != tt.want {
			t.Errorf("Bit(%s) = %07b, want %07b", tt.day, got, tt.want)
		}
	}
}

func TestToMaskEmpty(t *testing.T) {
	if got := ToMask(nil); got != 0 {
		t.Errorf("ToMask(nil) = %d, want 0", got)
	}
	if got := ToMask([]time.Weekday{}); got != 0 {
		t.Errorf("ToMask([]) = %d, want 0", got)
	}
	if !WeekdayMask(0).IsOneOff() {
		t.Error("zero mask should be one-off")
	}
}

func TestMaskRoundTripAllSubsets(t *testing.T) {
	for m := WeekdayMask(0); m <= AllDays; m++ {
		days := FromMask(m)
		if got := ToMask(days); got != m {
			t.Errorf("ToMask(FromMask(%07b)) = %07b", m, got)
		}
		// every subset built from weekdays survives the reverse trip too
		if again := FromMask(ToMask(days)); !reflect.DeepEqual(again, days) {
			t.Errorf("FromMask(ToMask(%v)) = %v", days, again)
		}
	}
}

func TestDaysCalendarOrderAndExtraBits(t *testing.T) {
	m := ToMask([]time.Weekday{time.Sunday, time.Wednesday, time.Monday}) | 0b10000000

	want := []time.Weekday{time.Monday, time.Wednesday, time.Sunday}
	if got := m.Days(); !reflect.DeepEqual(got, want) {
		t.Errorf("Days() = %v, want %v", got, want)
	}
	if !m.Contains(time.Wednesday) || m.Contains(time.Tuesday) {
		t.Errorf("Contains gave wrong answer for %07b", m)
	}
	if WeekdayMask(0b10000000).IsOneOff() != true {
		t.Error("a mask with only the unused bit is still one-off")
	}
}

func TestWeekdayMaskString(t *testing.T) {
	tests := []struct {
		mask WeekdayMask
		want string
	}{
		{0, "one-off"},
		{AllDays, "every day"},
		{ToMask([]time.Weekday{time.Monday, time.Wednesday}), "Mon,Wed"},
		{ToMask([]time.Weekday{time.Sunday}), "Sun"},
	}

	for _, tt := range tests {
		if got := tt.mask.String(); got != tt.want {
			t.Errorf("String(%07b) = %q, want %q", tt.mask, got, tt.want)
		}
	}
}

func TestParseWeekdays(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    WeekdayMask
		wantErr bool
	}{
		{"empty is one-off", "", 0, false},
		{"daily", "daily", AllDays, false},
		{"abbreviations", "mon,wed", 0b1010000, false},
		{"full names with spaces", "Monday, Friday", 0b1000100, false},
		{"numbers", "0,6", 0b0000011, false},
		{"duplicates", "mon,monday,1", 0b1000000, false},
		{"unknown name", "funday", 0, true},
		{"number out of range", "7", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWeekdays(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWeekdays(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseWeekdays(%q) = %07b, want %07b", tt.input, got, tt.want)
			}
		})
	}
}
