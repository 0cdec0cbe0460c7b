package errors

import (
	"fmt"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      fmt.Errorf("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "wrapped kind",
			err:      fmt.Errorf("tracker abc: %w", ErrNotFound),
			expected: "Error: tracker abc: not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.err); got != tt.expected {
				t.Errorf("Format() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("tracker %q not found", "Read")
	want := `Error: tracker "Read" not found`
	if got != want {
		t.Errorf("Formatf() = %q, want %q", got, want)
	}
}

func TestIsMatchesWrappedKinds(t *testing.T) {
	kinds := []error{ErrNotFound, ErrConversion, ErrRange, ErrFutureDate, ErrValidation, ErrReserved}
	for _, kind := range kinds {
		wrapped := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", kind))
		if !Is(wrapped, kind) {
			t.Errorf("Is(%v, %v) = false, want true", wrapped, kind)
		}
	}
	if Is(fmt.Errorf("plain"), ErrNotFound) {
		t.Error("unrelated error should not match ErrNotFound")
	}
}
