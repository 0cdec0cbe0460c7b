package utils

import "testing"

func TestContainsFold(t *testing.T) {
	tests := []struct {
		s, substr string
		want      bool
	}{
		{"Morning Run", "", true},
		{"Morning Run", "run", true},
		{"Morning Run", "RUN", true},
		{"Café visit", "cafe", true},
		{"CAFE visit", "café", true},
		{"Read", "write", false},
	}

	for _, tt := range tests {
		if got := ContainsFold(tt.s, tt.substr); got != tt.want {
			t.Errorf("ContainsFold(%q, %q) = %v, want %v", tt.s, tt.substr, got, tt.want)
		}
	}
}
