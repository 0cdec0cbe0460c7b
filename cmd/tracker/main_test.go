package main

import "testing"

func TestTopLevel(t *testing.T) {
	tests := map[string]string{
		"tui":                             "tui",
		"backup restore <backup>":         "backup",
		"keyring set <connection-string>": "keyring",
		"":                                "",
	}
	for in, want := range tests {
		if got := topLevel(in); got != want {
			t.Errorf("topLevel(%q) = %q, want %q", in, got, want)
		}
	}
}
