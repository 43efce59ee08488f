package cli

import "testing"

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"mean", "mean"},
		{"between(1,5)", "'between(1,5)'"},
		{"it's", `'it'\''s'`},
		{"", "''"},
	}
	for _, tt := range tests {
		if got := shellQuote(tt.in); got != tt.want {
			t.Errorf("shellQuote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
