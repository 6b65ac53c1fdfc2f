package game

import (
	"errors"
	"testing"

	"github.com/questline/treasurehunt/internal/hunt"
)

func TestNormalizeJoinCode(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"abc123", "ABC123", false},
		{"  QWERTY ", "QWERTY", false},
		{"short", "", true},
		{"toolong1", "", true},
		{"ab c12", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := normalizeJoinCode(tt.in)
		if tt.wantErr {
			var verr *hunt.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("normalizeJoinCode(%q) err = %v, want ValidationError", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("normalizeJoinCode(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("normalizeJoinCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePlayerName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"alice", "alice", false},
		{" Bob the 2nd ", "Bob the 2nd", false},
		{"x", "", true},
		{"name!with?symbols", "", true},
		{"aaaaaaaaaaaaaaaaaaaaa", "", true}, // 21 chars
	}

	for _, tt := range tests {
		got, err := normalizePlayerName(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("normalizePlayerName(%q) = %q, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("normalizePlayerName(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("normalizePlayerName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
