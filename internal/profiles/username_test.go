package profiles

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		ok     bool
		reason string
	}{
		{name: "valid", input: "ada_lovelace", ok: true},
		{name: "digits", input: "dev2026", ok: true},
		{name: "too short", input: "ab", reason: "between 3 and 30"},
		{name: "too long", input: strings.Repeat("a", 31), reason: "between 3 and 30"},
		{name: "hyphen", input: "ada-l", reason: "lowercase letters"},
		{name: "space", input: "ada l", reason: "lowercase letters"},
		{name: "reserved", input: "admin", reason: "reserved"},
		{name: "empty", input: "", reason: "required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateUsername(tc.input)
			if tc.ok {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.reason) {
				t.Fatalf("expected reason %q in %q", tc.reason, err.Error())
			}
		})
	}
}

func TestNormalizeUsername(t *testing.T) {
	if got := NormalizeUsername("  Ada_Lovelace "); got != "ada_lovelace" {
		t.Fatalf("unexpected normalized username %q", got)
	}
}
