package utils

import (
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		ok       bool
	}{
		{"accepts eight characters", "s3cret!!", true},
		{"accepts long password", strings.Repeat("a", 72), true},
		{"rejects short password", "short", false},
		{"rejects over bcrypt limit", strings.Repeat("a", 73), false},
	}

	for _, tc := range cases {
		ok, reason := ValidatePassword(tc.password)
		if ok != tc.ok {
			t.Errorf("%s: ValidatePassword(%q) = %v, want %v", tc.name, tc.password, ok, tc.ok)
		}
		if !ok && reason == "" {
			t.Errorf("%s: rejection carries no reason", tc.name)
		}
		if ok && reason != "" {
			t.Errorf("%s: accepted password carries reason %q", tc.name, reason)
		}
	}
}
