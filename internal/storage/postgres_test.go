package storage

import (
	"testing"

	"github.com/xaenox/sms-sentinel/internal/models"
)

func TestVerdictStrNormalizes(t *testing.T) {
	tests := []struct {
		name string
		in   models.Verdict
		want string
	}{
		{"true", models.VerdictTrue, "true"},
		{"false", models.VerdictFalse, "false"},
		{"unknown", models.VerdictUnknown, "unknown"},
		{"zero value", models.Verdict(""), "unknown"},
		{"junk", models.Verdict("maybe"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := verdictStr(tt.in); got != tt.want {
				t.Fatalf("verdictStr(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
