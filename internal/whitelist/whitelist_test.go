package whitelist

import (
	"testing"

	"go.uber.org/zap"
)

func TestIsWhitelisted(t *testing.T) {
	checker := NewChecker([]string{"Example.COM ", "trusted.org"}, zap.NewNop())

	tests := []struct {
		from string
		want bool
	}{
		{"alice@example.com", true},
		{"bob@EXAMPLE.COM", true},
		{"carol@trusted.org", true},
		{"dave@evil.test", false},
		{"not-an-address", false},
		{"two@at@signs.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := checker.IsWhitelisted(tt.from); got != tt.want {
			t.Errorf("IsWhitelisted(%q) = %v, want %v", tt.from, got, tt.want)
		}
	}
}

func TestEmptyWhitelist(t *testing.T) {
	checker := NewChecker(nil, zap.NewNop())
	if checker.IsWhitelisted("alice@example.com") {
		t.Error("empty whitelist should not match anything")
	}
}
