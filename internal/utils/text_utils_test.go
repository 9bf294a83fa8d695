package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	t.Run("short text untouched", func(t *testing.T) {
		if got := tp.TruncateText("hello", 100); got != "hello" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("zero max size disables truncation", func(t *testing.T) {
		long := strings.Repeat("a", 10000)
		if got := tp.TruncateText(long, 0); got != long {
			t.Errorf("text was modified")
		}
	})

	t.Run("long text truncated with marker", func(t *testing.T) {
		got := tp.TruncateText(strings.Repeat("a", 200), 50)
		if !strings.HasSuffix(got, "[... Content truncated due to size limits ...]") {
			t.Errorf("missing truncation marker: %q", got)
		}
		if !strings.HasPrefix(got, strings.Repeat("a", 50)) {
			t.Errorf("unexpected prefix: %q", got)
		}
	})

	t.Run("multibyte rune not split", func(t *testing.T) {
		// 4 a's then a 3-byte rune; cutting at 6 lands mid-rune.
		text := "aaaa日zzz"
		got := tp.TruncateText(text, 6)
		if !utf8.ValidString(got) {
			t.Errorf("result is not valid UTF-8: %q", got)
		}
	})
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	t.Run("valid text untouched", func(t *testing.T) {
		if got := tp.SanitizeUTF8("héllo 日"); got != "héllo 日" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("invalid bytes removed", func(t *testing.T) {
		got := tp.SanitizeUTF8("he\xffllo")
		if got != "hello" {
			t.Errorf("got %q", got)
		}
	})
}

func TestProcessText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	got := tp.ProcessText("ab\xffcd"+strings.Repeat("x", 100), 20)
	if !utf8.ValidString(got) {
		t.Errorf("result is not valid UTF-8: %q", got)
	}
	if !strings.Contains(got, "truncated") {
		t.Errorf("missing truncation marker: %q", got)
	}
}
