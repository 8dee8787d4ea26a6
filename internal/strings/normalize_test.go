package strings

import "testing"

func TestNormalizeLowerTrimSpace(t *testing.T) {
	if got := NormalizeLowerTrimSpace("  URGENT "); got != "urgent" {
		t.Errorf("expected %q, got %q", "urgent", got)
	}
}

func TestNormalizeNewlines(t *testing.T) {
	if got := NormalizeNewlines("a\r\nb\rc"); got != "a\nb\nc" {
		t.Errorf("expected %q, got %q", "a\nb\nc", got)
	}
}

func TestTrimTrailingNewlines(t *testing.T) {
	if got := TrimTrailingNewlines("text\r\n\n"); got != "text" {
		t.Errorf("expected %q, got %q", "text", got)
	}
}

func TestTrimTrailingSlash(t *testing.T) {
	if got := TrimTrailingSlash("https://example.com//"); got != "https://example.com" {
		t.Errorf("expected base url without slash, got %q", got)
	}
}
