package markdown

import (
	"strings"
	"testing"
)

func TestRenderEmptyInput(t *testing.T) {
	if out := Render(80, 0, nil); out != nil {
		t.Errorf("expected nil for empty input, got %q", out)
	}
	if out := Render(80, 0, []byte("   \n\n")); out != nil {
		t.Errorf("expected nil for blank input, got %q", out)
	}
}

func TestRenderPlainParagraph(t *testing.T) {
	out := Render(80, 0, []byte("Call the landlord about the lease."))
	if len(out) == 0 {
		t.Fatal("expected rendered output")
	}
	if !strings.Contains(string(out), "Call the landlord") {
		t.Errorf("expected the text to survive rendering, got %q", out)
	}
	if strings.HasSuffix(string(out), "\n") {
		t.Error("expected trailing newlines trimmed")
	}
}

func TestRenderIndent(t *testing.T) {
	out := Render(80, 4, []byte("indented"))
	if len(out) == 0 {
		t.Fatal("expected rendered output")
	}
	for _, line := range strings.Split(string(out), "\n") {
		if line != "" && !strings.HasPrefix(line, "    ") {
			t.Errorf("expected every line indented, got %q", line)
		}
	}
}

func TestRenderNarrowWidth(t *testing.T) {
	// Degenerate widths must not panic or return garbage.
	if out := Render(0, 0, []byte("text")); len(out) == 0 {
		t.Error("expected output at clamped width")
	}
}
