package cli

import (
	"strings"
	"testing"

	"github.com/hyperair/imgpack/pkg/layout"
)

func TestRenderTree(t *testing.T) {
	l := layout.Build(packedTree(t).Root())
	out := renderTree(l)

	lines := strings.Split(out, "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want one per node (5):\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "H") {
		t.Errorf("root line = %q, want the horizontal root first", lines[0])
	}
	if !strings.Contains(lines[0], formatSize(l.Width, l.Height)) {
		t.Errorf("root line %q does not show the collage size", lines[0])
	}
	for _, id := range []string{"a", "b", "c"} {
		if !strings.Contains(out, id+" ") {
			t.Errorf("tree does not list tile %s:\n%s", id, out)
		}
	}
	if !strings.Contains(out, "%") {
		t.Errorf("tree does not mark shrunk tiles:\n%s", out)
	}
}

func TestRenderTreeEmpty(t *testing.T) {
	if out := renderTree(layout.Layout{}); !strings.Contains(out, "empty") {
		t.Errorf("renderTree(empty) = %q", out)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		w, h float64
		want string
	}{
		{96, 72, "96x72"},
		{100, 200, "100x200"},
		{120.5, 80.25, "120.5x80.2"},
		{0.04, 10, "0x10"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.w, tt.h); got != tt.want {
			t.Errorf("formatSize(%g, %g) = %q, want %q", tt.w, tt.h, got, tt.want)
		}
	}
}
