package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/hyperair/imgpack/pkg/layout"
)

const (
	strokeColor = "#333333"
	labelColor  = "#222222"
	minFontSize = 8.0
	maxFontSize = 28.0
)

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width  float64
	labels bool
	gap    float64
}

// WithWidth scales the drawing to w user units wide.
func WithWidth(w float64) SVGOption { return func(r *svgRenderer) { r.width = w } }

// WithLabels writes each tile's label (or id) and scale inside its box.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// WithGap insets every box by g/2 on each side.
func WithGap(g float64) SVGOption { return func(r *svgRenderer) { r.gap = g } }

// RenderSVG draws l as a wireframe: one box per tile, shaded by how far the
// tile was scaled down from its native size.
func RenderSVG(l layout.Layout, opts ...SVGOption) []byte {
	var r svgRenderer
	for _, opt := range opts {
		opt(&r)
	}
	if r.width > 0 {
		l = l.Scaled(r.width)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.Width, l.Height, l.Width, l.Height)
	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.2f" height="%.2f" fill="white"/>`+"\n", l.Width, l.Height)

	for _, t := range l.Tiles {
		renderTile(&buf, t, r)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderTile(buf *bytes.Buffer, t layout.Tile, r svgRenderer) {
	x, y, w, h := t.X+r.gap/2, t.Y+r.gap/2, t.Width-r.gap, t.Height-r.gap
	if w <= 0 || h <= 0 {
		return
	}

	fmt.Fprintf(buf, `  <g id="tile-%s">`+"\n", escapeXML(t.ID))
	fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="%s" stroke-width="1"/>`+"\n",
		x, y, w, h, fillFor(t.Scale()), strokeColor)
	fmt.Fprintf(buf, `    <title>%s</title>`+"\n", escapeXML(tooltip(t)))

	if r.labels {
		size := clamp(h/8, minFontSize, maxFontSize)
		name := t.Label
		if name == "" {
			name = t.ID
		}
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%.1f" fill="%s" text-anchor="middle">%s</text>`+"\n",
			x+w/2, y+h/2, size, labelColor, escapeXML(truncate(name, w, size)))
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%.1f" fill="%s" text-anchor="middle">%.0f%%</text>`+"\n",
			x+w/2, y+h/2+size*1.2, size*0.8, labelColor, t.Scale()*100)
	}
	buf.WriteString("  </g>\n")
}

func tooltip(t layout.Tile) string {
	s := fmt.Sprintf("%s %.0fx%.0f of %.0fx%.0f", t.ID, t.Width, t.Height, t.NativeWidth, t.NativeHeight)
	if t.Label != "" {
		s = t.Label + ": " + s
	}
	return s
}

// fillFor maps a scale in (0, 1] to a grey: native-size tiles are lightest.
func fillFor(scale float64) string {
	v := int(160 + 90*clamp(scale, 0, 1))
	return fmt.Sprintf("#%02x%02x%02x", v, v, v)
}

func truncate(label string, width, fontSize float64) string {
	maxChars := int(width / (fontSize * 0.6))
	if maxChars < 3 {
		maxChars = 3
	}
	if len(label) <= maxChars {
		return label
	}
	return label[:maxChars-2] + ".."
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
