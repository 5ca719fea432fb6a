package treeviz

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/hyperair/imgpack/pkg/layout"
)

// Options configures tree rendering.
type Options struct {
	// Detailed adds sizes and labels to every node. When false, leaves
	// show only their id and composites only "H" or "V".
	Detailed bool
}

// ToDOT converts a layout tree to Graphviz DOT. Nodes are named by their
// child-index path ("n" for the root, "n0", "n01", ...).
func ToDOT(root *layout.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.05\"];\n")
	buf.WriteString("  ordering=out;\n")
	buf.WriteString("\n")

	if root != nil {
		writeNode(&buf, root, "n", opts)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, n *layout.Node, name string, opts Options) {
	fmt.Fprintf(buf, "  %s [%s];\n", name, strings.Join(fmtAttrs(n, opts), ", "))
	for i, c := range n.Children {
		child := name + strconv.Itoa(i)
		writeNode(buf, c, child, opts)
		fmt.Fprintf(buf, "  %s -> %s;\n", name, child)
	}
}

func fmtLabel(n *layout.Node, detailed bool) string {
	var head string
	switch n.Kind {
	case layout.KindHorizontal:
		head = "H"
	case layout.KindVertical:
		head = "V"
	default:
		head = n.ID
	}
	if !detailed {
		return head
	}

	parts := []string{head, fmt.Sprintf("%.0fx%.0f", n.Width, n.Height)}
	if n.Label != "" {
		parts = append(parts, n.Label)
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *layout.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
	if n.IsLeaf() {
		attrs = append(attrs, "style=\"rounded,filled\"", "fillcolor=lightyellow")
	} else {
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// viewBox starts at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
