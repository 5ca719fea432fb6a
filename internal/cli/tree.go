package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/hyperair/imgpack/pkg/layout"
	"github.com/hyperair/imgpack/pkg/pipeline"
)

// treeCommand creates the tree command, which prints the rectangle tree of
// a collage.
func (c *CLI) treeCommand() *cobra.Command {
	var flags packFlags

	cmd := &cobra.Command{
		Use:   "tree [layout.json | manifest.toml | WxH[:label]...]",
		Short: "Print the rectangle tree of a collage",
		Long: `Print the rectangle tree of a collage.

The argument is either a layout written by 'pack -f json', or tiles to pack
first. Composites show their orientation (H places children side by side, V
stacks them); leaves show their size and how far they were scaled down.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := c.loadLayout(cmd.Context(), args, flags)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTree(l))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// loadLayout reads a stored layout, or packs the tiles named by args.
func (c *CLI) loadLayout(ctx context.Context, args []string, flags packFlags) (layout.Layout, error) {
	if len(args) == 1 && strings.EqualFold(filepath.Ext(args[0]), ".json") {
		return layout.ReadFile(args[0])
	}

	m, _, err := loadManifest(args)
	if err != nil {
		return layout.Layout{}, err
	}
	opts, err := flags.options()
	if err != nil {
		return layout.Layout{}, err
	}
	opts.Formats = []string{pipeline.FormatJSON}
	opts.Logger = c.Logger

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return layout.Layout{}, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, m, opts)
	if err != nil {
		return layout.Layout{}, err
	}
	return result.Layout, nil
}

var (
	styleTreeEnum      = lipgloss.NewStyle().Foreground(colorDim).MarginRight(1)
	styleTreeComposite = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleTreeShrunk    = lipgloss.NewStyle().Foreground(colorYellow)
)

// renderTree draws l's rectangle tree with one line per node.
func renderTree(l layout.Layout) string {
	if l.Tree == nil {
		return StyleDim.Render("(empty)")
	}
	t := buildTree(l, l.Tree).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(styleTreeEnum)
	return t.String()
}

func buildTree(l layout.Layout, n *layout.Node) *tree.Tree {
	t := tree.Root(nodeLine(l, n))
	for _, child := range n.Children {
		if child.IsLeaf() {
			t.Child(nodeLine(l, child))
		} else {
			t.Child(buildTree(l, child))
		}
	}
	return t
}

func nodeLine(l layout.Layout, n *layout.Node) string {
	size := StyleDim.Render(formatSize(n.Width, n.Height))
	if !n.IsLeaf() {
		kind := "V"
		if n.Kind == layout.KindHorizontal {
			kind = "H"
		}
		return styleTreeComposite.Render(kind) + " " + size
	}

	line := StyleValue.Render(n.ID) + " " + size
	if n.Label != "" && n.Label != n.ID {
		line += " " + StyleDim.Render(n.Label)
	}
	if tile, ok := l.Tile(n.ID); ok {
		if s := tile.Scale(); s < 1-1e-9 {
			line += " " + styleTreeShrunk.Render(fmt.Sprintf("%.0f%%", s*100))
		}
	}
	return line
}

func formatSize(w, h float64) string {
	return fmt.Sprintf("%sx%s", trimFloat(w), trimFloat(h))
}

func trimFloat(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", v), "0"), ".")
}
