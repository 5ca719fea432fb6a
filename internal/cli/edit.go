package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/hyperair/imgpack/pkg/core/rect"
	"github.com/hyperair/imgpack/pkg/layout"
	"github.com/hyperair/imgpack/pkg/manifest"
	"github.com/hyperair/imgpack/pkg/pipeline"
)

// editCommand creates the interactive edit command.
func (c *CLI) editCommand() *cobra.Command {
	var (
		flags  packFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "edit [manifest.toml | WxH[:label]...]",
		Short: "Rearrange a packed collage interactively",
		Long: `Rearrange a packed collage interactively.

Pick a tile, then drop it next to another tile on one of its four sides.
Every drop is recorded as a move; saving writes the moves back into the
manifest so 'pack' reproduces the edited collage.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context(), args, flags, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "manifest to write (default: the input manifest)")

	return cmd
}

func (c *CLI) runEdit(ctx context.Context, args []string, flags packFlags, output string) error {
	m, input, err := loadManifest(args)
	if err != nil {
		return err
	}
	if output == "" {
		output = input
	}
	if output == "" {
		return fmt.Errorf("tiles given as sizes: pass --output to choose where the manifest is saved")
	}

	opts, err := flags.options()
	if err != nil {
		return err
	}
	opts.Logger = c.Logger

	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	tree, _, err := runner.Pack(ctx, m, opts)
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(NewEditModel(ctx, tree), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("run editor: %w", err)
	}

	em := final.(EditModel)
	if !em.Save {
		if len(em.Moves) > 0 {
			printWarning("Discarded %d unsaved moves", len(em.Moves))
		}
		return nil
	}

	data, err := editedManifest(m, em.Moves).Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", output, err)
	}
	printSuccess("Saved %d moves", len(em.Moves))
	printFile(output)
	printNextStep("Render", appName+" pack "+output)
	return nil
}

// editedManifest is m with moves appended after the ones it already had.
func editedManifest(m *manifest.Manifest, moves []manifest.Move) *manifest.Manifest {
	out := *m
	out.Tiles = slices.Clone(m.Tiles)
	out.Moves = append(slices.Clone(m.Moves), moves...)
	return &out
}

// =============================================================================
// EditModel - Interactive tile rearrangement
// =============================================================================

var (
	editSourceStyle = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	editErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// dropKeys maps keys to the side of the cursor tile the picked tile lands on.
var dropKeys = map[string]rect.Side{
	"h": rect.Left,
	"j": rect.Bottom,
	"k": rect.Top,
	"l": rect.Right,
}

// EditModel is the bubbletea model for interactive editing. It mutates Tree
// in place and records every successful drop in Moves.
type EditModel struct {
	Tree   *rect.Tree
	Layout layout.Layout
	Cursor int

	// Source is the id of the picked tile, empty when none is picked.
	Source string
	Moves  []manifest.Move

	// Save is set when the user chose to write the moves.
	Save bool

	Status string
	Err    error

	ctx context.Context
}

// NewEditModel creates an edit model over tree.
func NewEditModel(ctx context.Context, tree *rect.Tree) EditModel {
	return EditModel{
		Tree:   tree,
		Layout: layout.Build(tree.Root()),
		ctx:    ctx,
	}
}

func (m EditModel) Init() tea.Cmd {
	return nil
}

func (m EditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch k := key.String(); k {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "w":
		m.Save = true
		return m, tea.Quit
	case "up", "shift+tab":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "tab":
		if m.Cursor < len(m.Layout.Tiles)-1 {
			m.Cursor++
		}
	case "esc":
		m.Source = ""
		m.Status, m.Err = "", nil
	case "enter", " ":
		id := m.current().ID
		if m.Source == id {
			m.Source = ""
		} else {
			m.Source = id
			m.Status, m.Err = "picked "+id, nil
		}
	default:
		if side, ok := dropKeys[k]; ok {
			m = m.drop(side)
		}
	}
	return m, nil
}

func (m EditModel) current() layout.Tile {
	return m.Layout.Tiles[m.Cursor]
}

// drop moves the picked tile next to the cursor tile.
func (m EditModel) drop(side rect.Side) EditModel {
	if m.Source == "" {
		m.Status, m.Err = "", fmt.Errorf("pick a tile first")
		return m
	}
	target := m.current().ID
	mv := manifest.Move{Tile: m.Source, Target: target, Side: side.String()}
	if _, err := pipeline.ApplyMoves(m.ctx, m.Tree, []manifest.Move{mv}); err != nil {
		m.Status, m.Err = "", err
		return m
	}

	m.Moves = append(m.Moves, mv)
	m.Layout = layout.Build(m.Tree.Root())
	m.Status, m.Err = fmt.Sprintf("moved %s %s of %s", mv.Tile, side, target), nil
	m.Source = ""
	for i, t := range m.Layout.Tiles {
		if t.ID == mv.Tile {
			m.Cursor = i
			break
		}
	}
	return m
}

func (m EditModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Edit Collage"))
	b.WriteString("\n")
	if m.Source == "" {
		b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ pick  w save  q quit"))
	} else {
		b.WriteString(listDimStyle.Render("↑/↓ target  h/j/k/l drop left/below/above/right  esc cancel"))
	}
	b.WriteString("\n\n")

	rows := make([][]string, len(m.Layout.Tiles))
	for i, t := range m.Layout.Tiles {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows[i] = []string{cursor, t.ID, t.Label, formatSize(t.Width, t.Height), fmt.Sprintf("%.0f%%", t.Scale()*100), t.Path}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Tile", "Label", "Size", "Scale", "Path").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case row >= len(m.Layout.Tiles):
				return lipgloss.NewStyle()
			case m.Layout.Tiles[row].ID == m.Source:
				return editSourceStyle
			case row == m.Cursor:
				return listSelectedStyle
			}
			return listNormalStyle
		})

	b.WriteString(tbl.Render())
	b.WriteString("\n\n")
	b.WriteString(renderTree(m.Layout))
	b.WriteString("\n\n")

	switch {
	case m.Err != nil:
		b.WriteString(editErrorStyle.Render(m.Err.Error()))
	case m.Status != "" && m.Source != "":
		b.WriteString(StyleHighlight.Render(m.Status))
	case m.Status != "":
		b.WriteString(StyleSuccess.Render(m.Status))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d moves · %s", len(m.Moves), formatSize(m.Layout.Width, m.Layout.Height))))

	return b.String()
}

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)
