package cli

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/hyperair/imgpack/pkg/core/rect"
	"github.com/hyperair/imgpack/pkg/manifest"
	"github.com/hyperair/imgpack/pkg/pipeline"
)

func testManifest() *manifest.Manifest {
	return &manifest.Manifest{
		Tiles: []manifest.Tile{
			{ID: "a", Width: 400, Height: 300},
			{ID: "b", Width: 300, Height: 400},
			{ID: "c", Width: 200, Height: 200},
		},
	}
}

func packedTree(t *testing.T) *rect.Tree {
	t.Helper()
	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	tree, _, err := runner.Pack(context.Background(), testManifest(), pipeline.Options{})
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	return tree
}

func press(m EditModel, keys ...tea.KeyMsg) EditModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(EditModel)
	}
	return m
}

func runeKey(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestEditModelNavigation(t *testing.T) {
	m := NewEditModel(context.Background(), packedTree(t))

	m = press(m, keyUp)
	if m.Cursor != 0 {
		t.Errorf("cursor moved above the first tile: %d", m.Cursor)
	}
	m = press(m, keyDown, keyDown, keyDown, keyDown)
	if want := len(m.Layout.Tiles) - 1; m.Cursor != want {
		t.Errorf("cursor = %d, want it clamped at %d", m.Cursor, want)
	}
}

func TestEditModelPickAndCancel(t *testing.T) {
	m := NewEditModel(context.Background(), packedTree(t))
	first := m.Layout.Tiles[0].ID

	m = press(m, keyEnter)
	if m.Source != first {
		t.Fatalf("Source = %q, want %q", m.Source, first)
	}
	m = press(m, keyEsc)
	if m.Source != "" {
		t.Errorf("Source = %q after esc, want none", m.Source)
	}
	m = press(m, keyEnter, keyEnter)
	if m.Source != "" {
		t.Errorf("picking the same tile twice should unpick it, Source = %q", m.Source)
	}
}

func TestEditModelDrop(t *testing.T) {
	m := NewEditModel(context.Background(), packedTree(t))

	// Tiles are listed breadth first: c sits directly under the root.
	if got := m.Layout.Tiles[0].ID; got != "c" {
		t.Fatalf("first tile = %q, want c", got)
	}

	m = press(m, keyEnter, keyDown, runeKey('h'))
	if m.Err != nil {
		t.Fatalf("drop failed: %v", m.Err)
	}

	want := manifest.Move{Tile: "c", Target: "a", Side: "left"}
	if len(m.Moves) != 1 || m.Moves[0] != want {
		t.Fatalf("Moves = %+v, want [%+v]", m.Moves, want)
	}
	if m.Source != "" {
		t.Errorf("Source = %q after a drop, want none", m.Source)
	}
	if got := m.current().ID; got != "c" {
		t.Errorf("cursor on %q after the drop, want the moved tile", got)
	}
	if tile, _ := m.Layout.Tile("c"); tile.Path != "0.0" {
		t.Errorf("c path = %q, want 0.0", tile.Path)
	}
	if err := rect.Validate(m.Tree.Root()); err != nil {
		t.Errorf("tree invalid after drop: %v", err)
	}
}

func TestEditModelDropKeys(t *testing.T) {
	tests := []struct {
		key  rune
		side string
	}{
		{'h', "left"},
		{'j', "bottom"},
		{'k', "top"},
		{'l', "right"},
	}

	for _, tt := range tests {
		t.Run(tt.side, func(t *testing.T) {
			m := NewEditModel(context.Background(), packedTree(t))
			m = press(m, keyEnter, keyDown, runeKey(tt.key))
			if len(m.Moves) != 1 {
				t.Fatalf("Moves = %+v, err %v", m.Moves, m.Err)
			}
			if m.Moves[0].Side != tt.side {
				t.Errorf("side = %q, want %q", m.Moves[0].Side, tt.side)
			}
		})
	}
}

func TestEditModelDropErrors(t *testing.T) {
	t.Run("nothing picked", func(t *testing.T) {
		m := NewEditModel(context.Background(), packedTree(t))
		m = press(m, runeKey('h'))
		if m.Err == nil {
			t.Error("expected an error when dropping without a picked tile")
		}
	})

	t.Run("onto itself", func(t *testing.T) {
		m := NewEditModel(context.Background(), packedTree(t))
		m = press(m, keyEnter, runeKey('l'))
		if m.Err == nil {
			t.Error("expected an error when dropping a tile onto itself")
		}
		if len(m.Moves) != 0 {
			t.Errorf("failed drop was recorded: %+v", m.Moves)
		}
		if err := rect.Validate(m.Tree.Root()); err != nil {
			t.Errorf("tree invalid after a rejected drop: %v", err)
		}
	})
}

func TestEditModelQuit(t *testing.T) {
	m := NewEditModel(context.Background(), packedTree(t))

	next, cmd := m.Update(runeKey('w'))
	if !next.(EditModel).Save {
		t.Error("w should mark the moves for saving")
	}
	if cmd == nil {
		t.Error("w should quit the program")
	}

	next, cmd = m.Update(runeKey('q'))
	if next.(EditModel).Save {
		t.Error("q should not save")
	}
	if cmd == nil {
		t.Error("q should quit the program")
	}
}

func TestEditModelView(t *testing.T) {
	m := NewEditModel(context.Background(), packedTree(t))
	view := m.View()

	for _, want := range []string{"Edit Collage", "a", "b", "c", "0 moves"} {
		if !strings.Contains(view, want) {
			t.Errorf("view does not contain %q", want)
		}
	}
}

func TestEditedManifest(t *testing.T) {
	m := testManifest()
	m.Moves = []manifest.Move{{Tile: "a", Target: "b", Side: "top"}}

	out := editedManifest(m, []manifest.Move{{Tile: "c", Target: "a", Side: "left"}})
	if len(out.Moves) != 2 || out.Moves[1].Tile != "c" {
		t.Errorf("Moves = %+v", out.Moves)
	}
	if len(m.Moves) != 1 {
		t.Error("editedManifest modified its input")
	}
	if err := out.Validate(); err != nil {
		t.Errorf("edited manifest invalid: %v", err)
	}
}
