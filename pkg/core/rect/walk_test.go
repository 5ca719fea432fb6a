package rect

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/multierr"
)

func leafIDs(leaves []*Leaf) []string {
	ids := make([]string, len(leaves))
	for i, l := range leaves {
		ids[i] = l.ID()
	}
	return ids
}

func TestLeavesOrder(t *testing.T) {
	root, _, _, _, _ := sample()
	if diff := cmp.Diff([]string{"a", "b", "c"}, leafIDs(Leaves(root))); diff != "" {
		t.Errorf("Leaves() mismatch (-want +got):\n%s", diff)
	}
	if got := Count(root); got != 5 {
		t.Errorf("Count() = %d, want 5", got)
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	root, v, _, _, _ := sample()
	var seen []string
	Walk(root, func(n Rectangle) bool {
		seen = append(seen, Path(n))
		return n != v
	})
	if diff := cmp.Diff([]string{"", "0", "1"}, seen); diff != "" {
		t.Errorf("Walk() mismatch (-want +got):\n%s", diff)
	}
}

func TestPathAndDepth(t *testing.T) {
	root, v, a, b, c := sample()
	tests := []struct {
		r     Rectangle
		path  string
		depth int
	}{
		{root, "", 0},
		{v, "0", 1},
		{a, "0.0", 2},
		{b, "0.1", 2},
		{c, "1", 1},
	}
	for _, tt := range tests {
		if got := Path(tt.r); got != tt.path {
			t.Errorf("Path(%s) = %q, want %q", tt.r.Description(), got, tt.path)
		}
		if got := Depth(tt.r); got != tt.depth {
			t.Errorf("Depth(%s) = %d, want %d", tt.r.Description(), got, tt.depth)
		}
	}
}

func TestRelations(t *testing.T) {
	root, v, a, b, c := sample()

	if Root(a) != root || Root(root) != root || Root(nil) != nil {
		t.Error("Root() returned the wrong node")
	}
	if Sibling(a) != b || Sibling(v) != c || Sibling(root) != nil {
		t.Error("Sibling() returned the wrong node")
	}
	if !IsAncestor(root, a) || !IsAncestor(v, b) || !IsAncestor(a, a) {
		t.Error("IsAncestor() missed an ancestor")
	}
	if IsAncestor(a, v) || IsAncestor(c, a) || IsAncestor(nil, a) {
		t.Error("IsAncestor() reported a non-ancestor")
	}
}

func TestFindLeaf(t *testing.T) {
	root, _, _, b, _ := sample()
	if got, ok := FindLeaf(root, "b"); !ok || got != b {
		t.Errorf("FindLeaf(b) = %v, %v", describe(got), ok)
	}
	if _, ok := FindLeaf(root, "zzz"); ok {
		t.Error("FindLeaf(zzz) should miss")
	}
}

func TestValidateDetectsCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(root, v *Composite, a, b, c *Leaf) Rectangle
	}{
		{"root with parent", func(_, v *Composite, _, _, _ *Leaf) Rectangle { return v }},
		{"broken back-link", func(root, _ *Composite, _, _, c *Leaf) Rectangle {
			c.setParent(nil)
			return root
		}},
		{"unequal heights", func(root, _ *Composite, _, _, c *Leaf) Rectangle {
			c.height = 150
			return root
		}},
		{"upscaled leaf", func(root, _ *Composite, a, _, _ *Leaf) Rectangle {
			a.width, a.height = 800, 600
			return root
		}},
		{"missing child", func(root, v *Composite, _, _, _ *Leaf) Rectangle {
			v.child2 = nil
			return root
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, v, a, b, c := sample()
			err := Validate(tt.corrupt(root, v, a, b, c))
			if !errors.Is(err, ErrInvariant) {
				t.Errorf("Validate() error = %v, want ErrInvariant", err)
			}
		})
	}
}

func TestValidateReportsEveryViolation(t *testing.T) {
	root, _, a, _, c := sample()
	c.height = 150
	a.width, a.height = 800, 600

	err := Validate(root)
	errs := multierr.Errors(err)
	// root heights, v widths, and the upscaled leaf.
	if len(errs) != 3 {
		t.Fatalf("Validate() reported %d problems, want 3: %v", len(errs), err)
	}
	for _, e := range errs {
		if !errors.Is(e, ErrInvariant) {
			t.Errorf("%v does not wrap ErrInvariant", e)
		}
	}
}

func TestDissolve(t *testing.T) {
	root, v, a, b, c := sample()

	leaves := Dissolve(root)

	if diff := cmp.Diff([]string{"a", "b", "c"}, leafIDs(leaves)); diff != "" {
		t.Errorf("Dissolve() mismatch (-want +got):\n%s", diff)
	}
	for _, l := range []*Leaf{a, b, c} {
		if l.Parent() != nil {
			t.Errorf("%s still has a parent", l.Description())
		}
		approx(t, l.ID()+".Width", l.Width(), l.MaxWidth())
	}
	if v.Parent() != nil || v.Child1() != nil || root.Child1() != nil {
		t.Error("composites should be emptied")
	}
}
