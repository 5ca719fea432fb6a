package rect

import "testing"

// sample builds H(V(a, b), c) with a=400x300, b=300x400, c=200x200.
//
// V(a, b) settles at width 300 (a 300x225, b 300x400), then the outer
// composite brings everything to height 200: a 96x72, b 96x128, c 200x200.
func sample() (root *Composite, v *Composite, a, b, c *Leaf) {
	a = NewLeaf("a", "", 400, 300)
	b = NewLeaf("b", "", 300, 400)
	c = NewLeaf("c", "", 200, 200)
	v = NewVertical(a, b)
	root = NewHorizontal(v, c)
	return root, v, a, b, c
}

func TestHorizontalEqualizesHeight(t *testing.T) {
	a := NewLeaf("a", "", 400, 300)
	b := NewLeaf("b", "", 300, 400)
	h := NewHorizontal(a, b)

	approx(t, "a.Height", a.Height(), 300)
	approx(t, "b.Height", b.Height(), 300)
	approx(t, "b.Width", b.Width(), 225)
	approx(t, "Width", h.Width(), 625)
	approx(t, "Height", h.Height(), 300)
	approx(t, "MaxHeight", h.MaxHeight(), 300)
	approx(t, "MaxWidth", h.MaxWidth(), 625)

	if a.Parent() != h || b.Parent() != h {
		t.Error("children should point at the new composite")
	}
}

func TestVerticalEqualizesWidth(t *testing.T) {
	a := NewLeaf("a", "", 400, 300)
	b := NewLeaf("b", "", 300, 400)
	v := NewVertical(a, b)

	approx(t, "a.Width", a.Width(), 300)
	approx(t, "a.Height", a.Height(), 225)
	approx(t, "Width", v.Width(), 300)
	approx(t, "Height", v.Height(), 625)
	approx(t, "MaxWidth", v.MaxWidth(), 300)
	approx(t, "MaxHeight", v.MaxHeight(), 625)
}

func TestNestedComposite(t *testing.T) {
	root, v, a, b, c := sample()

	approx(t, "root.Width", root.Width(), 296)
	approx(t, "root.Height", root.Height(), 200)
	approx(t, "v.Width", v.Width(), 96)
	approx(t, "a.Height", a.Height(), 72)
	approx(t, "b.Height", b.Height(), 128)
	approx(t, "c.Width", c.Width(), 200)

	if err := Validate(root); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestCompositeSetWidthScalesSubtree(t *testing.T) {
	root, _, a, b, c := sample()
	ar := root.AspectRatio()

	root.SetWidth(148)

	approx(t, "Width", root.Width(), 148)
	approx(t, "Height", root.Height(), 100)
	approx(t, "AspectRatio", root.AspectRatio(), ar)
	approx(t, "a.Width", a.Width(), 48)
	approx(t, "b.Width", b.Width(), 48)
	approx(t, "c.Width", c.Width(), 100)
}

func TestCompositeNeverUpscales(t *testing.T) {
	if strict {
		t.Skip("oversized requests panic under imgpackdebug")
	}
	root, _, _, _, _ := sample()
	root.SetHeight(1000)

	for _, l := range Leaves(root) {
		if l.Width() > l.MaxWidth()+Tolerance || l.Height() > l.MaxHeight()+Tolerance {
			t.Errorf("%s upscaled to %vx%v", l.Description(), l.Width(), l.Height())
		}
	}
}

func TestCompositeFind(t *testing.T) {
	root, _, a, b, c := sample()
	tests := []struct {
		name string
		x, y float64
		want Rectangle
	}{
		{"top left", 10, 10, a},
		{"below a", 10, 100, b},
		{"right column", 150, 10, c},
		{"past right edge", 300, 10, nil},
		{"negative", -1, 0, nil},
		{"below bottom", 10, 201, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := root.Find(tt.x, tt.y)
			if got != tt.want {
				t.Errorf("Find(%v, %v) = %v, want %v", tt.x, tt.y, describe(got), describe(tt.want))
			}
		})
	}
}

func describe(r Rectangle) string {
	if r == nil {
		return "<nil>"
	}
	return r.Description()
}

func TestOffset(t *testing.T) {
	root, v, a, b, c := sample()
	tests := []struct {
		name   string
		r      Rectangle
		wx, wy float64
	}{
		{"root", root, 0, 0},
		{"v", v, 0, 0},
		{"a", a, 0, 0},
		{"b", b, 0, 72},
		{"c", c, 96, 0},
	}
	for _, tt := range tests {
		x, y := Offset(tt.r)
		approx(t, tt.name+".x", x, tt.wx)
		approx(t, tt.name+".y", y, tt.wy)
	}
}

func TestOffsetFindRoundTrip(t *testing.T) {
	root, _, _, _, _ := sample()
	for _, l := range Leaves(root) {
		x, y := Offset(l)
		if got := root.Find(x+1, y+1); got != l {
			t.Errorf("Find(Offset(%s)+1) = %s", l.Description(), describe(got))
		}
	}
}

func TestSetChildReplacesAndResizes(t *testing.T) {
	root, v, a, _, c := sample()
	d := NewLeaf("d", "", 100, 100)

	v.SetChild2(d)

	if a.Parent() != v || d.Parent() != v {
		t.Error("children should point at v")
	}
	// V(a, d) settles at width 100; the root height becomes
	// min(a 100x75 + d 100x100 = 175, c 200) = 175.
	approx(t, "root.Height", root.Height(), 175)
	approx(t, "c.Height", c.Height(), 175)
	if err := Validate(root); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestSetChildMovesFromOldParent(t *testing.T) {
	a := NewLeaf("a", "", 100, 100)
	b := NewLeaf("b", "", 100, 100)
	old := NewHorizontal(a, b)

	c := NewLeaf("c", "", 100, 100)
	d := NewLeaf("d", "", 100, 100)
	h := NewHorizontal(c, d)
	h.SetChild2(b)

	if b.Parent() != h {
		t.Error("b should belong to h")
	}
	if old.Child2() != nil {
		t.Error("old parent should have an empty slot")
	}
	if d.Parent() != nil {
		t.Error("replaced child should be orphaned")
	}
}

func TestCompositePanics(t *testing.T) {
	a := NewLeaf("a", "", 100, 100)
	b := NewLeaf("b", "", 100, 100)
	h := NewHorizontal(a, b)

	tests := []struct {
		name string
		fn   func()
	}{
		{"no orientation", func() { NewComposite(None, NewLeaf("x", "", 1, 1), NewLeaf("y", "", 1, 1)) }},
		{"nil child", func() { NewHorizontal(NewLeaf("x", "", 1, 1), nil) }},
		{"same child twice", func() { NewHorizontal(a, a) }},
		{"child contains other", func() { NewVertical(h, a) }},
		{"set nil", func() { h.SetChild1(nil) }},
		{"set duplicate", func() { h.SetChild1(b) }},
		{"set ancestor", func() {
			outer := NewHorizontal(h, NewLeaf("z", "", 1, 1))
			h.SetChild1(outer)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestOrientationString(t *testing.T) {
	tests := map[Orientation]string{
		None:       "none",
		Horizontal: "horizontal",
		Vertical:   "vertical",
	}
	for o, want := range tests {
		if got := o.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(o), got, want)
		}
	}
}
