package rect

import (
	"errors"
	"math"
	"testing"
)

func approx(t *testing.T, what string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("%s = %v, want %v", what, got, want)
	}
}

func TestNewLeaf(t *testing.T) {
	l := NewLeaf("a", "beach.jpg", 400, 300)

	if l.ID() != "a" || l.Label() != "beach.jpg" {
		t.Errorf("ID/Label = %q/%q", l.ID(), l.Label())
	}
	approx(t, "Width", l.Width(), 400)
	approx(t, "Height", l.Height(), 300)
	approx(t, "MaxWidth", l.MaxWidth(), 400)
	approx(t, "MaxHeight", l.MaxHeight(), 300)
	approx(t, "AspectRatio", l.AspectRatio(), 4.0/3.0)
	if l.Orientation() != None {
		t.Errorf("Orientation = %v, want none", l.Orientation())
	}
	if l.Child1() != nil || l.Child2() != nil || l.Parent() != nil {
		t.Error("fresh leaf should have no children and no parent")
	}
}

func TestNewLeafInvalidSize(t *testing.T) {
	tests := []struct {
		name string
		w, h float64
	}{
		{"zero width", 0, 10},
		{"zero height", 10, 0},
		{"negative", -1, 10},
		{"NaN", math.NaN(), 10},
		{"infinite", math.Inf(1), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("NewLeaf(%v, %v) did not panic", tt.w, tt.h)
				}
			}()
			NewLeaf("x", "", tt.w, tt.h)
		})
	}
}

func TestLeafResizeKeepsAspect(t *testing.T) {
	tests := []struct {
		name         string
		setWidth     bool
		value        float64
		wantW, wantH float64
	}{
		{"shrink width", true, 200, 200, 150},
		{"shrink height", false, 150, 200, 150},
		{"tiny shrink applies", true, 400 - Tolerance/2, 400 - Tolerance/2, 300 - 0.75*Tolerance/2},
		{"same width", true, 400, 400, 300},
		{"upscale width clamps", true, 800, 400, 300},
		{"upscale height clamps", false, 600, 400, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLeaf("a", "", 400, 300)
			if tt.setWidth {
				l.SetWidth(tt.value)
			} else {
				l.SetHeight(tt.value)
			}
			approx(t, "Width", l.Width(), tt.wantW)
			approx(t, "Height", l.Height(), tt.wantH)
			approx(t, "AspectRatio", l.AspectRatio(), l.NativeAspectRatio())
		})
	}
}

func TestLeafUpscalePanicsWhenStrict(t *testing.T) {
	old := strict
	strict = true
	defer func() { strict = old }()

	l := NewLeaf("a", "", 400, 300)
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok {
			t.Fatalf("recovered %v, want *ContractError", r)
		}
		var ce *ContractError
		if !errors.As(err, &ce) {
			t.Fatalf("recovered %T, want *ContractError", r)
		}
		if ce.Axis != "width" || ce.Max != 400 {
			t.Errorf("ContractError = %+v", ce)
		}
	}()
	l.SetWidth(401)
}

func TestLeafSmallOvershootClampsWhenStrict(t *testing.T) {
	old := strict
	strict = true
	defer func() { strict = old }()

	l := NewLeaf("a", "", 400, 300)
	l.SetWidth(200)
	l.SetWidth(400 + Tolerance/2)
	approx(t, "Width", l.Width(), 400)
}

func TestLeafReset(t *testing.T) {
	l := NewLeaf("a", "", 400, 300)
	l.SetWidth(100)
	l.Reset()
	approx(t, "Width", l.Width(), 400)
	approx(t, "Height", l.Height(), 300)
}

func TestLeafFind(t *testing.T) {
	l := NewLeaf("a", "", 100, 50)
	tests := []struct {
		x, y float64
		hit  bool
	}{
		{0, 0, true},
		{99.9, 49.9, true},
		{100, 10, false},
		{10, 50, false},
		{-0.1, 10, false},
	}
	for _, tt := range tests {
		if got := l.Find(tt.x, tt.y) != nil; got != tt.hit {
			t.Errorf("Find(%v, %v) hit = %v, want %v", tt.x, tt.y, got, tt.hit)
		}
	}
}

func TestLeafDescription(t *testing.T) {
	tests := []struct {
		id, label, want string
	}{
		{"a", "beach.jpg", "beach.jpg 400x300"},
		{"a", "", "a 400x300"},
		{"", "", "Leaf 400x300"},
	}
	for _, tt := range tests {
		if got := NewLeaf(tt.id, tt.label, 400, 300).Description(); got != tt.want {
			t.Errorf("Description() = %q, want %q", got, tt.want)
		}
	}
}
