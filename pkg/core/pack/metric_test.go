package pack

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hyperair/imgpack/pkg/core/rect"
)

func TestCloseness(t *testing.T) {
	tests := []struct {
		target, candidate, want float64
	}{
		{1, 1, 1},
		{1, 2, 0.5},
		{2, 1, 0.5},
		{0.5, 2, 0.25},
	}
	for _, tt := range tests {
		if got := Closeness(tt.target, tt.candidate); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Closeness(%v, %v) = %v, want %v", tt.target, tt.candidate, got, tt.want)
		}
	}
}

func TestClosenessIsScaleInvariant(t *testing.T) {
	// Twice as wide and twice as tall as the target score the same.
	if a, b := Closeness(1, 2), Closeness(1, 0.5); a != b {
		t.Errorf("Closeness(1, 2) = %v, Closeness(1, 0.5) = %v", a, b)
	}
	if a, b := AbsDifference(1, 2), AbsDifference(1, 0.5); a == b {
		t.Errorf("AbsDifference should not be scale invariant, both %v", a)
	}
}

func TestCandidates(t *testing.T) {
	v, h := Candidates(3, 1)
	if v != 0.75 || h != 4 {
		t.Errorf("Candidates(3, 1) = %v, %v, want 0.75, 4", v, h)
	}
}

func TestChoose(t *testing.T) {
	tests := []struct {
		name   string
		a1, a2 float64
		target float64
		metric Metric
		want   rect.Orientation
	}{
		{"stack wide tiles for square", 3, 1, 1, Closeness, rect.Vertical},
		{"side by side for wide target", 3, 1, 3.5, Closeness, rect.Horizontal},
		{"absdiff stacks for square", 3, 1, 1, AbsDifference, rect.Vertical},
		// target^2 == a1*a2 makes both candidates equally close.
		{"tie goes horizontal", 4, 1, 2, Closeness, rect.Horizontal},
		{"closeness prefers horizontal", 4, 1, 2.5, Closeness, rect.Horizontal},
		{"absdiff prefers vertical", 4, 1, 2.5, AbsDifference, rect.Vertical},
		{"nil metric is closeness", 4, 1, 2.5, nil, rect.Horizontal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Choose(tt.a1, tt.a2, tt.target, tt.metric); got != tt.want {
				t.Errorf("Choose(%v, %v, %v) = %v, want %v", tt.a1, tt.a2, tt.target, got, tt.want)
			}
		})
	}
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name         string
		metric       Metric
		orientation  rect.Orientation
		wantW, wantH float64
	}{
		// 400x100 beside 100x100 at the shared height of 100.
		{"closeness", Closeness, rect.Horizontal, 500, 100},
		// Stacked at the shared width of 100: 100x25 over 100x100.
		{"absdiff", AbsDifference, rect.Vertical, 100, 125},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := rect.NewLeaf("a", "", 400, 100)
			b := rect.NewLeaf("b", "", 100, 100)
			c := Combine(a, b, 2.5, tt.metric)

			if c.Orientation() != tt.orientation {
				t.Errorf("orientation = %v, want %v", c.Orientation(), tt.orientation)
			}
			if c.Child1() != a || c.Child2() != b {
				t.Error("Combine should keep input order")
			}
			if math.Abs(c.Width()-tt.wantW) > 1e-9 || math.Abs(c.Height()-tt.wantH) > 1e-9 {
				t.Errorf("size = %vx%v, want %vx%v", c.Width(), c.Height(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestMetricByName(t *testing.T) {
	for _, name := range []string{"closeness", "absdiff"} {
		if m, err := MetricByName(name); err != nil || m == nil {
			t.Errorf("MetricByName(%q) = %v, %v", name, m, err)
		}
	}
	if _, err := MetricByName("manhattan"); !errors.Is(err, ErrUnknownMetric) {
		t.Errorf("MetricByName(manhattan) error = %v, want ErrUnknownMetric", err)
	}
	if diff := cmp.Diff([]string{"absdiff", "closeness"}, MetricNames()); diff != "" {
		t.Errorf("MetricNames() mismatch (-want +got):\n%s", diff)
	}
}
