package pack

import (
	"fmt"
	"math"
	"sort"

	"github.com/hyperair/imgpack/pkg/core/rect"
)

// Metric scores how well a candidate aspect ratio matches the target.
// Higher is better.
type Metric func(target, candidate float64) float64

// Closeness is min(target, candidate) / max(target, candidate). It lies in
// (0, 1] and does not depend on whether the ratios are expressed as w/h or
// h/w, so wide and tall layouts are judged alike.
func Closeness(target, candidate float64) float64 {
	return math.Min(target, candidate) / math.Max(target, candidate)
}

// AbsDifference is the negated distance between target and candidate. It
// penalizes ratios above the target more than those below it and is kept
// for comparison with older layouts.
func AbsDifference(target, candidate float64) float64 {
	return -math.Abs(target - candidate)
}

var metrics = map[string]Metric{
	"closeness": Closeness,
	"absdiff":   AbsDifference,
}

// DefaultMetric is the name of the metric used when none is configured.
const DefaultMetric = "closeness"

// MetricByName returns the metric registered under name.
func MetricByName(name string) (Metric, error) {
	if m, ok := metrics[name]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownMetric, name, MetricNames())
}

// MetricNames returns the registered metric names in sorted order.
func MetricNames() []string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Candidates returns the aspect ratios that stacking (vertical) and placing
// side by side (horizontal) would give two rectangles with aspect ratios a1
// and a2.
func Candidates(a1, a2 float64) (vertical, horizontal float64) {
	return a1 * a2 / (a1 + a2), a1 + a2
}

// Choose picks the orientation whose candidate scores higher under m.
// Ties go to Horizontal.
func Choose(a1, a2, target float64, m Metric) rect.Orientation {
	if m == nil {
		m = Closeness
	}
	v, h := Candidates(a1, a2)
	if m(target, v) > m(target, h) {
		return rect.Vertical
	}
	return rect.Horizontal
}

// Combine pairs r1 and r2 in the orientation [Choose] selects.
func Combine(r1, r2 rect.Rectangle, target float64, m Metric) *rect.Composite {
	return rect.NewComposite(Choose(r1.AspectRatio(), r2.AspectRatio(), target, m), r1, r2)
}
