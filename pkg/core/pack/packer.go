package pack

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hyperair/imgpack/pkg/core/rect"
	"github.com/hyperair/imgpack/pkg/observability"
)

// DefaultTargetAspect is ISO A4 portrait (210mm x 297mm).
const DefaultTargetAspect = 210.0 / 297.0

var (
	// ErrCancelled is returned by [Packer.Wait] when a run was cancelled.
	ErrCancelled = errors.New("packing cancelled")

	// ErrRunning is returned when the packer is reconfigured or restarted
	// while a run is in flight.
	ErrRunning = errors.New("packer is running")

	// ErrNoSources is returned by [Packer.Pack] when there is nothing to pack.
	ErrNoSources = errors.New("no source rectangles")

	// ErrInvalidAspect is returned for a non-positive or non-finite target.
	ErrInvalidAspect = errors.New("target aspect ratio must be positive and finite")

	// ErrUnknownMetric is returned by [MetricByName].
	ErrUnknownMetric = errors.New("unknown metric")
)

// State is the lifecycle stage of a [Packer].
type State int32

const (
	Idle State = iota
	Running
	Done
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Done:
		return "done"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Option configures a [Packer].
type Option func(*Packer)

// WithLogger sets the logger used for per-merge debug output.
func WithLogger(l *log.Logger) Option { return func(p *Packer) { p.logger = l } }

// WithMetric sets the scoring function used to choose orientations.
func WithMetric(m Metric) Option { return func(p *Packer) { p.metric = m } }

// WithTargetAspect sets the initial target aspect ratio. Invalid values are
// ignored; use [Packer.SetTargetAspect] to get an error instead.
func WithTargetAspect(r float64) Option {
	return func(p *Packer) {
		if validAspect(r) {
			p.target = r
		}
	}
}

// Packer combines source rectangles into a single tree by repeatedly pairing
// the two rectangles at the front of a FIFO queue and appending the result.
//
// A run happens on its own goroutine. While it is in flight the only safe
// calls are [Packer.Cancel], [Packer.Wait], [Packer.State] and
// [Packer.Merges]; the source rectangles must not be touched.
type Packer struct {
	logger *log.Logger
	metric Metric

	mu      sync.Mutex
	state   State
	target  float64
	sources []rect.Rectangle
	result  rect.Rectangle
	err     error
	cancel  context.CancelFunc
	done    chan struct{}

	merges atomic.Int64
}

// New returns an idle packer targeting [DefaultTargetAspect] with the
// [Closeness] metric.
func New(opts ...Option) *Packer {
	p := &Packer{
		logger: log.Default(),
		metric: Closeness,
		target: DefaultTargetAspect,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.Default()
	}
	if p.metric == nil {
		p.metric = Closeness
	}
	return p
}

func validAspect(r float64) bool {
	return r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}

// SetTargetAspect sets the width/height ratio the packer aims for. It takes
// effect on the next [Packer.Start].
func (p *Packer) SetTargetAspect(r float64) error {
	if !validAspect(r) {
		return fmt.Errorf("%w: %g", ErrInvalidAspect, r)
	}
	p.mu.Lock()
	p.target = r
	p.mu.Unlock()
	return nil
}

// TargetAspect returns the configured target aspect ratio.
func (p *Packer) TargetAspect() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.target
}

// SetSourceRectangles sets the rectangles to pack, in queue order. Every
// entry must be a distinct root. The slice is copied.
func (p *Packer) SetSourceRectangles(rs []rect.Rectangle) error {
	seen := make(map[rect.Rectangle]struct{}, len(rs))
	for i, r := range rs {
		if r == nil {
			return fmt.Errorf("source %d: %w", i, rect.ErrNilRectangle)
		}
		if r.Parent() != nil {
			return fmt.Errorf("source %d: %w", i, rect.ErrNotRoot)
		}
		if _, dup := seen[r]; dup {
			return fmt.Errorf("source %d: rectangle listed twice", i)
		}
		seen[r] = struct{}{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Running {
		return ErrRunning
	}
	p.sources = append([]rect.Rectangle(nil), rs...)
	return nil
}

// Start begins a run over the current sources. The sources are consumed:
// a later Start without a new [Packer.SetSourceRectangles] packs nothing.
//
// Zero sources finish immediately with no result and one source finishes
// immediately with that source as the result; neither performs a merge.
func (p *Packer) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Running {
		return ErrRunning
	}

	queue := p.sources
	p.sources = nil
	p.result = nil
	p.err = nil
	p.merges.Store(0)
	p.done = make(chan struct{})

	if len(queue) <= 1 {
		p.state = Done
		if len(queue) == 1 {
			p.result = queue[0]
		}
		close(p.done)
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.state = Running
	go p.run(runCtx, queue, p.target)
	return nil
}

func (p *Packer) run(ctx context.Context, queue []rect.Rectangle, target float64) {
	start := time.Now()
	n := len(queue)
	hooks := observability.Pack()
	hooks.OnPackStart(ctx, n)
	p.logger.Debug("packing rectangles", "count", n, "target", target)

	var built []*rect.Composite
	for len(queue) > 1 {
		if ctx.Err() != nil {
			unwind(built)
			hooks.OnPackComplete(ctx, n, int(p.merges.Load()), time.Since(start), ErrCancelled)
			p.logger.Debug("packing cancelled", "merges", p.merges.Load())
			p.finish(Cancelled, nil, ErrCancelled)
			return
		}

		r1, r2 := queue[0], queue[1]
		queue = queue[2:]
		p.logger.Debug("combining rectangles", "first", r1.Description(), "second", r2.Description())

		c := Combine(r1, r2, target, p.metric)
		built = append(built, c)
		queue = append(queue, c)

		merge := int(p.merges.Add(1))
		p.logger.Debug("equalized", "merge", merge, "orientation", c.Orientation(),
			"width", c.Width(), "height", c.Height(), "aspect", c.AspectRatio())
		hooks.OnMerge(ctx, merge, c.Orientation().String(), c.AspectRatio())
	}

	result := queue[0]
	hooks.OnPackComplete(ctx, n, int(p.merges.Load()), time.Since(start), nil)
	p.logger.Debug("packing complete", "merges", p.merges.Load(), "aspect", result.AspectRatio(),
		"duration", time.Since(start))
	p.finish(Done, result, nil)
}

// unwind releases composites newest first, so each one is a root when its
// turn comes and the original sources end up free-standing again.
func unwind(built []*rect.Composite) {
	for i := len(built) - 1; i >= 0; i-- {
		built[i].Release()
	}
}

func (p *Packer) finish(s State, result rect.Rectangle, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = s
	p.result = result
	p.err = err
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	close(p.done)
}

// Cancel asks a running pack to stop. The run notices before its next merge.
// Cancel on an idle or finished packer does nothing.
func (p *Packer) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

// Wait blocks until the current run finishes. It returns [ErrCancelled] for
// a cancelled run and nil otherwise, including when nothing was started.
func (p *Packer) Wait() error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Result returns the packed root. ok is false unless the last run finished
// with exactly one rectangle left.
func (p *Packer) Result() (r rect.Rectangle, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Done || p.result == nil {
		return nil, false
	}
	return p.result, true
}

// State returns the current lifecycle stage.
func (p *Packer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Merges returns the number of merges completed by the current or last run.
func (p *Packer) Merges() int { return int(p.merges.Load()) }

// Pack sets rs as the sources, runs to completion and returns the root.
// Cancelling ctx stops the run and returns [ErrCancelled].
func (p *Packer) Pack(ctx context.Context, rs []rect.Rectangle) (rect.Rectangle, error) {
	if len(rs) == 0 {
		return nil, ErrNoSources
	}
	if err := p.SetSourceRectangles(rs); err != nil {
		return nil, err
	}
	if err := p.Start(ctx); err != nil {
		return nil, err
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	r, ok := p.Result()
	if !ok {
		return nil, ErrNoSources
	}
	return r, nil
}
