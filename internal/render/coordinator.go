package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"

	"github.com/ironsheep/image-effects-mcp/internal/effects"
	"github.com/ironsheep/image-effects-mcp/internal/history"
	"github.com/ironsheep/image-effects-mcp/internal/logging"
	"github.com/ironsheep/image-effects-mcp/internal/pixel"
)

// ErrNoActiveLayer is returned when the workspace has no layer to edit.
var ErrNoActiveLayer = errors.New("no active layer")

// Layer is an editable pixel buffer owned by the caller.
type Layer interface {
	Name() string
	Buffer() *pixel.Buffer
}

// Workspace supplies the layer being edited and the visible canvas.
type Workspace interface {
	ActiveLayer() Layer
	CanvasBounds() image.Rectangle
}

// Configurator runs the configuration step of a configurable effect, such
// as a dialog. It returns false when the user cancelled.
type Configurator interface {
	Configure(ctx context.Context, e effects.Effect) (bool, error)
}

// ConfiguratorFunc adapts a function to Configurator.
type ConfiguratorFunc func(ctx context.Context, e effects.Effect) (bool, error)

// Configure implements Configurator.
func (f ConfiguratorFunc) Configure(ctx context.Context, e effects.Effect) (bool, error) {
	return f(ctx, e)
}

// Result describes the outcome of ApplyEffect.
type Result struct {
	Effect        string          `json:"effect"`
	Applied       bool            `json:"applied"`
	Skipped       bool            `json:"skipped,omitempty"`
	Cancelled     bool            `json:"cancelled,omitempty"`
	Degenerate    bool            `json:"degenerate,omitempty"`
	HistoryPushed bool            `json:"history_pushed"`
	HistoryIndex  int             `json:"history_index"`
	Invalidated   image.Rectangle `json:"invalidated"`
	Checksum      string          `json:"checksum,omitempty"`
	Duration      time.Duration   `json:"duration_ns"`
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithWorkers sets how many goroutines render row bands of each ROI.
// n <= 0 selects runtime.NumCPU; 1 renders sequentially.
func WithWorkers(n int) Option {
	return func(c *Coordinator) {
		c.workers = n
	}
}

// WithConfigurator installs the configuration step. Without one every
// configurable effect is treated as confirmed with its current parameters.
func WithConfigurator(cfg Configurator) Option {
	return func(c *Coordinator) {
		c.configurator = cfg
	}
}

// WithInvalidator routes invalidation regions to inv.
func WithInvalidator(inv *Invalidator) Option {
	return func(c *Coordinator) {
		c.invalidator = inv
	}
}

// WithHistoryLimit caps the number of history records kept.
func WithHistoryLimit(n int) Option {
	return func(c *Coordinator) {
		c.historyLimit = n
	}
}

// Coordinator turns "apply this effect to the active layer" into a render,
// a history record and an invalidation notice. Edits and history moves are
// serialized; history may be read concurrently.
type Coordinator struct {
	mu           sync.Mutex
	history      *history.Stack
	workers      int
	historyLimit int
	configurator Configurator
	invalidator  *Invalidator
}

// NewCoordinator creates a coordinator whose history starts at base.
func NewCoordinator(base history.Record, opts ...Option) *Coordinator {
	c := &Coordinator{}
	for _, opt := range opts {
		opt(c)
	}
	if c.workers <= 0 {
		c.workers = runtime.NumCPU()
	}
	c.history = history.New(base,
		history.WithLimit(c.historyLimit),
		history.WithListener(logChange),
	)
	return c
}

func logChange(ch history.Change) {
	logging.Logger().Info("history changed",
		"kind", ch.Kind.String(),
		"pointer", ch.Pointer,
		"label", ch.Record.Label,
	)
}

// History returns the edit log.
func (c *Coordinator) History() *history.Stack {
	return c.history
}

// Workers returns the render parallelism.
func (c *Coordinator) Workers() int {
	return c.workers
}

// ResetHistory discards the edit log and starts over from base, e.g. after
// a new image is opened.
func (c *Coordinator) ResetHistory(base history.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history.Clear(base)
}

// ApplyEffect renders e onto the active layer of ws.
//
// The steps are: run the configuration step (cancellation leaves everything
// untouched), validate parameters, skip no-op parameters, clip rois to the
// canvas (nil means the whole canvas), render from a copy of the layer into
// the layer, push a history record covering the union of the clipped ROIs,
// and notify the invalidator of that union.
//
// Parameters:
//   - ctx: checked before rendering starts; rendering itself is not
//     interruptible
//   - e: the effect, already carrying its parameters
//   - ws: the workspace to edit
//   - rois: target regions in canvas coordinates
//
// Returns:
//   - the Result; Cancelled, Skipped or Degenerate explain why nothing changed
//   - an error wrapping effects.ErrInvalidParameter for bad parameters,
//     ErrNoActiveLayer, a configuration failure, or ctx.Err()
func (c *Coordinator) ApplyEffect(ctx context.Context, e effects.Effect, ws Workspace, rois []image.Rectangle) (Result, error) {
	start := time.Now()
	log := logging.Logger().With("effect", e.ID())
	res := Result{Effect: e.ID(), HistoryIndex: c.history.Pointer()}

	if e.Configurable() && c.configurator != nil {
		ok, err := c.configurator.Configure(ctx, e)
		if err != nil {
			return res, fmt.Errorf("failed to configure %s: %w", e.ID(), err)
		}
		if !ok {
			log.Debug("configuration cancelled")
			res.Cancelled = true
			return res, nil
		}
	}

	if data := e.Data(); data != nil {
		if err := data.Validate(); err != nil {
			log.Warn("invalid parameters", "error", err)
			return res, err
		}
		if data.IsDefault() {
			log.Debug("default parameters, nothing to apply")
			res.Skipped = true
			return res, nil
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	layer := ws.ActiveLayer()
	if layer == nil {
		return res, ErrNoActiveLayer
	}
	dst := layer.Buffer()
	bounds := ws.CanvasBounds().Intersect(dst.Bounds())

	var clipped []image.Rectangle
	if len(rois) == 0 {
		clipped = pixel.ClipRects([]image.Rectangle{bounds}, bounds)
	} else {
		clipped = pixel.ClipRects(rois, bounds)
	}
	if len(clipped) == 0 {
		log.Debug("no ROI intersects the canvas")
		res.Skipped = true
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}

	src := dst.Clone()
	if !c.render(e, src, dst, clipped) {
		log.Debug("degenerate transform, nothing written")
		res.Degenerate = true
		res.Duration = time.Since(start)
		return res, nil
	}

	union := pixel.UnionRects(clipped)
	c.history.Push(history.Record{
		Icon:    e.Icon(),
		Label:   e.Name(),
		Payload: history.CaptureRegion(dst, src, union),
	})
	c.invalidate(union)

	res.Applied = true
	res.HistoryPushed = true
	res.HistoryIndex = c.history.Pointer()
	res.Invalidated = union
	res.Checksum = dst.ChecksumHex()
	res.Duration = time.Since(start)

	log.Debug("effect applied",
		"layer", layer.Name(),
		"rois", len(clipped),
		"region", union.String(),
		"duration", res.Duration,
	)
	return res, nil
}

// render draws e from src into dst over rois, splitting each ROI into row
// bands across workers. It returns false when a Preparer reports a
// degenerate transform.
func (c *Coordinator) render(e effects.Effect, src, dst *pixel.Buffer, rois []image.Rectangle) bool {
	draw := func(rs []image.Rectangle) { e.Render(src, dst, rs) }
	if p, ok := e.(effects.Preparer); ok {
		op := p.Prepare(src)
		if op == nil {
			return false
		}
		draw = func(rs []image.Rectangle) { op.Apply(dst, src, rs) }
	}

	if c.workers <= 1 || overlapping(rois) {
		draw(rois)
		return true
	}

	var bands []image.Rectangle
	for _, r := range rois {
		bands = append(bands, pixel.SplitRows(r, c.workers)...)
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, c.workers)
	for _, band := range bands {
		wg.Add(1)
		go func(r image.Rectangle) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			draw([]image.Rectangle{r})
		}(band)
	}
	wg.Wait()
	return true
}

// overlapping reports whether any two ROIs share a pixel. Workers must be
// given disjoint regions.
func overlapping(rois []image.Rectangle) bool {
	for i := range rois {
		for j := i + 1; j < len(rois); j++ {
			if rois[i].Overlaps(rois[j]) {
				return true
			}
		}
	}
	return false
}

func (c *Coordinator) invalidate(r image.Rectangle) {
	if c.invalidator != nil {
		c.invalidator.Notify(r)
	}
}

// Undo reverses the current edit and invalidates the region it covered.
// It returns history.ErrNothingToUndo at the base record.
func (c *Coordinator) Undo() (history.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, err := c.history.Undo()
	if err != nil {
		return r, err
	}
	c.invalidate(r.Bounds())
	return r, nil
}

// Redo reapplies the next edit and invalidates the region it covers.
// It returns history.ErrNothingToRedo at the newest record.
func (c *Coordinator) Redo() (history.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, err := c.history.Redo()
	if err != nil {
		return r, err
	}
	c.invalidate(r.Bounds())
	return r, nil
}

// JumpTo moves the history cursor to index, undoing or redoing each record
// on the way, and invalidates the union of their regions.
func (c *Coordinator) JumpTo(index int) ([]history.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	moved, err := c.history.JumpTo(index)
	if err != nil {
		return nil, err
	}
	var u image.Rectangle
	for _, r := range moved {
		u = u.Union(r.Bounds())
	}
	c.invalidate(u)
	return moved, nil
}
