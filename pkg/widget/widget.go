// Package widget hosts the radial layout engine behind the update protocol
// of a dashboard widget.
//
// A [Widget] accepts host updates, gates them behind a readiness state while
// its drawing collaborator loads, runs the layout pipeline, hands the result
// to a [Renderer] and reports failures to an [ErrorReporter]. Every update is
// acknowledged through its done callback, including failed and superseded
// ones.
//
// Widgets are not safe for concurrent use. A host drives each widget from a
// single event loop ([Loop], a bubbletea program, an HTTP handler that owns
// the widget) and must give it a [Scheduler] that delivers the resize task
// on that same loop:
//
//	loop := widget.NewLoop(64)
//	w, err := widget.New(rc, widget.NewTimerScheduler(func(fn func()) { loop.Post(fn) }))
//	go loop.Run(ctx)
//	loop.Post(func() { w.Update(req, done) })
package widget

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/radials/pkg/errors"
	"github.com/matzehuels/radials/pkg/observability"
	"github.com/matzehuels/radials/pkg/radial"
)

// Request is one host update.
type Request struct {
	Rows   []radial.Row      `json:"rows"`
	Roles  radial.FieldRoles `json:"fieldRoles"`
	Config radial.Config     `json:"config"`
	Size   radial.Size       `json:"surfaceSize"`
}

// Renderer paints descriptor bundles.
type Renderer interface {
	Render(b radial.Bundle) error
	// Clear removes previously drawn geometry.
	Clear()
}

// ErrorReport is handed to the host's error display.
type ErrorReport struct {
	Kind    errors.Code `json:"kind"`
	Title   string      `json:"title"`
	Message string      `json:"message"`
}

// ErrorReporter is the host's error display.
type ErrorReporter interface {
	ReportError(ErrorReport)
	ClearErrors()
}

// RendererContext bundles the collaborators a widget draws through. Nil
// fields are replaced with no-op implementations.
type RendererContext struct {
	Renderer Renderer
	Errors   ErrorReporter
	Logger   *log.Logger
}

// Readiness tracks whether the drawing collaborator is available.
type Readiness int

const (
	Loading Readiness = iota
	Ready
)

func (r Readiness) String() string {
	if r == Ready {
		return "ready"
	}
	return "loading"
}

type pendingUpdate struct {
	req  Request
	done func()
}

// Widget is one chart instance.
type Widget struct {
	id        string
	rc        RendererContext
	hooks     observability.WidgetHooks
	readiness Readiness
	parked    *pendingUpdate
	last      *Request
	bundle    radial.Bundle
	drawn     bool
	ctrl      *InteractionController
}

type settings struct {
	delay     time.Duration
	id        string
	readiness Readiness
}

// Option configures a Widget.
type Option func(*settings)

// WithResizeDelay sets the resize debounce delay (default 200ms).
func WithResizeDelay(d time.Duration) Option { return func(o *settings) { o.delay = d } }

// WithID sets the widget ID instead of a random UUID.
func WithID(id string) Option { return func(o *settings) { o.id = id } }

// StartReady creates the widget in the Ready state, for hosts whose
// drawing collaborator needs no loading.
func StartReady() Option { return func(o *settings) { o.readiness = Ready } }

// New creates a widget in the Loading state. sched runs the debounced
// resize task and must deliver it on the goroutine that drives the widget.
func New(rc RendererContext, sched Scheduler, opts ...Option) (*Widget, error) {
	if sched == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "widget needs a scheduler")
	}
	s := settings{delay: DefaultResizeDelay, readiness: Loading}
	for _, opt := range opts {
		opt(&s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if rc.Renderer == nil {
		rc.Renderer = nopRenderer{}
	}
	if rc.Errors == nil {
		rc.Errors = nopReporter{}
	}
	if rc.Logger == nil {
		rc.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	w := &Widget{
		id:        s.id,
		rc:        rc,
		hooks:     observability.Widget(),
		readiness: s.readiness,
	}
	w.ctrl = NewInteractionController(sched, s.delay, w.tooltipContent, w.relayout)
	w.rc.Logger = w.rc.Logger.With("widget", shortID(s.id))
	return w, nil
}

// ID returns the widget ID.
func (w *Widget) ID() string { return w.id }

// Readiness returns the readiness state.
func (w *Widget) Readiness() Readiness { return w.readiness }

// State returns the interaction state.
func (w *Widget) State() State { return w.ctrl.State() }

// Tooltip returns the tooltip view state for the renderer.
func (w *Widget) Tooltip() TooltipViewState { return w.ctrl.Tooltip() }

// Bundle returns the last successfully rendered bundle.
func (w *Widget) Bundle() (radial.Bundle, bool) { return w.bundle, w.drawn }

// Update lays out and renders req, then calls done. Before the widget is
// ready the request is parked instead; a later Update replaces it and the
// replaced request is acknowledged immediately. Any update cancels a
// pending resize.
func (w *Widget) Update(req Request, done func()) {
	if done == nil {
		done = func() {}
	}
	w.ctrl.CancelResize()

	if w.readiness == Loading {
		superseded := w.parked != nil
		if superseded {
			w.parked.done()
		}
		w.parked = &pendingUpdate{req: req, done: done}
		w.hooks.OnUpdateDeferred(w.id, superseded)
		w.rc.Logger.Debug("update deferred until ready", "superseded", superseded)
		return
	}

	w.run(req)
	done()
}

// MarkReady opens the readiness gate and replays the parked update.
func (w *Widget) MarkReady() {
	if w.readiness == Ready {
		return
	}
	w.readiness = Ready
	w.rc.Logger.Debug("widget ready", "parked", w.parked != nil)

	if p := w.parked; p != nil {
		w.parked = nil
		w.run(p.req)
		p.done()
	}
}

// PointerEnter starts hovering a record; see InteractionController.
func (w *Widget) PointerEnter(recordIndex int, x, y float64) bool {
	return w.ctrl.PointerEnter(recordIndex, x, y)
}

// PointerMove moves the tooltip while hovering.
func (w *Widget) PointerMove(x, y float64) { w.ctrl.PointerMove(x, y) }

// PointerLeave hides the tooltip.
func (w *Widget) PointerLeave() { w.ctrl.PointerLeave() }

// Resize schedules a debounced relayout at size. While loading, it only
// updates the size of the parked request.
func (w *Widget) Resize(size radial.Size) {
	if w.readiness == Loading {
		if w.parked != nil {
			w.parked.req.Size = size
		}
		return
	}
	w.ctrl.Resize(size)
	w.hooks.OnResizeScheduled(w.id, size.Width, size.Height)
}

// Close cancels the resize task and acknowledges a parked update.
func (w *Widget) Close() {
	w.ctrl.CancelResize()
	if p := w.parked; p != nil {
		w.parked = nil
		p.done()
	}
}

func (w *Widget) relayout(size radial.Size) {
	w.hooks.OnResizeFired(w.id)
	if w.last == nil {
		return
	}
	req := *w.last
	req.Size = size
	w.run(req)
}

// run executes the pipeline for req and draws or reports the outcome.
func (w *Widget) run(req Request) {
	w.last = &req
	w.rc.Errors.ClearErrors()

	start := time.Now()
	bundle, stats, err := radial.Compute(req.Rows, req.Roles, req.Config, req.Size)
	if err == nil {
		if rerr := w.rc.Renderer.Render(bundle); rerr != nil {
			err = errors.Wrap(errors.ErrCodeRenderFailed, rerr, "draw chart")
		}
	}
	if err != nil {
		w.fail(err)
		return
	}

	w.bundle, w.drawn = bundle, true
	w.ctrl.ClearTooltip()
	w.rc.Logger.Debug("layout rendered",
		"records", stats.Records,
		"dropped", stats.Dropped,
		"arcs", len(bundle.Arcs),
		"duration", time.Since(start))
}

func (w *Widget) fail(err error) {
	w.rc.Renderer.Clear()
	w.bundle, w.drawn = radial.Bundle{}, false
	w.ctrl.ClearTooltip()

	code := errors.GetCode(err)
	report := ErrorReport{Kind: code, Title: errors.Title(code), Message: errors.UserMessage(err)}
	w.rc.Errors.ReportError(report)
	w.hooks.OnErrorReported(w.id, string(code))
	w.rc.Logger.Warn("layout failed", "kind", code, "err", err)
}

func (w *Widget) tooltipContent(recordIndex int) (string, bool) {
	if !w.drawn {
		return "", false
	}
	return w.bundle.TooltipContent(recordIndex)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type nopRenderer struct{}

func (nopRenderer) Render(radial.Bundle) error { return nil }
func (nopRenderer) Clear()                     {}

type nopReporter struct{}

func (nopReporter) ReportError(ErrorReport) {}
func (nopReporter) ClearErrors()            {}
