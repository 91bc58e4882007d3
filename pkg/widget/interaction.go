package widget

import (
	"time"

	"github.com/matzehuels/radials/pkg/radial"
)

// DefaultResizeDelay is the quiet period after the last resize before the
// layout is recomputed.
const DefaultResizeDelay = 200 * time.Millisecond

// State is the interaction state of a widget.
type State int

const (
	StateIdle State = iota
	StateHovering
	StateResizePending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHovering:
		return "hovering"
	case StateResizePending:
		return "resize-pending"
	default:
		return "unknown"
	}
}

// TooltipViewState is what a renderer needs to draw the tooltip.
type TooltipViewState struct {
	Visible     bool    `json:"visible"`
	RecordIndex int     `json:"recordIndex"`
	ScreenX     float64 `json:"screenX"`
	ScreenY     float64 `json:"screenY"`
	Content     string  `json:"content"`
}

// InteractionController owns hover state, the tooltip and the debounced
// resize task of one widget. All methods must be called from the widget's
// event loop.
type InteractionController struct {
	sched    Scheduler
	delay    time.Duration
	content  func(recordIndex int) (string, bool)
	relayout func(radial.Size)

	hovering bool
	tooltip  TooltipViewState
	pending  Task
	size     radial.Size
}

// NewInteractionController creates a controller. content resolves tooltip
// text for a record index and relayout recomputes the layout at a new size.
func NewInteractionController(sched Scheduler, delay time.Duration,
	content func(int) (string, bool), relayout func(radial.Size)) *InteractionController {
	if delay <= 0 {
		delay = DefaultResizeDelay
	}
	return &InteractionController{
		sched:    sched,
		delay:    delay,
		content:  content,
		relayout: relayout,
		tooltip:  TooltipViewState{RecordIndex: -1},
	}
}

// State derives the current state. A pending resize takes precedence over
// hovering.
func (c *InteractionController) State() State {
	switch {
	case c.pending != nil:
		return StateResizePending
	case c.hovering:
		return StateHovering
	default:
		return StateIdle
	}
}

// Tooltip returns the current tooltip view state.
func (c *InteractionController) Tooltip() TooltipViewState { return c.tooltip }

// PointerEnter starts hovering a record. It reports false, and changes
// nothing, when the record index is unknown.
func (c *InteractionController) PointerEnter(recordIndex int, x, y float64) bool {
	text, ok := c.content(recordIndex)
	if !ok {
		return false
	}
	c.hovering = true
	c.tooltip = TooltipViewState{
		Visible:     true,
		RecordIndex: recordIndex,
		ScreenX:     x,
		ScreenY:     y,
		Content:     text,
	}
	return true
}

// PointerMove updates the tooltip position while hovering.
func (c *InteractionController) PointerMove(x, y float64) {
	if !c.hovering {
		return
	}
	c.tooltip.ScreenX, c.tooltip.ScreenY = x, y
}

// PointerLeave stops hovering and hides the tooltip.
func (c *InteractionController) PointerLeave() {
	c.hovering = false
	c.tooltip.Visible = false
}

// ClearTooltip hides the tooltip and forgets the hovered record.
func (c *InteractionController) ClearTooltip() {
	c.hovering = false
	c.tooltip = TooltipViewState{RecordIndex: -1}
}

// Resize (re)arms the resize task. Only the last size of a burst is laid
// out, one delay after the last call.
func (c *InteractionController) Resize(size radial.Size) {
	c.CancelResize()
	c.size = size
	var task Task
	task = c.sched.Schedule(c.delay, func() {
		if c.pending != task {
			return
		}
		c.pending = nil
		c.relayout(c.size)
	})
	c.pending = task
}

// CancelResize drops a pending resize task. It reports whether one was
// pending.
func (c *InteractionController) CancelResize() bool {
	if c.pending == nil {
		return false
	}
	c.pending.Cancel()
	c.pending = nil
	return true
}
