// Package drag implements the card reorder interaction as an explicit
// finite-state machine over injected geometry, so the press/click/drag
// disambiguation is testable without a rendering surface.
package drag

import "math"

// Threshold is the pointer travel distance (px) beyond which a press
// becomes a drag instead of a click.
const Threshold = 6.0

// State of the single drag session.
type State int

const (
	StateIdle State = iota
	StateArmed
	StateDragging
)

// Point is a pointer position in container coordinates.
type Point struct {
	X float64
	Y float64
}

// Rect is a card's bounding box in container coordinates.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Contains reports whether p falls inside the rect.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Layout supplies the geometry the controller needs: the current visual
// card order, each card's bounding box, and the container's scroll axis.
type Layout interface {
	CardIDs() []int64
	CardRect(id int64) (Rect, bool)
	Horizontal() bool
}

// Outcome reports what a finished session produced.
type Outcome struct {
	Clicked    bool    // released below threshold: treat as a plain click
	ClickID    int64   // card to open when Clicked
	Reordered  bool    // released after a drag
	FinalOrder []int64 // full card order after the drop, when Reordered
}

// Controller runs one drag session at a time.
type Controller struct {
	layout Layout

	state       State
	activeID    int64
	start       Point
	order       []int64 // working order excluding the dragged card
	placeholder int     // insertion slot within order, 0..len(order)
	justDragged bool
}

// NewController creates a new drag controller
func NewController(layout Layout) *Controller {
	return &Controller{layout: layout}
}

// State returns the current session state.
func (c *Controller) State() State {
	return c.state
}

// PointerDown arms a session on the pressed card. A press while another
// session is active is ignored; the active session keeps its state.
func (c *Controller) PointerDown(id int64, p Point) {
	if c.state != StateIdle {
		return
	}
	c.state = StateArmed
	c.activeID = id
	c.start = p
}

// PointerMove advances an armed session into dragging once travel exceeds
// the threshold, and while dragging relocates the placeholder around
// whichever sibling the pointer overlaps.
func (c *Controller) PointerMove(p Point) {
	switch c.state {
	case StateIdle:
		return
	case StateArmed:
		if math.Hypot(p.X-c.start.X, p.Y-c.start.Y) <= Threshold {
			return
		}
		c.beginDrag()
	}
	c.trackPlaceholder(p)
}

// PointerUp ends the session. A sub-threshold press resolves to a click on
// the pressed card; a drag resolves to the final order with the dragged
// card at the placeholder slot.
func (c *Controller) PointerUp(p Point) Outcome {
	defer c.reset()

	switch c.state {
	case StateArmed:
		return Outcome{Clicked: true, ClickID: c.activeID}
	case StateDragging:
		final := make([]int64, 0, len(c.order)+1)
		final = append(final, c.order[:c.placeholder]...)
		final = append(final, c.activeID)
		final = append(final, c.order[c.placeholder:]...)
		c.justDragged = true
		return Outcome{Reordered: true, FinalOrder: final}
	}
	return Outcome{}
}

// PointerCancel is handled exactly like a release; the last placeholder
// position is kept, there is no rollback.
func (c *Controller) PointerCancel(p Point) Outcome {
	return c.PointerUp(p)
}

// SuppressClick consumes the one-shot flag set by a finished drag. The
// click event fired by the same pointer release must not open the detail
// view; callers check this before acting on a click.
func (c *Controller) SuppressClick() bool {
	if c.justDragged {
		c.justDragged = false
		return true
	}
	return false
}

func (c *Controller) beginDrag() {
	ids := c.layout.CardIDs()
	c.order = c.order[:0]
	c.placeholder = 0
	for _, id := range ids {
		if id == c.activeID {
			c.placeholder = len(c.order)
			continue
		}
		c.order = append(c.order, id)
	}
	c.state = StateDragging
}

// trackPlaceholder moves the placeholder before or after the hovered
// sibling, chosen by which side of the sibling's midpoint the pointer is
// on. Horizontal containers compare on x, vertical ones on y.
func (c *Controller) trackPlaceholder(p Point) {
	horizontal := c.layout.Horizontal()
	for idx, id := range c.order {
		rect, ok := c.layout.CardRect(id)
		if !ok || !rect.Contains(p) {
			continue
		}
		var before bool
		if horizontal {
			before = p.X-rect.X < rect.W/2
		} else {
			before = p.Y-rect.Y < rect.H/2
		}
		if before {
			c.placeholder = idx
		} else {
			c.placeholder = idx + 1
		}
		return
	}
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.activeID = 0
	c.start = Point{}
	c.order = nil
	c.placeholder = 0
}
