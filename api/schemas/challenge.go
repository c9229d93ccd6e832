package schemas

import (
	"context"
	"errors"
	"time"
)

// -- Resolution Outcomes --
// These values describe how a single checkbox resolution attempt ended.
// Callers that only care about success should use Outcome.Resolved().

// Outcome is the terminal result of a challenge resolution.
type Outcome string

const (
	// OutcomeResolved means the completion token appeared; the challenge is passed.
	OutcomeResolved Outcome = "RESOLVED"
	// OutcomeNotEngaged means no challenge frame ever appeared. The page most
	// likely does not gate this session, so the caller can proceed.
	OutcomeNotEngaged Outcome = "NOT_ENGAGED"
	// OutcomeEscalated means a secondary challenge became visible after the
	// click. Resolving it is out of scope; a human or another system must take over.
	OutcomeEscalated Outcome = "ESCALATED"
	// OutcomeTimedOut means the overall deadline expired while polling.
	OutcomeTimedOut Outcome = "TIMED_OUT"
	// OutcomeAborted means the browser session broke underneath the resolver
	// (element geometry unreadable, context cancelled, session closed).
	OutcomeAborted Outcome = "ABORTED"
)

// Resolved collapses the outcome to the boolean the embedding flow acts on.
func (o Outcome) Resolved() bool {
	return o == OutcomeResolved
}

func (o Outcome) String() string {
	return string(o)
}

// -- Geometry --

// Point is a coordinate in main-viewport CSS pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is an element's bounding rectangle in main-viewport CSS pixels.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the geometric center of the box. Click targets are always
// computed from a freshly read box, never cached.
func (b Box) Center() Point {
	return Point{X: b.X + b.Width/2.0, Y: b.Y + b.Height/2.0}
}

// Valid reports whether the box describes a renderable on-screen area.
func (b Box) Valid() bool {
	return b.Width > 0 && b.Height > 0
}

// -- Browser Contracts --

// ErrElementNotFound is returned by element queries when the selector matches
// nothing in the queried document.
var ErrElementNotFound = errors.New("element not found")

// FrameHandle is a read-only view of a single frame (main document or iframe)
// in a live page. Handles are snapshots of frame identity; the underlying
// frame can detach at any time, in which case queries fail.
type FrameHandle interface {
	// URL returns the frame's document URL as last observed.
	URL() string

	// ElementBox returns the bounding box of the first element matching the
	// selector, offset into main-viewport coordinates. Returns
	// ErrElementNotFound when the selector matches nothing within the timeout.
	ElementBox(ctx context.Context, selector string, timeout time.Duration) (Box, error)

	// ElementVisible reports whether the first matching element is rendered
	// and occupies a non-empty area. A missing element is not an error here,
	// it reports false.
	ElementVisible(ctx context.Context, selector string, timeout time.Duration) (bool, error)

	// FieldValue returns the current value of the first matching form field.
	// Returns ErrElementNotFound when the selector matches nothing.
	FieldValue(ctx context.Context, selector string, timeout time.Duration) (string, error)
}

// PageSession is the surface a resolver needs from a live browser tab.
type PageSession interface {
	// Frames enumerates the page's current frames, main document first,
	// in a stable order.
	Frames(ctx context.Context) ([]FrameHandle, error)

	// FieldValue reads a form field from the main document.
	FieldValue(ctx context.Context, selector string, timeout time.Duration) (string, error)

	// MoveMouse teleports the pointer to the given viewport coordinate.
	// Used as the fallback when no simulated path is available.
	MoveMouse(ctx context.Context, x, y float64) error

	// Click presses and releases the primary button at the given coordinate,
	// with a human-plausible hold time.
	Click(ctx context.Context, x, y float64) error
}
