package schemas

// -- Raw Input Models --
// Low-level pointer events as dispatched to the browser. The motion engine
// emits these; the browser session translates them to CDP Input commands.

// MouseEventType identifies the kind of pointer event.
type MouseEventType string

const (
	MouseMove    MouseEventType = "mouseMoved"
	MousePress   MouseEventType = "mousePressed"
	MouseRelease MouseEventType = "mouseReleased"
	MouseWheel   MouseEventType = "mouseWheel"
)

// MouseButton identifies which button a press or release refers to.
type MouseButton string

const (
	ButtonNone   MouseButton = "none"
	ButtonLeft   MouseButton = "left"
	ButtonMiddle MouseButton = "middle"
	ButtonRight  MouseButton = "right"
)

// MouseEventData carries one pointer event in viewport coordinates.
type MouseEventData struct {
	Type       MouseEventType `json:"type"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Button     MouseButton    `json:"button"`
	// Buttons is the bitfield of buttons held during the event (1 left,
	// 2 right, 4 middle), matching the DOM MouseEvent.buttons encoding.
	Buttons    int64          `json:"buttons"`
	ClickCount int64          `json:"click_count,omitempty"`
	DeltaX     float64        `json:"delta_x,omitempty"`
	DeltaY     float64        `json:"delta_y,omitempty"`
}
