package humanoid

import (
	"context"
	"time"

	"github.com/xkilldash9x/tickbox/api/schemas"
)

// Executor is the contract for delivering emulated input to a browser. It is
// the package's testability seam: production wires the CDP-backed browser
// session in, tests wire a recorder.
type Executor interface {
	// DispatchMouseEvent sends one raw pointer event.
	DispatchMouseEvent(ctx context.Context, ev schemas.MouseEventData) error

	// Sleep pauses for the given duration, respecting context cancellation.
	Sleep(ctx context.Context, d time.Duration) error
}
