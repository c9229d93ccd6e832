package challenge

import (
	"strings"

	"github.com/xkilldash9x/tickbox/api/schemas"
)

// FindFrame scans the frame list in order and returns the first frame whose
// URL contains both the vendor marker and the role fragment, or nil when no
// frame matches. It never waits; polling cadence belongs to the resolver.
func FindFrame(frames []schemas.FrameHandle, marker, fragment string) schemas.FrameHandle {
	for _, f := range frames {
		if f == nil {
			continue
		}
		url := f.URL()
		if strings.Contains(url, marker) && strings.Contains(url, fragment) {
			return f
		}
	}
	return nil
}
