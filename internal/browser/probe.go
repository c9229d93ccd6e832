package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
)

// elementProbe is the result of one in-document element inspection. A single
// evaluation answers geometry, visibility and value together so callers never
// see a torn read across separate round trips.
type elementProbe struct {
	Found   bool    `json:"found"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Visible bool    `json:"visible"`
	Value   string  `json:"value"`
}

// iframeOffset is the position of an embedding iframe element in the main
// document.
type iframeOffset struct {
	Found bool    `json:"found"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// probeScript builds the element inspection expression for a selector.
func probeScript(selector string) string {
	return fmt.Sprintf(`(() => {
	const el = document.querySelector(%q);
	if (!el) { return { found: false, x: 0, y: 0, width: 0, height: 0, visible: false, value: "" }; }
	const r = el.getBoundingClientRect();
	const style = window.getComputedStyle(el);
	const rendered = r.width > 0 && r.height > 0 &&
		style.visibility !== "hidden" && style.display !== "none";
	return {
		found: true,
		x: r.x, y: r.y, width: r.width, height: r.height,
		visible: rendered,
		value: ("value" in el) ? String(el.value) : ""
	};
})()`, selector)
}

// iframeOffsetScript builds the expression locating the iframe element whose
// src matches the given frame URL.
func iframeOffsetScript(frameURL string) string {
	return fmt.Sprintf(`(() => {
	const want = %q;
	for (const el of document.querySelectorAll("iframe")) {
		if (el.src === want) {
			const r = el.getBoundingClientRect();
			return { found: true, x: r.x, y: r.y };
		}
	}
	return { found: false, x: 0, y: 0 };
})()`, frameURL)
}

// runProbe evaluates the probe expression on the given CDP context.
func runProbe(runCtx context.Context, selector string) (elementProbe, error) {
	var probe elementProbe
	if err := chromedp.Run(runCtx, chromedp.Evaluate(probeScript(selector), &probe)); err != nil {
		return elementProbe{}, fmt.Errorf("element probe failed: %w", err)
	}
	return probe, nil
}
