package browser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbeScriptEscapesSelector(t *testing.T) {
	// Attribute selectors carry double quotes; they must survive embedding
	// into the evaluated expression.
	script := probeScript(`textarea[name="h-captcha-response"]`)

	assert.Contains(t, script, `querySelector("textarea[name=\"h-captcha-response\"]")`)
	assert.Contains(t, script, "getBoundingClientRect")
}

func TestProbeScriptReportsAllFields(t *testing.T) {
	script := probeScript("#checkbox")

	for _, field := range []string{"found", "x:", "width:", "visible", "value"} {
		assert.Contains(t, script, field)
	}
}

func TestIframeOffsetScriptMatchesExactSrc(t *testing.T) {
	url := "https://newassets.hcaptcha.com/captcha/v1/x/static/hcaptcha.html#frame=checkbox"
	script := iframeOffsetScript(url)

	assert.Contains(t, script, url)
	assert.True(t, strings.Contains(script, "el.src === want"))
}
