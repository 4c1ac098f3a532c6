package crawler

import (
	"context"
	"testing"
	"time"

	apperrors "sjsage522/newsextractor/pkg/errors"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabled(t *testing.T) {
	tests := []struct {
		name  string
		attrs []string
		want  bool
	}{
		{"no attributes", nil, false},
		{"disabled attribute", []string{"disabled", ""}, true},
		{"aria disabled", []string{"aria-disabled", "true"}, true},
		{"aria enabled", []string{"aria-disabled", "false"}, false},
		{"unrelated attribute", []string{"class", "css-1t62hi8"}, false},
		{"disabled after others", []string{"type", "button", "disabled", "disabled"}, true},
		{"odd attribute list", []string{"disabled"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, disabled(&cdp.Node{Attributes: tt.attrs}))
		})
	}
}

func TestJSString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Specific Dates", `"Specific Dates"`},
		{``, `""`},
		{`say "hi"`, `"say \"hi\""`},
		{`C:\path`, `"C:\\path"`},
		{"line\nbreak", `"line\nbreak"`},
		{"</script>", `"\u003c/script\u003e"`},
		{"Sports & Arts", `"Sports \u0026 Arts"`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, jsString(tt.input))
		})
	}
}

func TestRunRejectsCancelledContext(t *testing.T) {
	b := &ChromeBrowser{ctx: context.Background(), timeout: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := b.run(ctx, "navigate", chromedp.ActionFunc(func(context.Context) error {
		called = true
		return nil
	}))
	require.Error(t, err)
	assert.False(t, called)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeAutomation))
	assert.ErrorIs(t, err, context.Canceled)
}
