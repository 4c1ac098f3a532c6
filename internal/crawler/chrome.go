package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sjsage522/newsextractor/internal/news"
	"sjsage522/newsextractor/logger"
	apperrors "sjsage522/newsextractor/pkg/errors"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

// ChromeOptions configures a chromedp browser session
type ChromeOptions struct {
	// RemoteAddr is the DevTools websocket URL of a running Chrome;
	// empty launches a local headless Chrome
	RemoteAddr string
	Selectors  Selectors
	// StepTimeout bounds every single automation step
	StepTimeout time.Duration
	// SettleDelay is the pause after a click that loads results
	SettleDelay time.Duration
	Log         *logger.Logger
}

// ChromeBrowser implements Browser on top of chromedp
type ChromeBrowser struct {
	ctx       context.Context
	cancel    context.CancelFunc
	selectors Selectors
	timeout   time.Duration
	settle    time.Duration
	log       *logger.Logger
}

// NewChromeSession returns a SessionFunc opening a ChromeBrowser
func NewChromeSession(opts ChromeOptions) SessionFunc {
	return func(ctx context.Context) (Browser, error) {
		return NewChromeBrowser(ctx, opts)
	}
}

// NewChromeBrowser starts a browser whose lifetime is bound to ctx
func NewChromeBrowser(ctx context.Context, opts ChromeOptions) (*ChromeBrowser, error) {
	if opts.StepTimeout <= 0 {
		opts.StepTimeout = 10 * time.Second
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = 2 * time.Second
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if opts.RemoteAddr != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, opts.RemoteAddr)
	} else {
		execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.WindowSize(1280, 700),
		)
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, execOpts...)
	}

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	cancel := func() {
		browserCancel()
		allocCancel()
	}

	// Run with no actions starts the browser
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		return nil, apperrors.NewAutomation("chrome", "failed to start browser", err)
	}

	log := opts.Log.For("chrome")
	if opts.RemoteAddr != "" {
		log.Info().Str("addr", opts.RemoteAddr).Msg("Connected to remote Chrome")
	} else {
		log.Info().Msg("Started local headless Chrome")
	}

	return &ChromeBrowser{
		ctx:       browserCtx,
		cancel:    cancel,
		selectors: opts.Selectors,
		timeout:   opts.StepTimeout,
		settle:    opts.SettleDelay,
		log:       log,
	}, nil
}

// run executes actions within the step timeout, giving up early when ctx is done
func (b *ChromeBrowser) run(ctx context.Context, op string, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewAutomation("chrome", op, err)
	}

	// chromedp needs the browser context as parent; ctx only cancels the step
	stepCtx, cancel := context.WithTimeout(b.ctx, b.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(stepCtx, actions...); err != nil {
		return apperrors.NewAutomation("chrome", op, err)
	}
	return nil
}

// Navigate implements Browser
func (b *ChromeBrowser) Navigate(ctx context.Context, url string) error {
	if err := b.run(ctx, "navigate", chromedp.Navigate(url)); err != nil {
		return err
	}
	b.acceptCookies(ctx)
	return nil
}

// acceptCookies dismisses the consent banner; its absence is not an error
func (b *ChromeBrowser) acceptCookies(ctx context.Context) {
	if b.selectors.CookieAccept == "" {
		return
	}
	err := b.run(ctx, "accept cookies",
		chromedp.WaitVisible(b.selectors.CookieAccept, chromedp.ByQuery),
		chromedp.Sleep(time.Second),
		chromedp.Click(b.selectors.CookieAccept, chromedp.ByQuery),
	)
	if err != nil {
		b.log.Warn().Err(err).Msg("Error accepting cookies")
	}
}

// SubmitSearch implements Browser
func (b *ChromeBrowser) SubmitSearch(ctx context.Context, phrase string) error {
	s := b.selectors
	return b.run(ctx, "submit search",
		chromedp.WaitVisible(s.SearchButton, chromedp.ByQuery),
		chromedp.Click(s.SearchButton, chromedp.ByQuery),
		chromedp.WaitVisible(s.SearchInput, chromedp.ByQuery),
		chromedp.SendKeys(s.SearchInput, phrase, chromedp.ByQuery),
		chromedp.Submit(s.SearchInput, chromedp.ByQuery),
		chromedp.WaitVisible(s.Results, chromedp.ByQuery),
	)
}

// ApplyDateRange implements Browser
func (b *ChromeBrowser) ApplyDateRange(ctx context.Context, window news.DateRange) error {
	s := b.selectors
	if s.DateButton == "" {
		return nil
	}

	err := b.run(ctx, "open date range",
		chromedp.WaitVisible(s.DateButton, chromedp.ByQuery),
		chromedp.Click(s.DateButton, chromedp.ByQuery),
		chromedp.WaitVisible(s.DateOptions, chromedp.ByQuery),
	)
	if err != nil {
		return err
	}
	if err := b.clickOption(ctx, s.DateOptions, s.DateOptionLabel); err != nil {
		return err
	}

	return b.run(ctx, "type date range",
		chromedp.WaitVisible(s.StartDate, chromedp.ByQuery),
		chromedp.SendKeys(s.StartDate, window.Start.Format(s.DateLayout), chromedp.ByQuery),
		chromedp.WaitVisible(s.EndDate, chromedp.ByQuery),
		chromedp.SendKeys(s.EndDate, window.End.Format(s.DateLayout)+kb.Enter, chromedp.ByQuery),
		chromedp.WaitVisible(s.Results, chromedp.ByQuery),
	)
}

// SortByNewest implements Browser
func (b *ChromeBrowser) SortByNewest(ctx context.Context) error {
	s := b.selectors
	if s.SortSelect == "" {
		return nil
	}

	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) return false;
		el.value = %s;
		el.dispatchEvent(new Event('change', { bubbles: true }));
		return true;
	})()`, jsString(s.SortSelect), jsString(s.SortValue))

	var ok bool
	if err := b.run(ctx, "sort by newest",
		chromedp.WaitVisible(s.SortSelect, chromedp.ByQuery),
		chromedp.Evaluate(script, &ok),
		chromedp.Sleep(b.settle),
	); err != nil {
		return err
	}
	if !ok {
		return apperrors.NewAutomation("chrome", "sort by newest", fmt.Errorf("select %s not found", s.SortSelect))
	}
	return nil
}

// ApplyFilter implements Browser
func (b *ChromeBrowser) ApplyFilter(ctx context.Context, section string) error {
	s := b.selectors
	if s.SectionButton == "" {
		return nil
	}

	err := b.run(ctx, "open section filter",
		chromedp.WaitVisible(s.SectionButton, chromedp.ByQuery),
		chromedp.Click(s.SectionButton, chromedp.ByQuery),
		chromedp.WaitVisible(s.SectionOptions, chromedp.ByQuery),
	)
	if err != nil {
		return err
	}
	if err := b.clickOption(ctx, s.SectionOptions, section); err != nil {
		return err
	}

	return b.run(ctx, "close section filter",
		chromedp.Click(s.SectionButton, chromedp.ByQuery),
		chromedp.Sleep(b.settle),
		chromedp.WaitVisible(s.Results, chromedp.ByQuery),
	)
}

// clickOption clicks the first item of optionsSelector whose text contains label
func (b *ChromeBrowser) clickOption(ctx context.Context, optionsSelector, label string) error {
	script := fmt.Sprintf(`(() => {
		for (const item of document.querySelectorAll(%s)) {
			if (item.textContent.includes(%s)) {
				(item.querySelector('input, button, label') || item).click();
				return true;
			}
		}
		return false;
	})()`, jsString(optionsSelector), jsString(label))

	var ok bool
	if err := b.run(ctx, "select "+label, chromedp.Evaluate(script, &ok)); err != nil {
		return err
	}
	if !ok {
		return apperrors.NewAutomation("chrome", "select "+label, fmt.Errorf("no option matching %q", label))
	}
	return nil
}

// LoadMore implements Browser
func (b *ChromeBrowser) LoadMore(ctx context.Context) error {
	s := b.selectors

	var nodes []*cdp.Node
	if err := b.run(ctx, "find load more",
		chromedp.Nodes(s.LoadMore, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	); err != nil {
		return err
	}
	if len(nodes) == 0 || disabled(nodes[0]) {
		return apperrors.NewAutomation("chrome", "load more", ErrNoMoreResults)
	}

	return b.run(ctx, "load more",
		chromedp.ScrollIntoView(s.LoadMore, chromedp.ByQuery),
		chromedp.Click(s.LoadMore, chromedp.ByQuery),
		chromedp.Sleep(b.settle),
	)
}

// ResultElements implements Browser
func (b *ChromeBrowser) ResultElements(ctx context.Context) ([]RawElement, error) {
	var markup string
	if err := b.run(ctx, "list results",
		chromedp.WaitVisible(b.selectors.Results, chromedp.ByQuery),
		chromedp.OuterHTML(b.selectors.Results, &markup, chromedp.ByQuery),
	); err != nil {
		return nil, err
	}

	elements, err := ParseResults(markup, b.selectors)
	if err != nil {
		return nil, apperrors.NewParsing("chrome", "parse results", err)
	}
	return elements, nil
}

// Close implements Browser
func (b *ChromeBrowser) Close() error {
	err := chromedp.Cancel(b.ctx)
	b.cancel()
	if err != nil {
		return apperrors.NewAutomation("chrome", "close browser", err)
	}
	return nil
}

// disabled reports whether a button node cannot be clicked
func disabled(n *cdp.Node) bool {
	for i := 0; i+1 < len(n.Attributes); i += 2 {
		name, value := n.Attributes[i], n.Attributes[i+1]
		if name == "disabled" || (name == "aria-disabled" && value == "true") {
			return true
		}
	}
	return false
}

// jsString quotes s as a JavaScript string literal
func jsString(s string) string {
	quoted, _ := json.Marshal(s)
	return string(quoted)
}
