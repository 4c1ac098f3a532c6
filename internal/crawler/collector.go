package crawler

import (
	"context"
	"errors"
	"iter"
	"time"

	"sjsage522/newsextractor/internal/news"
	"sjsage522/newsextractor/logger"
	apperrors "sjsage522/newsextractor/pkg/errors"
)

// DefaultRetryDelay is the pause before retrying a failed page load
const DefaultRetryDelay = 2 * time.Second

// maxClockSkew bounds how far past Window.End a parsed date may land and still
// be treated as published at Window.End
const maxClockSkew = 24 * time.Hour

// Query describes one search session
type Query struct {
	URL     string
	Phrase  string
	Section string
	Window  news.DateRange
	// ShowMore is the number of extra page loads after the first page
	ShowMore int
}

// Collector drives the paginated search and yields parsed records
type Collector struct {
	open       SessionFunc
	parser     *Parser
	query      Query
	retryDelay time.Duration
	log        *logger.Logger
}

// NewCollector creates a collector. Every Collect call opens a new session.
func NewCollector(open SessionFunc, parser *Parser, query Query, log *logger.Logger) *Collector {
	if log == nil {
		log = logger.Nop()
	}
	return &Collector{
		open:       open,
		parser:     parser,
		query:      query,
		retryDelay: DefaultRetryDelay,
		log:        log.For("collector"),
	}
}

// SetRetryDelay overrides the pause before a retry
func (c *Collector) SetRetryDelay(d time.Duration) {
	c.retryDelay = d
}

// Collect returns the lazy sequence of records in the order the site shows
// them. A non-nil error is yielded at most once, last, and only when the
// session could not be set up. Failures while paginating end the sequence
// early without an error.
func (c *Collector) Collect(ctx context.Context) iter.Seq2[news.Record, error] {
	return func(yield func(news.Record, error) bool) {
		if err := c.run(ctx, func(r news.Record) bool { return yield(r, nil) }); err != nil {
			yield(news.Record{}, err)
		}
	}
}

// CollectAll drains Collect into a slice
func (c *Collector) CollectAll(ctx context.Context) ([]news.Record, error) {
	var records []news.Record
	for r, err := range c.Collect(ctx) {
		if err != nil {
			return records, err
		}
		records = append(records, r)
	}
	return records, nil
}

func (c *Collector) run(ctx context.Context, yield func(news.Record) bool) error {
	browser, err := c.open(ctx)
	if err != nil {
		return automationError("open session", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			c.log.Warn().Err(err).Msg("Failed to close browser session")
		}
	}()

	if err := c.setup(ctx, browser); err != nil {
		return err
	}

	seen := 0
	for page := 0; ; page++ {
		if ctx.Err() != nil {
			c.log.Warn().Err(ctx.Err()).Int("page", page).Msg("Stopping pagination")
			return nil
		}

		var elements []RawElement
		err := c.withRetry(ctx, "list results", func() error {
			var err error
			elements, err = browser.ResultElements(ctx)
			return err
		})
		if err != nil {
			c.log.Warn().Err(err).Int("page", page).Msg("Failed to read results, keeping partial results")
			return nil
		}

		if seen > len(elements) {
			seen = 0
		}
		batch := elements[seen:]
		seen = len(elements)

		inRange := 0
		for _, e := range batch {
			record := c.parser.Parse(e)
			if record.PublishedAt == nil {
				c.log.Warn().Str("title", record.Title).Msg("Unparseable result date")
			} else {
				record.PublishedAt = c.clampToWindow(*record.PublishedAt)
			}
			if c.query.Window.InRange(record) {
				inRange++
			}
			if !yield(record) {
				return nil
			}
		}

		c.log.Debug().
			Int("page", page).
			Int("loaded", len(batch)).
			Int("in_range", inRange).
			Msg("Parsed results page")

		if page > 0 && len(batch) == 0 {
			c.log.Info().Int("page", page).Msg("No new results loaded")
			return nil
		}
		if inRange == 0 {
			c.log.Info().Int("page", page).Msg("Page has no results in the date range, stopping")
			return nil
		}
		if page >= c.query.ShowMore {
			return nil
		}

		err = c.withRetry(ctx, "load more", func() error {
			return browser.LoadMore(ctx)
		})
		if errors.Is(err, ErrNoMoreResults) {
			c.log.Info().Int("page", page).Msg("No more results available")
			return nil
		}
		if err != nil {
			c.log.Warn().Err(err).Int("page", page).Msg("Failed to load more results, keeping partial results")
			return nil
		}
	}
}

// setup performs the search steps; any step failing twice is fatal
func (c *Collector) setup(ctx context.Context, browser Browser) error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"navigate", func() error { return browser.Navigate(ctx, c.query.URL) }},
		{"submit search", func() error { return browser.SubmitSearch(ctx, c.query.Phrase) }},
		{"apply date range", func() error { return browser.ApplyDateRange(ctx, c.query.Window) }},
		{"sort by newest", func() error { return browser.SortByNewest(ctx) }},
		{"apply section filter", func() error { return browser.ApplyFilter(ctx, c.query.Section) }},
	}

	for _, step := range steps {
		if err := c.withRetry(ctx, step.name, step.fn); err != nil {
			return err
		}
		c.log.Debug().Str("step", step.name).Msg("Search step done")
	}
	return nil
}

// withRetry runs fn and, when it fails with a retryable error, once more
// after the retry delay.
func (c *Collector) withRetry(ctx context.Context, op string, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	err = automationError(op, err)
	if !apperrors.IsRetryable(err) {
		return err
	}

	c.log.Warn().Err(err).Str("op", op).Dur("delay", c.retryDelay).Msg("Retrying after automation error")

	timer := time.NewTimer(c.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return automationError(op, ctx.Err())
	case <-timer.C:
	}

	if err := fn(); err != nil {
		return automationError(op, err)
	}
	return nil
}

// automationError wraps err as an automation error unless already typed
func automationError(op string, err error) error {
	var ee *apperrors.ExtractorError
	if errors.As(err, &ee) {
		return err
	}
	return apperrors.NewAutomation("collector", op, err)
}

// clampToWindow pulls dates at most maxClockSkew past the window end back
// onto it; "just now" may resolve slightly after Window.End
func (c *Collector) clampToWindow(t time.Time) *time.Time {
	end := c.query.Window.End
	if t.After(end) && t.Sub(end) <= maxClockSkew {
		return &end
	}
	return &t
}
