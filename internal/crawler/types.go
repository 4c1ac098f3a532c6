package crawler

import (
	"context"

	"sjsage522/newsextractor/internal/news"
	apperrors "sjsage522/newsextractor/pkg/errors"
)

// ErrNoMoreResults is returned by Browser.LoadMore when the control to load
// further results is absent or disabled.
var ErrNoMoreResults = apperrors.ErrNoMoreResults

// Field names one piece of a search result
type Field string

const (
	FieldTitle       Field = "title"
	FieldDate        Field = "date"
	FieldDescription Field = "description"
	FieldSection     Field = "section"
	FieldImage       Field = "image"
)

// RawElement is one search result item, exposing only text and attribute reads
type RawElement interface {
	// Text returns the whitespace-normalised text of field
	Text(field Field) (string, bool)
	// Attr returns attribute name of the element matched by field
	Attr(field Field, name string) (string, bool)
}

// Browser is the UI automation capability driving one search session
type Browser interface {
	// Navigate opens url and dismisses a cookie banner when present
	Navigate(ctx context.Context, url string) error
	// SubmitSearch types phrase into the site search and submits it
	SubmitSearch(ctx context.Context, phrase string) error
	// ApplyDateRange restricts results to the window on the site side
	ApplyDateRange(ctx context.Context, window news.DateRange) error
	// SortByNewest orders results reverse chronologically
	SortByNewest(ctx context.Context) error
	// ApplyFilter selects the section whose label contains section
	ApplyFilter(ctx context.Context, section string) error
	// LoadMore appends the next page of results, or returns ErrNoMoreResults
	LoadMore(ctx context.Context) error
	// ResultElements lists every result currently shown, oldest load first
	ResultElements(ctx context.Context) ([]RawElement, error)
	// Close tears down the session
	Close() error
}

// SessionFunc acquires a new browser session
type SessionFunc func(ctx context.Context) (Browser, error)

// Selectors contains CSS selectors for the site's search page
type Selectors struct {
	CookieAccept string

	SearchButton string
	SearchInput  string

	DateButton      string
	DateOptions     string
	DateOptionLabel string
	StartDate       string
	EndDate         string
	DateLayout      string

	SortSelect string
	SortValue  string

	SectionButton  string
	SectionOptions string

	LoadMore string

	Results     string
	Item        string
	Title       string
	Date        string
	Description string
	Section     string
	Image       string

	// Remove lists selectors dropped from an item before reading text, such
	// as screen-reader-only labels
	Remove []string
}

// fieldSelector returns the selector reading field
func (s Selectors) fieldSelector(field Field) string {
	switch field {
	case FieldTitle:
		return s.Title
	case FieldDate:
		return s.Date
	case FieldDescription:
		return s.Description
	case FieldSection:
		return s.Section
	case FieldImage:
		return s.Image
	}
	return ""
}
