package crawler

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"sjsage522/newsextractor/internal/news"

	"github.com/araddon/dateparse"
)

var (
	relativeDateRegex = regexp.MustCompile(`^(\d+|an?)\s*(s|secs?|seconds?|m|mins?|minutes?|h|hrs?|hours?|d|days?|w|wks?|weeks?)\s+ago$`)

	// abbreviations with a trailing period, and "Sept" which time.Parse rejects
	monthDotRegex = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|jun|jul|aug|sept?|oct|nov|dec)\.`)
	septRegex     = regexp.MustCompile(`(?i)\bsept\b`)

	absoluteLayouts = []string{
		"January 2, 2006",
		"Jan 2, 2006",
		"January 2 2006",
		"Jan 2 2006",
		"2 January 2006",
		"2 Jan 2006",
		"2006-01-02",
		time.RFC3339,
	}

	yearlessLayouts = []string{
		"January 2",
		"Jan 2",
	}
)

// Parser converts raw result elements into records. Parsing never fails:
// missing fields become empty strings and unreadable dates become nil.
type Parser struct {
	baseURL *url.URL
	now     func() time.Time
}

// NewParser creates a parser resolving relative image URLs against baseURL
func NewParser(baseURL string, now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	p := &Parser{now: now}
	if u, err := url.Parse(baseURL); err == nil && u.IsAbs() {
		p.baseURL = u
	}
	return p
}

// Parse extracts a record from one result element
func (p *Parser) Parse(e RawElement) news.Record {
	title, _ := e.Text(FieldTitle)
	description, _ := e.Text(FieldDescription)
	section, _ := e.Text(FieldSection)

	dateText, ok := e.Text(FieldDate)
	if !ok {
		dateText, _ = e.Attr(FieldDate, "datetime")
	}

	return news.Record{
		Title:       title,
		PublishedAt: ParseDate(dateText, p.now()),
		Description: description,
		Section:     section,
		ImageURL:    p.imageURL(e),
	}
}

// imageURL reads the picture source, resolving it against the base URL
func (p *Parser) imageURL(e RawElement) string {
	src, ok := e.Attr(FieldImage, "src")
	if !ok || strings.HasPrefix(src, "data:") {
		if src, ok = e.Attr(FieldImage, "data-src"); !ok {
			return ""
		}
	}

	u, err := url.Parse(src)
	if err != nil {
		return ""
	}
	if !u.IsAbs() {
		if p.baseURL == nil {
			return ""
		}
		u = p.baseURL.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// ParseDate resolves an absolute ("May 2, 2024", "Oct. 5") or relative
// ("3h ago", "2 days ago", "yesterday") date string against now. It returns
// nil when the string cannot be understood.
func ParseDate(s string, now time.Time) *time.Time {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return nil
	}
	loc := now.Location()
	lower := strings.ToLower(s)

	switch lower {
	case "just now", "now":
		return &now
	case "today":
		t := midnight(now)
		return &t
	case "yesterday":
		t := midnight(now).AddDate(0, 0, -1)
		return &t
	}

	if m := relativeDateRegex.FindStringSubmatch(lower); m != nil {
		return relativeDate(m[1], m[2], now)
	}

	normalized := monthDotRegex.ReplaceAllString(s, "$1")
	normalized = septRegex.ReplaceAllString(normalized, "Sep")

	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, normalized, loc); err == nil {
			return &t
		}
	}

	for _, layout := range yearlessLayouts {
		t, err := time.ParseInLocation(layout, normalized, loc)
		if err != nil {
			continue
		}
		t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		if t.After(now) {
			t = t.AddDate(-1, 0, 0)
		}
		return &t
	}

	t, err := dateparse.ParseIn(normalized, loc)
	if err != nil || t.Year() < 1900 || t.Year() > now.Year()+1 {
		return nil
	}
	return &t
}

func relativeDate(amount, unit string, now time.Time) *time.Time {
	n := 1
	if amount != "a" && amount != "an" {
		v, err := strconv.Atoi(amount)
		if err != nil {
			return nil
		}
		n = v
	}

	var t time.Time
	switch unit[0] {
	case 's':
		t = now.Add(-time.Duration(n) * time.Second)
	case 'm':
		t = now.Add(-time.Duration(n) * time.Minute)
	case 'h':
		t = now.Add(-time.Duration(n) * time.Hour)
	case 'd':
		t = now.AddDate(0, 0, -n)
	case 'w':
		t = now.AddDate(0, 0, -7*n)
	default:
		return nil
	}
	return &t
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
