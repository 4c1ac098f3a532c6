package crawler

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// selectionElement is a RawElement backed by a goquery selection
type selectionElement struct {
	sel       *goquery.Selection
	selectors Selectors
}

// ParseResults splits the results container markup into result elements
func ParseResults(markup string, selectors Selectors) ([]RawElement, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("HTML parsing error: %w", err)
	}

	var elements []RawElement
	doc.Find(selectors.Item).Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, selectionElement{sel: s, selectors: selectors})
	})
	return elements, nil
}

// cleanSelection removes the configured elements from a clone of sel
func (e selectionElement) cleanSelection(sel *goquery.Selection) *goquery.Selection {
	if len(e.selectors.Remove) == 0 {
		return sel
	}

	// Clone the selection to avoid modifying the original
	clone := sel.Clone()
	for _, removal := range e.selectors.Remove {
		clone.Find(removal).Remove()
	}
	return clone
}

func (e selectionElement) find(field Field) *goquery.Selection {
	selector := e.selectors.fieldSelector(field)
	if selector == "" {
		return e.sel.Slice(0, 0)
	}
	return e.sel.Find(selector).First()
}

// Text implements RawElement
func (e selectionElement) Text(field Field) (string, bool) {
	found := e.find(field)
	if found.Length() == 0 {
		return "", false
	}

	text := strings.Join(strings.Fields(e.cleanSelection(found).Text()), " ")
	return text, text != ""
}

// Attr implements RawElement
func (e selectionElement) Attr(field Field, name string) (string, bool) {
	found := e.find(field)
	if found.Length() == 0 {
		return "", false
	}

	value, ok := found.Attr(name)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}
