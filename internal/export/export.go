package export

import (
	"time"

	"sjsage522/newsextractor/internal/news"
)

// NullDate marks a record whose publication date could not be read
const NullDate = "N/A"

// Header is the heading row of every exported sheet
var Header = []string{
	"Title",
	"Date",
	"Description",
	"Section",
	"Picture Filename",
	"Search Phrase Count",
	"Contains Money",
}

// SpreadsheetWriter persists a header and rows at path, all or nothing
type SpreadsheetWriter interface {
	Write(header []string, rows [][]any, path string) error
}

// Exporter maps records to rows and hands them to a SpreadsheetWriter
type Exporter struct {
	writer SpreadsheetWriter
}

// NewExporter creates an exporter
func NewExporter(w SpreadsheetWriter) *Exporter {
	return &Exporter{writer: w}
}

// Export writes records to path in the given order
func (e *Exporter) Export(records []news.Record, path string) error {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row(r))
	}
	return e.writer.Write(Header, rows, path)
}

// Row returns the cells of r in Header order
func Row(r news.Record) []any {
	date := NullDate
	if r.PublishedAt != nil {
		date = r.PublishedAt.Format(time.RFC3339)
	}
	return []any{
		r.Title,
		date,
		r.Description,
		r.Section,
		r.LocalImage,
		r.PhraseCount,
		r.MentionsMoney,
	}
}
