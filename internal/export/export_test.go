package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"sjsage522/newsextractor/internal/news"
	apperrors "sjsage522/newsextractor/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// recordingWriter keeps what it was asked to write
type recordingWriter struct {
	header []string
	rows   [][]any
	path   string
}

func (w *recordingWriter) Write(header []string, rows [][]any, path string) error {
	w.header, w.rows, w.path = header, rows, path
	return nil
}

func TestExportMapsRecords(t *testing.T) {
	published := time.Date(2024, time.October, 5, 14, 30, 0, 0, time.UTC)
	records := []news.Record{
		{
			Title:         "Climate Talks Stall",
			PublishedAt:   &published,
			Description:   "No deal on $300 billion.",
			Section:       "World",
			LocalImage:    "ClimateTalksStall-1a2b3c4d.jpg",
			PhraseCount:   2,
			MentionsMoney: true,
		},
		{Title: "Undated"},
	}

	w := &recordingWriter{}
	require.NoError(t, NewExporter(w).Export(records, "out.xlsx"))

	assert.Equal(t, Header, w.header)
	assert.Equal(t, "out.xlsx", w.path)
	require.Len(t, w.rows, 2)
	assert.Equal(t, []any{
		"Climate Talks Stall", "2024-10-05T14:30:00Z", "No deal on $300 billion.",
		"World", "ClimateTalksStall-1a2b3c4d.jpg", 2, true,
	}, w.rows[0])
	assert.Equal(t, []any{"Undated", NullDate, "", "", "", 0, false}, w.rows[1])
}

func TestExcelWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.xlsx")
	rows := [][]any{
		{"Climate Talks Stall", "2024-10-05T14:30:00Z", "desc", "World", "a.jpg", 2, true},
	}

	require.NoError(t, NewExcelWriter().Write(Header, rows, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Header, got[0])
	assert.Equal(t, "Climate Talks Stall", got[1][0])
	assert.Equal(t, "2", got[1][5])
	assert.Equal(t, "TRUE", got[1][6])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExcelWriterHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, NewExporter(NewExcelWriter()).Export(nil, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{Header}, got)
}

func TestExcelWriterBadDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "news.xlsx")

	err := NewExcelWriter().Write(Header, nil, path)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExport))
	assert.NoFileExists(t, path)
}

func TestExcelWriterReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	require.NoError(t, NewExcelWriter().Write(Header, [][]any{{"New"}}, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
