package news

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func titles(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Title
	}
	return out
}

func TestFinalizeDeduplicatesKeepingFirst(t *testing.T) {
	records := []Record{
		{Title: "Lakers win", PublishedAt: at("2024-05-02T00:00:00Z"), Description: "first"},
		{Title: "Lakers win", PublishedAt: at("2024-05-02T00:00:00Z"), Description: "second"},
		{Title: "Lakers win", PublishedAt: at("2024-05-03T00:00:00Z")},
	}

	out := Finalize(records)
	assert.Len(t, out, 2)
	assert.Equal(t, "first", out[1].Description)
}

func TestFinalizeSameInstantDifferentZoneIsDuplicate(t *testing.T) {
	a := at("2024-05-02T12:00:00Z")
	b := a.In(mustZone(t, "Asia/Tokyo"))

	out := Finalize([]Record{{Title: "x", PublishedAt: a}, {Title: "x", PublishedAt: &b}})
	assert.Len(t, out, 1)
}

func TestFinalizeOrdering(t *testing.T) {
	records := []Record{
		{Title: "old", PublishedAt: at("2024-05-01T00:00:00Z"), Section: "Sports"},
		{Title: "new-world", PublishedAt: at("2024-05-03T00:00:00Z"), Section: "world"},
		{Title: "new-arts", PublishedAt: at("2024-05-03T00:00:00Z"), Section: "Arts"},
		{Title: "undated", Section: "A"},
		{Title: "new-Sports-1", PublishedAt: at("2024-05-03T00:00:00Z"), Section: "sports"},
		{Title: "new-sports-2", PublishedAt: at("2024-05-03T00:00:00Z"), Section: "Sports"},
	}

	out := Finalize(records)
	assert.Equal(t, []string{"new-arts", "new-Sports-1", "new-sports-2", "new-world", "old", "undated"}, titles(out))
}

func TestFinalizeIsStable(t *testing.T) {
	var records []Record
	for _, title := range []string{"c", "a", "b", "d"} {
		records = append(records, Record{Title: title, PublishedAt: at("2024-05-03T00:00:00Z"), Section: "Sports"})
	}

	assert.Equal(t, []string{"c", "a", "b", "d"}, titles(Finalize(records)))
}

func TestFinalizeIsIdempotent(t *testing.T) {
	records := []Record{
		{Title: "b", PublishedAt: at("2024-05-01T00:00:00Z"), Section: "World"},
		{Title: "a", PublishedAt: at("2024-05-04T00:00:00Z"), Section: "Sports"},
		{Title: "b", PublishedAt: at("2024-05-01T00:00:00Z"), Section: "World"},
		{Title: "c", PublishedAt: at("2024-05-04T00:00:00Z"), Section: "Arts"},
	}

	once := Finalize(records)
	assert.Equal(t, once, Finalize(once))
}

func TestFinalizeEmpty(t *testing.T) {
	assert.Empty(t, Finalize(nil))
}

func mustZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Skip("tzdata not available")
	}
	return loc
}
