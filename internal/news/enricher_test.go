package news

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockDownloader records requested downloads and fails URLs containing "broken"
type MockDownloader struct {
	mu    sync.Mutex
	calls map[string]string
}

func NewMockDownloader() *MockDownloader {
	return &MockDownloader{calls: make(map[string]string)}
}

func (m *MockDownloader) Download(ctx context.Context, url, filename string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[filename] = url
	if strings.Contains(url, "broken") {
		return "", errors.New("404 not found")
	}
	return filename, nil
}

func TestCountPhrase(t *testing.T) {
	assert.Equal(t, 2, CountPhrase("Lakers beat Lakers", "Lakers"))
	assert.Equal(t, 3, CountPhrase("LAKERS lakers\nLaKeRs", "Lakers"))
	assert.Equal(t, 1, CountPhrase("aaaa", "aaa"), "occurrences do not overlap")
	assert.Equal(t, 0, CountPhrase("Celtics", "Lakers"))
	assert.Equal(t, 0, CountPhrase("anything", ""))
}

func TestPhraseCountAcrossTitleAndDescription(t *testing.T) {
	r := EnrichText(Record{Title: "Lakers beat Lakers", Description: ""}, "Lakers")
	assert.Equal(t, 2, r.PhraseCount)

	r = EnrichText(Record{Title: "Lakers win", Description: "The lakers won again"}, "Lakers")
	assert.Equal(t, 2, r.PhraseCount)

	// joining title and description must not create a match
	r = EnrichText(Record{Title: "Big", Description: "Apple"}, "BigApple")
	assert.Equal(t, 0, r.PhraseCount)
}

func TestMentionsMoney(t *testing.T) {
	positive := []string{
		"Tickets cost $120",
		"A $1.5 million deal",
		"Salary of $40,000,000",
		"Fined 120 USD",
		"Costs 25 dollars",
		"worth 3 million dollars",
		"priced at €30",
		"sold for EUR 45",
		"£5 entry",
	}
	for _, s := range positive {
		assert.True(t, MentionsMoney(s), s)
	}

	negative := []string{
		"Lakers won the game 120-110",
		"a 250-pound lineman",
		"$ signs everywhere",
		"USD strengthens",
		"",
	}
	for _, s := range negative {
		assert.False(t, MentionsMoney(s), s)
	}
}

func TestEnrichTextChecksDescription(t *testing.T) {
	r := EnrichText(Record{Title: "Tickets", Description: "Tickets cost $120"}, "x")
	assert.True(t, r.MentionsMoney)

	r = EnrichText(Record{Title: "Final score", Description: "Lakers won the game 120-110"}, "x")
	assert.False(t, r.MentionsMoney)
}

func TestImageFilenameDeterministic(t *testing.T) {
	r := Record{Title: "Lakers beat Celtics in overtime", PublishedAt: at("2024-05-02T00:00:00Z"), ImageURL: "https://img.example.com/a.png"}

	name := ImageFilename(r)
	assert.True(t, strings.HasPrefix(name, "LakersbeatCeltics-"), name)
	assert.True(t, strings.HasSuffix(name, ".png"), name)
	assert.Equal(t, name, ImageFilename(r))

	other := r
	other.PublishedAt = at("2024-05-03T00:00:00Z")
	assert.NotEqual(t, name, ImageFilename(other), "same title on another date must not collide")
}

func TestEnrichDownloadsImages(t *testing.T) {
	dl := NewMockDownloader()
	e := NewEnricher("Lakers", dl, 2, nil)

	records := []Record{
		{Title: "Lakers one", PublishedAt: at("2024-05-02T00:00:00Z"), ImageURL: "https://img.example.com/1.jpg"},
		{Title: "No picture", PublishedAt: at("2024-05-02T00:00:00Z")},
		{Title: "Broken picture", PublishedAt: at("2024-05-02T00:00:00Z"), ImageURL: "https://img.example.com/broken.jpg"},
		{Title: "Lakers one", PublishedAt: at("2024-05-02T00:00:00Z"), ImageURL: "https://img.example.com/1.jpg"},
	}

	out, stats := e.Enrich(context.Background(), records)
	require.Len(t, out, 4)

	assert.Equal(t, ImageFilename(records[0]), out[0].LocalImage)
	assert.Equal(t, out[0].LocalImage, out[3].LocalImage)
	assert.Empty(t, out[1].LocalImage)
	assert.Empty(t, out[2].LocalImage, "failed download leaves the filename unset")
	assert.Equal(t, "Broken picture", out[2].Title, "failed download keeps the record")

	assert.Equal(t, 1, out[0].PhraseCount)
	assert.Equal(t, Stats{Downloaded: 1, Failed: 1}, stats)
	assert.Len(t, dl.calls, 2, "identical records share one download")

	assert.Empty(t, records[0].LocalImage, "input is not mutated")
}

func TestEnrichWithoutDownloader(t *testing.T) {
	e := NewEnricher("Lakers", nil, 0, nil)

	out, stats := e.Enrich(context.Background(), []Record{{Title: "Lakers", ImageURL: "https://img.example.com/1.jpg"}})
	require.Len(t, out, 1)
	assert.Empty(t, out[0].LocalImage)
	assert.Equal(t, Stats{}, stats)
}
