package news

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"sjsage522/newsextractor/helpers"
	"sjsage522/newsextractor/logger"
)

// moneyPatterns detect an amount of money: a currency symbol right before
// digits, digits followed by a currency code or word, or a code before digits.
var moneyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[$€£¥₹]\d`),
	regexp.MustCompile(`(?i)\b\d[\d,]*(?:\.\d+)?\s?(?:(?:thousand|million|billion|trillion)\s)?(?:USD|EUR|GBP|JPY|dollars?|euros?)\b`),
	regexp.MustCompile(`\b(?:USD|EUR|GBP|JPY)\s?\d`),
}

// ImageDownloader stores a remote image under the picture directory
type ImageDownloader interface {
	Download(ctx context.Context, url, filename string) (string, error)
}

// Enricher computes derived fields of records
type Enricher struct {
	phrase  string
	images  ImageDownloader
	workers int
	log     *logger.Logger
}

// NewEnricher creates an enricher; images may be nil to skip downloads
func NewEnricher(phrase string, images ImageDownloader, workers int, log *logger.Logger) *Enricher {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Enricher{
		phrase:  phrase,
		images:  images,
		workers: workers,
		log:     log.For("enricher"),
	}
}

// Stats summarises the downloads of one Enrich call
type Stats struct {
	Downloaded int
	Failed     int
}

// Enrich returns enriched copies of records in the same order. A failed
// download leaves LocalImage empty and never drops the record.
func (e *Enricher) Enrich(ctx context.Context, records []Record) ([]Record, Stats) {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = EnrichText(r, e.phrase)
	}

	if e.images == nil {
		return out, Stats{}
	}
	return out, e.downloadAll(ctx, out)
}

// downloadAll fetches pictures with a bounded number of goroutines. Records
// sharing an identity share one file.
func (e *Enricher) downloadAll(ctx context.Context, records []Record) Stats {
	byFile := make(map[string][]int)
	var order []string
	for i, r := range records {
		if r.ImageURL == "" {
			continue
		}
		name := ImageFilename(r)
		if _, ok := byFile[name]; !ok {
			order = append(order, name)
		}
		byFile[name] = append(byFile[name], i)
	}

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		stats Stats
		sem   = make(chan struct{}, e.workers)
	)

	for _, name := range order {
		idx := byFile[name]
		wg.Add(1)
		sem <- struct{}{}
		go func(name string, idx []int) {
			defer wg.Done()
			defer func() { <-sem }()

			url := records[idx[0]].ImageURL
			stored, err := e.images.Download(ctx, url, name)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				stats.Failed++
				e.log.Warn().Err(err).Str("image_url", url).Str("title", records[idx[0]].Title).Msg("Image download failed")
				return
			}
			stats.Downloaded++
			for _, i := range idx {
				records[i].LocalImage = stored
			}
		}(name, idx)
	}
	wg.Wait()

	return stats
}

// EnrichText sets the phrase count and money flag on a copy of r
func EnrichText(r Record, phrase string) Record {
	r.PhraseCount = CountPhrase(r.Text(), phrase)
	r.MentionsMoney = MentionsMoney(r.Title) || MentionsMoney(r.Description)
	return r
}

// CountPhrase counts case-insensitive, non-overlapping occurrences of phrase
func CountPhrase(text, phrase string) int {
	if strings.TrimSpace(phrase) == "" {
		return 0
	}
	return strings.Count(strings.ToLower(text), strings.ToLower(phrase))
}

// MentionsMoney reports whether text contains an amount of money
func MentionsMoney(text string) bool {
	for _, p := range moneyPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// ImageFilename derives the local picture name from the record identity:
// the first three title words, a short identity hash and the URL extension.
func ImageFilename(r Record) string {
	return helpers.TitleStem(r.Title, 3) + "-" + helpers.ShortHash(r.Key()) + helpers.ImageExt(r.ImageURL)
}
