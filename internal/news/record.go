package news

import (
	"time"
)

// Record represents one extracted news article
type Record struct {
	Title string `json:"title"`
	// PublishedAt is nil when the date could not be parsed
	PublishedAt *time.Time `json:"published_at"`
	Description string     `json:"description,omitempty"`
	Section     string     `json:"section,omitempty"`
	// ImageURL is empty when the result had no picture
	ImageURL string `json:"image_url,omitempty"`
	// LocalImage is set only after a successful download
	LocalImage    string `json:"local_image,omitempty"`
	PhraseCount   int    `json:"phrase_count"`
	MentionsMoney bool   `json:"mentions_money"`
}

// Key returns the deduplication identity: title plus publication instant.
func (r Record) Key() string {
	if r.PublishedAt == nil {
		return r.Title + "\x00null"
	}
	return r.Title + "\x00" + r.PublishedAt.UTC().Format(time.RFC3339Nano)
}

// Text returns title and description joined for searching
func (r Record) Text() string {
	if r.Description == "" {
		return r.Title
	}
	return r.Title + "\n" + r.Description
}
