package worker

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"sjsage522/newsextractor/internal/news"
	"sjsage522/newsextractor/logger"
	apperrors "sjsage522/newsextractor/pkg/errors"
	"sjsage522/newsextractor/services/publisher"
)

// MessageKey is the stream field name of published records
const MessageKey = "b64_news"

// Collector yields the raw records of one search session
type Collector interface {
	CollectAll(ctx context.Context) ([]news.Record, error)
}

// Exporter persists the final records at path
type Exporter interface {
	Export(records []news.Record, path string) error
}

// Options holds the worker dependencies
type Options struct {
	RunID       string
	Collector   Collector
	Window      news.DateRange
	Enricher    *news.Enricher
	Exporter    Exporter
	OutputPath  string
	Publisher   publisher.Publisher
	Environment string
	Log         *logger.Logger
}

// Result summarises one pipeline run
type Result struct {
	Collected        int
	InRange          int
	Exported         int
	ImagesDownloaded int
	ImageFailures    int
	Published        int
	Elapsed          time.Duration
}

// Message is the published form of an exported record
type Message struct {
	RunID  string      `json:"run_id"`
	Record news.Record `json:"record"`
}

// Worker runs the pipeline collect, filter, enrich, finalize, export, publish
type Worker struct {
	opts Options
	log  *logger.Logger
}

// NewWorker creates a new worker
func NewWorker(opts Options) *Worker {
	if opts.Publisher == nil {
		opts.Publisher = publisher.Nop{}
	}
	if opts.Enricher == nil {
		opts.Enricher = news.NewEnricher("", nil, 1, opts.Log)
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Worker{opts: opts, log: log.For("worker")}
}

// Run executes one pipeline run. Only a failed search setup and a failed
// export are returned as errors; everything else degrades to partial output.
func (w *Worker) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{}

	records, err := w.opts.Collector.CollectAll(ctx)
	if err != nil {
		return result, err
	}
	result.Collected = len(records)

	inRange := w.opts.Window.Filter(records)
	result.InRange = len(inRange)
	w.log.Info().
		Int("collected", result.Collected).
		Int("in_range", result.InRange).
		Time("cutoff", w.opts.Window.Start).
		Msg("Collected search results")

	enriched, stats := w.opts.Enricher.Enrich(ctx, inRange)
	result.ImagesDownloaded = stats.Downloaded
	result.ImageFailures = stats.Failed

	final := news.Finalize(enriched)

	if err := w.export(final); err != nil {
		return result, err
	}
	result.Exported = len(final)
	w.log.Info().Int("records", result.Exported).Str("path", w.opts.OutputPath).Msg("Exported records")

	result.Published = w.publish(ctx, final)
	result.Elapsed = time.Since(start)

	if w.log.IsDebugEnabled() {
		w.logSample(final)
	}
	if w.opts.Environment != "production" {
		w.log.Info().Dur("elapsed", result.Elapsed).Msg("Run finished")
	}
	return result, nil
}

func (w *Worker) export(records []news.Record) error {
	if dir := filepath.Dir(w.opts.OutputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.NewExport("worker", "create output directory", err)
		}
	}
	if err := w.opts.Exporter.Export(records, w.opts.OutputPath); err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeExport) {
			return err
		}
		return apperrors.NewExport("worker", "export "+w.opts.OutputPath, err)
	}
	return nil
}

// publish sends every record and returns how many were accepted
func (w *Worker) publish(ctx context.Context, records []news.Record) int {
	published := 0
	for _, r := range records {
		data, err := json.Marshal(Message{RunID: w.opts.RunID, Record: r})
		if err != nil {
			w.log.Error().Err(err).Str("title", r.Title).Msg("Failed to encode record")
			continue
		}
		if err := w.opts.Publisher.Publish(ctx, MessageKey, data); err != nil {
			// the sink is down or the run is out of time; stop trying
			w.log.Warn().Err(err).Int("published", published).Msg("Failed to publish records")
			return published
		}
		published++
	}
	return published
}

// logSample logs the first exported record at debug level
func (w *Worker) logSample(records []news.Record) {
	if len(records) == 0 {
		return
	}

	sample := map[string]interface{}{
		"title":          records[0].Title,
		"section":        records[0].Section,
		"phrase_count":   records[0].PhraseCount,
		"mentions_money": records[0].MentionsMoney,
	}
	if records[0].PublishedAt != nil {
		sample["published_at"] = records[0].PublishedAt.Format(time.RFC3339)
	}
	if records[0].LocalImage != "" {
		sample["local_image"] = "OK"
	}
	w.log.Debug().Interface("sample", sample).Msg("First exported record")
}
