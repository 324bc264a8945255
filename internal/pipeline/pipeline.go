// Package pipeline wires the dataset store, intent router, fallback
// responder, result formatter, and query logger into the engine's public
// entry point.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/salescope-dev/salescope/internal/dataset"
	"github.com/salescope-dev/salescope/internal/fallback"
	"github.com/salescope-dev/salescope/internal/output"
	"github.com/salescope-dev/salescope/internal/qlog"
	"github.com/salescope-dev/salescope/internal/router"
)

// Pipeline answers natural-language questions about one loaded dataset.
// The store is read-only after construction; the only mutable shared state
// is the query log, which serializes its own appends.
type Pipeline struct {
	store     *dataset.Store
	router    *router.Router
	responder *fallback.Responder
	log       *qlog.Logger
	logger    *slog.Logger
	now       func() time.Time
	recording bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the timestamp source for log entries.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithoutRecording disables the query-log append, for presentation-only runs.
func WithoutRecording() Option {
	return func(p *Pipeline) { p.recording = false }
}

// New constructs a Pipeline over an already-loaded store.
func New(store *dataset.Store, responder *fallback.Responder, log *qlog.Logger, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:     store,
		router:    router.New(),
		responder: responder,
		log:       log,
		logger:    logger,
		now:       time.Now,
		recording: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Answer classifies the query, computes or delegates the response, records
// the interaction, and returns the formatted response. It never returns an
// error: every failure mode is converted to a displayable string, and a
// failed log append is reported but does not suppress the answer.
func (p *Pipeline) Answer(ctx context.Context, query string) string {
	normalized := router.Normalize(query)

	var response string
	if res, matched := p.router.Route(p.store, normalized); matched {
		response = output.FormatResult(res)
	} else {
		p.logger.Debug("no intent matched, delegating to fallback", "query", normalized)
		response = p.responder.Respond(ctx, p.store, query)
	}

	if p.recording {
		if err := p.log.Append(p.now(), normalized, response); err != nil {
			p.logger.Warn("query log append failed", "error", err)
		}
	}

	return response
}

// QueryLog returns the full query log rendered as delimited text, or the
// no-logs sentinel when nothing has been recorded yet.
func (p *Pipeline) QueryLog() string {
	text, err := p.log.Render()
	if err != nil {
		p.logger.Error("query log read failed", "error", err)
		return "Unable to read query log: " + err.Error()
	}
	return text
}
