package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/dtnitsch/hrscrape/models"
	"github.com/dtnitsch/hrscrape/pkg/match"
)

// SearchProvider runs the register search and returns the result rows.
// A nil error with zero rows is a valid outcome (nothing matched the
// keywords); infrastructure faults are returned as errors.
type SearchProvider interface {
	Search(ctx context.Context, query match.Query) ([]models.CandidateRow, []string, error)
}

// DocumentFetcher downloads one document for a selected candidate row.
type DocumentFetcher interface {
	Fetch(ctx context.Context, row models.CandidateRow, docType models.DocumentType) ([]byte, error)
}

// TextExtractor turns downloaded bytes into text plus metadata.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, origin string) (models.Extraction, error)
}

// DiagnosticsSink persists whatever failure evidence the session can
// still produce. Implementations must tolerate a dead browser.
type DiagnosticsSink interface {
	Capture(ctx context.Context, label string) (models.Diagnostics, error)
}

// Deps collects the orchestrator's collaborators. Ranker and Logger
// are required; a nil DiagnosticsSink disables failure capture.
type Deps struct {
	Search      SearchProvider
	Fetcher     DocumentFetcher
	Extractor   TextExtractor
	Diagnostics DiagnosticsSink
	Ranker      *match.Ranker
	Logger      *slog.Logger

	// StepTimeout bounds each search and fetch call. Zero disables
	// the outer bound; collaborators still apply their own timeouts.
	StepTimeout time.Duration
}

// Request describes one scrape.
type Request struct {
	CompanyName        string
	RegistrationNumber string
	DocumentTypes      []models.DocumentType
}
