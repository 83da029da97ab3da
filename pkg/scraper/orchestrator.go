// Package scraper drives a single company scrape through an explicit
// state machine: search, rank, select, fetch documents. Every fault a
// collaborator can produce is folded into the failure taxonomy so that
// Run always returns a classified outcome instead of an error.
package scraper

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dtnitsch/hrscrape/models"
	"github.com/dtnitsch/hrscrape/pkg/match"
	"github.com/dtnitsch/hrscrape/pkg/regnum"
)

// Orchestrator runs one scrape at a time. It is reusable across runs
// but not safe for concurrent use.
type Orchestrator struct {
	deps  Deps
	state State
	debug models.DebugInfo
}

func New(deps Deps) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Orchestrator{deps: deps, state: StateIdle}
}

// State returns the machine state reached by the last Run.
func (o *Orchestrator) State() State { return o.state }

// Run executes one scrape and always returns an outcome: collaborator
// faults, timeouts, and panics are converted into the failure taxonomy
// here and never propagate past this method.
func (o *Orchestrator) Run(ctx context.Context, req Request) (outcome models.ScrapeOutcome) {
	o.state = StateIdle
	o.debug = models.DebugInfo{}

	defer func() {
		if r := recover(); r != nil {
			o.deps.Logger.Error("panic during scrape run", "panic", r, "state", o.state.String())
			outcome = o.fail(ctx, failf(KindUnexpectedError, "unexpected error: %v", r))
		}
	}()

	log := o.deps.Logger.With("company", req.CompanyName)
	query := match.Query{Name: req.CompanyName, RegistrationNumber: req.RegistrationNumber}

	o.advance(EventStart)
	sctx, cancel := o.stepCtx(ctx)
	rows, messages, err := o.deps.Search.Search(sctx, query)
	cancel()
	o.debug.UIMessages = append(o.debug.UIMessages, messages...)
	if err != nil {
		return o.fail(ctx, AsFailure(err, KindNetworkOrSiteError))
	}
	log.Info("search complete", "rows", len(rows))

	o.advance(EventResultsLoaded)
	sel := o.deps.Ranker.Rank(query, rows)
	switch sel.Decision {
	case match.DecisionAccepted:
	case match.DecisionNoCandidates:
		return o.fail(ctx, failf(KindNoCompaniesFound, "no companies found for %q", req.CompanyName))
	case match.DecisionBelowThreshold:
		return o.fail(ctx, failf(KindNoSuitableMatch, "no suitable match for %q among %d candidates", req.CompanyName, len(rows)))
	case match.DecisionAmbiguous:
		return o.fail(ctx, failf(KindAmbiguousMatch, "ambiguous results for %q, provide a registration number", req.CompanyName))
	default:
		return o.fail(ctx, failf(KindUnexpectedError, "unhandled ranking decision %v", sel.Decision))
	}
	best := sel.Best
	log.Info("candidate selected",
		"name", best.Name,
		"registration", best.RegistrationText,
		"score", best.CombinedScore)

	o.advance(EventCandidateChosen)
	company := &models.CompanyInfo{
		Name:  best.Name,
		HRB:   canonicalRegistration(best.RegistrationText),
		Query: req.CompanyName,
	}

	o.advance(EventFetchStarted)
	docs := o.fetchDocuments(ctx, log, best.CandidateRow, req.DocumentTypes)
	if len(docs) == 0 {
		return o.fail(ctx, failf(KindNoDocumentsFound, "no documents could be fetched for %q", best.Name))
	}

	o.advance(EventDocumentsDone)
	outcome = models.ScrapeOutcome{
		Success:   true,
		Company:   company,
		Documents: docs,
	}
	if len(o.debug.DocumentErrors) > 0 || len(o.debug.UIMessages) > 0 {
		dbg := o.debug
		outcome.Debug = &dbg
	}
	log.Info("scrape complete", "documents", len(docs))
	return outcome
}

// fetchDocuments downloads the requested documents and extracts their
// text. Downloads run sequentially against the single browser session;
// extraction overlaps with the next download. Per-document errors are
// recorded and do not abort the remaining documents.
func (o *Orchestrator) fetchDocuments(ctx context.Context, log *slog.Logger, row models.CandidateRow, types []models.DocumentType) []models.DocumentResult {
	if len(types) == 0 {
		types = models.AllDocumentTypes()
	}

	results := make([]*models.DocumentResult, len(types))
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	addErr := func(t models.DocumentType, stage, msg string) {
		mu.Lock()
		o.debug.DocumentErrors = append(o.debug.DocumentErrors, models.DocumentError{
			Type:    t,
			Stage:   stage,
			Message: msg,
		})
		mu.Unlock()
	}

	for i, t := range types {
		t := t
		fctx, cancel := o.stepCtx(ctx)
		data, err := o.deps.Fetcher.Fetch(fctx, row, t)
		cancel()
		if err != nil {
			log.Warn("document fetch failed", "doc_type", string(t), "error", err)
			addErr(t, "fetch", err.Error())
			continue
		}
		log.Info("document fetched", "doc_type", string(t), "bytes", len(data))

		pdfName, textName := models.FileNames(row.Name, t)
		res := &models.DocumentResult{
			Type:         t,
			PDFData:      data,
			FileName:     pdfName,
			TextFileName: textName,
		}
		results[i] = res

		g.Go(func() error {
			ext, err := o.deps.Extractor.Extract(ctx, data, pdfName)
			if err != nil {
				log.Warn("text extraction failed", "doc_type", string(t), "error", err)
				addErr(t, "extract", err.Error())
				return nil
			}
			res.Text = ext.Text
			res.PageCount = ext.PageCount
			res.Language = ext.Language
			res.LanguageConfidence = ext.LanguageConfidence
			return nil
		})
	}
	g.Wait()

	docs := make([]models.DocumentResult, 0, len(types))
	for _, r := range results {
		if r != nil {
			docs = append(docs, *r)
		}
	}
	return docs
}

// fail builds the outcome for a classified failure, captures whatever
// diagnostics the session can still produce, and moves the machine to
// Failed. Capture errors are logged and swallowed; they must not mask
// the original failure.
func (o *Orchestrator) fail(ctx context.Context, f *Failure) models.ScrapeOutcome {
	o.deps.Logger.Error("scrape failed",
		"kind", f.Kind.String(),
		"state", o.state.String(),
		"error", f.Message,
		"retryable", f.Kind.Retryable())

	out := models.ScrapeOutcome{
		Error:            f.Message,
		RetryRecommended: f.Kind.Retryable(),
	}
	if o.deps.Diagnostics != nil {
		if diag, err := o.deps.Diagnostics.Capture(ctx, f.Kind.String()); err != nil {
			o.deps.Logger.Warn("diagnostics capture failed", "error", err)
		} else {
			o.debug.MergeDiagnostics(diag)
		}
	}
	dbg := o.debug
	out.Debug = &dbg

	if next, err := Transition(o.state, EventFailed); err == nil {
		o.state = next
	} else {
		o.state = StateFailed
	}
	return out
}

// advance applies e to the current state. A rejected transition is a
// programming error; the panic surfaces through the recover in Run as
// an unexpected-error outcome.
func (o *Orchestrator) advance(e Event) {
	next, err := Transition(o.state, e)
	if err != nil {
		panic(err)
	}
	o.deps.Logger.Debug("state transition", "from", o.state.String(), "to", next.String(), "event", e.String())
	o.state = next
}

func (o *Orchestrator) stepCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.deps.StepTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, o.deps.StepTimeout)
}

// canonicalRegistration reduces a register column to its bare number
// where it parses, otherwise keeps the trimmed raw text.
func canonicalRegistration(raw string) string {
	num, err := regnum.Parse(raw)
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return num.String()
}
