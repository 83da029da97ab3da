package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dtnitsch/hrscrape/models"
	"github.com/dtnitsch/hrscrape/pkg/match"
)

type fakeSearch struct {
	rows     []models.CandidateRow
	messages []string
	err      error
	calls    int
}

func (f *fakeSearch) Search(ctx context.Context, q match.Query) ([]models.CandidateRow, []string, error) {
	f.calls++
	return f.rows, f.messages, f.err
}

type fakeFetcher struct {
	data    map[models.DocumentType][]byte
	errs    map[models.DocumentType]error
	fetched []models.DocumentType
}

func (f *fakeFetcher) Fetch(ctx context.Context, row models.CandidateRow, t models.DocumentType) ([]byte, error) {
	f.fetched = append(f.fetched, t)
	if err := f.errs[t]; err != nil {
		return nil, err
	}
	if data, ok := f.data[t]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("no %s document for %s", t, row.Name)
}

type panicFetcher struct{}

func (panicFetcher) Fetch(context.Context, models.CandidateRow, models.DocumentType) ([]byte, error) {
	panic("browser session gone")
}

type fakeExtractor struct {
	err error
}

func (f *fakeExtractor) Extract(ctx context.Context, data []byte, origin string) (models.Extraction, error) {
	if f.err != nil {
		return models.Extraction{}, f.err
	}
	return models.Extraction{
		Text:               "text from " + origin,
		PageCount:          2,
		Language:           "de",
		LanguageConfidence: 0.93,
	}, nil
}

type fakeSink struct {
	labels []string
	diag   models.Diagnostics
	err    error
}

func (f *fakeSink) Capture(ctx context.Context, label string) (models.Diagnostics, error) {
	f.labels = append(f.labels, label)
	if f.err != nil {
		return models.Diagnostics{}, f.err
	}
	return f.diag, nil
}

func newTestOrchestrator(deps Deps) *Orchestrator {
	if deps.Ranker == nil {
		deps.Ranker = match.New(models.DefaultConfig().Match)
	}
	return New(deps)
}

func adlerRows() []models.CandidateRow {
	return []models.CandidateRow{
		{Name: "Adler Real Estate AG", RegistrationText: "Amtsgericht Charlottenburg HRB 259502", Court: "Charlottenburg"},
		{Name: "Adler Baugesellschaft mbH", RegistrationText: "HRB 4711", Court: "München"},
	}
}

func TestRun_Success(t *testing.T) {
	search := &fakeSearch{rows: adlerRows()}
	fetcher := &fakeFetcher{data: map[models.DocumentType][]byte{
		models.DocTypeAD: []byte("%PDF-1.4 ad"),
		models.DocTypeCD: []byte("%PDF-1.4 cd"),
	}}
	sink := &fakeSink{}
	o := newTestOrchestrator(Deps{
		Search:      search,
		Fetcher:     fetcher,
		Extractor:   &fakeExtractor{},
		Diagnostics: sink,
	})

	out := o.Run(context.Background(), Request{
		CompanyName:        "Adler Real Estate AG",
		RegistrationNumber: "HRB 259502",
	})

	if !out.Success {
		t.Fatalf("Run() failed: %s", out.Error)
	}
	if o.State() != StateCompleted {
		t.Errorf("state = %v, want %v", o.State(), StateCompleted)
	}
	if out.Company == nil {
		t.Fatal("Company missing from successful outcome")
	}
	if out.Company.Name != "Adler Real Estate AG" {
		t.Errorf("Company.Name = %q", out.Company.Name)
	}
	if out.Company.HRB != "259502" {
		t.Errorf("Company.HRB = %q, want canonical 259502", out.Company.HRB)
	}
	if len(out.Documents) != 2 {
		t.Fatalf("got %d documents, want 2", len(out.Documents))
	}
	ad := out.Documents[0]
	if ad.Type != models.DocTypeAD {
		t.Errorf("first document type = %v, want AD", ad.Type)
	}
	if ad.FileName != "Adler_Real_Estate_AG_AD.pdf" {
		t.Errorf("FileName = %q", ad.FileName)
	}
	if ad.Text == "" || ad.PageCount != 2 || ad.Language != "de" {
		t.Errorf("extraction not applied: %+v", ad)
	}
	if out.Debug != nil {
		t.Errorf("Debug should be nil on clean success, got %+v", out.Debug)
	}
	if len(sink.labels) != 0 {
		t.Errorf("diagnostics captured on success: %v", sink.labels)
	}
}

func TestRun_NoCompaniesFound(t *testing.T) {
	sink := &fakeSink{diag: models.Diagnostics{ScreenshotPath: "diag/shot.png"}}
	o := newTestOrchestrator(Deps{
		Search:      &fakeSearch{},
		Fetcher:     &fakeFetcher{},
		Extractor:   &fakeExtractor{},
		Diagnostics: sink,
	})

	out := o.Run(context.Background(), Request{CompanyName: "Nichtexistente Firma GmbH"})

	if out.Success {
		t.Fatal("Run() succeeded with zero candidates")
	}
	if !strings.Contains(out.Error, "no companies found") {
		t.Errorf("Error = %q", out.Error)
	}
	if !out.RetryRecommended {
		t.Error("no_companies_found should recommend a retry")
	}
	if o.State() != StateFailed {
		t.Errorf("state = %v, want %v", o.State(), StateFailed)
	}
	if len(sink.labels) != 1 || sink.labels[0] != "no_companies_found" {
		t.Errorf("capture labels = %v", sink.labels)
	}
	if out.Debug == nil || out.Debug.ScreenshotPath != "diag/shot.png" {
		t.Errorf("diagnostics not merged into Debug: %+v", out.Debug)
	}
}

func TestRun_NoSuitableMatch(t *testing.T) {
	rows := []models.CandidateRow{
		{Name: "Völlig Andere Firma GmbH", RegistrationText: "HRB 1"},
	}
	o := newTestOrchestrator(Deps{
		Search:    &fakeSearch{rows: rows},
		Fetcher:   &fakeFetcher{},
		Extractor: &fakeExtractor{},
	})

	out := o.Run(context.Background(), Request{CompanyName: "Adler Real Estate"})

	if out.Success {
		t.Fatal("Run() accepted an unrelated candidate")
	}
	if !strings.Contains(out.Error, "no suitable match") {
		t.Errorf("Error = %q", out.Error)
	}
	if out.RetryRecommended {
		t.Error("no_suitable_match must not recommend a retry")
	}
}

func TestRun_AmbiguousMatch(t *testing.T) {
	rows := []models.CandidateRow{
		{Name: "Müller Logistik GmbH", RegistrationText: "HRB 100", Court: "Hamburg"},
		{Name: "Müller Logistik GmbH", RegistrationText: "HRB 200", Court: "Bremen"},
	}
	o := newTestOrchestrator(Deps{
		Search:    &fakeSearch{rows: rows},
		Fetcher:   &fakeFetcher{},
		Extractor: &fakeExtractor{},
	})

	out := o.Run(context.Background(), Request{CompanyName: "Müller Logistik GmbH"})

	if out.Success {
		t.Fatal("Run() accepted an ambiguous candidate set")
	}
	if !strings.Contains(out.Error, "ambiguous") {
		t.Errorf("Error = %q", out.Error)
	}
	if out.RetryRecommended {
		t.Error("ambiguous_match must not recommend a retry")
	}
}

func TestRun_SearchErrorIsNetworkOrSite(t *testing.T) {
	sink := &fakeSink{}
	o := newTestOrchestrator(Deps{
		Search:      &fakeSearch{err: errors.New("chrome connection lost")},
		Fetcher:     &fakeFetcher{},
		Extractor:   &fakeExtractor{},
		Diagnostics: sink,
	})

	out := o.Run(context.Background(), Request{CompanyName: "Adler Real Estate AG"})

	if out.Success {
		t.Fatal("Run() succeeded despite search error")
	}
	if !out.RetryRecommended {
		t.Error("infrastructure faults should recommend a retry")
	}
	if len(sink.labels) != 1 || sink.labels[0] != "network_or_site_error" {
		t.Errorf("capture labels = %v", sink.labels)
	}
}

func TestRun_SearchTimeoutClassified(t *testing.T) {
	wrapped := fmt.Errorf("failed to load results: %w", context.DeadlineExceeded)
	o := newTestOrchestrator(Deps{
		Search:    &fakeSearch{err: wrapped},
		Fetcher:   &fakeFetcher{},
		Extractor: &fakeExtractor{},
	})

	out := o.Run(context.Background(), Request{CompanyName: "Adler Real Estate AG"})

	if out.Success || !out.RetryRecommended {
		t.Fatalf("timeout not classified as retryable: %+v", out)
	}
	if !strings.Contains(out.Error, "timed out") {
		t.Errorf("Error = %q", out.Error)
	}
}

func TestRun_PartialDocumentFailure(t *testing.T) {
	search := &fakeSearch{rows: adlerRows()}
	fetcher := &fakeFetcher{
		data: map[models.DocumentType][]byte{models.DocTypeAD: []byte("%PDF-1.4 ad")},
		errs: map[models.DocumentType]error{models.DocTypeCD: errors.New("download timed out")},
	}
	sink := &fakeSink{}
	o := newTestOrchestrator(Deps{
		Search:      search,
		Fetcher:     fetcher,
		Extractor:   &fakeExtractor{},
		Diagnostics: sink,
	})

	out := o.Run(context.Background(), Request{
		CompanyName:        "Adler Real Estate AG",
		RegistrationNumber: "259502",
	})

	if !out.Success {
		t.Fatalf("partial failure should still succeed: %s", out.Error)
	}
	if len(fetcher.fetched) != 2 {
		t.Errorf("fetched %v, want both types attempted", fetcher.fetched)
	}
	if len(out.Documents) != 1 || out.Documents[0].Type != models.DocTypeAD {
		t.Fatalf("Documents = %+v", out.Documents)
	}
	if out.Debug == nil || len(out.Debug.DocumentErrors) != 1 {
		t.Fatalf("Debug = %+v, want one document error", out.Debug)
	}
	de := out.Debug.DocumentErrors[0]
	if de.Type != models.DocTypeCD || de.Stage != "fetch" {
		t.Errorf("DocumentError = %+v", de)
	}
	if len(sink.labels) != 0 {
		t.Errorf("diagnostics captured on success: %v", sink.labels)
	}
}

func TestRun_AllDocumentsFailed(t *testing.T) {
	fetcher := &fakeFetcher{errs: map[models.DocumentType]error{
		models.DocTypeAD: errors.New("download canceled"),
		models.DocTypeCD: errors.New("download canceled"),
	}}
	sink := &fakeSink{}
	o := newTestOrchestrator(Deps{
		Search:      &fakeSearch{rows: adlerRows()},
		Fetcher:     fetcher,
		Extractor:   &fakeExtractor{},
		Diagnostics: sink,
	})

	out := o.Run(context.Background(), Request{
		CompanyName:        "Adler Real Estate AG",
		RegistrationNumber: "259502",
	})

	if out.Success {
		t.Fatal("Run() succeeded with zero documents")
	}
	if !strings.Contains(out.Error, "no documents") {
		t.Errorf("Error = %q", out.Error)
	}
	if !out.RetryRecommended {
		t.Error("no_documents_found should recommend a retry")
	}
	if out.Debug == nil || len(out.Debug.DocumentErrors) != 2 {
		t.Fatalf("Debug = %+v, want two document errors", out.Debug)
	}
	if len(sink.labels) != 1 || sink.labels[0] != "no_documents_found" {
		t.Errorf("capture labels = %v", sink.labels)
	}
}

func TestRun_ExtractionFailureKeepsDocument(t *testing.T) {
	fetcher := &fakeFetcher{data: map[models.DocumentType][]byte{
		models.DocTypeAD: []byte("%PDF-1.4 ad"),
	}}
	o := newTestOrchestrator(Deps{
		Search:    &fakeSearch{rows: adlerRows()},
		Fetcher:   fetcher,
		Extractor: &fakeExtractor{err: errors.New("encrypted document")},
	})

	out := o.Run(context.Background(), Request{
		CompanyName:        "Adler Real Estate AG",
		RegistrationNumber: "259502",
		DocumentTypes:      []models.DocumentType{models.DocTypeAD},
	})

	if !out.Success {
		t.Fatalf("extraction failure should not fail the run: %s", out.Error)
	}
	if len(out.Documents) != 1 {
		t.Fatalf("got %d documents, want 1", len(out.Documents))
	}
	doc := out.Documents[0]
	if len(doc.PDFData) == 0 {
		t.Error("PDF bytes dropped on extraction failure")
	}
	if doc.Text != "" {
		t.Errorf("Text = %q, want empty", doc.Text)
	}
	if out.Debug == nil || len(out.Debug.DocumentErrors) != 1 || out.Debug.DocumentErrors[0].Stage != "extract" {
		t.Errorf("Debug = %+v", out.Debug)
	}
}

func TestRun_PanicBecomesUnexpectedError(t *testing.T) {
	sink := &fakeSink{}
	o := newTestOrchestrator(Deps{
		Search:      &fakeSearch{rows: adlerRows()},
		Fetcher:     panicFetcher{},
		Extractor:   &fakeExtractor{},
		Diagnostics: sink,
	})

	out := o.Run(context.Background(), Request{
		CompanyName:        "Adler Real Estate AG",
		RegistrationNumber: "259502",
	})

	if out.Success {
		t.Fatal("Run() succeeded despite panic")
	}
	if !strings.Contains(out.Error, "unexpected error") {
		t.Errorf("Error = %q", out.Error)
	}
	if !out.RetryRecommended {
		t.Error("unexpected_error should recommend a retry")
	}
	if o.State() != StateFailed {
		t.Errorf("state = %v, want %v", o.State(), StateFailed)
	}
	if len(sink.labels) != 1 || sink.labels[0] != "unexpected_error" {
		t.Errorf("capture labels = %v", sink.labels)
	}
}

func TestRun_DiagnosticsSinkErrorSwallowed(t *testing.T) {
	o := newTestOrchestrator(Deps{
		Search:      &fakeSearch{},
		Fetcher:     &fakeFetcher{},
		Extractor:   &fakeExtractor{},
		Diagnostics: &fakeSink{err: errors.New("disk full")},
	})

	out := o.Run(context.Background(), Request{CompanyName: "Adler Real Estate AG"})

	if out.Success {
		t.Fatal("Run() succeeded with zero candidates")
	}
	if !strings.Contains(out.Error, "no companies found") {
		t.Errorf("sink error leaked into outcome: %q", out.Error)
	}
}

func TestRun_NilDiagnosticsSink(t *testing.T) {
	o := newTestOrchestrator(Deps{
		Search:    &fakeSearch{},
		Fetcher:   &fakeFetcher{},
		Extractor: &fakeExtractor{},
	})

	out := o.Run(context.Background(), Request{CompanyName: "Adler Real Estate AG"})
	if out.Success || o.State() != StateFailed {
		t.Fatalf("outcome = %+v, state = %v", out, o.State())
	}
}

func TestRun_UIMessagesCarriedIntoFailure(t *testing.T) {
	o := newTestOrchestrator(Deps{
		Search:    &fakeSearch{messages: []string{"Bitte geben Sie einen Suchbegriff ein."}},
		Fetcher:   &fakeFetcher{},
		Extractor: &fakeExtractor{},
	})

	out := o.Run(context.Background(), Request{CompanyName: "Adler Real Estate AG"})

	if out.Debug == nil || len(out.Debug.UIMessages) != 1 {
		t.Fatalf("Debug = %+v, want the UI message carried over", out.Debug)
	}
}

func TestRun_Reusable(t *testing.T) {
	search := &fakeSearch{}
	fetcher := &fakeFetcher{data: map[models.DocumentType][]byte{
		models.DocTypeAD: []byte("%PDF-1.4 ad"),
		models.DocTypeCD: []byte("%PDF-1.4 cd"),
	}}
	o := newTestOrchestrator(Deps{
		Search:    search,
		Fetcher:   fetcher,
		Extractor: &fakeExtractor{},
	})

	req := Request{CompanyName: "Adler Real Estate AG", RegistrationNumber: "259502"}

	if out := o.Run(context.Background(), req); out.Success {
		t.Fatal("first run should fail with no candidates")
	}
	search.rows = adlerRows()
	out := o.Run(context.Background(), req)
	if !out.Success {
		t.Fatalf("second run failed: %s", out.Error)
	}
	if out.Debug != nil {
		t.Errorf("debug state leaked between runs: %+v", out.Debug)
	}
	if o.State() != StateCompleted {
		t.Errorf("state = %v, want %v", o.State(), StateCompleted)
	}
}

func TestAsFailure(t *testing.T) {
	orig := failf(KindAmbiguousMatch, "two candidates tied")
	if got := AsFailure(fmt.Errorf("rank: %w", orig), KindUnexpectedError); got.Kind != KindAmbiguousMatch {
		t.Errorf("wrapped Failure reclassified to %v", got.Kind)
	}
	if got := AsFailure(context.DeadlineExceeded, KindUnexpectedError); got.Kind != KindNetworkOrSiteError {
		t.Errorf("deadline classified as %v", got.Kind)
	}
	if got := AsFailure(errors.New("boom"), KindNoDocumentsFound); got.Kind != KindNoDocumentsFound {
		t.Errorf("fallback kind not applied: %v", got.Kind)
	}
}
