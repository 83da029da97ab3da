package db

import (
	"testing"
	"time"

	"github.com/dtnitsch/hrscrape/models"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Use in-memory database for tests
	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return database
}

func successfulOutcome() models.ScrapeOutcome {
	return models.ScrapeOutcome{
		Success: true,
		Company: &models.CompanyInfo{
			Name:  "Adler Real Estate Aktiengesellschaft",
			HRB:   "259502",
			Query: "Adler Real Estate AG",
		},
		Documents: []models.DocumentResult{
			{
				Type:               models.DocTypeAD,
				PDFData:            []byte("%PDF-1.4 fake"),
				FileName:           "Adler_Real_Estate_Aktiengesellschaft_AD.pdf",
				Text:               "# Extracted Data",
				TextFileName:       "Adler_Real_Estate_Aktiengesellschaft_AD.md",
				PageCount:          3,
				Language:           "de",
				LanguageConfidence: 0.97,
			},
		},
	}
}

func TestRecordRun_Success(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, err := db.RecordRun("Adler Real Estate AG", "HRB 259502", 1, 6200*time.Millisecond, successfulOutcome())
	if err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if runID == 0 {
		t.Fatal("RecordRun() returned 0 run ID")
	}

	run, err := db.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if !run.Success {
		t.Error("run.Success = false, want true")
	}
	if run.Query != "Adler Real Estate AG" {
		t.Errorf("run.Query = %q", run.Query)
	}
	if run.RegistrationQuery != "HRB 259502" {
		t.Errorf("run.RegistrationQuery = %q", run.RegistrationQuery)
	}
	if run.CompanyHRB != "259502" {
		t.Errorf("run.CompanyHRB = %q, want 259502", run.CompanyHRB)
	}
	if run.DocumentCount != 1 {
		t.Errorf("run.DocumentCount = %d, want 1", run.DocumentCount)
	}
	if run.ErrorMessage != "" {
		t.Errorf("run.ErrorMessage = %q, want empty", run.ErrorMessage)
	}
	if run.Duration != 6200*time.Millisecond {
		t.Errorf("run.Duration = %v, want 6.2s", run.Duration)
	}

	docs, err := db.GetRunDocuments(runID)
	if err != nil {
		t.Fatalf("GetRunDocuments() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}
	doc := docs[0]
	if doc.DocType != "AD" {
		t.Errorf("doc.DocType = %q, want AD", doc.DocType)
	}
	if doc.PDFFileName != "Adler_Real_Estate_Aktiengesellschaft_AD.pdf" {
		t.Errorf("doc.PDFFileName = %q", doc.PDFFileName)
	}
	if doc.SizeBytes != int64(len("%PDF-1.4 fake")) {
		t.Errorf("doc.SizeBytes = %d", doc.SizeBytes)
	}
	if doc.PageCount != 3 || doc.Language != "de" {
		t.Errorf("doc metadata = %+v", doc)
	}
	if doc.ErrorStage != "" {
		t.Errorf("doc.ErrorStage = %q, want empty", doc.ErrorStage)
	}
}

func TestRecordRun_FailureWithDiagnostics(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	outcome := models.ScrapeOutcome{
		Success:          false,
		Error:            "no companies found for \"Nichtexistente Firma GmbH\"",
		RetryRecommended: true,
		Debug: &models.DebugInfo{
			UIMessages:     []string{"Es wurden keine Ergebnisse gefunden."},
			ScreenshotPath: "diagnostics/debug_no_companies_found_20250101_120000.png",
			HTMLPath:       "diagnostics/debug_no_companies_found_20250101_120000.html",
			DocumentErrors: []models.DocumentError{
				{Type: models.DocTypeCD, Stage: "fetch", Message: "download timed out"},
			},
		},
	}

	runID, err := db.RecordRun("Nichtexistente Firma GmbH", "", 3, 45*time.Second, outcome)
	if err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	run, err := db.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if run.Success {
		t.Error("run.Success = true, want false")
	}
	if !run.RetryRecommended {
		t.Error("run.RetryRecommended = false, want true")
	}
	if run.Attempts != 3 {
		t.Errorf("run.Attempts = %d, want 3", run.Attempts)
	}
	if run.CompanyName != "" || run.CompanyHRB != "" {
		t.Errorf("company fields should be empty, got %q / %q", run.CompanyName, run.CompanyHRB)
	}
	if run.ScreenshotPath == "" || run.HTMLPath == "" {
		t.Error("diagnostics paths not persisted")
	}

	docs, err := db.GetRunDocuments(runID)
	if err != nil {
		t.Fatalf("GetRunDocuments() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1 failed row", len(docs))
	}
	if docs[0].ErrorStage != "fetch" || docs[0].ErrorMessage != "download timed out" {
		t.Errorf("failed document = %+v", docs[0])
	}

	messages, err := db.GetRunMessages(runID)
	if err != nil {
		t.Fatalf("GetRunMessages() error = %v", err)
	}
	if len(messages) != 1 || messages[0] != "Es wurden keine Ergebnisse gefunden." {
		t.Errorf("messages = %v", messages)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := db.GetRun(42); err == nil {
		t.Fatal("GetRun() on empty database should fail")
	}
}

func TestListRuns_LimitAndOrder(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for _, query := range []string{"Erste GmbH", "Zweite GmbH", "Dritte GmbH"} {
		if _, err := db.RecordRun(query, "", 1, time.Second, models.ScrapeOutcome{Success: false, Error: "no companies found", RetryRecommended: true}); err != nil {
			t.Fatalf("RecordRun(%q) error = %v", query, err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].Query != "Dritte GmbH" {
		t.Errorf("most recent run = %q, want Dritte GmbH", runs[0].Query)
	}

	all, err := db.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns(0) error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d runs, want all 3", len(all))
	}
}

func TestQueryRuns_Filters(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := db.RecordRun("Adler Real Estate AG", "HRB 259502", 1, 5*time.Second, successfulOutcome()); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if _, err := db.RecordRun("Musterfirma GmbH", "", 1, 2*time.Second, models.ScrapeOutcome{Success: false, Error: "no suitable match"}); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	failed, err := db.QueryRuns(false, true, "")
	if err != nil {
		t.Fatalf("QueryRuns(failedOnly) error = %v", err)
	}
	if len(failed) != 1 || failed[0].Query != "Musterfirma GmbH" {
		t.Errorf("failedOnly = %+v", failed)
	}

	byName, err := db.QueryRuns(false, false, "Adler")
	if err != nil {
		t.Fatalf("QueryRuns(pattern) error = %v", err)
	}
	if len(byName) != 1 || byName[0].Query != "Adler Real Estate AG" {
		t.Errorf("pattern filter = %+v", byName)
	}

	today, err := db.QueryRuns(true, false, "")
	if err != nil {
		t.Fatalf("QueryRuns(todayOnly) error = %v", err)
	}
	if len(today) != 2 {
		t.Errorf("todayOnly = %d runs, want 2", len(today))
	}
}

func TestStats(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("empty database stats = %+v", stats)
	}

	if _, err := db.RecordRun("Adler Real Estate AG", "HRB 259502", 1, 5*time.Second, successfulOutcome()); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if _, err := db.RecordRun("Musterfirma GmbH", "", 2, 30*time.Second, models.ScrapeOutcome{Success: false, Error: "ambiguous results"}); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	stats, err = db.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 2 || stats.Succeeded != 1 || stats.Failed != 1 || stats.Documents != 1 {
		t.Errorf("stats = %+v", stats)
	}
}
