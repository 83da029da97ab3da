package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dtnitsch/hrscrape/models"
)

// Run represents a persisted scrape run
type Run struct {
	RunID             int64
	CreatedAt         time.Time
	Query             string
	RegistrationQuery string
	Success           bool
	RetryRecommended  bool
	ErrorMessage      string
	Attempts          int
	Duration          time.Duration
	CompanyName       string
	CompanyHRB        string
	DocumentCount     int
	ScreenshotPath    string
	HTMLPath          string
}

// RunDocument represents a document row within a run
type RunDocument struct {
	DocType            string
	PDFFileName        string
	MarkdownFileName   string
	SizeBytes          int64
	PageCount          int
	Language           string
	LanguageConfidence float64
	ErrorStage         string
	ErrorMessage       string
}

// RunStats aggregates the run history
type RunStats struct {
	Total     int
	Succeeded int
	Failed    int
	Documents int
}

// RecordRun persists an outcome with its documents and UI messages in
// one transaction, so a run never appears without its document rows.
// Returns the new run ID.
func (db *DB) RecordRun(query, registrationQuery string, attempts int, duration time.Duration, outcome models.ScrapeOutcome) (int64, error) {
	var (
		companyName, companyHRB  interface{}
		errorMessage             interface{}
		screenshotPath, htmlPath interface{}
	)
	if outcome.Company != nil {
		companyName = outcome.Company.Name
		companyHRB = outcome.Company.HRB
	}
	if outcome.Error != "" {
		errorMessage = outcome.Error
	}
	if outcome.Debug != nil {
		if outcome.Debug.ScreenshotPath != "" {
			screenshotPath = outcome.Debug.ScreenshotPath
		}
		if outcome.Debug.HTMLPath != "" {
			htmlPath = outcome.Debug.HTMLPath
		}
	}
	if attempts < 1 {
		attempts = 1
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(`
		INSERT INTO scrape_runs (query, registration_query, success, retry_recommended,
		                         error_message, attempts, duration_ms, company_name, company_hrb,
		                         document_count, screenshot_path, html_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, query, registrationQuery, outcome.Success, outcome.RetryRecommended,
		errorMessage, attempts, duration.Milliseconds(), companyName, companyHRB,
		len(outcome.Documents), screenshotPath, htmlPath)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}

	for _, doc := range outcome.Documents {
		_, err := tx.Exec(`
			INSERT INTO run_documents (run_id, doc_type, pdf_filename, markdown_filename,
			                           size_bytes, page_count, language, language_confidence)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, runID, string(doc.Type), doc.FileName, doc.TextFileName,
			len(doc.PDFData), doc.PageCount, doc.Language, doc.LanguageConfidence)
		if err != nil {
			return 0, fmt.Errorf("failed to insert run document: %w", err)
		}
	}

	if outcome.Debug != nil {
		for _, de := range outcome.Debug.DocumentErrors {
			_, err := tx.Exec(`
				INSERT INTO run_documents (run_id, doc_type, error_stage, error_message)
				VALUES (?, ?, ?, ?)
			`, runID, string(de.Type), de.Stage, de.Message)
			if err != nil {
				return 0, fmt.Errorf("failed to insert failed document: %w", err)
			}
		}
		for _, msg := range outcome.Debug.UIMessages {
			if _, err := tx.Exec("INSERT INTO run_messages (run_id, message) VALUES (?, ?)", runID, msg); err != nil {
				return 0, fmt.Errorf("failed to insert run message: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// GetRun retrieves a run by its ID
func (db *DB) GetRun(runID int64) (*Run, error) {
	var run Run
	var registrationQuery, errorMessage, companyName, companyHRB, screenshotPath, htmlPath sql.NullString
	var durationMS int64
	err := db.QueryRow(`
		SELECT run_id, created_at, query, registration_query, success, retry_recommended,
		       error_message, attempts, duration_ms, company_name, company_hrb, document_count,
		       screenshot_path, html_path
		FROM scrape_runs
		WHERE run_id = ?
	`, runID).Scan(
		&run.RunID,
		&run.CreatedAt,
		&run.Query,
		&registrationQuery,
		&run.Success,
		&run.RetryRecommended,
		&errorMessage,
		&run.Attempts,
		&durationMS,
		&companyName,
		&companyHRB,
		&run.DocumentCount,
		&screenshotPath,
		&htmlPath,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.RegistrationQuery = registrationQuery.String
	run.ErrorMessage = errorMessage.String
	run.CompanyName = companyName.String
	run.CompanyHRB = companyHRB.String
	run.ScreenshotPath = screenshotPath.String
	run.HTMLPath = htmlPath.String
	return &run, nil
}

// GetRunDocuments retrieves all document rows for a run
func (db *DB) GetRunDocuments(runID int64) ([]RunDocument, error) {
	rows, err := db.Query(`
		SELECT doc_type, pdf_filename, markdown_filename, size_bytes, page_count,
		       language, language_confidence, error_stage, error_message
		FROM run_documents
		WHERE run_id = ?
		ORDER BY document_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run documents: %w", err)
	}
	defer rows.Close()

	var docs []RunDocument
	for rows.Next() {
		var d RunDocument
		var pdfName, mdName, language, errorStage, errorMessage sql.NullString
		var confidence sql.NullFloat64
		if err := rows.Scan(&d.DocType, &pdfName, &mdName, &d.SizeBytes, &d.PageCount,
			&language, &confidence, &errorStage, &errorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan run document: %w", err)
		}
		d.PDFFileName = pdfName.String
		d.MarkdownFileName = mdName.String
		d.Language = language.String
		d.LanguageConfidence = confidence.Float64
		d.ErrorStage = errorStage.String
		d.ErrorMessage = errorMessage.String
		docs = append(docs, d)
	}

	return docs, rows.Err()
}

// GetRunMessages retrieves the UI messages recorded for a run
func (db *DB) GetRunMessages(runID int64) ([]string, error) {
	rows, err := db.Query(`
		SELECT message FROM run_messages WHERE run_id = ? ORDER BY message_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run messages: %w", err)
	}
	defer rows.Close()

	var messages []string
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, fmt.Errorf("failed to scan run message: %w", err)
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// ListRuns retrieves runs ordered by most recent first
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `
		SELECT run_id, created_at, query, registration_query, success, retry_recommended,
		       error_message, attempts, duration_ms, company_name, company_hrb, document_count,
		       screenshot_path, html_path
		FROM scrape_runs
		ORDER BY created_at DESC, run_id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	return db.scanRuns(query)
}

// QueryRuns filters the run history
func (db *DB) QueryRuns(todayOnly, failedOnly bool, companyPattern string) ([]Run, error) {
	query := `
		SELECT run_id, created_at, query, registration_query, success, retry_recommended,
		       error_message, attempts, duration_ms, company_name, company_hrb, document_count,
		       screenshot_path, html_path
		FROM scrape_runs
	`

	var conditions []string
	var args []interface{}

	if todayOnly {
		conditions = append(conditions, "DATE(created_at) = DATE('now')")
	}
	if failedOnly {
		conditions = append(conditions, "success = 0")
	}
	if companyPattern != "" {
		conditions = append(conditions, "(query LIKE ? OR company_name LIKE ?)")
		args = append(args, "%"+companyPattern+"%", "%"+companyPattern+"%")
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, run_id DESC"

	return db.scanRuns(query, args...)
}

func (db *DB) scanRuns(query string, args ...interface{}) ([]Run, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var registrationQuery, errorMessage, companyName, companyHRB, screenshotPath, htmlPath sql.NullString
		var durationMS int64
		if err := rows.Scan(
			&run.RunID,
			&run.CreatedAt,
			&run.Query,
			&registrationQuery,
			&run.Success,
			&run.RetryRecommended,
			&errorMessage,
			&run.Attempts,
			&durationMS,
			&companyName,
			&companyHRB,
			&run.DocumentCount,
			&screenshotPath,
			&htmlPath,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		run.RegistrationQuery = registrationQuery.String
		run.ErrorMessage = errorMessage.String
		run.CompanyName = companyName.String
		run.CompanyHRB = companyHRB.String
		run.ScreenshotPath = screenshotPath.String
		run.HTMLPath = htmlPath.String
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Stats aggregates the whole run history
func (db *DB) Stats() (RunStats, error) {
	var stats RunStats
	err := db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(document_count), 0)
		FROM scrape_runs
	`).Scan(&stats.Total, &stats.Succeeded, &stats.Failed, &stats.Documents)
	if err != nil {
		return RunStats{}, fmt.Errorf("failed to compute run stats: %w", err)
	}
	return stats, nil
}
