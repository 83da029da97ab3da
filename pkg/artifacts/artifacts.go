// Package artifacts lays scrape results out on disk: one directory per
// company holding the downloaded PDFs, the extracted text reports, and
// a light outcome summary.
package artifacts

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dtnitsch/hrscrape/models"
)

const DefaultBaseDir = "downloads"

// Store writes run results under a base directory.
type Store struct {
	baseDir string
	log     *slog.Logger
}

// NewStore creates the base directory if needed.
func NewStore(baseDir string, log *slog.Logger) (*Store, error) {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create artifacts directory: %w", err)
	}
	return &Store{baseDir: baseDir, log: log.With("component", "artifacts")}, nil
}

// BaseDir returns the store's root directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// CompanyDir returns, creating it if needed, the directory for a
// company. Example: downloads/Adler_Real_Estate_AG_259502/
func (s *Store) CompanyDir(companyName, registration string) (string, error) {
	name := models.SafeFileName(companyName)
	if reg := models.SafeFileName(registration); reg != "" {
		name = name + "_" + reg
	}
	dir := filepath.Join(s.baseDir, name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create company directory: %w", err)
	}
	return dir, nil
}

// SaveOutcome writes every document of the outcome plus an
// outcome.json summary and returns the company directory.
func (s *Store) SaveOutcome(outcome models.ScrapeOutcome) (string, error) {
	if outcome.Company == nil {
		return "", fmt.Errorf("outcome carries no company, nothing to save")
	}
	dir, err := s.CompanyDir(outcome.Company.Name, outcome.Company.HRB)
	if err != nil {
		return "", err
	}

	for _, doc := range outcome.Documents {
		if len(doc.PDFData) > 0 {
			path := filepath.Join(dir, doc.FileName)
			if err := os.WriteFile(path, doc.PDFData, 0o644); err != nil {
				return "", fmt.Errorf("failed to save %s: %w", doc.FileName, err)
			}
			s.log.Info("saved document", "path", path, "bytes", len(doc.PDFData))
		}
		if doc.Text != "" {
			path := filepath.Join(dir, doc.TextFileName)
			if err := os.WriteFile(path, []byte(doc.Text), 0o644); err != nil {
				return "", fmt.Errorf("failed to save %s: %w", doc.TextFileName, err)
			}
			s.log.Info("saved extracted text", "path", path)
		}
	}

	summary, err := json.MarshalIndent(trimPayloads(outcome), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode outcome summary: %w", err)
	}
	summaryPath := filepath.Join(dir, "outcome.json")
	if err := os.WriteFile(summaryPath, summary, 0o644); err != nil {
		return "", fmt.Errorf("failed to save outcome summary: %w", err)
	}
	s.log.Info("saved outcome summary", "path", summaryPath)

	return dir, nil
}

// trimPayloads drops the bulky fields already written as files so the
// summary stays readable.
func trimPayloads(outcome models.ScrapeOutcome) models.ScrapeOutcome {
	trimmed := outcome
	trimmed.Documents = make([]models.DocumentResult, len(outcome.Documents))
	for i, doc := range outcome.Documents {
		doc.PDFData = nil
		doc.Text = ""
		trimmed.Documents[i] = doc
	}
	return trimmed
}
