package models

import (
	"fmt"
	"strings"
	"unicode"
)

// DocumentType identifies one official register document kind. The set
// is closed: the scraper only knows how to request and classify these,
// and CLI input is validated against them before a run starts.
type DocumentType string

const (
	// DocTypeAD is the current extract ("Aktueller Abdruck").
	DocTypeAD DocumentType = "AD"
	// DocTypeCD is the chronological extract ("Chronologischer Abdruck").
	DocTypeCD DocumentType = "CD"
)

// AllDocumentTypes lists every requestable document type in canonical order.
func AllDocumentTypes() []DocumentType {
	return []DocumentType{DocTypeAD, DocTypeCD}
}

// Valid reports whether t is a member of the closed document-type set.
func (t DocumentType) Valid() bool {
	switch t {
	case DocTypeAD, DocTypeCD:
		return true
	}
	return false
}

// Description returns the human-readable document name.
func (t DocumentType) Description() string {
	switch t {
	case DocTypeAD:
		return "current extract"
	case DocTypeCD:
		return "chronological extract"
	}
	return "unknown document type"
}

// ParseDocumentType validates a user-supplied document type label.
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown document type %q (valid: AD, CD)", s)
	}
	return t, nil
}

// ParseDocumentTypes validates a list of labels, deduplicating while
// preserving order. An empty list means "fetch everything".
func ParseDocumentTypes(labels []string) ([]DocumentType, error) {
	if len(labels) == 0 {
		return AllDocumentTypes(), nil
	}
	seen := make(map[DocumentType]bool, len(labels))
	types := make([]DocumentType, 0, len(labels))
	for _, label := range labels {
		t, err := ParseDocumentType(label)
		if err != nil {
			return nil, err
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		types = append(types, t)
	}
	return types, nil
}

// SafeFileName reduces a company name to a portable file name: letters,
// digits, dash and underscore survive, spaces become underscores,
// everything else is dropped.
func SafeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FileNames returns the suggested PDF and text file names for a
// document of the given type, e.g. "Adler_Real_Estate_AG_AD.pdf".
func FileNames(companyName string, t DocumentType) (pdfName, textName string) {
	base := fmt.Sprintf("%s_%s", SafeFileName(companyName), t)
	return base + ".pdf", base + ".md"
}

// Extraction is the derived-text result produced from document bytes.
type Extraction struct {
	Text               string
	PageCount          int
	Language           string // ISO 639-1, lowercase; empty when undetected
	LanguageConfidence float64
}

// DocumentResult is one successfully fetched and extracted document.
// Results are independent of each other: one document type failing
// never discards another's result.
type DocumentResult struct {
	Type               DocumentType `json:"doc_type"`
	PDFData            []byte       `json:"pdf_content,omitempty"`
	FileName           string       `json:"pdf_filename"`
	Text               string       `json:"markdown_content"`
	TextFileName       string       `json:"markdown_filename"`
	PageCount          int          `json:"page_count,omitempty"`
	Language           string       `json:"language,omitempty"`
	LanguageConfidence float64      `json:"language_confidence,omitempty"`
}
