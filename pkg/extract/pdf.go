package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF renders the text of every page into the markdown-shaped
// report. Pages that carry no text (scanned registers before 2007 are
// image-only) are skipped; per-page read errors land in the report's
// Errors section; a document with zero readable pages is an error.
func (e *Extractor) extractPDF(data []byte, origin string) (text string, pages int, err error) {
	// The pdf library panics on some malformed files. Keep that
	// contained to this document.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf parsing failed for %s: %v", origin, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open pdf %s: %w", origin, err)
	}
	pages = reader.NumPage()

	var content strings.Builder
	var pageErrs []string
	readable := 0
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, perr := page.GetPlainText(nil)
		if perr != nil {
			e.log.Warn("failed to read pdf page", "origin", origin, "page", i, "error", perr)
			pageErrs = append(pageErrs, fmt.Sprintf("- Page %d: %v", i, perr))
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		fmt.Fprintf(&content, "### Page %d\n\n```\n%s\n```\n\n", i, pageText)
		readable++
	}
	if readable == 0 {
		return "", pages, fmt.Errorf("no extractable text in %s (%d pages)", origin, pages)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Extracted Data from: %s\n\n", origin)
	b.WriteString("## Document Metadata\n\n")
	fmt.Fprintf(&b, "- **Pages**: %d\n\n", pages)
	b.WriteString("## Extracted Text Content\n\n")
	b.WriteString(content.String())
	if len(pageErrs) > 0 {
		b.WriteString("## Errors\n\n")
		b.WriteString(strings.Join(pageErrs, "\n"))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n", pages, nil
}
