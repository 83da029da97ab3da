// Package extract turns downloaded register documents into plain text
// reports. PDFs are the normal case; the portal occasionally serves an
// HTML error or maintenance page under a .pdf name, so extraction
// sniffs the payload instead of trusting the extension.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dtnitsch/hrscrape/models"
)

// ErrUnsupportedFormat marks payloads that are neither PDF nor HTML.
var ErrUnsupportedFormat = errors.New("unsupported document format")

type Extractor struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Extractor{log: log.With("component", "extract")}
}

// Extract converts a downloaded payload into text plus metadata.
// origin names the payload in logs and in the report heading,
// typically the file name the document would be stored under.
func (e *Extractor) Extract(ctx context.Context, data []byte, origin string) (models.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return models.Extraction{}, err
	}
	if len(data) == 0 {
		return models.Extraction{}, fmt.Errorf("empty payload for %s", origin)
	}

	var (
		text  string
		pages int
		err   error
	)
	switch {
	case isPDF(data):
		text, pages, err = e.extractPDF(data, origin)
	case isHTML(data):
		e.log.Warn("payload is HTML, not PDF", "origin", origin, "bytes", len(data))
		text, err = e.extractHTML(data, origin)
	default:
		return models.Extraction{}, fmt.Errorf("%w for %s: neither PDF nor HTML", ErrUnsupportedFormat, origin)
	}
	if err != nil {
		return models.Extraction{}, err
	}

	lang, conf := DetectLanguage(text)
	return models.Extraction{
		Text:               text,
		PageCount:          pages,
		Language:           lang,
		LanguageConfidence: conf,
	}, nil
}

func isPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

func isHTML(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if strings.Contains(http.DetectContentType(head), "text/html") {
		return true
	}
	lower := strings.ToLower(string(head))
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype html")
}
