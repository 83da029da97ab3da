package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/dtnitsch/hrscrape/models"
)

// Fetch clicks the document link recorded for docType on the current
// results page and returns the downloaded bytes. The file Chrome wrote
// is removed after reading; callers own the bytes, not the path.
func (s *Session) Fetch(ctx context.Context, row models.CandidateRow, docType models.DocumentType) ([]byte, error) {
	linkID := row.DocLinks[docType]
	if linkID == "" {
		return nil, fmt.Errorf("result row %q has no %s link", row.Name, docType)
	}
	s.log.Info("downloading document", "doc_type", string(docType), "link_id", linkID)

	done := s.expectDownload()

	// JSF ids contain colons, which querySelector cannot take
	// unescaped, so the click goes through getElementById.
	js := fmt.Sprintf(`(() => {
		const el = document.getElementById(%q);
		if (!el) return false;
		el.scrollIntoView();
		el.click();
		return true;
	})()`, linkID)
	var clicked bool
	if err := s.run(ctx, s.cfg.NavigationTimeout.Std(), chromedp.Evaluate(js, &clicked)); err != nil {
		return nil, fmt.Errorf("failed to click document link %s: %w", linkID, err)
	}
	if !clicked {
		return nil, fmt.Errorf("document link %s not present on page", linkID)
	}

	timer := time.NewTimer(s.cfg.DownloadTimeout.Std())
	defer timer.Stop()
	select {
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("download failed for %s: %w", linkID, res.err)
		}
		path := filepath.Join(s.downloadDir, res.guid)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read downloaded file: %w", err)
		}
		if err := os.Remove(path); err != nil {
			s.log.Warn("could not remove downloaded file", "path", path, "error", err)
		}
		s.log.Info("document downloaded", "doc_type", string(docType), "bytes", len(data))
		return data, nil
	case <-timer.C:
		return nil, fmt.Errorf("download timed out after %s for %s", s.cfg.DownloadTimeout.Std(), linkID)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
