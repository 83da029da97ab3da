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

// Capture saves a screenshot and the page HTML for later diagnosis and
// collects any UI messages still visible. The page may be in a broken
// state when this runs, so each part is best effort; only a failure to
// create the diagnostics directory is reported as an error.
func (s *Session) Capture(ctx context.Context, label string) (models.Diagnostics, error) {
	var diag models.Diagnostics
	dir := s.cfg.DiagnosticsDir
	if dir == "" {
		dir = "diagnostics"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return diag, fmt.Errorf("failed to create diagnostics dir: %w", err)
	}
	base := fmt.Sprintf("debug_%s_%s", label, time.Now().Format("20060102_150405"))

	var shot []byte
	if err := s.run(ctx, s.cfg.NavigationTimeout.Std(), chromedp.CaptureScreenshot(&shot)); err != nil {
		s.log.Warn("could not capture screenshot", "error", err)
	} else {
		path := filepath.Join(dir, base+".png")
		if err := os.WriteFile(path, shot, 0o644); err != nil {
			s.log.Warn("could not save screenshot", "path", path, "error", err)
		} else {
			s.log.Info("saved debug screenshot", "path", path)
			diag.ScreenshotPath = path
		}
	}

	var html string
	if err := s.run(ctx, s.cfg.NavigationTimeout.Std(), chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		s.log.Warn("could not capture page html", "error", err)
	} else {
		path := filepath.Join(dir, base+".html")
		if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
			s.log.Warn("could not save page html", "path", path, "error", err)
		} else {
			s.log.Info("saved debug html", "path", path)
			diag.HTMLPath = path
		}
		if _, messages, err := ParseResults(html); err == nil {
			diag.UIMessages = messages
		}
	}
	return diag, nil
}
