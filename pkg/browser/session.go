// Package browser drives a headless Chrome session against the
// register portal: keyword search, result row parsing, document
// downloads, and failure diagnostics.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"

	"github.com/dtnitsch/hrscrape/models"
)

// Session owns one Chrome instance and the portal state reached in it.
// The portal keeps server-side view state per browser session, so all
// steps of a run go through the same Session. Methods are not safe for
// concurrent use.
type Session struct {
	cfg models.BrowserConfig
	log *slog.Logger

	ctx           context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc

	downloadDir string

	mu      sync.Mutex
	pending chan downloadResult
}

type downloadResult struct {
	guid string
	err  error
}

// NewSession launches Chrome and prepares it for downloads. The
// returned session stays alive until Close; ctx bounds the browser's
// lifetime, not individual steps.
func NewSession(ctx context.Context, cfg models.BrowserConfig, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With("component", "browser")
	downloadDir := cfg.DownloadDir
	if downloadDir == "" {
		downloadDir = "downloads"
	}
	absDownloadDir, err := filepath.Abs(downloadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve download dir: %w", err)
	}
	if err := os.MkdirAll(absDownloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("lang", "de-DE"),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		cfg:           cfg,
		log:           log,
		ctx:           browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		downloadDir:   absDownloadDir,
	}
	s.listenDownloads(browserCtx)

	// Chrome names completed downloads by GUID inside downloadDir.
	if err := chromedp.Run(browserCtx,
		cdpbrowser.SetDownloadBehavior(cdpbrowser.SetDownloadBehaviorBehaviorAllowAndName).
			WithDownloadPath(absDownloadDir).
			WithEventsEnabled(true),
	); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	log.Info("browser session started", "headless", cfg.Headless, "download_dir", absDownloadDir)
	return s, nil
}

// Close shuts the browser down.
func (s *Session) Close() {
	s.browserCancel()
	s.allocCancel()
	s.log.Info("browser session closed")
}

// run executes chromedp actions against the session's browser with a
// step timeout, and stops early if the caller's context ends first.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	tctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(tctx, actions...)
}

func (s *Session) listenDownloads(ctx context.Context) {
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		switch e := ev.(type) {
		case *cdpbrowser.EventDownloadWillBegin:
			s.log.Debug("download starting", "guid", e.GUID, "suggested", e.SuggestedFilename)
		case *cdpbrowser.EventDownloadProgress:
			switch e.State {
			case cdpbrowser.DownloadProgressStateCompleted:
				s.deliverDownload(e.GUID, nil)
			case cdpbrowser.DownloadProgressStateCanceled:
				s.deliverDownload(e.GUID, errors.New("download canceled by browser"))
			}
		}
	})
}

// expectDownload arms the session for the next download triggered by a
// link click. Downloads are sequential, one armed channel at a time.
func (s *Session) expectDownload() chan downloadResult {
	ch := make(chan downloadResult, 1)
	s.mu.Lock()
	s.pending = ch
	s.mu.Unlock()
	return ch
}

func (s *Session) deliverDownload(guid string, err error) {
	s.mu.Lock()
	ch := s.pending
	s.pending = nil
	s.mu.Unlock()
	if ch != nil {
		ch <- downloadResult{guid: guid, err: err}
	}
}
