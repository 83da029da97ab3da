package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/dtnitsch/hrscrape/models"
	"github.com/dtnitsch/hrscrape/pkg/match"
)

// cookieClickJS clicks the consent button when the portal shows one.
const cookieClickJS = `(() => {
	const labels = /akzeptieren|accept|zustimmen/i;
	for (const el of document.querySelectorAll('button, a')) {
		if (labels.test(el.textContent)) { el.click(); return true; }
	}
	return false;
})()`

// Search runs the keyword search on the portal and returns the parsed
// result rows together with any UI messages shown on the page. Zero
// rows with a nil error is a valid result.
func (s *Session) Search(ctx context.Context, query match.Query) ([]models.CandidateRow, []string, error) {
	if err := s.openSearchPage(ctx); err != nil {
		return nil, nil, err
	}

	keywords := strings.TrimSpace(query.Name)
	s.log.Info("searching register", "keywords", keywords)
	if err := s.run(ctx, s.cfg.NavigationTimeout.Std(),
		chromedp.WaitVisible(selKeywordsInput, chromedp.ByQuery),
		chromedp.Clear(selKeywordsInput, chromedp.ByQuery),
		chromedp.SendKeys(selKeywordsInput, keywords, chromedp.ByQuery),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to fill search form: %w", err)
	}

	if err := s.run(ctx, s.cfg.ResultsTimeout.Std(),
		chromedp.Click(selSearchButton, chromedp.ByQuery),
		chromedp.WaitVisible(selResultsForm, chromedp.ByQuery),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to load search results: %w", err)
	}

	// Zero-hit searches render the form without rows; a missing row is
	// a result, not a failure.
	if err := s.run(ctx, s.cfg.ResultsTimeout.Std(),
		chromedp.WaitVisible(selResultsRow, chromedp.ByQuery),
	); err != nil {
		s.log.Debug("no result rows appeared", "error", err)
	}

	var html string
	if err := s.run(ctx, s.cfg.NavigationTimeout.Std(),
		chromedp.Sleep(s.cfg.SettleDelay.Std()),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to read results page: %w", err)
	}

	rows, messages, err := ParseResults(html)
	if err != nil {
		return nil, nil, err
	}
	s.log.Info("results parsed", "rows", len(rows), "ui_messages", len(messages))
	return rows, messages, nil
}

// openSearchPage loads the portal home page and follows the link to
// the normal search form.
func (s *Session) openSearchPage(ctx context.Context) error {
	s.log.Info("navigating to register portal", "url", s.cfg.BaseURL)
	if err := s.run(ctx, s.cfg.ResultsTimeout.Std(),
		chromedp.Navigate(s.cfg.BaseURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		// The home page sometimes hangs on third-party assets while
		// the navigation itself already works.
		s.log.Warn("homepage load issue, continuing anyway", "error", err)
	}

	var clicked bool
	if err := s.run(ctx, s.cfg.SettleDelay.Std(), chromedp.Evaluate(cookieClickJS, &clicked)); err == nil && clicked {
		s.log.Debug("dismissed consent banner")
	}

	if err := s.run(ctx, s.cfg.NavigationTimeout.Std(),
		chromedp.WaitVisible(selSearchPageLink, chromedp.ByQuery),
		chromedp.Click(selSearchPageLink, chromedp.ByQuery),
		chromedp.WaitVisible(selKeywordsInput, chromedp.ByQuery),
		chromedp.Sleep(s.cfg.SettleDelay.Std()),
	); err != nil {
		return fmt.Errorf("failed to open search page: %w", err)
	}
	return nil
}
