package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dtnitsch/hrscrape/internal/common"
	"github.com/dtnitsch/hrscrape/models"
	"github.com/dtnitsch/hrscrape/pkg/artifacts"
	"github.com/dtnitsch/hrscrape/pkg/browser"
	dbpkg "github.com/dtnitsch/hrscrape/pkg/db"
	"github.com/dtnitsch/hrscrape/pkg/extract"
	"github.com/dtnitsch/hrscrape/pkg/match"
	"github.com/dtnitsch/hrscrape/pkg/retry"
	"github.com/dtnitsch/hrscrape/pkg/scraper"
	"github.com/urfave/cli/v2"
)

// FetchAction runs one full scrape: search, rank, download, extract.
// The outcome goes to stdout, logs to stderr. Exit codes: 0 success,
// 1 the query itself cannot be satisfied, 2 infrastructure trouble.
func FetchAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("verbose"), c.Bool("quiet"))
	startTime := time.Now()

	companyName := common.SanitizeQuery(c.Args().First())
	if companyName == "" {
		fmt.Fprintln(os.Stderr, "Error: no company name provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  hrscrape fetch "Adler Real Estate"`)
		fmt.Fprintln(os.Stderr, `  hrscrape fetch "Adler Real Estate" -r "HRB 259502"   # Disambiguate by register number`)
		fmt.Fprintln(os.Stderr, `  hrscrape fetch "Adler Real Estate" -t AD             # Current extract only`)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Need help? Run: hrscrape fetch --help")
		os.Exit(1)
	}

	docTypes, err := models.ParseDocumentTypes(c.StringSlice("type"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	if c.IsSet("headless") {
		cfg.Browser.Headless = c.Bool("headless")
	}
	if c.IsSet("attempts") {
		cfg.Retry.MaxAttempts = c.Int("attempts")
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}

	// Documents live in the outcome; they only hit disk when asked for.
	var store *artifacts.Store
	if c.IsSet("output-dir") {
		store, err = artifacts.NewStore(c.String("output-dir"), logger)
		if err != nil {
			logger.Error("failed to initialize artifact store", "error", err)
			os.Exit(2)
		}
	}

	database, err := openDatabase(cfg)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	session, err := browser.NewSession(c.Context, cfg.Browser, logger)
	if err != nil {
		logger.Error("failed to start browser", "error", err)
		os.Exit(2)
	}
	defer session.Close()

	orch := scraper.New(scraper.Deps{
		Search:      session,
		Fetcher:     session,
		Extractor:   extract.New(logger),
		Diagnostics: session,
		Ranker:      match.New(cfg.Match),
		Logger:      logger,
		StepTimeout: cfg.Browser.StepTimeout.Std(),
	})
	req := scraper.Request{
		CompanyName:        companyName,
		RegistrationNumber: c.String("registration"),
		DocumentTypes:      docTypes,
	}

	outcome := retry.Run(c.Context, cfg.Retry, logger, func(ctx context.Context) models.ScrapeOutcome {
		return orch.Run(ctx, req)
	})
	elapsed := time.Since(startTime)
	logger.Info("scrape finished",
		"success", outcome.Success,
		"documents", len(outcome.Documents),
		"duration", elapsed.Round(time.Millisecond).String())

	recordRun(logger, database, req, outcome, elapsed)
	if store != nil && outcome.Success {
		if dir, err := store.SaveOutcome(outcome); err != nil {
			logger.Warn("failed to save artifacts", "error", err)
		} else {
			logger.Info("artifacts saved", "dir", dir)
		}
	}

	if strings.ToLower(c.String("format")) == "text" {
		printHuman(outcome)
	} else {
		data, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			logger.Error("failed to marshal outcome", "error", err)
			os.Exit(2)
		}
		fmt.Println(string(data))
	}

	if !outcome.Success {
		if outcome.RetryRecommended {
			os.Exit(2)
		}
		os.Exit(1)
	}
	return nil
}

func openDatabase(cfg models.Config) (*dbpkg.DB, error) {
	if cfg.DBPath != "" {
		return dbpkg.OpenAt(cfg.DBPath)
	}
	return dbpkg.Open()
}

// recordRun persists the run to the history database. Failures here
// must not change the scrape's own result, so they are only logged.
func recordRun(logger *slog.Logger, database *dbpkg.DB, req scraper.Request, outcome models.ScrapeOutcome, elapsed time.Duration) {
	attempts := 1
	if outcome.Debug != nil && outcome.Debug.Attempts > 0 {
		attempts = outcome.Debug.Attempts
	}
	runID, err := database.RecordRun(req.CompanyName, req.RegistrationNumber, attempts, elapsed, outcome)
	if err != nil {
		logger.Warn("failed to record run", "error", err)
		return
	}
	logger.Info("run recorded", "run_id", runID)
}
