package runs

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

// ListAction prints the most recent runs as a table.
func ListAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet")
		fmt.Println("\nTip: Run 'hrscrape fetch \"<company>\"' first")
		return nil
	}

	printRunsTable(runs)
	fmt.Printf("\nTotal: %d runs\n", len(runs))
	fmt.Printf("\nTip: Use 'hrscrape runs show <id>' to see details\n")
	return nil
}

// ShowAction prints one run with its documents and site messages. With
// no argument it shows the most recent run.
func ShowAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runID, err := getRunIDOrLatest(c, database)
	if err != nil {
		return err
	}

	run, err := database.GetRun(runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	documents, err := database.GetRunDocuments(runID)
	if err != nil {
		return fmt.Errorf("failed to get run documents: %w", err)
	}
	messages, err := database.GetRunMessages(runID)
	if err != nil {
		return fmt.Errorf("failed to get run messages: %w", err)
	}

	fmt.Printf("Run %d\n", run.RunID)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Created:  %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	query := run.Query
	if run.RegistrationQuery != "" {
		query = fmt.Sprintf("%s (%s)", run.Query, run.RegistrationQuery)
	}
	fmt.Printf("Query:    %s\n", query)
	if run.Duration > 0 {
		fmt.Printf("Took:     %s\n", run.Duration)
	}
	if run.Success {
		fmt.Printf("Status:   success, %d document(s), %d attempt(s)\n", run.DocumentCount, run.Attempts)
		fmt.Printf("Company:  %s\n", run.CompanyName)
		fmt.Printf("HRB:      %s\n", run.CompanyHRB)
	} else {
		fmt.Printf("Status:   failed after %d attempt(s)\n", run.Attempts)
		fmt.Printf("Error:    %s\n", run.ErrorMessage)
		retry := "no"
		if run.RetryRecommended {
			retry = "yes"
		}
		fmt.Printf("Retry:    %s\n", retry)
	}
	if run.ScreenshotPath != "" {
		fmt.Printf("Shot:     %s\n", run.ScreenshotPath)
	}
	if run.HTMLPath != "" {
		fmt.Printf("Dump:     %s\n", run.HTMLPath)
	}

	if len(documents) > 0 {
		fmt.Printf("\nDocuments (%d):\n", len(documents))
		fmt.Println(strings.Repeat("-", 60))
		for i, doc := range documents {
			if doc.ErrorStage != "" {
				fmt.Printf("%2d. [%s] failed at %s: %s\n", i+1, doc.DocType, doc.ErrorStage, doc.ErrorMessage)
				continue
			}
			fmt.Printf("%2d. [%s] %s\n", i+1, doc.DocType, doc.PDFFileName)
			fmt.Printf("    Size: %d bytes | Pages: %d", doc.SizeBytes, doc.PageCount)
			if doc.Language != "" {
				fmt.Printf(" | Language: %s (%.2f)", doc.Language, doc.LanguageConfidence)
			}
			fmt.Println()
		}
	}

	if len(messages) > 0 {
		fmt.Printf("\nSite messages (%d):\n", len(messages))
		fmt.Println(strings.Repeat("-", 60))
		for _, msg := range messages {
			fmt.Printf("  - %s\n", msg)
		}
	}

	return nil
}

// QueryAction filters the run history.
func QueryAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	todayOnly := c.Bool("today")
	failedOnly := c.Bool("failed")
	companyPattern := c.String("company")

	runs, err := database.QueryRuns(todayOnly, failedOnly, companyPattern)
	if err != nil {
		return fmt.Errorf("failed to query runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found matching filters")
		if todayOnly {
			fmt.Println("  - Filter: today only")
		}
		if failedOnly {
			fmt.Println("  - Filter: failed only")
		}
		if companyPattern != "" {
			fmt.Printf("  - Filter: company pattern '%s'\n", companyPattern)
		}
		return nil
	}

	printRunsTable(runs)
	fmt.Printf("\nFound: %d runs\n", len(runs))
	return nil
}

// StatsAction prints run history totals.
func StatsAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	stats, err := database.Stats()
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	fmt.Printf("Runs:      %d total (%d succeeded, %d failed)\n", stats.Total, stats.Succeeded, stats.Failed)
	fmt.Printf("Documents: %d fetched\n", stats.Documents)
	if stats.Failed > 0 {
		fmt.Printf("\nTip: Use 'hrscrape runs query --failed' to inspect the failures\n")
	}
	return nil
}
