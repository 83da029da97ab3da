package runs

import (
	"fmt"
	"strings"

	dbpkg "github.com/dtnitsch/hrscrape/pkg/db"
	"github.com/urfave/cli/v2"
)

func openDatabase(c *cli.Context) (*dbpkg.DB, error) {
	if path := c.String("db"); path != "" {
		return dbpkg.OpenAt(path)
	}
	return dbpkg.Open()
}

// getRunIDOrLatest returns the run ID from args, or the most recent
// run when none is given.
func getRunIDOrLatest(c *cli.Context, database *dbpkg.DB) (int64, error) {
	if c.NArg() == 0 {
		runs, err := database.ListRuns(1)
		if err != nil {
			return 0, fmt.Errorf("failed to get latest run: %w", err)
		}
		if len(runs) == 0 {
			return 0, fmt.Errorf("no runs recorded yet. Run 'hrscrape fetch \"<company>\"' first")
		}
		return runs[0].RunID, nil
	}

	var runID int64
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &runID); err != nil {
		return 0, fmt.Errorf("invalid run ID: %s", c.Args().First())
	}
	return runID, nil
}

// printRunsTable renders runs in the shared list layout.
func printRunsTable(runs []dbpkg.Run) {
	fmt.Printf("%-5s %-20s %-8s %-9s %-5s %-30s %-25s\n",
		"ID", "Created", "Status", "Attempts", "Docs", "Company", "Query")
	fmt.Println(strings.Repeat("-", 110))
	for _, r := range runs {
		status := "ok"
		if !r.Success {
			status = "failed"
		}
		company := r.CompanyName
		if company == "" {
			company = "-"
		}
		fmt.Printf("%-5d %-20s %-8s %-9d %-5d %-30s %-25s\n",
			r.RunID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			status,
			r.Attempts,
			r.DocumentCount,
			clip(company, 30),
			clip(r.Query, 25),
		)
	}
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
