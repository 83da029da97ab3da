package matchcmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dtnitsch/hrscrape/internal/common"
	"github.com/dtnitsch/hrscrape/models"
	"github.com/dtnitsch/hrscrape/pkg/match"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// RankAction scores a candidate list against a query without touching
// the browser. Candidates come from a YAML or JSON file, or stdin with
// "-", in the shape the scraper reports them: name, registration_text,
// court. Useful for replaying a confusing selection and tuning the
// match thresholds against it. Exits 0 when a candidate is accepted,
// 1 otherwise.
func RankAction(c *cli.Context) error {
	companyName := common.SanitizeQuery(c.Args().First())
	if companyName == "" {
		return fmt.Errorf("company name required\nUsage: hrscrape match <company> --candidates rows.yaml\nExample: hrscrape match \"Adler Real Estate\" -r \"HRB 259502\" --candidates rows.yaml")
	}

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	rows, err := loadCandidates(c.String("candidates"))
	if err != nil {
		return err
	}

	query := match.Query{Name: companyName, RegistrationNumber: c.String("registration")}
	sel := match.New(cfg.Match).Rank(query, rows)

	if c.Bool("json") {
		out := struct {
			Decision string                   `json:"decision"`
			Best     *models.ScoredCandidate  `json:"best,omitempty"`
			Scored   []models.ScoredCandidate `json:"scored"`
		}{sel.Decision.String(), sel.Best, sel.Scored}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal selection: %w", err)
		}
		fmt.Println(string(data))
		if sel.Decision != match.DecisionAccepted {
			return cli.Exit("", 1)
		}
		return nil
	}

	fmt.Printf("Query: %s", companyName)
	if reg := c.String("registration"); reg != "" {
		fmt.Printf(" (%s)", reg)
	}
	fmt.Printf("\n\n")

	fmt.Printf("%-4s %-45s %-24s %-8s %-8s %-8s\n", "#", "Name", "Registration", "NScore", "RScore", "Score")
	fmt.Println(strings.Repeat("-", 100))
	for i, sc := range sel.Scored {
		regScore := "-"
		if sc.RegScore != nil {
			regScore = fmt.Sprintf("%.3f", *sc.RegScore)
		}
		fmt.Printf("%-4d %-45s %-24s %-8.3f %-8s %-8.3f\n",
			i+1,
			truncate(sc.Name, 45),
			truncate(sc.RegistrationText, 24),
			sc.NameScore,
			regScore,
			sc.CombinedScore,
		)
	}

	fmt.Printf("\nDecision: %s\n", sel.Decision)
	switch sel.Decision {
	case match.DecisionAccepted:
		fmt.Printf("Selected: %s (%s)\n", sel.Best.Name, sel.Best.RegistrationText)
	case match.DecisionAmbiguous:
		fmt.Println("\nTip: add -r <registration number> to break the tie")
	case match.DecisionBelowThreshold:
		fmt.Println("\nTip: check the spelling, or query the registered name instead of a trade name")
	}

	if sel.Decision != match.DecisionAccepted {
		return cli.Exit("", 1)
	}
	return nil
}

// loadCandidates reads a list of candidate rows from a file, or from
// stdin when path is "-". YAML and JSON both parse; JSON is a subset
// of YAML so one decoder covers the two.
func loadCandidates(path string) ([]models.CandidateRow, error) {
	if path == "" {
		return nil, fmt.Errorf("candidate file required\nUse --candidates rows.yaml (or rows.json), or --candidates - to read from stdin")
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read candidates from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read candidates file: %w", err)
		}
	}

	var rows []models.CandidateRow
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse candidates file: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("candidates file %s holds no rows", path)
	}
	return rows, nil
}

// truncate cuts s to at most n runes for table alignment.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
