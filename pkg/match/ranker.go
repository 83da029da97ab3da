// Package match ranks register search results against the query and
// decides whether one of them can be accepted as "the" company.
package match

import (
	"sort"

	"github.com/dtnitsch/hrscrape/models"
	"github.com/dtnitsch/hrscrape/pkg/regnum"
	"github.com/dtnitsch/hrscrape/pkg/similarity"
)

// Decision classifies the outcome of ranking a result list.
type Decision int

const (
	// DecisionAccepted: the top candidate cleared the acceptance
	// threshold with a clear margin over the runner-up.
	DecisionAccepted Decision = iota
	// DecisionNoCandidates: the search returned nothing to rank.
	DecisionNoCandidates
	// DecisionBelowThreshold: even the best candidate does not
	// plausibly describe the queried company.
	DecisionBelowThreshold
	// DecisionAmbiguous: the top candidates are too close to call;
	// the query needs to be more specific.
	DecisionAmbiguous
)

func (d Decision) String() string {
	switch d {
	case DecisionAccepted:
		return "accepted"
	case DecisionNoCandidates:
		return "no candidates"
	case DecisionBelowThreshold:
		return "below threshold"
	case DecisionAmbiguous:
		return "ambiguous"
	}
	return "unknown"
}

// Query is what the caller knows about the company being sought.
type Query struct {
	Name               string
	RegistrationNumber string // free-form; empty when not supplied
}

// Selection is the ranker's verdict: the decision, the accepted
// candidate when there is one, and the full scored list (descending)
// for diagnostics.
type Selection struct {
	Decision Decision
	Best     *models.ScoredCandidate // nil unless DecisionAccepted
	Scored   []models.ScoredCandidate
}

// Ranker scores and selects candidates under one immutable
// MatchConfig. It performs no navigation and keeps no state between
// calls.
type Ranker struct {
	cfg models.MatchConfig
}

// New returns a Ranker using the given tuning parameters.
func New(cfg models.MatchConfig) *Ranker {
	return &Ranker{cfg: cfg}
}

// Rank scores every candidate, sorts descending by combined score
// (stable, so ties keep the site's presentation order), and applies
// the selection policy. Pure: the input slice is left untouched.
func (r *Ranker) Rank(query Query, candidates []models.CandidateRow) Selection {
	scored := r.Score(query, candidates)
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].CombinedScore > scored[j].CombinedScore
	})
	return r.selectFrom(scored)
}

// Score computes name, registration and combined scores for each
// candidate in input order. The registration score exists only when
// the query supplied a parseable number AND the row exposes one;
// otherwise the combined score falls back to the name score alone.
func (r *Ranker) Score(query Query, candidates []models.CandidateRow) []models.ScoredCandidate {
	queryNum, err := regnum.Parse(query.RegistrationNumber)
	haveQueryNum := err == nil

	scored := make([]models.ScoredCandidate, 0, len(candidates))
	for _, row := range candidates {
		sc := models.ScoredCandidate{
			CandidateRow: row,
			NameScore:    similarity.Name(query.Name, row.Name),
		}
		if haveQueryNum {
			if rowNum, rowErr := regnum.Parse(row.RegistrationText); rowErr == nil {
				regScore := similarity.Number(queryNum, rowNum, r.cfg.SuffixPenalty)
				sc.RegScore = &regScore
			}
		}
		if sc.RegScore != nil {
			sc.CombinedScore = r.cfg.NameWeight*sc.NameScore + r.cfg.RegistrationWeight*(*sc.RegScore)
		} else {
			sc.CombinedScore = sc.NameScore
		}
		scored = append(scored, sc)
	}
	return scored
}

// selectFrom applies the selection policy to a descending scored list:
// nothing to rank, best below threshold, best within the ambiguity
// margin of the runner-up, or accepted.
func (r *Ranker) selectFrom(scored []models.ScoredCandidate) Selection {
	sel := Selection{Scored: scored}
	switch {
	case len(scored) == 0:
		sel.Decision = DecisionNoCandidates
	case scored[0].CombinedScore < r.cfg.AcceptanceThreshold:
		sel.Decision = DecisionBelowThreshold
	case len(scored) > 1 && scored[0].CombinedScore-scored[1].CombinedScore < r.cfg.AmbiguityMargin:
		sel.Decision = DecisionAmbiguous
	default:
		sel.Decision = DecisionAccepted
		sel.Best = &scored[0]
	}
	return sel
}
