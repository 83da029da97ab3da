package models

// CandidateRow is one entry of the register's search-result table.
// DocLinks maps a document type to the DOM element id of the row's
// download link; the ids are opaque outside the browser session that
// produced them and go stale as soon as a new search runs.
type CandidateRow struct {
	Name             string                  `json:"name" yaml:"name"`
	RegistrationText string                  `json:"registration_text" yaml:"registration_text"`
	Court            string                  `json:"court,omitempty" yaml:"court,omitempty"`
	DocLinks         map[DocumentType]string `json:"-" yaml:"-"`
}

// ScoredCandidate pairs a candidate row with its similarity scores.
// RegScore is nil when no registration number was supplied or either
// side's number failed to parse; CombinedScore then equals NameScore.
type ScoredCandidate struct {
	CandidateRow
	NameScore     float64  `json:"name_score"`
	RegScore      *float64 `json:"reg_score"`
	CombinedScore float64  `json:"combined_score"`
}
