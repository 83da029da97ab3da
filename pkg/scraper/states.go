package scraper

import "fmt"

// State is one phase of a scrape run. Runs only move forward; Failed
// absorbs every non-terminal state.
type State int

const (
	StateIdle State = iota
	StateSearching
	StateRanking
	StateSelected
	StateFetching
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateRanking:
		return "ranking"
	case StateSelected:
		return "selected"
	case StateFetching:
		return "fetching_documents"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Event drives state transitions.
type Event int

const (
	EventStart Event = iota
	EventResultsLoaded
	EventCandidateChosen
	EventFetchStarted
	EventDocumentsDone
	EventFailed
)

func (e Event) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventResultsLoaded:
		return "results_loaded"
	case EventCandidateChosen:
		return "candidate_chosen"
	case EventFetchStarted:
		return "fetch_started"
	case EventDocumentsDone:
		return "documents_done"
	case EventFailed:
		return "failed"
	}
	return "unknown"
}

// Transition returns the state that follows s on e. Any event other
// than the one expected in s is rejected, except EventFailed which is
// legal from every non-terminal state.
func Transition(s State, e Event) (State, error) {
	if e == EventFailed {
		if s.Terminal() {
			return s, fmt.Errorf("invalid transition: %s on %s", s, e)
		}
		return StateFailed, nil
	}
	switch {
	case s == StateIdle && e == EventStart:
		return StateSearching, nil
	case s == StateSearching && e == EventResultsLoaded:
		return StateRanking, nil
	case s == StateRanking && e == EventCandidateChosen:
		return StateSelected, nil
	case s == StateSelected && e == EventFetchStarted:
		return StateFetching, nil
	case s == StateFetching && e == EventDocumentsDone:
		return StateCompleted, nil
	}
	return s, fmt.Errorf("invalid transition: %s on %s", s, e)
}
