package scraper

import (
	"context"
	"errors"
	"fmt"
)

// FailureKind classifies every way a run can end unsuccessfully. The
// set is closed; Retryable is the single source of the retry mapping.
type FailureKind int

const (
	// KindNoCompaniesFound: the search produced zero result rows.
	// Possibly transient (site lag, index gaps), so retryable.
	KindNoCompaniesFound FailureKind = iota
	// KindNoSuitableMatch: no candidate plausibly describes the
	// queried company. An input problem, not a transient fault.
	KindNoSuitableMatch
	// KindAmbiguousMatch: the top candidates are too close to call;
	// the query needs a registration number.
	KindAmbiguousMatch
	// KindNoDocumentsFound: every requested document fetch failed.
	KindNoDocumentsFound
	// KindNetworkOrSiteError: navigation failed or a step timed out.
	KindNetworkOrSiteError
	// KindUnexpectedError: an unclassified fault caught at the run
	// boundary.
	KindUnexpectedError
)

// Retryable reports whether rerunning the whole flow may help.
// Semantic failures are final; transient and unclassified ones are
// worth another attempt.
func (k FailureKind) Retryable() bool {
	switch k {
	case KindNoSuitableMatch, KindAmbiguousMatch:
		return false
	}
	return true
}

func (k FailureKind) String() string {
	switch k {
	case KindNoCompaniesFound:
		return "no_companies_found"
	case KindNoSuitableMatch:
		return "no_suitable_match"
	case KindAmbiguousMatch:
		return "ambiguous_match"
	case KindNoDocumentsFound:
		return "no_documents_found"
	case KindNetworkOrSiteError:
		return "network_or_site_error"
	case KindUnexpectedError:
		return "unexpected_error"
	}
	return "unknown"
}

// Failure is a classified run failure.
type Failure struct {
	Kind    FailureKind
	Message string
}

func (f *Failure) Error() string { return f.Message }

func failf(kind FailureKind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// AsFailure converts an arbitrary collaborator error into a classified
// Failure: existing Failures pass through unchanged, context deadlines
// and cancellations become NetworkOrSiteError, anything else takes the
// given fallback kind.
func AsFailure(err error, fallback FailureKind) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return failf(KindNetworkOrSiteError, "step timed out: %v", err)
	}
	return &Failure{Kind: fallback, Message: err.Error()}
}
