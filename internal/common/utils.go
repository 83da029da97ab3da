package common

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the shared stderr JSON logger. Verbose wins Info
// down to Debug, quiet wins everything up to Error; stdout stays
// reserved for command output.
func NewLogger(verbose, quiet bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// wrapperPairs are the decorations copy-pasted queries tend to carry.
var wrapperPairs = [][2]string{
	{`"`, `"`},
	{"'", "'"},
	{"(", ")"},
	{"[", "]"},
	{"<", ">"},
	{"„", "“"},
}

// SanitizeQuery cleans up a pasted company query: surrounding quotes
// and brackets are stripped, inner whitespace collapses to single
// spaces. Queries often arrive copied out of documents or chat
// messages and carry line breaks or smart quotes.
func SanitizeQuery(raw string) string {
	cleaned := strings.TrimSpace(raw)
	for changed := true; changed; {
		changed = false
		for _, pair := range wrapperPairs {
			if len(cleaned) > len(pair[0])+len(pair[1]) &&
				strings.HasPrefix(cleaned, pair[0]) && strings.HasSuffix(cleaned, pair[1]) {
				cleaned = strings.TrimSpace(cleaned[len(pair[0]) : len(cleaned)-len(pair[1])])
				changed = true
			}
		}
	}
	return strings.Join(strings.Fields(cleaned), " ")
}
