// Package similarity provides the scoring primitives used to decide
// whether a search-result row is the company the caller asked for: a
// subsequence-based score over canonical registration numbers and a
// token-overlap score over company names.
package similarity

import (
	"strings"
	"unicode"

	"github.com/dtnitsch/hrscrape/pkg/regnum"
)

// legalForms folds spelled-out German legal forms to their common
// abbreviations. Longer forms come first so substrings don't shadow
// them ("Kommanditgesellschaft auf Aktien" before "Kommanditgesellschaft").
var legalForms = []struct{ long, abbr string }{
	{"gesellschaft mit beschränkter haftung", "gmbh"},
	{"kommanditgesellschaft auf aktien", "kgaa"},
	{"kommanditgesellschaft", "kg"},
	{"offene handelsgesellschaft", "ohg"},
	{"eingetragene genossenschaft", "eg"},
	{"europäische gesellschaft", "se"},
	{"aktiengesellschaft", "ag"},
	{"unternehmergesellschaft", "ug"},
}

// legalFormTokens are excluded from the core-token comparison: a legal
// form swap alone (GmbH vs AG) must not break a match.
var legalFormTokens = map[string]bool{
	"gmbh": true, "ag": true, "kg": true, "kgaa": true, "ohg": true,
	"ug": true, "eg": true, "se": true, "mbh": true, "co": true,
	"haftungsbeschränkt": true,
}

// noiseTokens carry no identity signal in register search results.
var noiseTokens = map[string]bool{
	"hrb": true, "hra": true, "amtsgericht": true, "register": true,
	"handelsregister": true, "commercial": true,
}

// LCSLength returns the length of the longest common subsequence of a
// and b, rune-wise. Two-row dynamic programming keeps memory at
// O(min(len(a), len(b))).
func LCSLength(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	if len(rb) > len(ra) {
		ra, rb = rb, ra
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			switch {
			case ra[i-1] == rb[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Number scores two canonical registration numbers in [0,1]. Equal
// digit strings score 1.0 and an empty side scores 0.0; otherwise the
// score is the normalized LCS of the digit strings, which tolerates
// dropped separators and transposed digits better than exact or prefix
// matching. When both numbers carry a suffix and the suffixes differ,
// penalty is subtracted, floored at zero.
func Number(a, b regnum.Number, penalty float64) float64 {
	if a.Digits == "" || b.Digits == "" {
		return 0
	}
	var score float64
	if a.Digits == b.Digits {
		score = 1.0
	} else {
		lcs := LCSLength(a.Digits, b.Digits)
		score = clamp01(2 * float64(lcs) / float64(len(a.Digits)+len(b.Digits)))
	}
	if a.Suffix != "" && b.Suffix != "" && a.Suffix != b.Suffix {
		score -= penalty
		if score < 0 {
			score = 0
		}
	}
	return score
}

// Name scores two company names in [0,1]: case-insensitive,
// whitespace-normalized, legal-form tolerant. Identical normalized
// names score 1.0, disjoint token sets 0.0, and in between the score
// grows with the shared-token proportion (Dice coefficient over core
// tokens).
func Name(a, b string) float64 {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	ta, tb := coreTokens(na), coreTokens(nb)
	if len(ta) == 0 || len(tb) == 0 {
		// Nothing but legal-form and noise tokens left; compare the
		// full sets so inputs like "GmbH" alone still score.
		ta, tb = tokenSet(na), tokenSet(nb)
	}
	common := 0
	for tok := range ta {
		if tb[tok] {
			common++
		}
	}
	if common == 0 {
		return 0
	}
	return clamp01(2 * float64(common) / float64(len(ta)+len(tb)))
}

// NormalizeName lowercases, folds spelled-out legal forms to their
// abbreviations, turns punctuation into token boundaries, and collapses
// whitespace.
func NormalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	for _, form := range legalForms {
		s = strings.ReplaceAll(s, form.long, form.abbr)
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func tokenSet(normalized string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(normalized) {
		set[tok] = true
	}
	return set
}

func coreTokens(normalized string) map[string]bool {
	set := tokenSet(normalized)
	for tok := range set {
		if legalFormTokens[tok] || noiseTokens[tok] {
			delete(set, tok)
		}
	}
	return set
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
