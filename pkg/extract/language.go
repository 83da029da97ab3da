package extract

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pemistahl/lingua-go"
)

// Register documents are German with occasional English, French and
// Italian filings from foreign branches. A small candidate set keeps
// the detector's model load fast and its decisions sharp.
var detector = sync.OnceValue(func() lingua.LanguageDetector {
	return lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.German, lingua.English, lingua.French, lingua.Italian).
		Build()
})

// DetectLanguage returns the lowercase ISO 639-1 code and confidence
// for text. Empty or undetectable text reports an empty code with zero
// confidence. Only a prefix of long documents is sampled.
func DetectLanguage(text string) (string, float64) {
	const sample = 4000
	if len(text) > sample {
		cut := sample
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	if strings.TrimSpace(text) == "" {
		return "", 0
	}
	lang, ok := detector().DetectLanguageOf(text)
	if !ok {
		return "", 0
	}
	conf := detector().ComputeLanguageConfidence(text, lang)
	return strings.ToLower(lang.IsoCode639_1().String()), conf
}
