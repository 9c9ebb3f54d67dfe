package lexicon

import (
	"unicode"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
)

// DetectLanguage guesses the query language from its script. Queries
// with a meaningful share of Thai codepoints are Thai; everything else
// falls back to English. A heuristic keeps the hot path free of an
// extra model call.
func DetectLanguage(text string) domain.Language {
	var thai, letters int
	for _, r := range text {
		if unicode.Is(unicode.Thai, r) {
			thai++
			letters++
		} else if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters == 0 {
		return domain.LanguageEnglish
	}
	if thai*10 >= letters*3 { // at least 30% Thai script
		return domain.LanguageThai
	}
	return domain.LanguageEnglish
}
