package spellcheck

import (
	"log/slog"
	"strings"
	"sync"
	"unicode"
)

// spanish function words and common particles skipped during checking.
var stopwords = map[string]struct{}{
	"a": {}, "al": {}, "ante": {}, "bajo": {}, "como": {}, "con": {},
	"contra": {}, "cual": {}, "cuando": {}, "de": {}, "del": {}, "desde": {},
	"donde": {}, "durante": {}, "el": {}, "ella": {}, "ellas": {}, "ellos": {},
	"en": {}, "entre": {}, "era": {}, "es": {}, "esa": {}, "ese": {},
	"esta": {}, "este": {}, "fue": {}, "ha": {}, "han": {}, "hasta": {},
	"hay": {}, "la": {}, "las": {}, "le": {}, "les": {}, "lo": {},
	"los": {}, "mas": {}, "más": {}, "me": {}, "mi": {}, "muy": {},
	"ni": {}, "no": {}, "nos": {}, "o": {}, "otra": {}, "otro": {},
	"para": {}, "pero": {}, "poco": {}, "por": {}, "porque": {}, "que": {},
	"quien": {}, "se": {}, "ser": {}, "si": {}, "sí": {}, "sin": {},
	"sobre": {}, "son": {}, "su": {}, "sus": {}, "también": {}, "te": {},
	"tras": {}, "tu": {}, "un": {}, "una": {}, "uno": {}, "unos": {},
	"y": {}, "ya": {}, "yo": {},
}

// Checker finds misspelled words in extracted text. Suggestion lookups are
// memoized because the same misspelling tends to repeat across versions of
// a document.
type Checker struct {
	dict           Dictionary
	maxSuggestions int
	logger         *slog.Logger

	mu    sync.Mutex
	cache map[string][]string
}

func NewChecker(dict Dictionary, maxSuggestions int, logger *slog.Logger) *Checker {
	if maxSuggestions <= 0 {
		maxSuggestions = 5
	}
	return &Checker{
		dict:           dict,
		maxSuggestions: maxSuggestions,
		logger:         logger.With(slog.String("component", "spellcheck")),
		cache:          make(map[string][]string),
	}
}

// Check returns the distinct misspelled words in text, in order of first
// appearance. Stopwords, numbers and anything containing a digit are not
// checked.
func (c *Checker) Check(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, raw := range strings.Fields(text) {
		word := trimWord(raw)
		if !checkable(word) {
			continue
		}
		lower := strings.ToLower(word)
		if _, ok := stopwords[lower]; ok {
			continue
		}
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		if !c.dict.IsCorrect(lower) {
			out = append(out, lower)
		}
	}
	return out
}

// Suggestions returns ranked replacements for a misspelled word.
func (c *Checker) Suggestions(word string) []string {
	lower := strings.ToLower(trimWord(word))
	if lower == "" {
		return nil
	}

	c.mu.Lock()
	cached, ok := c.cache[lower]
	c.mu.Unlock()
	if ok {
		return cached
	}

	suggestions := c.dict.Suggest(lower, c.maxSuggestions)
	if suggestions == nil {
		suggestions = []string{}
	}
	c.mu.Lock()
	c.cache[lower] = suggestions
	c.mu.Unlock()
	return suggestions
}

func trimWord(raw string) string {
	return strings.TrimFunc(raw, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// checkable skips empty tokens, single letters and anything with a digit
// or non-letter rune left in the middle.
func checkable(word string) bool {
	if len([]rune(word)) < 2 {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
