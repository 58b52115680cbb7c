// Package spellcheck flags words outside a Spanish reference dictionary
// and proposes close replacements.
package spellcheck

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// Dictionary answers membership and suggestion queries for a language.
type Dictionary interface {
	IsCorrect(word string) bool
	Suggest(word string, max int) []string
}

// Disabled returns a dictionary that accepts every word, for deployments
// without a wordlist.
func Disabled() Dictionary { return disabledDictionary{} }

type disabledDictionary struct{}

func (disabledDictionary) IsCorrect(string) bool        { return true }
func (disabledDictionary) Suggest(string, int) []string { return nil }

// WordlistDictionary backs Dictionary with a plain word-per-line file.
type WordlistDictionary struct {
	words    map[string]struct{}
	byLength map[int][]string
}

// LoadWordlist reads a dictionary file. Lines are lowercased and trimmed;
// blank lines and # comments are ignored.
func LoadWordlist(path string) (*WordlistDictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary %s: %w", path, err)
	}
	defer f.Close()

	d := &WordlistDictionary{
		words:    make(map[string]struct{}),
		byLength: make(map[int][]string),
	}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		w := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		d.add(w)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	return d, nil
}

// NewWordlistDictionary builds a dictionary from an in-memory word set.
func NewWordlistDictionary(words []string) *WordlistDictionary {
	d := &WordlistDictionary{
		words:    make(map[string]struct{}, len(words)),
		byLength: make(map[int][]string),
	}
	for _, w := range words {
		d.add(strings.ToLower(strings.TrimSpace(w)))
	}
	return d
}

func (d *WordlistDictionary) add(w string) {
	if w == "" {
		return
	}
	if _, ok := d.words[w]; ok {
		return
	}
	d.words[w] = struct{}{}
	n := len([]rune(w))
	d.byLength[n] = append(d.byLength[n], w)
}

func (d *WordlistDictionary) Len() int { return len(d.words) }

func (d *WordlistDictionary) IsCorrect(word string) bool {
	_, ok := d.words[strings.ToLower(word)]
	return ok
}

// Suggest returns up to max dictionary words within edit distance two of
// word, closest first. Only candidates of similar length are compared,
// which keeps the scan cheap on large wordlists.
func (d *WordlistDictionary) Suggest(word string, max int) []string {
	lower := strings.ToLower(word)
	n := len([]rune(lower))

	type scored struct {
		word string
		dist int
	}
	var hits []scored
	for l := n - 2; l <= n+2; l++ {
		for _, cand := range d.byLength[l] {
			dist := levenshtein.Distance(lower, cand, nil)
			if dist <= 2 {
				hits = append(hits, scored{cand, dist})
			}
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].word < hits[j].word
	})

	if max <= 0 {
		max = 5
	}
	out := make([]string, 0, max)
	for _, h := range hits {
		if len(out) == max {
			break
		}
		out = append(out, h.word)
	}
	return out
}
