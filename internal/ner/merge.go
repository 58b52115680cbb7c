package ner

import (
	"sort"
	"strings"
)

// sortSpans orders spans by start offset, longer first on ties.
func sortSpans(spans []RawSpan) {
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End > spans[j].End
	})
}

// mergeAdjacent joins model spans that the tokenizer split mid-entity. Two
// person spans merge when the gap is at most two characters, contains no
// sentence punctuation, and the second span starts uppercase. Location
// spans merge on the gap rule alone.
func mergeAdjacent(text string, spans []RawSpan) []RawSpan {
	if len(spans) == 0 {
		return spans
	}
	sortSpans(spans)

	out := make([]RawSpan, 0, len(spans))
	cur := spans[0]
	for _, next := range spans[1:] {
		if canMerge(text, cur, next) {
			cur = joinSpans(text, cur, next)
			continue
		}
		out = append(out, cur)
		cur = next
	}
	return append(out, cur)
}

func canMerge(text string, a, b RawSpan) bool {
	if coarseCategory(a.Label) != coarseCategory(b.Label) {
		return false
	}
	gap := b.Start - a.End
	if gap < 0 || gap > 2 {
		return false
	}
	if !gapIsClean(text, a.End, b.Start) {
		return false
	}
	switch coarseCategory(a.Label) {
	case catPerson:
		return startsUpper(b.Text)
	case catLocation:
		return true
	}
	return false
}

func gapIsClean(text string, from, to int) bool {
	if from < 0 || to > len(text) || from > to {
		return false
	}
	return !strings.ContainsAny(text[from:to], ".,;()")
}

func joinSpans(text string, a, b RawSpan) RawSpan {
	merged := a
	merged.Text = strings.TrimSpace(a.Text) + " " + strings.TrimSpace(b.Text)
	if a.End <= b.Start && b.Start <= len(text) {
		merged.Text = strings.TrimSpace(a.Text) + text[a.End:b.Start] + strings.TrimSpace(b.Text)
	}
	merged.End = b.End
	merged.Confidence = (a.Confidence + b.Confidence) / 2
	return merged
}

// mergePersonRuns is a second pass over person spans only. First and last
// names frequently arrive as separate predictions even after the adjacent
// merge, so a slightly wider gap (three characters, at most one token) is
// allowed here, again requiring the continuation to start uppercase.
func mergePersonRuns(text string, tokens []token, spans []RawSpan) []RawSpan {
	if len(spans) == 0 {
		return spans
	}
	sortSpans(spans)

	out := make([]RawSpan, 0, len(spans))
	cur := spans[0]
	for _, next := range spans[1:] {
		gap := next.Start - cur.End
		if gap >= 0 && gap <= 3 &&
			tokensBetween(tokens, cur.End, next.Start) <= 1 &&
			gapIsClean(text, cur.End, next.Start) &&
			startsUpper(next.Text) {
			cur = joinSpans(text, cur, next)
			continue
		}
		out = append(out, cur)
		cur = next
	}
	return append(out, cur)
}

func tokensBetween(tokens []token, from, to int) int {
	n := 0
	for _, t := range tokens {
		if t.Start >= from && t.End <= to {
			n++
		}
	}
	return n
}
