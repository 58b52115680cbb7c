// Package ner implements the composite entity-extraction pipeline: one or
// more predictor backends fan out over the text, raw spans are merged,
// classified against the legal-domain vocabulary, and grouped into the
// fixed-shape entities map.
package ner

import (
	"context"
	"strings"
)

// RawSpan is one prediction from a backend, offsets in bytes into the
// submitted text.
type RawSpan struct {
	Label      string
	Text       string
	Start      int
	End        int
	Confidence float64
}

// Predictor is a single entity-prediction backend. Implementations must be
// safe to call sequentially; errors mean the backend contributed nothing.
type Predictor interface {
	Name() string
	Predict(ctx context.Context, text string) ([]RawSpan, error)
}

// Coarse categories the classifier groups labels into.
const (
	catPerson   = "person"
	catOrg      = "organization"
	catDate     = "date"
	catLocation = "location"
	catLegalRef = "legal_ref"
	catLegalDoc = "legal_doc"
	catKeyword  = "keyword"
	catOther    = "other"
)

// coarseCategory folds the label variants emitted by different backends
// into one category.
func coarseCategory(label string) string {
	switch strings.ToUpper(label) {
	case "PER", "PERSON", "PERSONA", "NAME", "PERSON_W_ROLE":
		return catPerson
	case "ORG", "ORGANIZATION":
		return catOrg
	case "DATE", "DATE_NATURAL", "FECHA":
		return catDate
	case "LOC", "GPE", "LOCATION":
		return catLocation
	case "LEGAL_REF", "LEGAL_REFERENCE":
		return catLegalRef
	case "LEGAL_DOC", "DOC_CODE", "DOCUMENT_CODE":
		return catLegalDoc
	case "KEYWORD":
		return catKeyword
	default:
		return catOther
	}
}

// priority orders categories for overlap resolution: explicit domain labels
// beat PERSON/ORG/LOC, which beat generic date/keyword matches.
func priority(category string) int {
	switch category {
	case catLegalRef, catLegalDoc:
		return 3
	case catPerson, catOrg, catLocation:
		return 2
	case catDate, catKeyword:
		return 1
	default:
		return 0
	}
}

// dedupeSpans drops exact duplicates by (label, text, start, end),
// preserving first-seen order.
func dedupeSpans(spans []RawSpan) []RawSpan {
	type key struct {
		label, text string
		start, end  int
	}
	seen := make(map[key]struct{}, len(spans))
	out := spans[:0:0]
	for _, s := range spans {
		k := key{s.Label, s.Text, s.Start, s.End}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
