package ner

import (
	"context"
	"log/slog"
	"sort"

	"github.com/legajo/docsync/internal/common"
	"github.com/legajo/docsync/internal/entity"
)

// Pipeline runs every configured predictor over a document, reconciles the
// overlapping predictions and produces the structured entity sets.
type Pipeline struct {
	predictors []Predictor
	vocab      *Vocabulary
	logger     *slog.Logger
}

func NewPipeline(predictors []Predictor, vocab *Vocabulary, logger *slog.Logger) *Pipeline {
	if vocab == nil {
		vocab = MustDefaultVocabulary()
	}
	return &Pipeline{
		predictors: predictors,
		vocab:      vocab,
		logger:     logger.With(slog.String("component", "ner")),
	}
}

// Extract analyzes text with all backends. A failing backend is logged and
// skipped; the call errors only when every backend fails, so pattern
// matches still come through while a model endpoint is down.
func (p *Pipeline) Extract(ctx context.Context, text string) (*entity.Entities, error) {
	out := entity.NewEntities()
	if len(text) == 0 {
		return &out, nil
	}

	var spans []RawSpan
	succeeded := 0
	for _, pred := range p.predictors {
		ps, err := pred.Predict(ctx, text)
		if err != nil {
			p.logger.Warn("predictor failed",
				slog.String("predictor", pred.Name()),
				slog.String("error", err.Error()))
			continue
		}
		succeeded++
		spans = append(spans, ps...)
	}
	if succeeded == 0 && len(p.predictors) > 0 {
		return nil, common.WrapError(common.ErrModelUnavailable, "all entity backends failed")
	}

	spans = dedupeSpans(spans)
	spans = mergeAdjacent(text, spans)

	tokens := tokenize(text)
	spans = p.mergePersons(text, tokens, spans)
	spans = resolveOverlaps(spans)

	c := &classifier{text: text, tokens: tokens, vocab: p.vocab}
	c.classify(spans, &out)
	return &out, nil
}

// mergePersons runs the wider person-run merge on person spans only and
// recombines them with the rest.
func (p *Pipeline) mergePersons(text string, tokens []token, spans []RawSpan) []RawSpan {
	var persons, rest []RawSpan
	for _, s := range spans {
		if coarseCategory(s.Label) == catPerson {
			persons = append(persons, s)
		} else {
			rest = append(rest, s)
		}
	}
	if len(persons) < 2 {
		return spans
	}
	merged := mergePersonRuns(text, tokens, persons)
	return append(rest, merged...)
}

// resolveOverlaps keeps the highest-value reading of each region of text.
// Pattern matches for statutes and codes outrank model predictions, names
// outrank dates, and among equals the longer span wins.
func resolveOverlaps(spans []RawSpan) []RawSpan {
	if len(spans) < 2 {
		return spans
	}
	ranked := make([]RawSpan, len(spans))
	copy(ranked, spans)
	sort.SliceStable(ranked, func(i, j int) bool {
		pi, pj := priority(coarseCategory(ranked[i].Label)), priority(coarseCategory(ranked[j].Label))
		if pi != pj {
			return pi > pj
		}
		return ranked[i].End-ranked[i].Start > ranked[j].End-ranked[j].Start
	})

	var kept []RawSpan
	for _, s := range ranked {
		contained := false
		for _, k := range kept {
			if s.Start >= k.Start && s.End <= k.End {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, s)
		}
	}
	sortSpans(kept)
	return kept
}
