package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/legajo/docsync/internal/common"
)

// HTTPPredictor calls a token-classification model served over HTTP. The
// wire format matches the usual inference-server shape: a {"text": ...}
// request and an array of {entity_group, word, start, end, score} hits.
type HTTPPredictor struct {
	name         string
	endpoint     string
	client       *http.Client
	chunkTokens  int
	chunkOverlap int
	logger       *slog.Logger
}

type predictRequest struct {
	Text string `json:"text"`
}

type predictHit struct {
	EntityGroup string  `json:"entity_group"`
	Word        string  `json:"word"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
	Score       float64 `json:"score"`
}

func NewHTTPPredictor(name, endpoint string, timeout time.Duration, chunkSize, overlap int, logger *slog.Logger) *HTTPPredictor {
	if chunkSize <= 0 {
		chunkSize = 450
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 50
	}
	return &HTTPPredictor{
		name:         name,
		endpoint:     endpoint,
		client:       &http.Client{Timeout: timeout},
		chunkTokens:  chunkSize,
		chunkOverlap: overlap,
		logger:       logger.With(slog.String("predictor", name)),
	}
}

func (p *HTTPPredictor) Name() string { return p.name }

// Predict splits the text into overlapping token windows sized for the
// model's context limit and maps each hit back to document offsets. A
// failing chunk is logged and skipped; the call errors only when every
// chunk fails.
func (p *HTTPPredictor) Predict(ctx context.Context, text string) ([]RawSpan, error) {
	chunks := chunkTokens(text, p.chunkTokens, p.chunkOverlap)
	if len(chunks) == 0 {
		return nil, nil
	}

	var spans []RawSpan
	failed := 0
	for i, ch := range chunks {
		hits, err := p.predictChunk(ctx, ch.Text)
		if err != nil {
			failed++
			p.logger.Warn("chunk prediction failed",
				slog.Int("chunk", i),
				slog.String("error", err.Error()))
			continue
		}
		for _, h := range hits {
			if h.End <= h.Start || h.End > len(ch.Text) {
				continue
			}
			spans = append(spans, RawSpan{
				Label:      h.EntityGroup,
				Text:       h.Word,
				Start:      ch.Offset + h.Start,
				End:        ch.Offset + h.End,
				Confidence: h.Score,
			})
		}
	}
	if failed == len(chunks) {
		return nil, common.WrapError(common.ErrModelUnavailable, fmt.Sprintf("endpoint %s", p.endpoint))
	}
	return dedupeSpans(spans), nil
}

func (p *HTTPPredictor) predictChunk(ctx context.Context, text string) ([]predictHit, error) {
	body, err := json.Marshal(predictRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", p.endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(raw))
	}

	var hits []predictHit
	if err := json.Unmarshal(raw, &hits); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return hits, nil
}

func truncateBody(b []byte) string {
	const max = 512
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
