package refiner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// HuggingFace calls a model on the Hugging Face inference API.
type HuggingFace struct {
	apiKey string
	url    string
	http   *resty.Client
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

// summary is one element of a summarization response. SummaryText is a
// pointer so an absent field can be told apart from an empty one.
type summary struct {
	SummaryText *string `json:"summary_text"`
}

func NewHuggingFace(apiKey, url string, timeout time.Duration) *HuggingFace {
	return &HuggingFace{
		apiKey: apiKey,
		url:    url,
		http:   resty.New().SetTimeout(timeout),
	}
}

func (h *HuggingFace) Refine(ctx context.Context, text string) (string, error) {
	if h.apiKey == "" {
		return "", ErrMissingCredential
	}

	resp, err := h.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+h.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(inferenceRequest{Inputs: text}).
		Post(h.url)
	if err != nil {
		return "", fmt.Errorf("inference request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", &StatusError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var summaries []summary
	if err := json.Unmarshal(resp.Body(), &summaries); err != nil {
		return "", fmt.Errorf("failed to decode inference response: %w", err)
	}
	return firstSummary(summaries, text), nil
}

func firstSummary(summaries []summary, fallback string) string {
	if len(summaries) == 0 || summaries[0].SummaryText == nil {
		return fallback
	}
	return *summaries[0].SummaryText
}
