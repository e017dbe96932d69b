package refiner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valpere/medtran/internal/postprocess"
)

// Ollama uses a local Ollama model as a medical transcription editor.
type Ollama struct {
	model   string
	baseURL string
	client  *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func NewOllama(model, baseURL string, timeout time.Duration) *Ollama {
	return &Ollama{
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (o *Ollama) Refine(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:  o.model,
		Prompt: refinementPrompt(text),
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal refinement request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create refinement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("refinement request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var msg bytes.Buffer
		_, _ = msg.ReadFrom(resp.Body)
		return "", &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(msg.String())}
	}

	var ollamaResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", fmt.Errorf("failed to decode refinement response: %w", err)
	}

	refined := postprocess.Clean(ollamaResp.Response)
	if refined == "" {
		return text, nil
	}
	return refined, nil
}

func refinementPrompt(text string) string {
	return fmt.Sprintf(`You are an experienced medical transcriptionist.

The text below was produced by speech recognition during a patient encounter.
Correct misrecognized medical terms, drug names and dosages, fix punctuation
and casing, and remove filler words. Do not add information that is not in
the transcription and do not change its language.

TRANSCRIPTION:
%s

If the transcription is already correct, return it unchanged.
Output ONLY the corrected transcription. Do not include any explanation.`, text)
}
