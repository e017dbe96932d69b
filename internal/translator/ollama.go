package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/valpere/medtran/internal/postprocess"
)

// DefaultOllamaModels is rotated through when translate.ollama_models is empty.
var DefaultOllamaModels = []string{
	"aya:35b",
	"gemma3:12b-it-qat",
	"qwen3:14b",
	"llama3.1:8b",
	"mistral:7b",
}

// OllamaTranslator prompts a self-hosted Ollama model. Each call picks one of
// the configured models at random unless cfg.Model pins one.
type OllamaTranslator struct {
	baseURL string
	models  []string
	client  *http.Client
}

func NewOllamaTranslator(baseURL string, models []string, timeout time.Duration) *OllamaTranslator {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if len(models) == 0 {
		models = DefaultOllamaModels
	}
	return &OllamaTranslator{
		baseURL: strings.TrimRight(baseURL, "/"),
		models:  models,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *OllamaTranslator) Name() string {
	return "ollama"
}

func (s *OllamaTranslator) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	model := cfg.Model
	if model == "" {
		model = pickModel(s.models)
	}

	body, err := json.Marshal(map[string]any{
		"model":  model,
		"prompt": translationPrompt(req),
		"stream": false,
	})
	if err != nil {
		return fail(result, fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return fail(result, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fail(result, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fail(result, fmt.Errorf("API returned status %d", resp.StatusCode))
	}

	var ollamaResp struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return fail(result, fmt.Errorf("failed to decode response: %w", err))
	}

	text := postprocess.Clean(ollamaResp.Response)
	if text == "" {
		return fail(result, fmt.Errorf("model %s returned no translation", model))
	}

	result.TranslatedText = text
	result.Metadata = map[string]string{"model": model}
	return result, nil
}

func (s *OllamaTranslator) IsAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("Ollama not available: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}
	return nil
}

func pickModel(models []string) string {
	return models[rand.IntN(len(models))]
}

func translationPrompt(req TranslateRequest) string {
	source := req.SourceLang
	if isAuto(source) {
		source = "the source language (detect it)"
	}
	return fmt.Sprintf(`You are a professional medical translator. Translate the following text from %s to %s.
Keep drug names, dosages, units and measurements exactly as written.
Only respond with the translation, nothing else.

Text: %q

Translation:`, source, req.TargetLang, req.Text)
}
