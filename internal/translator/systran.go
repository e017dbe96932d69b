package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	systranHost = "api-systran-systran-translation-v1.p.rapidapi.com"
	systranURL  = "https://" + systranHost + "/translation/text/translate"
)

// SystranService calls Systran through RapidAPI.
type SystranService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewSystranService(apiKey string, timeout time.Duration) *SystranService {
	return &SystranService{
		apiKey:  apiKey,
		baseURL: systranURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *SystranService) Name() string {
	return "systran"
}

func (s *SystranService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	if s.apiKey == "" {
		return fail(result, fmt.Errorf("Systran API key required"))
	}

	source := req.SourceLang
	if isAuto(source) {
		source = AutoDetect
	}

	body, err := json.Marshal(map[string]any{
		"input":  req.Text,
		"source": source,
		"target": req.TargetLang,
		"format": "text",
	})
	if err != nil {
		return fail(result, fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return fail(result, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-RapidAPI-Key", s.apiKey)
	httpReq.Header.Set("X-RapidAPI-Host", systranHost)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fail(result, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fail(result, fmt.Errorf("API returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg)))
	}

	var systranResp struct {
		Outputs []struct {
			Output string `json:"output"`
			Info   struct {
				LID struct {
					Language string `json:"language"`
				} `json:"lid"`
			} `json:"info"`
		} `json:"outputs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&systranResp); err != nil {
		return fail(result, fmt.Errorf("failed to decode response: %w", err))
	}
	if len(systranResp.Outputs) == 0 || systranResp.Outputs[0].Output == "" {
		return fail(result, fmt.Errorf("empty translation response"))
	}

	result.TranslatedText = systranResp.Outputs[0].Output
	result.DetectedSource = systranResp.Outputs[0].Info.LID.Language
	return result, nil
}

func (s *SystranService) IsAvailable(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("Systran API key not configured")
	}
	return nil
}
