package translator

import (
	"context"
	"time"
)

// AutoDetect asks the provider to detect the source language itself.
const AutoDetect = "auto"

// ServiceConfig carries per-call provider settings.
type ServiceConfig struct {
	Credentials string `mapstructure:"credentials" json:"credentials"`
	ProjectID   string `mapstructure:"project_id" json:"project_id"`
	// Model pins the model of LLM providers; empty rotates through their list.
	Model string `mapstructure:"model" json:"model"`
}

type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type ServiceResult struct {
	ServiceName    string            `json:"service_name"`
	TranslatedText string            `json:"translated_text"`
	DetectedSource string            `json:"detected_source,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	Latency        time.Duration     `json:"latency"`
	Error          string            `json:"error,omitempty"`
}

// TranslationService is one machine-translation provider. Translate always
// returns a non-nil result; on failure result.Error mirrors the returned error.
type TranslationService interface {
	Name() string
	Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error)
	IsAvailable(ctx context.Context) error
}

func isAuto(lang string) bool {
	return lang == "" || lang == AutoDetect
}

// fail records err on result and hands both back, the shape every provider
// returns on error.
func fail(result *ServiceResult, err error) (*ServiceResult, error) {
	result.Error = err.Error()
	return result, err
}
