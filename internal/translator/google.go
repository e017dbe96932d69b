package translator

import (
	"context"
	"fmt"
	"time"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleService uses the Cloud Translation v2 API, which detects the source
// language natively. Credentials come from cfg.Credentials or the ambient
// application default credentials. Text is requested in plain-text format,
// so results are returned verbatim.
type GoogleService struct {
	// extra client options appended after the credential options.
	opts []option.ClientOption
}

func NewGoogleService() *GoogleService {
	return &GoogleService{}
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	target, err := language.Parse(req.TargetLang)
	if err != nil {
		return fail(result, fmt.Errorf("invalid target language %q: %w", req.TargetLang, err))
	}

	opts := &translate.Options{Format: translate.Text}
	if !isAuto(req.SourceLang) {
		source, err := language.Parse(req.SourceLang)
		if err != nil {
			return fail(result, fmt.Errorf("invalid source language %q: %w", req.SourceLang, err))
		}
		opts.Source = source
	}

	client, err := translate.NewClient(ctx, append(clientOptions(cfg), s.opts...)...)
	if err != nil {
		return fail(result, fmt.Errorf("failed to create client: %w", err))
	}
	defer client.Close()

	translations, err := client.Translate(ctx, []string{req.Text}, target, opts)
	if err != nil {
		return fail(result, err)
	}
	if len(translations) == 0 {
		return fail(result, fmt.Errorf("no translation returned"))
	}

	result.TranslatedText = translations[0].Text
	if translations[0].Source != language.Und {
		result.DetectedSource = translations[0].Source.String()
	}
	return result, nil
}

func clientOptions(cfg ServiceConfig) []option.ClientOption {
	var opts []option.ClientOption
	if cfg.Credentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Credentials))
	}
	if cfg.ProjectID != "" {
		opts = append(opts, option.WithQuotaProject(cfg.ProjectID))
	}
	return opts
}

func (s *GoogleService) IsAvailable(ctx context.Context) error {
	return nil
}
