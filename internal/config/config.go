// Package config loads medtran settings from flags, environment variables and
// an optional config file through viper.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 5000
	DefaultFrontendURL = "http://localhost:3000"
	DefaultRefineURL   = "https://api-inference.huggingface.co/models/medicalai/ClinicalBERT"
	DefaultOllamaURL   = "http://localhost:11434"

	MinRefineTimeout = 30 * time.Second
	MaxRefineTimeout = 60 * time.Second
)

// Translation providers accepted by translate.service.
var TranslateServices = []string{"google", "mymemory", "systran", "ollama", "openrouter"}

// Refinement backends accepted by refine.backend.
var RefineBackends = []string{"huggingface", "ollama"}

type Config struct {
	Server      Server    `mapstructure:"server"`
	FrontendURL string    `mapstructure:"frontend_url"`
	HFAPIKey    string    `mapstructure:"hf_api_key"`
	Translate   Translate `mapstructure:"translate"`
	Refine      Refine    `mapstructure:"refine"`
	Speech      Speech    `mapstructure:"speech"`
	Log         Log       `mapstructure:"log"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type Translate struct {
	Service          string        `mapstructure:"service"`
	Model            string        `mapstructure:"model"`
	Timeout          time.Duration `mapstructure:"timeout"`
	Credentials      string        `mapstructure:"credentials"`
	ProjectID        string        `mapstructure:"project_id"`
	OllamaURL        string        `mapstructure:"ollama_url"`
	OllamaModels     []string      `mapstructure:"ollama_models"`
	OpenRouterKey    string        `mapstructure:"openrouter_key"`
	OpenRouterModels []string      `mapstructure:"openrouter_models"`
	SystranKey       string        `mapstructure:"systran_key"`
	MyMemoryEmail    string        `mapstructure:"mymemory_email"`
	DetectSource     bool          `mapstructure:"detect_source"`
	DetectLanguages  []string      `mapstructure:"detect_languages"`
	Validate         bool          `mapstructure:"validate"`
}

type Refine struct {
	Backend   string        `mapstructure:"backend"`
	URL       string        `mapstructure:"url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Model     string        `mapstructure:"model"`
	OllamaURL string        `mapstructure:"ollama_url"`
}

type Speech struct {
	Enabled       bool          `mapstructure:"enabled"`
	Calibration   time.Duration `mapstructure:"calibration"`
	ListenTimeout time.Duration `mapstructure:"listen_timeout"`
	SoxBin        string        `mapstructure:"sox_bin"`
	WhisperBin    string        `mapstructure:"whisper_bin"`
	WhisperModel  string        `mapstructure:"whisper_model"`
	EspeakBin     string        `mapstructure:"espeak_bin"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// New returns a viper instance with medtran defaults and environment bindings.
// FRONTEND_URL and HF_API_KEY are read without prefix; every other key can be
// overridden with MEDTRAN_<SECTION>_<KEY>.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("frontend_url", DefaultFrontendURL)
	v.SetDefault("hf_api_key", "")

	v.SetDefault("translate.service", "google")
	v.SetDefault("translate.model", "")
	v.SetDefault("translate.timeout", 30*time.Second)
	v.SetDefault("translate.credentials", "")
	v.SetDefault("translate.project_id", "")
	v.SetDefault("translate.ollama_url", DefaultOllamaURL)
	v.SetDefault("translate.ollama_models", []string{})
	v.SetDefault("translate.openrouter_key", "")
	v.SetDefault("translate.openrouter_models", []string{})
	v.SetDefault("translate.systran_key", "")
	v.SetDefault("translate.mymemory_email", "")
	v.SetDefault("translate.detect_source", false)
	v.SetDefault("translate.detect_languages", []string{})
	v.SetDefault("translate.validate", false)

	v.SetDefault("refine.backend", "huggingface")
	v.SetDefault("refine.url", DefaultRefineURL)
	v.SetDefault("refine.timeout", MinRefineTimeout)
	v.SetDefault("refine.model", "llama3.2")
	v.SetDefault("refine.ollama_url", DefaultOllamaURL)

	v.SetDefault("speech.enabled", false)
	v.SetDefault("speech.calibration", time.Second)
	v.SetDefault("speech.listen_timeout", 5*time.Second)
	v.SetDefault("speech.sox_bin", "sox")
	v.SetDefault("speech.whisper_bin", "whisper-cli")
	v.SetDefault("speech.whisper_model", "")
	v.SetDefault("speech.espeak_bin", "espeak-ng")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetEnvPrefix("medtran")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("frontend_url", "FRONTEND_URL")
	_ = v.BindEnv("hf_api_key", "HF_API_KEY")

	return v
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host must not be empty")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if len(c.AllowedOrigins()) == 0 {
		return fmt.Errorf("frontend_url must name at least one origin")
	}
	if !slices.Contains(TranslateServices, c.Translate.Service) {
		return fmt.Errorf("unknown translate.service %q (want one of %s)", c.Translate.Service, strings.Join(TranslateServices, ", "))
	}
	if c.Translate.Timeout <= 0 {
		return fmt.Errorf("translate.timeout must be positive")
	}
	if !slices.Contains(RefineBackends, c.Refine.Backend) {
		return fmt.Errorf("unknown refine.backend %q (want one of %s)", c.Refine.Backend, strings.Join(RefineBackends, ", "))
	}
	if c.Refine.Timeout < MinRefineTimeout || c.Refine.Timeout > MaxRefineTimeout {
		return fmt.Errorf("refine.timeout %s must be between %s and %s", c.Refine.Timeout, MinRefineTimeout, MaxRefineTimeout)
	}
	if c.Speech.Enabled {
		if c.Speech.Calibration <= 0 || c.Speech.ListenTimeout <= 0 {
			return fmt.Errorf("speech.calibration and speech.listen_timeout must be positive")
		}
		if c.Speech.WhisperModel == "" {
			return fmt.Errorf("speech.whisper_model is required when speech is enabled")
		}
	}
	return nil
}

// Addr is the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// AllowedOrigins splits frontend_url on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.FrontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
