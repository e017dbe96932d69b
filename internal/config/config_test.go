package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", c.Server.Host)
	assert.Equal(t, 5000, c.Server.Port)
	assert.Equal(t, "0.0.0.0:5000", c.Addr())
	assert.Equal(t, "google", c.Translate.Service)
	assert.Equal(t, 30*time.Second, c.Translate.Timeout)
	assert.Equal(t, "huggingface", c.Refine.Backend)
	assert.Equal(t, DefaultRefineURL, c.Refine.URL)
	assert.Equal(t, 30*time.Second, c.Refine.Timeout)
	assert.False(t, c.Speech.Enabled)
	assert.Equal(t, time.Second, c.Speech.Calibration)
	assert.Equal(t, 5*time.Second, c.Speech.ListenTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, c.AllowedOrigins())
	assert.Empty(t, c.HFAPIKey)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("FRONTEND_URL", "https://app.example.com, https://staging.example.com,")
	t.Setenv("HF_API_KEY", "hf_secret")
	t.Setenv("MEDTRAN_TRANSLATE_SERVICE", "mymemory")
	t.Setenv("MEDTRAN_REFINE_TIMEOUT", "45s")
	t.Setenv("MEDTRAN_TRANSLATE_MODEL", "aya:35b")

	c, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, c.AllowedOrigins())
	assert.Equal(t, "hf_secret", c.HFAPIKey)
	assert.Equal(t, "mymemory", c.Translate.Service)
	assert.Equal(t, 45*time.Second, c.Refine.Timeout)
	assert.Equal(t, "aya:35b", c.Translate.Model)
}

func TestLoad_RejectsEmptyFrontendURL(t *testing.T) {
	for _, value := range []string{" ", " , ,"} {
		t.Setenv("FRONTEND_URL", value)

		_, err := Load(New())
		assert.Error(t, err, "FRONTEND_URL %q", value)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medtran.yaml")
	content := `
server:
  port: 8081
translate:
  service: ollama
  ollama_models: [llama3.2, mistral:7b]
speech:
  enabled: true
  whisper_model: /models/ggml-base.en.bin
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v := New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 8081, c.Server.Port)
	assert.Equal(t, "ollama", c.Translate.Service)
	assert.Equal(t, []string{"llama3.2", "mistral:7b"}, c.Translate.OllamaModels)
	assert.True(t, c.Speech.Enabled)
	assert.Equal(t, "/models/ggml-base.en.bin", c.Speech.WhisperModel)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c, err := Load(New())
		require.NoError(t, err)
		return c
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty host", func(c *Config) { c.Server.Host = " " }},
		{"no frontend origin", func(c *Config) { c.FrontendURL = "," }},
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"unknown translate service", func(c *Config) { c.Translate.Service = "babelfish" }},
		{"zero translate timeout", func(c *Config) { c.Translate.Timeout = 0 }},
		{"unknown refine backend", func(c *Config) { c.Refine.Backend = "gpt" }},
		{"refine timeout too short", func(c *Config) { c.Refine.Timeout = 5 * time.Second }},
		{"refine timeout too long", func(c *Config) { c.Refine.Timeout = 2 * time.Minute }},
		{"speech without model", func(c *Config) { c.Speech.Enabled = true }},
		{"speech without listen timeout", func(c *Config) {
			c.Speech.Enabled = true
			c.Speech.WhisperModel = "model.bin"
			c.Speech.ListenTimeout = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoad_RejectsEmptyFrontendURLInFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medtran.yaml")
	require.NoError(t, os.WriteFile(path, []byte("frontend_url: \"\"\n"), 0o644))

	v := New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	_, err := Load(v)
	assert.ErrorContains(t, err, "frontend_url")
}

func TestAllowedOrigins_Empty(t *testing.T) {
	c := &Config{FrontendURL: " , "}
	assert.Empty(t, c.AllowedOrigins())
}
