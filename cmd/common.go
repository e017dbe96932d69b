/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"github.com/rs/zerolog/log"

	"github.com/valpere/medtran/internal/config"
	"github.com/valpere/medtran/internal/detector"
	"github.com/valpere/medtran/internal/refiner"
	"github.com/valpere/medtran/internal/speech"
	"github.com/valpere/medtran/internal/translator"
	"github.com/valpere/medtran/internal/validator"
)

// buildTranslator constructs the configured translation provider and the
// per-call settings passed along with every request. Empty model lists fall
// back to the provider defaults.
func buildTranslator(c config.Translate) (translator.TranslationService, translator.ServiceConfig) {
	cfg := translator.ServiceConfig{
		Credentials: c.Credentials,
		ProjectID:   c.ProjectID,
		Model:       c.Model,
	}

	switch c.Service {
	case "mymemory":
		return translator.NewMyMemoryService(c.MyMemoryEmail, c.Timeout), cfg
	case "systran":
		return translator.NewSystranService(c.SystranKey, c.Timeout), cfg
	case "ollama":
		return translator.NewOllamaTranslator(c.OllamaURL, c.OllamaModels, c.Timeout), cfg
	case "openrouter":
		return translator.NewOpenRouterService(c.OpenRouterKey, "", c.OpenRouterModels, c.Timeout), cfg
	default:
		return translator.NewGoogleService(), cfg
	}
}

// buildLanguageTools returns the source detector and the output validator,
// either of which is nil when switched off. Both share one lingua model set.
// MyMemory cannot auto-detect, so it always gets a detector.
func buildLanguageTools(c config.Translate) (*detector.Detector, *validator.Validator) {
	detect := c.DetectSource || c.Service == "mymemory"
	if !detect && !c.Validate {
		return nil, nil
	}

	det := detector.New(c.DetectLanguages...)

	var val *validator.Validator
	if c.Validate {
		val = validator.New(det)
	}
	if !detect {
		det = nil
	}
	return det, val
}

func buildRefiner(c *config.Config) refiner.Refiner {
	if c.Refine.Backend == "ollama" {
		return refiner.NewOllama(c.Refine.Model, c.Refine.OllamaURL, c.Refine.Timeout)
	}
	return refiner.NewHuggingFace(c.HFAPIKey, c.Refine.URL, c.Refine.Timeout)
}

// buildSpeech returns nil engines when speech is disabled, which leaves the
// speech routes unregistered.
func buildSpeech(c config.Speech) (speech.Recognizer, speech.Synthesizer) {
	if !c.Enabled {
		return nil, nil
	}
	return speech.NewSoxWhisper(c.SoxBin, c.WhisperBin, c.WhisperModel, c.Calibration, c.ListenTimeout),
		speech.NewEspeak(c.EspeakBin)
}

func warnIfMissingCredential(c *config.Config) {
	if c.Refine.Backend == "huggingface" && c.HFAPIKey == "" {
		log.Warn().Msg("HF_API_KEY is not set, /refine-transcription will answer 500")
	}
}
