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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/valpere/medtran/internal/chunker"
	"github.com/valpere/medtran/internal/config"
	"github.com/valpere/medtran/internal/translator"
)

var (
	inputText  string
	inputFile  string
	outputFile string
	targetLang string
	sourceLang string
	maxChars   int
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate text once through the configured service",
	Long: `Translate a text from the command line with the same provider the HTTP
service uses. This is handy for checking credentials and models. Long
documents can be split with --max-chars; pieces are translated in order
and joined with blank lines.

Available services (--service or translate.service):
  - google      Google Cloud Translation (credentials file or ADC)
  - mymemory    MyMemory (free, 5000 chars/day)
  - systran     Systran Translate (requires API key)
  - ollama      Ollama LLM (self-hosted)
  - openrouter  OpenRouter LLM (requires API key)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (inputText == "") == (inputFile == "") {
			return fmt.Errorf("exactly one of --text or --input is required")
		}
		if inputFile != "" && inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		text := inputText
		if inputFile != "" {
			data, err := os.ReadFile(inputFile)
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}
			text = string(data)
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("nothing to translate")
		}

		c, err := config.Load(v)
		if err != nil {
			return err
		}

		svc, cfg := buildTranslator(c.Translate)
		det, val := buildLanguageTools(c.Translate)

		if sourceLang == translator.AutoDetect && det != nil {
			if detected, ok := det.DetectISO(text); ok {
				sourceLang = detected
				log.Info().Str("source", sourceLang).Msg("detected source language")
			}
		}

		pieces := chunker.Split(text, maxChars)
		translated := make([]string, 0, len(pieces))
		for i, piece := range pieces {
			result, err := svc.Translate(cmd.Context(), cfg, translator.TranslateRequest{
				Text:       piece,
				SourceLang: sourceLang,
				TargetLang: targetLang,
			})
			if err != nil {
				return fmt.Errorf("translation failed on chunk %d/%d: %w", i+1, len(pieces), err)
			}

			log.Info().
				Str("service", result.ServiceName).
				Str("detected", result.DetectedSource).
				Dur("latency", result.Latency).
				Int("chunk", i+1).
				Int("chunks", len(pieces)).
				Msg("translated")

			translated = append(translated, result.TranslatedText)
		}
		output := strings.Join(translated, "\n\n")

		if val != nil {
			if ok, verr := val.IsValid(output, targetLang); !ok {
				log.Warn().Err(verr).Msg("translation language mismatch")
			}
		}

		if outputFile == "" {
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		}

		if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(outputFile, []byte(output), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVar(&inputText, "text", "", "Text to translate")
	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "File to translate")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (stdout when empty)")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "", "Target language code (required)")
	translateCmd.Flags().StringVarP(&sourceLang, "source", "s", translator.AutoDetect, "Source language code")
	translateCmd.Flags().String("service", "google", "Translation service")
	translateCmd.Flags().IntVar(&maxChars, "max-chars", 0, "Split the input into pieces of at most this many characters (0 = no split)")

	_ = v.BindPFlag("translate.service", translateCmd.Flags().Lookup("service"))

	translateCmd.MarkFlagRequired("target")
}
