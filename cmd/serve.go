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
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/valpere/medtran/internal/config"
	"github.com/valpere/medtran/internal/server"
)

const probeTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	Long: `Run the translation proxy HTTP service.

Routes:
  GET  /                      banner
  GET  /health                health check
  GET  /greet                 time-of-day greeting
  POST /translate             {"text", "language"}
  POST /refine-transcription  {"text"}
  POST /speech-to-text        (with --speech) listen on the default microphone
  POST /text-to-speech        (with --speech) {"text", "voice"}

The service stops gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(v)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		deps, err := buildDependencies(ctx, c)
		if err != nil {
			return err
		}

		log.Info().
			Str("translate", c.Translate.Service).
			Str("refine", c.Refine.Backend).
			Bool("speech", c.Speech.Enabled).
			Strs("origins", deps.AllowedOrigins).
			Msg("starting medtran")

		return server.New(deps).Run(ctx, c.Addr())
	},
}

func buildDependencies(ctx context.Context, c *config.Config) (server.Dependencies, error) {
	svc, svcCfg := buildTranslator(c.Translate)
	det, val := buildLanguageTools(c.Translate)
	rec, synth := buildSpeech(c.Speech)

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := svc.IsAvailable(probeCtx); err != nil {
		log.Warn().Err(err).Str("service", svc.Name()).Msg("translation service unavailable")
	}
	warnIfMissingCredential(c)

	if synth != nil {
		voices, err := synth.Voices(probeCtx)
		if err != nil {
			return server.Dependencies{}, fmt.Errorf("speech enabled but synthesizer failed: %w", err)
		}
		log.Info().Int("voices", len(voices)).Msg("speech synthesizer ready")
	}

	return server.Dependencies{
		Translator:      svc,
		TranslateConfig: svcCfg,
		Detector:        det,
		Validator:       val,
		Refiner:         buildRefiner(c),
		Recognizer:      rec,
		Synthesizer:     synth,
		AllowedOrigins:  c.AllowedOrigins(),
		Logger:          log.Logger,
	}, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", config.DefaultHost, "Listen host")
	serveCmd.Flags().Int("port", config.DefaultPort, "Listen port")
	serveCmd.Flags().String("frontend-url", config.DefaultFrontendURL, "Allowed CORS origins (comma-separated)")
	serveCmd.Flags().Bool("speech", false, "Enable the local speech routes")

	_ = v.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = v.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = v.BindPFlag("frontend_url", serveCmd.Flags().Lookup("frontend-url"))
	_ = v.BindPFlag("speech.enabled", serveCmd.Flags().Lookup("speech"))
}
