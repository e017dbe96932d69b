// Package server is the HTTP front of medtran: it validates requests, hands
// each one to a single collaborator and maps the outcome to JSON.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/valpere/medtran/internal/detector"
	"github.com/valpere/medtran/internal/refiner"
	"github.com/valpere/medtran/internal/speech"
	"github.com/valpere/medtran/internal/translator"
	"github.com/valpere/medtran/internal/validator"
)

const (
	maxJSONBodyBytes = 1 << 20 // 1 MiB

	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	idleTimeout       = 120 * time.Second
	shutdownTimeout   = 10 * time.Second

	requestIDHeader = "X-Request-ID"
)

// Dependencies are built once at startup and only read afterwards.
// Detector and Validator are optional. A nil Recognizer or Synthesizer leaves
// the matching speech route unregistered.
type Dependencies struct {
	Translator      translator.TranslationService
	TranslateConfig translator.ServiceConfig
	Detector        *detector.Detector
	Validator       *validator.Validator

	Refiner refiner.Refiner

	Recognizer  speech.Recognizer
	Synthesizer speech.Synthesizer

	AllowedOrigins []string
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger zerolog.Logger
}

type Server struct {
	deps Dependencies
}

func New(deps Dependencies) *Server {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Server{deps: deps}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handle(s.health))
	mux.HandleFunc("GET /greet", s.handle(s.greet))
	mux.HandleFunc("POST /translate", s.handle(s.translate))
	mux.HandleFunc("POST /refine-transcription", s.handle(s.refine))

	if s.deps.Recognizer != nil {
		mux.HandleFunc("POST /speech-to-text", s.handle(s.speechToText))
	}
	if s.deps.Synthesizer != nil {
		mux.HandleFunc("POST /text-to-speech", s.handle(s.textToSpeech))
	}

	return s.withMiddleware(mux)
}

// Run serves on addr until ctx is cancelled, then drains open requests.
// There is no write timeout: speech synthesis blocks for as long as playback
// takes.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.deps.Logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

//
// Middleware
//

func (s *Server) withMiddleware(next http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: s.deps.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}
	// rs/cors reads an empty origin list as "*"; no origins means no
	// cross-origin access at all.
	if len(s.deps.AllowedOrigins) == 0 {
		s.deps.Logger.Warn().Msg("no CORS origins configured, cross-origin requests are refused")
		opts.AllowOriginFunc = func(string) bool { return false }
	}
	c := cors.New(opts)

	return s.requestIDMiddleware(
		s.loggingMiddleware(
			s.recoverMiddleware(
				c.Handler(next),
			),
		),
	)
}

// requestIDMiddleware echoes the client's X-Request-ID or mints one, and
// attaches a request-scoped logger to the context.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		logger := s.deps.Logger.With().Str("request_id", id).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		zerolog.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// recoverMiddleware turns a panic into a 500 unless the handler already
// started its response, in which case the panic is only logged.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				zerolog.Ctx(r.Context()).Error().
					Interface("panic", v).
					Bool("response_started", sw.wroteHeader).
					Msg("handler panicked")
				if !sw.wroteHeader {
					writeError(sw, r, &Error{Kind: UpstreamError, Message: "internal error"})
				}
			}
		}()
		next.ServeHTTP(sw, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.status = statusCode
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

//
// Helpers
//

// operation handles one request and returns the response body or an error
// that classify understands.
type operation func(r *http.Request) (any, error)

func (s *Server) handle(op operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := op(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

// decodeJSON reads a JSON body into v. An empty body leaves v zero so the
// caller's required-field check reports what is missing.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxJSONBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return &Error{Kind: MissingField, Message: "Invalid JSON body", Err: err}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("write response failed")
	}
}
