package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/valpere/medtran/internal"
	"github.com/valpere/medtran/internal/refiner"
	"github.com/valpere/medtran/internal/speech"
	"github.com/valpere/medtran/internal/translator"
)

const banner = "Healthcare Translation Web App is running!"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, banner)
}

func (s *Server) health(*http.Request) (any, error) {
	return internal.HealthResponse{Status: "healthy"}, nil
}

func (s *Server) greet(*http.Request) (any, error) {
	return internal.GreetingResponse{Greeting: greetingFor(s.deps.Now().Hour())}, nil
}

func greetingFor(hour int) string {
	switch {
	case hour >= 4 && hour < 12:
		return "Good morning!"
	case hour >= 12 && hour < 17:
		return "Good afternoon!"
	default:
		return "Good evening!"
	}
}

func (s *Server) translate(r *http.Request) (any, error) {
	var req internal.TranslationRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" || strings.TrimSpace(req.Language) == "" {
		return nil, missingField("Missing text or destination language")
	}

	log := zerolog.Ctx(r.Context())
	source := s.sourceLanguage(req.Text)

	result, err := s.deps.Translator.Translate(r.Context(), s.deps.TranslateConfig, translator.TranslateRequest{
		Text:       req.Text,
		SourceLang: source,
		TargetLang: req.Language,
	})
	if err != nil {
		return nil, upstream("Translation failed", err)
	}

	log.Debug().
		Str("service", result.ServiceName).
		Str("source", source).
		Str("detected", result.DetectedSource).
		Dur("latency", result.Latency).
		Msg("translated")

	if s.deps.Validator != nil {
		if ok, verr := s.deps.Validator.IsValid(result.TranslatedText, req.Language); !ok {
			log.Warn().Err(verr).Str("target", req.Language).Msg("translation language mismatch")
		}
	}

	return internal.TranslationResponse{TranslatedText: result.TranslatedText}, nil
}

// sourceLanguage is "auto" unless local detection is configured and confident.
func (s *Server) sourceLanguage(text string) string {
	if s.deps.Detector == nil {
		return translator.AutoDetect
	}
	if code, ok := s.deps.Detector.DetectISO(text); ok {
		return code
	}
	return translator.AutoDetect
}

func (s *Server) refine(r *http.Request) (any, error) {
	var req internal.RefinementRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, missingField("Missing text")
	}

	refined, err := s.deps.Refiner.Refine(r.Context(), req.Text)
	if err != nil {
		var statusErr *refiner.StatusError
		switch {
		case errors.Is(err, refiner.ErrMissingCredential):
			return nil, &Error{Kind: ConfigurationError, Message: err.Error(), Err: err}
		case errors.As(err, &statusErr):
			return nil, &Error{Kind: UpstreamError, Message: statusErr.Error(), Err: err}
		default:
			return nil, upstream("Refinement failed", err)
		}
	}

	return internal.RefinementResponse{RefinedText: refined}, nil
}

func (s *Server) speechToText(r *http.Request) (any, error) {
	text, err := s.deps.Recognizer.Listen(r.Context())
	if err != nil {
		if errors.Is(err, speech.ErrUnintelligible) {
			return nil, &Error{Kind: RecognitionError, Message: "Could not understand audio", Err: err}
		}
		return nil, upstream("Speech recognition failed", err)
	}
	return internal.SpeechToTextResponse{Transcription: text}, nil
}

// textToSpeech plays the text on the server's speaker and returns once
// playback ends. A client hanging up does not stop playback.
func (s *Server) textToSpeech(r *http.Request) (any, error) {
	var req internal.TextToSpeechRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, missingField("Missing text")
	}

	ctx := context.WithoutCancel(r.Context())

	voices, err := s.deps.Synthesizer.Voices(ctx)
	if err != nil {
		return nil, upstream("Speech synthesis failed", err)
	}
	voice, err := speech.SelectVoice(voices, req.Voice)
	if err != nil {
		return nil, upstream("Speech synthesis failed", err)
	}

	zerolog.Ctx(r.Context()).Debug().Str("voice", voice.Name).Str("requested", req.Voice).Msg("speaking")

	if err := s.deps.Synthesizer.Speak(ctx, req.Text, voice); err != nil {
		return nil, upstream("Speech synthesis failed", err)
	}
	return internal.TextToSpeechResponse{Status: "success"}, nil
}
