package internal

// TranslationRequest is the body of POST /translate. The source language is
// always auto-detected.
type TranslationRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type TranslationResponse struct {
	TranslatedText string `json:"translatedText"`
}

type RefinementRequest struct {
	Text string `json:"text"`
}

type RefinementResponse struct {
	RefinedText string `json:"refinedText"`
}

type SpeechToTextResponse struct {
	Transcription string `json:"transcription"`
}

// TextToSpeechRequest is the body of POST /text-to-speech. Voice is "male"
// or "female"; an empty value means "male".
type TextToSpeechRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

type TextToSpeechResponse struct {
	Status string `json:"status"`
}

type GreetingResponse struct {
	Greeting string `json:"greeting"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
