package server

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/valpere/medtran/internal"
)

// Kind classifies a failed request and decides its status code.
type Kind int

const (
	UpstreamError Kind = iota
	MissingField
	ConfigurationError
	RecognitionError
)

func (k Kind) String() string {
	switch k {
	case MissingField:
		return "missing_field"
	case ConfigurationError:
		return "configuration_error"
	case RecognitionError:
		return "recognition_error"
	default:
		return "upstream_error"
	}
}

// Status is the HTTP status code reported for errors of this kind.
func (k Kind) Status() int {
	switch k {
	case MissingField, RecognitionError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is what operations return when a request fails. Message is sent to
// the client as is; Err keeps the cause for logs and errors.Is.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func missingField(msg string) *Error {
	return &Error{Kind: MissingField, Message: msg}
}

// upstream reports a collaborator failure as "<prefix>: <cause>".
func upstream(prefix string, err error) *Error {
	return &Error{Kind: UpstreamError, Message: prefix + ": " + err.Error(), Err: err}
}

// classify turns any error into an *Error. Unknown errors are upstream
// failures carrying their own message.
func classify(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: UpstreamError, Message: err.Error(), Err: err}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(err)

	ev := zerolog.Ctx(r.Context()).Warn()
	if e.Kind.Status() >= http.StatusInternalServerError {
		ev = zerolog.Ctx(r.Context()).Error()
	}
	ev.Err(e.Err).Str("kind", e.Kind.String()).Msg(e.Message)

	writeJSON(w, r, e.Kind.Status(), internal.ErrorResponse{Error: e.Message})
}
