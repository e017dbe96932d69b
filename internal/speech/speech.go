// Package speech drives the local microphone and speaker through command-line
// engines: sox and whisper.cpp for recognition, espeak-ng for synthesis.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

var (
	// ErrUnintelligible means audio was captured but no speech was recognized.
	ErrUnintelligible = errors.New("could not understand audio")
	ErrNoVoices       = errors.New("no synthesizer voices available")
)

const (
	VoiceMale   = "male"
	VoiceFemale = "female"
)

// Recognizer captures one utterance from the default input device and returns
// its transcript.
type Recognizer interface {
	Listen(ctx context.Context) (string, error)
}

// Synthesizer speaks text aloud on the default output device.
type Synthesizer interface {
	Voices(ctx context.Context) ([]Voice, error)
	// Speak blocks until playback has finished.
	Speak(ctx context.Context, text string, voice Voice) error
}

type Voice struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Gender   string `json:"gender,omitempty"`
	File     string `json:"file,omitempty"`
}

// SelectVoice maps a requested profile onto the installed voices: "male" (or
// nothing) picks the first voice, anything else the last one.
func SelectVoice(voices []Voice, requested string) (Voice, error) {
	if len(voices) == 0 {
		return Voice{}, ErrNoVoices
	}
	if requested == "" || requested == VoiceMale {
		return voices[0], nil
	}
	return voices[len(voices)-1], nil
}

// Runner runs an external program and returns its standard output.
type Runner func(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error)

// ExecRunner is the Runner backed by os/exec. Stderr is folded into the error.
func ExecRunner(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}
	return stdout.Bytes(), nil
}
