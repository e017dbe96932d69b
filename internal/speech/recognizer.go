package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	sampleRate = "16000"
	// noisered sensitivity; higher removes more noise and more speech.
	noiseReduction = "0.21"
	// calibration and capture get this long on top of their recording window
	// before they are killed.
	deviceGrace = 2 * time.Second
	// upper bound for one whisper run on a short utterance.
	transcribeTimeout = 60 * time.Second
)

// SoxWhisper records from the default input device with sox and transcribes
// the recording with the whisper.cpp command-line tool.
type SoxWhisper struct {
	soxBin      string
	whisperBin  string
	model       string
	calibration time.Duration
	timeout     time.Duration
	grace       time.Duration
	transcribe  time.Duration
	run         Runner
}

func NewSoxWhisper(soxBin, whisperBin, model string, calibration, timeout time.Duration) *SoxWhisper {
	return &SoxWhisper{
		soxBin:      soxBin,
		whisperBin:  whisperBin,
		model:       model,
		calibration: calibration,
		timeout:     timeout,
		grace:       deviceGrace,
		transcribe:  transcribeTimeout,
		run:         ExecRunner,
	}
}

// Listen samples ambient noise for the calibration period, records for at
// most the listen timeout with that noise profile removed, then transcribes.
// Every step runs under its own deadline.
func (s *SoxWhisper) Listen(ctx context.Context) (string, error) {
	dir, err := os.MkdirTemp("", "medtran-stt-*")
	if err != nil {
		return "", fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	profile := filepath.Join(dir, "noise.prof")
	recording := filepath.Join(dir, "speech.wav")
	transcript := filepath.Join(dir, "speech")

	if err := s.step(ctx, s.calibration+s.grace, s.soxBin, "-q", "-d", "-n",
		"trim", "0", seconds(s.calibration),
		"noiseprof", profile); err != nil {
		return "", fmt.Errorf("noise calibration failed: %w", err)
	}

	if err := s.step(ctx, s.timeout+s.grace, s.soxBin, "-q", "-d",
		"-r", sampleRate, "-c", "1", "-b", "16", recording,
		"trim", "0", seconds(s.timeout),
		"noisered", profile, noiseReduction); err != nil {
		return "", fmt.Errorf("audio capture failed: %w", err)
	}

	if err := s.step(ctx, s.transcribe, s.whisperBin,
		"-m", s.model, "-f", recording,
		"-otxt", "-of", transcript, "-nt", "-np"); err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	data, err := os.ReadFile(transcript + ".txt")
	if err != nil {
		return "", fmt.Errorf("reading transcript: %w", err)
	}

	text := cleanTranscript(string(data))
	if text == "" {
		return "", ErrUnintelligible
	}
	return text, nil
}

// whisper marks non-speech as "[BLANK_AUDIO]", "(coughing)", "[ Silence ]".
var nonSpeechRe = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)

// step runs one external command bounded by limit.
func (s *SoxWhisper) step(ctx context.Context, limit time.Duration, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()
	_, err := s.run(ctx, nil, name, args...)
	return err
}

func cleanTranscript(raw string) string {
	text := nonSpeechRe.ReplaceAllString(raw, " ")
	return strings.Join(strings.Fields(text), " ")
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
