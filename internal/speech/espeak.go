package speech

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
)

// Espeak speaks through espeak-ng, which plays on the default output device.
type Espeak struct {
	bin string
	run Runner
}

func NewEspeak(bin string) *Espeak {
	return &Espeak{bin: bin, run: ExecRunner}
}

// Voices lists installed voices in the order espeak-ng reports them.
func (e *Espeak) Voices(ctx context.Context) ([]Voice, error) {
	out, err := e.run(ctx, nil, e.bin, "--voices")
	if err != nil {
		return nil, fmt.Errorf("listing voices: %w", err)
	}
	return parseVoices(out), nil
}

func (e *Espeak) Speak(ctx context.Context, text string, voice Voice) error {
	if _, err := e.run(ctx, strings.NewReader(text), e.bin, "-v", voice.Name, "--stdin"); err != nil {
		return fmt.Errorf("speaking with voice %s: %w", voice.Name, err)
	}
	return nil
}

// parseVoices reads the table printed by "espeak-ng --voices":
//
//	Pty Language       Age/Gender VoiceName          File          Other Languages
//	 5  af              --/M      Afrikaans          gmw/af
func parseVoices(out []byte) []Voice {
	var voices []Voice
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 5 || fields[0] == "Pty" {
			continue
		}
		voices = append(voices, Voice{
			Language: fields[1],
			Gender:   gender(fields[2]),
			Name:     fields[3],
			File:     fields[4],
		})
	}
	return voices
}

func gender(ageGender string) string {
	_, g, ok := strings.Cut(ageGender, "/")
	if !ok {
		return ""
	}
	switch g {
	case "M":
		return VoiceMale
	case "F":
		return VoiceFemale
	}
	return ""
}
