// Package validator checks that a translation came back in the requested
// target language.
package validator

import (
	"fmt"
	"strings"

	"github.com/valpere/medtran/internal/detector"
)

// Below this many runes detection is unreliable and the text is accepted.
const minValidationLength = 20

type Validator struct {
	det *detector.Detector
}

// New wraps an existing detector so the server builds lingua models only once.
func New(det *detector.Detector) *Validator {
	return &Validator{det: det}
}

// IsValid reports whether translatedText appears to be written in targetLang.
// Short or ambiguous texts pass. A mismatch error names both codes.
func (v *Validator) IsValid(translatedText, targetLang string) (bool, error) {
	if targetLang == "" {
		return true, nil
	}

	text := strings.TrimSpace(translatedText)
	if text == "" {
		return false, fmt.Errorf("translation is empty")
	}
	if len([]rune(text)) < minValidationLength {
		return true, nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		return true, nil
	}

	// Region subtags ("pt-BR", "zh-TW") are compared by primary language.
	want := strings.ToLower(strings.SplitN(targetLang, "-", 2)[0])
	if detected != want {
		return false, fmt.Errorf("expected %s but detected %s", targetLang, detected)
	}
	return true, nil
}
