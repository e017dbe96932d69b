// Package detector guesses the language of a text locally with lingua-go.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// Detector is expensive to build and safe for concurrent use; build it once.
type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector restricted to the given ISO 639-1 codes. Unknown codes
// are ignored; with fewer than two usable codes every language is considered.
func New(codes ...string) *Detector {
	var isoCodes []lingua.IsoCode639_1
	for _, code := range codes {
		iso := lingua.GetIsoCode639_1FromValue(strings.TrimSpace(code))
		if iso != lingua.UnknownIsoCode639_1 {
			isoCodes = append(isoCodes, iso)
		}
	}

	builder := lingua.NewLanguageDetectorBuilder()
	if len(isoCodes) >= 2 {
		return &Detector{detector: builder.FromIsoCodes639_1(isoCodes...).Build()}
	}
	return &Detector{detector: builder.FromAllLanguages().Build()}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the lower-case ISO 639-1 code of the detected language,
// the form translation providers expect.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
