package detector

import (
	"testing"

	lingua "github.com/pemistahl/lingua-go"
	"github.com/stretchr/testify/assert"
)

func TestDetector_DetectISO(t *testing.T) {
	d := New("en", "es", "fr", "de", "uk")

	tests := []struct {
		name     string
		text     string
		wantCode string
		wantOK   bool
	}{
		{"empty text", "", "", false},
		{"whitespace only", "   ", "", false},
		{"english", "The patient reports a sharp pain in the lower back.", "en", true},
		{"spanish", "El paciente refiere un dolor agudo en la espalda baja.", "es", true},
		{"french", "Le patient signale une douleur aiguë dans le bas du dos.", "fr", true},
		{"german", "Der Patient berichtet über starke Schmerzen im unteren Rücken.", "de", true},
		{"ukrainian", "Пацієнт скаржиться на гострий біль у попереку.", "uk", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := d.DetectISO(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestDetector_Detect(t *testing.T) {
	d := New("en", "es")

	lang, ok := d.Detect("Good morning, how are you feeling today?")
	assert.True(t, ok)
	assert.Equal(t, lingua.English, lang)
}

func TestNew_IgnoresUnknownCodes(t *testing.T) {
	// One usable code falls back to every language rather than panicking.
	d := New("en", "not-a-language")

	code, ok := d.DetectISO("Der Patient hat seit drei Tagen hohes Fieber.")
	assert.True(t, ok)
	assert.Equal(t, "de", code)
}
