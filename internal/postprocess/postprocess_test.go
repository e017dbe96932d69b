package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveReasoning(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "Patient reports chest pain.", "Patient reports chest pain."},
		{"think block", "<think>check dosage</think>Take 5 mg daily.", "Take 5 mg daily."},
		{"thinking block mid text", "Before<thinking>hmm</thinking> after", "Before after"},
		{"reasoning block", "<reasoning>grammar</reasoning>Done", "Done"},
		{"multiline block", "<reflection>\nline one\nline two\n</reflection>\nResult", "Result"},
		{"unclosed block", "Result<think>never closed", "Result"},
		{"only unclosed block", "<reasoning>cut off", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, removeReasoning(tt.input))
		})
	}
}

func TestRemovePreamble(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no preamble", "Patient denies fever.", "Patient denies fever."},
		{"here is the refined transcription", "Here is the refined transcription: Patient denies fever.", "Patient denies fever."},
		{"here's your corrected transcript", "Here's your corrected transcript:\nBP 120/80.", "BP 120/80."},
		{"refined medical transcription label", "Refined medical transcription: No allergies.", "No allergies."},
		{"translation label", "Translation: Hola", "Hola"},
		{"sure then preamble", "Sure, here is the translation: Bonjour", "Bonjour"},
		{"sure without preamble is kept", "Sure, the patient can walk.", "Sure, the patient can walk."},
		{"colon later in text is kept", "Dosage: 5 mg", "Dosage: 5 mg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, removePreamble(tt.input))
		})
	}
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"single rune", `"`, `"`},
		{"double quotes", `"Hola"`, "Hola"},
		{"single quotes", "'Hola'", "Hola"},
		{"guillemets", "«Привіт»", "Привіт"},
		{"curly double", "“Hello”", "Hello"},
		{"curly single", "‘Hello’", "Hello"},
		{"mismatched", `"Hello'`, `"Hello'`},
		{"inner quotes only", `He said "no"`, `He said "no"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unquote(tt.input))
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"untouched", "Patient is stable.", "Patient is stable."},
		{"whitespace", "  Patient is stable.\n", "Patient is stable."},
		{
			name:  "all artifacts",
			input: "<think>fix typos</think>\nHere is the refined transcription: \"Patient is stable.\"",
			want:  "Patient is stable.",
		},
		{"only reasoning", "<think>nothing to say</think>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.input))
		})
	}
}
