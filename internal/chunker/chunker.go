// Package chunker splits long documents into pieces a translation provider
// accepts in one request, cutting at the most natural boundary available.
package chunker

import (
	"strings"
	"unicode"
)

// Split breaks text into trimmed pieces of at most maxRunes runes. It cuts at
// the last paragraph break in the window, else after the last sentence end,
// else at the last space, else hard at maxRunes. maxRunes <= 0 means no limit.
func Split(text string, maxRunes int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	rest := []rune(text)
	if maxRunes <= 0 || len(rest) <= maxRunes {
		return []string{text}
	}

	var pieces []string
	for len(rest) > maxRunes {
		cut := cutPoint(rest[:maxRunes])
		if piece := strings.TrimSpace(string(rest[:cut])); piece != "" {
			pieces = append(pieces, piece)
		}
		rest = []rune(strings.TrimSpace(string(rest[cut:])))
	}
	if len(rest) > 0 {
		pieces = append(pieces, string(rest))
	}
	return pieces
}

// cutPoint returns how many runes of window go into the current piece.
func cutPoint(window []rune) int {
	if i := lastParagraphBreak(window); i > 0 {
		return i
	}
	for i := len(window) - 2; i > 0; i-- {
		if isSentenceEnd(window[i]) && unicode.IsSpace(window[i+1]) {
			return i + 1
		}
	}
	for i := len(window) - 1; i > 0; i-- {
		if unicode.IsSpace(window[i]) {
			return i
		}
	}
	return len(window)
}

// lastParagraphBreak finds the last blank line and returns the index just past
// it, or -1. "\r\n\r\n" counts because '\r' is skipped between the newlines.
func lastParagraphBreak(window []rune) int {
	for i := len(window) - 1; i > 0; i-- {
		if window[i] != '\n' {
			continue
		}
		j := i - 1
		if window[j] == '\r' {
			j--
		}
		if j >= 0 && window[j] == '\n' {
			return i + 1
		}
	}
	return -1
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}
