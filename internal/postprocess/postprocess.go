// Package postprocess strips chat-model artifacts from translated or refined
// text before it is returned to the client.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes reasoning blocks, a leading preamble line and wrapping quotes,
// in that order, and returns the trimmed text.
func Clean(text string) string {
	text = removeReasoning(text)
	text = removePreamble(text)
	text = unquote(text)
	return strings.TrimSpace(text)
}

// RE2 has no backreferences, so each tag pair is spelled out.
var reasoningRe = regexp.MustCompile(
	`(?is)<think>.*?</think>|<thinking>.*?</thinking>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// An opening tag whose close never arrived means the model was cut off.
var unclosedReasoningRe = regexp.MustCompile(`(?is)(?:<think>|<thinking>|<reasoning>|<reflection>).*$`)

func removeReasoning(text string) string {
	text = reasoningRe.ReplaceAllString(text, "")
	text = unclosedReasoningRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Preambles must start the text and end with a colon.
var preambleRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course|okay)[,.!]?\s+`),
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the| your)? (?:refined |corrected |cleaned(?:-up)? |translated )?(?:medical )?(?:transcription|transcript|translation|text|summary)\s*:`),
	regexp.MustCompile(`(?i)^(?:the )?(?:refined |corrected |translated )(?:medical )?(?:transcription|transcript|translation|text)\s*:`),
	regexp.MustCompile(`(?i)^(?:translation|summary)\s*:`),
}

func removePreamble(text string) string {
	trimmed := text
	for i, re := range preambleRes {
		loc := re.FindStringIndex(trimmed)
		if loc == nil {
			continue
		}
		// A bare "Sure," only counts when a real preamble follows it.
		if i == 0 {
			rest := trimmed[loc[1]:]
			if !hasPreamble(rest) {
				return text
			}
			trimmed = rest
			continue
		}
		return strings.TrimSpace(trimmed[loc[1]:])
	}
	return text
}

func hasPreamble(text string) bool {
	for _, re := range preambleRes[1:] {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

var quotePairs = map[rune]rune{
	'"':      '"',
	'\'':     '\'',
	'«':      '»',
	'\u201C': '\u201D',
	'\u2018': '\u2019',
}

func unquote(text string) string {
	runes := []rune(text)
	if len(runes) < 2 {
		return text
	}
	if closing, ok := quotePairs[runes[0]]; ok && runes[len(runes)-1] == closing {
		return strings.TrimSpace(string(runes[1 : len(runes)-1]))
	}
	return text
}
