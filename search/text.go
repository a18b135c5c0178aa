package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minMeaningfulSentence is the rune length a sentence must exceed to be kept
// by SplitMeaningfulSentences.
const minMeaningfulSentence = 10

// SplitSentences splits text after '.', '!' or '?' when followed by whitespace.
// Sentences are trimmed and empty ones dropped.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	start := 0
	prevTerminal := false
	for i, r := range text {
		if prevTerminal && unicode.IsSpace(r) {
			if s := strings.TrimSpace(text[start:i]); s != "" {
				sentences = append(sentences, s)
			}
			start = i
		}
		prevTerminal = r == '.' || r == '!' || r == '?'
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// SplitMeaningfulSentences is SplitSentences without sentences of ten
// characters or fewer, which are mostly headings and stray numbering.
func SplitMeaningfulSentences(text string) []string {
	all := SplitSentences(text)
	kept := all[:0]
	for _, s := range all {
		if utf8.RuneCountInString(s) > minMeaningfulSentence {
			kept = append(kept, s)
		}
	}
	return kept
}
