// Package textspan provides rune-aware helpers for slicing analyzed text.
// Offsets passed in and returned are byte offsets; window radii are runes.
package textspan

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// sentenceTerminators ends a sentence. The ideographic full stop covers
// copy pasted from CJK layouts.
const sentenceTerminators = ".!?\n。"

// Normalize returns the NFC form of text so that precomposed and
// decomposed Hangul match the same catalog patterns.
func Normalize(text string) string {
	return norm.NFC.String(text)
}

// Clamp bounds a byte span to the text and orders it.
func Clamp(text string, start, end int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start > len(text) {
		start = len(text)
	}
	if end < start {
		end = start
	}
	return start, end
}

// Window returns the span [start,end) widened by radius runes on each side,
// clamped to the text, along with the rune offset of start inside the window.
func Window(text string, start, end, radius int) (string, int) {
	start, end = Clamp(text, start, end)

	ws := start
	for i := 0; i < radius && ws > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:ws])
		ws -= size
	}
	we := end
	for i := 0; i < radius && we < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[we:])
		we += size
	}

	return text[ws:we], utf8.RuneCountInString(text[ws:start])
}

// Sentence returns the byte bounds of the sentence enclosing [start,end).
// The trailing terminator, if any, is included.
func Sentence(text string, start, end int) (int, int) {
	start, end = Clamp(text, start, end)

	s := 0
	if i := strings.LastIndexAny(text[:start], sentenceTerminators); i >= 0 {
		_, size := utf8.DecodeRuneInString(text[i:])
		s = i + size
	}

	e := len(text)
	if i := strings.IndexAny(text[end:], sentenceTerminators); i >= 0 {
		_, size := utf8.DecodeRuneInString(text[end+i:])
		e = end + i + size
	}

	return s, e
}

// SentenceText is Sentence returning the trimmed sentence itself.
func SentenceText(text string, start, end int) string {
	s, e := Sentence(text, start, end)
	return strings.TrimSpace(text[s:e])
}
