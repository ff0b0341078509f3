package display

import (
	"strings"
	"unicode/utf8"
)

// IsOperator reports whether r separates numeric segments.
func IsOperator(r rune) bool {
	switch r {
	case '+', '-', '*', '/', '×', '÷':
		return true
	}
	return false
}

// IsTokenRune reports whether r may appear in an appended token.
func IsTokenRune(r rune) bool {
	if r >= '0' && r <= '9' {
		return true
	}
	switch r {
	case '.', '%', '(', ')':
		return true
	}
	return IsOperator(r)
}

// ValidToken reports whether every character of token belongs to the
// calculator alphabet. The empty token is invalid.
func ValidToken(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !IsTokenRune(r) {
			return false
		}
	}
	return true
}

// TrailingSegment returns the text after the last operator character.
func TrailingSegment(text string) string {
	idx := strings.LastIndexFunc(text, IsOperator)
	if idx < 0 {
		return text
	}
	// The operator may be a multi-byte glyph.
	_, size := utf8.DecodeRuneInString(text[idx:])
	return text[idx+size:]
}

// Segments splits text into its operator-delimited numeric segments.
func Segments(text string) []string {
	return strings.FieldsFunc(text, IsOperator)
}

func singlePointSegments(text string) bool {
	for _, seg := range Segments(text) {
		if strings.Count(seg, ".") > 1 {
			return false
		}
	}
	return true
}
