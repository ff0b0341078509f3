package display

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Well-known buffer texts.
const (
	// Zero is the reset value of the buffer.
	Zero = "0"

	// ErrorText is the sentinel shown after a failed calculation.
	ErrorText = "Error"
)

// Display glyphs for multiplication and division. They are accepted in the
// buffer and normalized by the evaluator.
const (
	GlyphMultiply = "×"
	GlyphDivide   = "÷"
)

// ErrInvalidToken is returned by Append for tokens outside the calculator alphabet.
var ErrInvalidToken = errors.New("invalid token")

// Buffer holds the display text.
type Buffer struct {
	text string
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithText sets the initial text. An empty string leaves the buffer at Zero.
func WithText(text string) Option {
	return func(b *Buffer) {
		if text != "" {
			b.text = text
		}
	}
}

// NewBuffer creates a buffer showing Zero.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{text: Zero}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Text returns the current display text.
func (b *Buffer) Text() string {
	return b.text
}

// IsError reports whether the buffer holds the Error sentinel.
func (b *Buffer) IsError() bool {
	return b.text == ErrorText
}

// IsZero reports whether the buffer holds exactly Zero.
func (b *Buffer) IsZero() bool {
	return b.text == Zero
}

// Set overwrites the text. Evaluation results and memory recall go through
// here. An empty string is stored as Zero.
func (b *Buffer) Set(text string) {
	if text == "" {
		text = Zero
	}
	b.text = text
}

// SetError puts the buffer into the Error sentinel state.
func (b *Buffer) SetError() {
	b.text = ErrorText
}

// Reset returns the buffer to Zero.
func (b *Buffer) Reset() {
	b.text = Zero
}

// ClearError resets the buffer to Zero if it holds the Error sentinel.
// It reports whether a reset happened.
func (b *Buffer) ClearError() bool {
	if b.IsError() {
		b.text = Zero
		return true
	}
	return false
}

// Append adds a token to the end of the text.
//
// A token is one or more characters of the calculator alphabet (digits,
// ".", operators, "%", parentheses). On a lone Zero a token other than "."
// replaces the text. A token that would put a second decimal point into a
// numeric segment is rejected silently; Append then reports false with a
// nil error. Tokens outside the alphabet return ErrInvalidToken and leave
// the buffer untouched, including the Error sentinel.
func (b *Buffer) Append(token string) (bool, error) {
	if !ValidToken(token) {
		return false, ErrInvalidToken
	}

	reset := b.ClearError()

	var candidate string
	if b.text == Zero && token != "." {
		candidate = token
	} else {
		candidate = b.text + token
	}

	if strings.Contains(token, ".") && !singlePointSegments(candidate) {
		return reset, nil
	}

	b.text = candidate
	return true, nil
}

// Backspace removes the last character.
// A single character, or a minus sign followed by one character, collapses
// to Zero. The Error sentinel resets to Zero.
func (b *Buffer) Backspace() bool {
	if b.ClearError() {
		return true
	}

	n := utf8.RuneCountInString(b.text)
	if n == 1 || (n == 2 && strings.HasPrefix(b.text, "-")) {
		changed := b.text != Zero
		b.text = Zero
		return changed
	}

	_, size := utf8.DecodeLastRuneInString(b.text)
	b.text = b.text[:len(b.text)-size]
	return true
}

// ToggleSign negates the whole text by adding or removing a leading minus.
// Zero is left alone and the Error sentinel resets to Zero.
//
// The sign applies to the entire buffer, so "12+7" becomes "-12+7" rather
// than "12+-7".
func (b *Buffer) ToggleSign() bool {
	if b.ClearError() {
		return true
	}
	if b.text == Zero {
		return false
	}

	if strings.HasPrefix(b.text, "-") {
		b.text = b.text[1:]
		if b.text == "" {
			b.text = Zero
		}
	} else {
		b.text = "-" + b.text
	}
	return true
}
