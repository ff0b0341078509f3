package loader

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat means the file extension names no known format.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// ParseError is a file that could be read but not decoded.
type ParseError struct {
	Path   string
	Format string
	// Line and Column are 1-based; zero when the decoder gave no position.
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	where := e.Path
	switch {
	case e.Line > 0 && e.Column > 0:
		where = fmt.Sprintf("%s:%d:%d", e.Path, e.Line, e.Column)
	case e.Line > 0:
		where = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	return fmt.Sprintf("invalid %s in %s: %v", e.Format, where, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
