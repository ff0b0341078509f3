package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// ErrInvalid is matched by every *ValidationErrors.
var ErrInvalid = errors.New("invalid configuration")

// Violation is one value the schema rejected.
type Violation struct {
	// Path is the dotted setting path, empty when the schema could not
	// attribute the problem to a field.
	Path    string
	Message string
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// Section returns the top-level table the violation belongs to.
func (v Violation) Section() string {
	section, _, _ := strings.Cut(v.Path, ".")
	return section
}

// ValidationErrors is the result of a failed validation.
type ValidationErrors struct {
	Violations []Violation
}

func (e *ValidationErrors) Error() string {
	switch len(e.Violations) {
	case 0:
		return ErrInvalid.Error()
	case 1:
		return fmt.Sprintf("%v: %s", ErrInvalid, e.Violations[0])
	}
	parts := lo.Map(e.Violations, func(v Violation, _ int) string { return v.String() })
	return fmt.Sprintf("%v (%d problems): %s", ErrInvalid, len(parts), strings.Join(parts, "; "))
}

func (e *ValidationErrors) Is(target error) bool {
	return target == ErrInvalid
}

// Add records a violation at path.
func (e *ValidationErrors) Add(path, message string) {
	e.Violations = append(e.Violations, Violation{Path: path, Message: message})
}

// Empty reports whether nothing was recorded.
func (e *ValidationErrors) Empty() bool {
	return len(e.Violations) == 0
}

// HasPath reports whether a violation concerns path or a setting below it.
func (e *ValidationErrors) HasPath(path string) bool {
	return lo.ContainsBy(e.Violations, func(v Violation) bool {
		return v.Path == path || strings.HasPrefix(v.Path, path+".")
	})
}

// Sections lists the top-level tables with violations, in first-seen order.
func (e *ValidationErrors) Sections() []string {
	named := lo.Filter(e.Violations, func(v Violation, _ int) bool { return v.Path != "" })
	return lo.Uniq(lo.Map(named, func(v Violation, _ int) string { return v.Section() }))
}
