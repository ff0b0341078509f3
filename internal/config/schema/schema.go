// Package schema validates merged configuration against an embedded CUE
// schema.
package schema

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var embedded string

// Source returns the embedded schema text.
func Source() string {
	return embedded
}

// Validator checks configuration maps against a schema.
// A cue.Context is not safe for concurrent use, so calls are serialized.
type Validator struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	return Compile(embedded)
}

// Compile compiles a schema from CUE source. Top-level fields not named by
// the schema are rejected.
func Compile(src string) (*Validator, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString("close({\n"+src+"\n})", cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &Validator{ctx: ctx, schema: schema}, nil
}

// Validate checks data. The returned error is a *ValidationErrors listing
// every violation.
func (v *Validator) Validate(data map[string]any) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	value := v.ctx.Encode(data)
	if err := value.Err(); err != nil {
		return fromCUE(err)
	}
	if err := v.schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fromCUE(err)
	}
	return nil
}

func fromCUE(err error) error {
	errs := &ValidationErrors{}
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		errs.Add(strings.Join(e.Path(), "."), fmt.Sprintf(format, args...))
	}
	if errs.Empty() {
		errs.Add("", err.Error())
	}
	return errs
}
