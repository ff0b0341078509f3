package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file syntax.
type Format struct {
	Name       string
	Extensions []string
	decode     func(data []byte) (map[string]any, error)
}

// Supported formats, in lookup order.
var (
	TOML = Format{Name: "toml", Extensions: []string{".toml"}, decode: decodeTOML}
	YAML = Format{Name: "yaml", Extensions: []string{".yaml", ".yml"}, decode: decodeYAML}

	formats = []Format{TOML, YAML}
)

// Extensions lists every recognized file extension in lookup order.
var Extensions = func() []string {
	var exts []string
	for _, f := range formats {
		exts = append(exts, f.Extensions...)
	}
	return exts
}()

// FormatFor picks the format from the extension of path.
func FormatFor(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range formats {
		if slices.Contains(f.Extensions, ext) {
			return f, nil
		}
	}
	return Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// File loads one configuration file.
type File struct {
	fs     FileSystem
	path   string
	format Format
}

// NewFile returns a loader for path in the given format.
func NewFile(fsys FileSystem, path string, f Format) *File {
	return &File{fs: fsys, path: path, format: f}
}

// ForPath returns a loader for path, choosing the format by extension.
func ForPath(fsys FileSystem, path string) (*File, error) {
	f, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	return NewFile(fsys, path, f), nil
}

// Path is the file the loader reads.
func (l *File) Path() string { return l.path }

// Format is the syntax the loader expects.
func (l *File) Format() Format { return l.format }

// Load reads and decodes the file. A missing file yields nil, nil.
func (l *File) Load() (map[string]any, error) {
	data, err := readFile(l.fs, l.path)
	if err != nil || data == nil {
		return nil, err
	}
	return l.decode(l.path, data)
}

// LoadFromReader decodes r in the loader's format.
func (l *File) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return l.decode("<reader>", data)
}

func (l *File) decode(source string, data []byte) (map[string]any, error) {
	m, err := l.format.decode(data)
	if err != nil {
		perr := &ParseError{Path: source, Format: l.format.Name, Err: err}
		perr.locate()
		return nil, perr
	}
	return m, nil
}

func decodeTOML(data []byte) (map[string]any, error) {
	var m map[string]any
	err := toml.Unmarshal(data, &m)
	return m, err
}

func decodeYAML(data []byte) (map[string]any, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if node.Kind == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := node.Decode(&m); err != nil {
		return nil, &yamlDecodeError{line: node.Line, column: node.Column, err: err}
	}
	return widenInts(m), nil
}

// yamlDecodeError keeps the node position that yaml.v3 drops from
// decode errors.
type yamlDecodeError struct {
	line, column int
	err          error
}

func (e *yamlDecodeError) Error() string { return e.err.Error() }
func (e *yamlDecodeError) Unwrap() error { return e.err }

// widenInts turns YAML ints into int64, the type TOML produces.
func widenInts(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = widen(v)
	}
	return m
}

func widen(v any) any {
	switch val := v.(type) {
	case int:
		return int64(val)
	case map[string]any:
		return widenInts(val)
	case []any:
		for i := range val {
			val[i] = widen(val[i])
		}
	}
	return v
}

// locate fills Line and Column from the decoder error when it has them.
func (e *ParseError) locate() {
	var tomlErr *toml.DecodeError
	var yamlErr *yamlDecodeError
	switch {
	case errors.As(e.Err, &tomlErr):
		e.Line, e.Column = tomlErr.Position()
	case errors.As(e.Err, &yamlErr):
		e.Line, e.Column = yamlErr.line, yamlErr.column
	}
}
