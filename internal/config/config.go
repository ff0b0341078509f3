package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cast"

	"github.com/dshills/keycalc/internal/config/loader"
	"github.com/dshills/keycalc/internal/config/schema"
	"github.com/dshills/keycalc/internal/config/watcher"
	"github.com/dshills/keycalc/internal/event"
)

// BaseName is the file name, without extension, of the user config file.
const BaseName = "config"

// Config provides access to the merged calculator configuration.
type Config struct {
	mu sync.RWMutex

	data    map[string]any
	sources []string

	fsys          loader.FileSystem
	userConfigDir string
	file          string
	envPrefix     string

	enableSchema  bool
	enableWatcher bool

	validatorMu sync.Mutex
	validator   *schema.Validator

	bus    event.Bus
	logger *slog.Logger
}

// Option configures a Config instance.
type Option func(*Config)

// WithUserConfigDir sets the user configuration directory.
func WithUserConfigDir(dir string) Option {
	return func(c *Config) {
		c.userConfigDir = dir
	}
}

// WithFile sets an explicit configuration file, merged over the user file.
func WithFile(path string) Option {
	return func(c *Config) {
		c.file = path
	}
}

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// WithFileSystem sets the file system used to read config files.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(c *Config) {
		c.fsys = fsys
	}
}

// WithSchemaValidation enables schema validation.
func WithSchemaValidation(enable bool) Option {
	return func(c *Config) {
		c.enableSchema = enable
	}
}

// WithWatcher enables file watching for live reload.
func WithWatcher(enable bool) Option {
	return func(c *Config) {
		c.enableWatcher = enable
	}
}

// WithBus sets the bus that receives config.changed events.
func WithBus(bus event.Bus) Option {
	return func(c *Config) {
		c.bus = bus
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}

// New creates a Config holding the built-in defaults. Call Load to read
// files and the environment.
func New(opts ...Option) *Config {
	c := &Config{
		data:          Defaults(),
		fsys:          loader.DefaultFS(),
		envPrefix:     loader.DefaultEnvPrefix,
		enableSchema:  true,
		enableWatcher: true,
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.userConfigDir == "" {
		c.userConfigDir = DefaultUserConfigDir()
	}
	return c
}

// SetLogger replaces the logger. The application calls it once logging is
// configured from the loaded settings.
func (c *Config) SetLogger(logger *slog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = logger
}

// Load reads defaults, the user file, the explicit file and the
// environment, in that order, and validates the result. On error the
// previous configuration is kept.
func (c *Config) Load(_ context.Context) error {
	data, sources, err := c.build()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.data = data
	c.sources = sources
	c.mu.Unlock()

	c.log().Debug("config loaded", "sources", sources)
	return nil
}

// Reload loads the configuration again and publishes config.changed with
// the top-level sections that differ. It returns the changed sections.
func (c *Config) Reload(ctx context.Context, path string) ([]string, error) {
	data, sources, err := c.build()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	old := c.data
	c.data = data
	c.sources = sources
	c.mu.Unlock()

	changed := loader.ChangedSections(old, data)
	if len(changed) == 0 {
		return nil, nil
	}

	c.log().Info("config reloaded", "path", path, "sections", changed)
	if c.bus != nil {
		ev := event.NewEvent(event.TopicConfigChanged, event.ConfigChanged{
			Path:     path,
			Sections: changed,
		}, "config")
		if err := c.bus.Publish(ctx, ev); err != nil {
			c.log().Warn("publishing config change failed", "error", err)
		}
	}
	return changed, nil
}

// build merges every source into a fresh map.
func (c *Config) build() (map[string]any, []string, error) {
	merged := Defaults()
	var sources []string

	files := make([]string, 0, 2)
	if path, ok := loader.FindFile(c.fsys, c.userConfigDir, BaseName); ok {
		files = append(files, path)
	}
	if c.file != "" {
		files = append(files, c.file)
	}

	for _, path := range files {
		l, err := loader.ForPath(c.fsys, path)
		if err != nil {
			return nil, nil, &LoadError{Source: path, Err: err}
		}
		data, err := l.Load()
		if err != nil {
			return nil, nil, &LoadError{Source: path, Err: err}
		}
		if data == nil {
			continue
		}
		merged = loader.DeepMerge(merged, data)
		sources = append(sources, path)
	}

	env, err := loader.NewEnvLoader(c.envPrefix).Load()
	if err != nil {
		return nil, nil, &LoadError{Source: "env", Err: err}
	}
	if len(env) > 0 {
		merged = loader.DeepMerge(merged, env)
		sources = append(sources, "env")
	}

	if c.enableSchema {
		if err := c.validate(merged); err != nil {
			var verrs *schema.ValidationErrors
			if errors.As(err, &verrs) {
				c.log().Warn("config rejected", "sections", verrs.Sections(), "problems", len(verrs.Violations))
			}
			return nil, nil, err
		}
	}
	return merged, sources, nil
}

func (c *Config) validate(data map[string]any) error {
	c.validatorMu.Lock()
	defer c.validatorMu.Unlock()
	if c.validator == nil {
		v, err := schema.New()
		if err != nil {
			return err
		}
		c.validator = v
	}
	return c.validator.Validate(data)
}

// Watch reloads the configuration whenever one of its files changes. It
// blocks until ctx is done.
func (c *Config) Watch(ctx context.Context) error {
	if !c.enableWatcher {
		return ErrWatcherDisabled
	}

	w, err := watcher.New(watcher.WithLogger(c.log()))
	if err != nil {
		return err
	}
	defer w.Close()

	for _, path := range c.watchPaths() {
		if err := w.Watch(path); err != nil {
			c.log().Debug("not watching config file", "path", path, "error", err)
		}
	}
	if len(w.WatchedFiles()) == 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	w.OnChange(func(ev watcher.Event) {
		if _, err := c.Reload(ctx, ev.Path); err != nil {
			c.log().Error("config reload failed, keeping previous", "path", ev.Path, "error", err)
		}
	})

	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// watchPaths lists every file whose creation or change affects the
// configuration, including user files that don't exist yet.
func (c *Config) watchPaths() []string {
	paths := make([]string, 0, len(loader.Extensions)+1)
	for _, ext := range loader.Extensions {
		paths = append(paths, filepath.Join(c.userConfigDir, BaseName+ext))
	}
	if c.file != "" {
		paths = append(paths, c.file)
	}
	return paths
}

// Sources returns the files (and "env") that contributed to the current
// configuration, in merge order.
func (c *Config) Sources() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.sources...)
}

// UserConfigDir returns the user configuration directory.
func (c *Config) UserConfigDir() string {
	return c.userConfigDir
}

// Merged returns a copy of the merged configuration.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.Clone(c.data)
}

// Get returns the value at the given dotted path.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.GetByPath(c.data, path)
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	return getAs(c, path, "string", cast.ToStringE)
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	return getAs(c, path, "int", cast.ToIntE)
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	return getAs(c, path, "bool", cast.ToBoolE)
}

// GetFloat returns a float64 value at the given path.
func (c *Config) GetFloat(path string) (float64, error) {
	return getAs(c, path, "float64", cast.ToFloat64E)
}

// GetStringMapString returns a map of strings at the given path.
func (c *Config) GetStringMapString(path string) (map[string]string, error) {
	return getAs(c, path, "map[string]string", cast.ToStringMapStringE)
}

func getAs[T any](c *Config, path, expected string, conv func(any) (T, error)) (T, error) {
	var zero T
	v, ok := c.Get(path)
	if !ok {
		return zero, missing(path)
	}
	out, err := conv(v)
	if err != nil {
		return zero, mismatch(path, expected, err)
	}
	return out, nil
}

// DefaultUserConfigDir returns $XDG_CONFIG_HOME/keycalc, falling back to
// ~/.config/keycalc.
func DefaultUserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "keycalc")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "keycalc")
}

func (c *Config) log() *slog.Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.logger
}
