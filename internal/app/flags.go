package app

import (
	"flag"
	"fmt"
	"slices"
)

// LogLevels are the names ParseLevel understands.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Bind registers the flags shared by every keycalc command on fs. Front
// ends that never reload their configuration pass watch=false and skip
// -no-watch.
func (o *Options) Bind(fs *flag.FlagSet, watch bool) {
	fs.StringVar(&o.ConfigPath, "config", "", "extra configuration `file` merged over the user config")
	fs.StringVar(&o.ConfigPath, "c", "", "shorthand for -config")
	fs.StringVar(&o.ConfigDir, "config-dir", "", "user configuration `dir`ectory")
	fs.StringVar(&o.LogLevel, "log-level", "", "log `level`: debug, info, warn or error")
	fs.StringVar(&o.LogFile, "log-file", "", "append logs to `file`")
	fs.StringVar(&o.ScriptsDir, "scripts", "", "Lua scripts `dir`ectory")
	fs.BoolVar(&o.NoScripts, "no-scripts", false, "do not load Lua scripts")
	fs.StringVar(&o.SessionID, "session", "", "calculator session `id`, random when empty")
	if watch {
		fs.BoolVar(&o.NoWatch, "no-watch", false, "do not reload the configuration when it changes")
	}
}

// Validate rejects option values New would otherwise silently replace.
func (o Options) Validate() error {
	if o.LogLevel != "" && !slices.Contains(LogLevels, o.LogLevel) {
		return fmt.Errorf("invalid log level %q, want one of %v", o.LogLevel, LogLevels)
	}
	return nil
}
