// Package log provides the engine-wide structured logging facade.
package log

// Logger is the logging interface used throughout the engine. It decouples
// callers from the concrete backend.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsDebugEnabled() bool
}

// Config controls logger initialization.
type Config struct {
	Level  string     `mapstructure:"level"`  // debug | info | warn | error
	Format string     `mapstructure:"format"` // text | json
	File   FileConfig `mapstructure:"file"`
}

// FileConfig enables rotated file output alongside stderr.
type FileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}
