// Package config loads donorlog settings.
//
// Values are resolved in increasing precedence: struct defaults, an
// optional YAML file, then DONORLOG_* environment variables. Command-line
// flags are applied on top by the CLI.
package config

// Config holds all application configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig locates the record store.
type StorageConfig struct {
	// Path is the location of the record file (default: doacoes.csv)
	Path string `yaml:"path" env:"DONORLOG_STORAGE_PATH" default:"doacoes.csv"`

	// Backend selects the store implementation: file or sqlite (default: file)
	Backend string `yaml:"backend" env:"DONORLOG_STORAGE_BACKEND" default:"file"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: warn)
	Level string `yaml:"level" env:"DONORLOG_LOG_LEVEL" default:"warn"`

	// Format is the log format: text or json (default: text)
	Format string `yaml:"format" env:"DONORLOG_LOG_FORMAT" default:"text"`
}
