package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/donorlog/internal/logging"
	"github.com/roach88/donorlog/internal/store"
)

// Load resolves the configuration.
//
// If path is non-empty the YAML file at path is read with strict field
// checking; unknown keys are an error. Environment variables override the
// file. The result is validated before it is returned.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(reflect.ValueOf(cfg).Elem())

	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("config load: %w", err)
		}
	}

	applyEnv(reflect.ValueOf(cfg).Elem())

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overwriting ones already set. Missing files are
// ignored. With no arguments it reads ".env".
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// loadFile decodes the YAML file at path into cfg.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// applyDefaults sets every tagged string field to its default value.
func applyDefaults(v reflect.Value) {
	walkStrings(v, func(field reflect.StructField, val reflect.Value) {
		val.SetString(field.Tag.Get("default"))
	})
}

// applyEnv overrides tagged string fields from non-empty environment variables.
func applyEnv(v reflect.Value) {
	walkStrings(v, func(field reflect.StructField, val reflect.Value) {
		if env := field.Tag.Get("env"); env != "" {
			if value := strings.TrimSpace(os.Getenv(env)); value != "" {
				val.SetString(value)
			}
		}
	})
}

// walkStrings calls fn for each settable string field of v, recursing into
// nested structs.
func walkStrings(v reflect.Value, fn func(reflect.StructField, reflect.Value)) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)
		if !fieldVal.CanSet() {
			continue
		}
		switch field.Type.Kind() {
		case reflect.Struct:
			walkStrings(fieldVal, fn)
		case reflect.String:
			fn(field, fieldVal)
		}
	}
}

// Validate checks that the configuration is usable.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Storage.Path) == "" {
		errs = append(errs, "storage.path is required")
	}
	if _, err := store.ParseKind(c.Storage.Backend); err != nil {
		errs = append(errs, "storage.backend: "+err.Error())
	}
	if err := logging.ValidateLevel(c.Logging.Level); err != nil {
		errs = append(errs, "logging.level: "+err.Error())
	}
	if err := logging.ValidateFormat(c.Logging.Format); err != nil {
		errs = append(errs, "logging.format: "+err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
