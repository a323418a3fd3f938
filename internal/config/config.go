// Package config loads todos settings from defaults, an optional YAML file
// and TODOS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sandeepkv93/todos/internal/storage"
	"github.com/sandeepkv93/todos/internal/store"
)

const EnvPrefix = "TODOS"

type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
	TUI     TUIConfig     `mapstructure:"tui"`
}

type StorageConfig struct {
	// Backend is one of sqlite, mysql, redis, table, file, memory.
	Backend         string `mapstructure:"backend"`
	Namespace       string `mapstructure:"namespace"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MySQLDSN        string `mapstructure:"mysql_dsn"`
	RedisURL        string `mapstructure:"redis_url"`
	TableConnection string `mapstructure:"table_connection"`
	TableName       string `mapstructure:"table_name"`
	FilePath        string `mapstructure:"file_path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// File receives log output. Empty means stderr.
	File string `mapstructure:"file"`
}

type TUIConfig struct {
	QueueBuffer int  `mapstructure:"queue_buffer"`
	ShowHelp    bool `mapstructure:"show_help"`
}

func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:    storage.BackendSQLite,
			Namespace:  store.DefaultNamespace,
			SQLitePath: "todos.db",
			TableName:  "todos",
			FilePath:   "todos.json",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   ".todos.log",
		},
		TUI: TUIConfig{
			QueueBuffer: 64,
			ShowHelp:    true,
		},
	}
}

func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("storage.backend", defaults.Storage.Backend)
	v.SetDefault("storage.namespace", defaults.Storage.Namespace)
	v.SetDefault("storage.sqlite_path", defaults.Storage.SQLitePath)
	v.SetDefault("storage.mysql_dsn", defaults.Storage.MySQLDSN)
	v.SetDefault("storage.redis_url", defaults.Storage.RedisURL)
	v.SetDefault("storage.table_connection", defaults.Storage.TableConnection)
	v.SetDefault("storage.table_name", defaults.Storage.TableName)
	v.SetDefault("storage.file_path", defaults.Storage.FilePath)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.file", defaults.Logging.File)

	v.SetDefault("tui.queue_buffer", defaults.TUI.QueueBuffer)
	v.SetDefault("tui.show_help", defaults.TUI.ShowHelp)
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"storage":   "storage.backend",
	"namespace": "storage.namespace",
	"log-level": "logging.level",
}

// Load reads path (or todos.yaml from ConfigDir and the working directory
// when path is empty), applies TODOS_* overrides and any flags in flags that
// were set, then validates the result.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("todos")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// StorageOptions converts the storage section for storage.Open.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:         c.Storage.Backend,
		SQLitePath:      c.Storage.SQLitePath,
		MySQLDSN:        c.Storage.MySQLDSN,
		RedisURL:        c.Storage.RedisURL,
		TableConnection: c.Storage.TableConnection,
		TableName:       c.Storage.TableName,
		FilePath:        c.Storage.FilePath,
	}
}

// ConfigDir returns $XDG_CONFIG_HOME/todos or ~/.config/todos.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "todos")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".todos"
	}
	return filepath.Join(home, ".config", "todos")
}

func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

func ValidLogFormats() []string {
	return []string{"text", "json"}
}

func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	backend := strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if !slices.Contains(storage.Backends(), backend) {
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Value:   c.Storage.Backend,
			Message: fmt.Sprintf("must be one of %s", strings.Join(storage.Backends(), ", ")),
		})
	}
	if strings.TrimSpace(c.Storage.Namespace) == "" {
		errs = append(errs, ValidationError{Field: "storage.namespace", Value: c.Storage.Namespace, Message: "must not be empty"})
	}

	required := map[string][2]string{
		storage.BackendSQLite: {"storage.sqlite_path", c.Storage.SQLitePath},
		storage.BackendMySQL:  {"storage.mysql_dsn", c.Storage.MySQLDSN},
		storage.BackendRedis:  {"storage.redis_url", c.Storage.RedisURL},
		storage.BackendTable:  {"storage.table_connection", c.Storage.TableConnection},
		storage.BackendFile:   {"storage.file_path", c.Storage.FilePath},
	}
	if req, ok := required[backend]; ok && strings.TrimSpace(req[1]) == "" {
		errs = append(errs, ValidationError{Field: req[0], Value: req[1], Message: "required for backend " + backend})
	}
	if backend == storage.BackendTable && strings.TrimSpace(c.Storage.TableName) == "" {
		errs = append(errs, ValidationError{Field: "storage.table_name", Value: c.Storage.TableName, Message: "required for backend table"})
	}

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}
	if !slices.Contains(ValidLogFormats(), strings.ToLower(c.Logging.Format)) {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Value:   c.Logging.Format,
			Message: fmt.Sprintf("must be one of %s", strings.Join(ValidLogFormats(), ", ")),
		})
	}

	if c.TUI.QueueBuffer < 1 || c.TUI.QueueBuffer > 4096 {
		errs = append(errs, ValidationError{Field: "tui.queue_buffer", Value: c.TUI.QueueBuffer, Message: "must be between 1 and 4096"})
	}
	return errs
}

type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
