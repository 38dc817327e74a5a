// Package config loads xmlmsg settings from an optional .env file, a config
// file (xmlmsg.toml, .yaml or .json) and XMLMSG_* environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/valpere/xmlmessage/internal/logging"
)

// EnvPrefix prefixes every environment variable, e.g. XMLMSG_DEFAULT_LOCALE.
const EnvPrefix = "XMLMSG"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

type Config struct {
	DefaultLocale  string   `mapstructure:"default_locale"`
	Locales        []string `mapstructure:"locales"`
	DBPath         string   `mapstructure:"db"`
	MessagesDir    string   `mapstructure:"messages_dir"`
	TextContainer  string   `mapstructure:"text_container"`
	PrimitiveKinds []string `mapstructure:"primitive_kinds"`

	Log   LogConfig   `mapstructure:"log"`
	Check CheckConfig `mapstructure:"check"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CheckConfig tunes `catalog check`.
type CheckConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout"`

	// MinDetectLength is the shortest plain text, in runes, whose language
	// is checked.
	MinDetectLength int `mapstructure:"min_detect_length"`

	// MinConfidence is the lingua confidence below which a language
	// mismatch is not reported.
	MinConfidence float64 `mapstructure:"min_confidence"`
}

// Options selects where Load reads from. Empty fields use the defaults.
type Options struct {
	ConfigFile string
	EnvFile    string
}

var defaults = map[string]any{
	"default_locale":          "en",
	"locales":                 []string{},
	"db":                      "xmlmsg.db",
	"messages_dir":            "",
	"text_container":          "span",
	"primitive_kinds":         []string{},
	"log.level":               "warn",
	"log.format":              "text",
	"check.concurrency":       4,
	"check.timeout":           10 * time.Second,
	"check.min_detect_length": 40,
	"check.min_confidence":    0.5,
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// Load reads the configuration into a fresh Config and validates it. A
// missing .env or config file is not an error unless it was named
// explicitly.
func Load(v *viper.Viper, opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		if opts.EnvFile != "" || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("xmlmsg")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "xmlmsg"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks locale tags, paths, log settings and numeric ranges.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if _, err := language.Parse(c.DefaultLocale); err != nil {
		invalid("default_locale %q: %v", c.DefaultLocale, err)
	}
	for _, l := range c.Locales {
		if _, err := language.Parse(l); err != nil {
			invalid("locale %q: %v", l, err)
		}
	}
	if strings.TrimSpace(c.DBPath) == "" {
		invalid("db path is required")
	}
	if c.MessagesDir != "" {
		if fi, err := os.Stat(c.MessagesDir); err != nil || !fi.IsDir() {
			invalid("messages_dir %q is not a directory", c.MessagesDir)
		}
	}
	if strings.TrimSpace(c.TextContainer) == "" {
		invalid("text_container is required")
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		invalid("log.level %q: want debug, info, warn or error", c.Log.Level)
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Format)) {
	case string(logging.FormatText), string(logging.FormatJSON):
	default:
		invalid("log.format %q: want text or json", c.Log.Format)
	}
	if c.Check.Concurrency < 1 {
		invalid("check.concurrency must be at least 1, got %d", c.Check.Concurrency)
	}
	if c.Check.Timeout <= 0 {
		invalid("check.timeout must be positive, got %s", c.Check.Timeout)
	}
	if c.Check.MinConfidence < 0 || c.Check.MinConfidence > 1 {
		invalid("check.min_confidence must be within [0, 1], got %g", c.Check.MinConfidence)
	}

	return errors.Join(errs...)
}

// DefaultTag returns the parsed default locale.
func (c *Config) DefaultTag() language.Tag {
	tag, err := language.Parse(c.DefaultLocale)
	if err != nil {
		return language.English
	}
	return tag
}

// LoggingConfig converts the log section for logging.New.
func (c *Config) LoggingConfig() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = logging.ParseLevel(c.Log.Level)
	lc.Format = logging.ParseFormat(c.Log.Format)
	return lc
}
