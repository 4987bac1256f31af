package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

const envPrefix = "CSVEXPORT"

const (
	modeStdout = "stdout"
	modeServe  = "serve"
)

// Config holds the settings of a csvexport run.
// Values come from flags, CSVEXPORT_* environment variables and an optional config file, in that priority.
type Config struct {
	Mode        string `mapstructure:"mode" validate:"oneof=stdout serve"`
	Listen      string `mapstructure:"listen" validate:"hostname_port"`
	Concurrency int    `mapstructure:"concurrency" validate:"min=1,max=100"`
	Limit       int    `mapstructure:"limit" validate:"min=0"`
	BOM         bool   `mapstructure:"bom"`
	Filename    string `mapstructure:"filename" validate:"required"`
	DateLayout  string `mapstructure:"date-layout"`
	Locale      string `mapstructure:"locale" validate:"omitempty,bcp47_language_tag"`
	LogLevel    string `mapstructure:"log-level" validate:"oneof=debug info warn error"`
	LogJSON     bool   `mapstructure:"log-json"`
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("csvexport", pflag.ContinueOnError)

	fs.String("config", "", "path to a config file (yaml, json or toml)")
	fs.String("mode", modeStdout, "where to send the export: stdout or serve")
	fs.String("listen", "127.0.0.1:8080", "HTTP listen address in serve mode")
	fs.Int("concurrency", 5, "maximum number of concurrent user fetches")
	fs.Int("limit", 0, "maximum number of users to export, 0 exports all")
	fs.Bool("bom", false, "prefix the output with a UTF-8 byte order mark")
	fs.String("filename", "users.csv", "download filename in serve mode")
	fs.String("date-layout", "", "Go time layout for date cells")
	fs.String("locale", "", "BCP 47 tag used to format numbers, e.g. de-DE")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
	fs.Bool("log-json", false, "log in JSON")

	return fs
}

// loadConfig parses args and merges them with the environment and the config file.
func loadConfig(args []string) (*Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// localeTag returns the language tag for number formatting. ok is false when no locale is configured.
func (cfg *Config) localeTag() (tag language.Tag, ok bool, err error) {
	if cfg.Locale == "" {
		return language.Und, false, nil
	}

	tag, err = language.Parse(cfg.Locale)
	if err != nil {
		return language.Und, false, fmt.Errorf("parse locale %q: %w", cfg.Locale, err)
	}
	return tag, true, nil
}
