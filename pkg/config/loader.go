package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BUGBUSTERS_BASE_URL or
// BUGBUSTERS_LOGIN_EMAIL.
const EnvPrefix = "BUGBUSTERS"

// DefaultConfigFile is read from the working directory when present.
const DefaultConfigFile = "bugbusters.yaml"

// LoadOptions controls configuration loading.
type LoadOptions struct {
	// ConfigPath overrides the config file location. When empty,
	// BUGBUSTERS_CONFIG is consulted, then DefaultConfigFile.
	ConfigPath string
	// Overrides are highest-priority values keyed by dot-notated name,
	// typically set from CLI flags.
	Overrides map[string]any
}

// Load returns the effective configuration after applying precedence:
// defaults < config file < env (BUGBUSTERS_*) < overrides.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := mergeConfigFile(v, configPath(opts.ConfigPath)); err != nil {
		return Config{}, err
	}
	for k, val := range opts.Overrides {
		v.Set(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.StubBugs = splitList(cfg.StubBugs)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults seeds viper with built-in defaults. Every key must have a
// default for AutomaticEnv to see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("base_url", def.BaseURL)
	v.SetDefault("target", def.Target)
	v.SetDefault("stub_bugs", def.StubBugs)
	v.SetDefault("headless", def.Headless)
	v.SetDefault("implicit_wait", def.ImplicitWait)
	v.SetDefault("explicit_wait", def.ExplicitWait)
	v.SetDefault("settle_delay", def.SettleDelay)
	v.SetDefault("login.email", def.Login.Email)
	v.SetDefault("login.password", def.Login.Password)
	v.SetDefault("regular.email", def.Regular.Email)
	v.SetDefault("regular.password", def.Regular.Password)
	v.SetDefault("viewport.mobile_width", def.Viewport.MobileWidth)
	v.SetDefault("viewport.mobile_height", def.Viewport.MobileHeight)
	v.SetDefault("strict_validation", def.StrictValidation)
	v.SetDefault("log_level", def.LogLevel)
}

func configPath(override string) string {
	if override != "" {
		return override
	}
	if env := os.Getenv(EnvPrefix + "_CONFIG"); env != "" {
		return env
	}
	return DefaultConfigFile
}

// mergeConfigFile merges the config file if it exists. A missing default
// file is not an error; the file format follows its extension.
func mergeConfigFile(v *viper.Viper, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat config %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("merge config %s: %w", path, err)
	}
	return nil
}

// splitList flattens comma-separated entries so that
// BUGBUSTERS_STUB_BUGS="a, b" and a YAML list decode the same way.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
