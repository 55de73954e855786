package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const appName = "wayland-pipewire-idle-inhibit"

// Settings is the merged result of the TOML config file and CLI flags.
// Everything is read-only after Load; there is no hot-reload.
type Settings struct {
	MediaMinimumDuration time.Duration
	Verbosity            string
	Quiet                bool
	Wayland              bool
	DBus                 bool
	DryRun               bool
	SinkWhitelist        []SinkFilter
	NodeBlacklist        []NodeFilter
}

type sinkRuleConfig struct {
	Name string `mapstructure:"name"`
}

type nodeRuleConfig struct {
	Name          string `mapstructure:"name"`
	AppName       string `mapstructure:"app_name"`
	MediaClass    string `mapstructure:"media_class"`
	MediaRole     string `mapstructure:"media_role"`
	MediaSoftware string `mapstructure:"media_software"`
}

// LoadSettings parses CLI flags, merges them over the TOML config file and
// compiles the filter rules. A malformed regex or unreadable config file is
// a startup error.
func LoadSettings(args []string) (*Settings, error) {
	flags := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	flags.IntP("media-minimum-duration", "d", 5, "Minimum media duration in seconds to inhibit idle, 0 inhibits immediately")
	flags.StringP("verbosity", "v", "warn", "Log verbosity (debug, info, warn, error)")
	flags.BoolP("quiet", "q", false, "Disables logging completely")
	flags.BoolP("wayland", "w", true, "Enable Wayland idle inhibitor")
	flags.BoolP("no-wayland", "W", false, "Disable Wayland idle inhibitor")
	flags.BoolP("dbus", "b", false, "Enable D-Bus (org.freedesktop.ScreenSaver) idle inhibitor")
	flags.BoolP("no-dbus", "B", false, "Disable D-Bus idle inhibitor")
	flags.BoolP("dry-run", "n", false, "Only log idle inhibitor state changes, asserting nothing")
	flags.StringP("config", "c", "", "Path to config file")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("toml")

	if path, _ := flags.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		configDir, err := defaultConfigDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(configDir)
	}

	bindings := map[string]string{
		"media_minimum_duration": "media-minimum-duration",
		"verbosity":              "verbosity",
		"quiet":                  "quiet",
		"wayland":                "wayland",
		"dbus":                   "dbus",
		"dry_run":                "dry-run",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Settings{
		MediaMinimumDuration: time.Duration(v.GetInt("media_minimum_duration")) * time.Second,
		Verbosity:            v.GetString("verbosity"),
		Quiet:                v.GetBool("quiet"),
		Wayland:              v.GetBool("wayland"),
		DBus:                 v.GetBool("dbus"),
		DryRun:               v.GetBool("dry_run"),
	}

	// The negative flags always win over both config file and positive flags.
	if noWayland, _ := flags.GetBool("no-wayland"); noWayland {
		cfg.Wayland = false
	}
	if noDBus, _ := flags.GetBool("no-dbus"); noDBus {
		cfg.DBus = false
	}
	if cfg.DryRun {
		cfg.Wayland = false
		cfg.DBus = false
	}
	if cfg.MediaMinimumDuration < 0 {
		return nil, fmt.Errorf("media_minimum_duration must not be negative")
	}

	var sinkRules []sinkRuleConfig
	if err := v.UnmarshalKey("sink_whitelist", &sinkRules); err != nil {
		return nil, fmt.Errorf("invalid sink_whitelist: %w", err)
	}
	var nodeRules []nodeRuleConfig
	if err := v.UnmarshalKey("node_blacklist", &nodeRules); err != nil {
		return nil, fmt.Errorf("invalid node_blacklist: %w", err)
	}

	for i, rule := range sinkRules {
		filter, err := compileSinkRule(rule)
		if err != nil {
			return nil, fmt.Errorf("sink_whitelist entry %d: %w", i, err)
		}
		cfg.SinkWhitelist = append(cfg.SinkWhitelist, filter)
	}
	for i, rule := range nodeRules {
		filter, err := compileNodeRule(rule)
		if err != nil {
			return nil, fmt.Errorf("node_blacklist entry %d: %w", i, err)
		}
		cfg.NodeBlacklist = append(cfg.NodeBlacklist, filter)
	}

	return cfg, nil
}

func compileSinkRule(rule sinkRuleConfig) (SinkFilter, error) {
	name, err := compilePattern(rule.Name)
	if err != nil {
		return SinkFilter{}, fmt.Errorf("name: %w", err)
	}
	return SinkFilter{Name: name}, nil
}

func compileNodeRule(rule nodeRuleConfig) (NodeFilter, error) {
	var filter NodeFilter
	fields := []struct {
		name    string
		pattern string
		dst     **regexp.Regexp
	}{
		{"name", rule.Name, &filter.Name},
		{"app_name", rule.AppName, &filter.AppName},
		{"media_class", rule.MediaClass, &filter.MediaClass},
		{"media_role", rule.MediaRole, &filter.MediaRole},
		{"media_software", rule.MediaSoftware, &filter.MediaSoftware},
	}
	for _, f := range fields {
		re, err := compilePattern(f.pattern)
		if err != nil {
			return NodeFilter{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = re
	}
	return filter, nil
}

// compilePattern compiles a rule regex; an empty pattern means the field is
// unset and acts as a wildcard.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", pattern, err)
	}
	return re, nil
}

func defaultConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine config directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appName), nil
}
