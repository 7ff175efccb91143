package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"ozzus/check-jenkins-agent/internal/domain"
)

const envPrefix = "CHECK_JENKINS_AGENT"

// ErrMissingInstance is returned when no controller URL was configured.
var ErrMissingInstance = errors.New("controller instance URL is required")

// hostname is replaced in tests.
var hostname = os.Hostname

type Config struct {
	Instance         string `mapstructure:"instance"`
	Host             string `mapstructure:"host"`
	User             string `mapstructure:"user"`
	Password         string `mapstructure:"password"`
	TempOfflineState string `mapstructure:"temp_offline_state"`
	Timeout          int    `mapstructure:"timeout"`
	Env              string `mapstructure:"env"`
	Verbose          bool   `mapstructure:"verbose"`

	// Policy is TempOfflineState resolved once at startup.
	Policy domain.TempOfflinePolicy `mapstructure:"-"`
	// PolicyRecognized is false when TempOfflineState fell back to WARN.
	PolicyRecognized bool `mapstructure:"-"`
}

// Load parses args (without the program name) and merges them with the
// environment and an optional YAML file. Precedence: flag, env, file, default.
// pflag.ErrHelp is returned when usage was requested.
func Load(args []string) (*Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		if err := optionalValue(fs, err); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, flag := range map[string]string{
		"instance":           "instance",
		"host":               "host",
		"user":               "user",
		"password":           "password",
		"temp_offline_state": "temp-offline-state",
		"timeout":            "timeout",
		"env":                "env",
		"verbose":            "verbose",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	if err := readConfigFile(v, fs); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Instance = strings.TrimSpace(cfg.Instance)
	if cfg.Instance == "" {
		return nil, ErrMissingInstance
	}

	if cfg.Host == "" {
		name, err := hostname()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve local hostname: %w", err)
		}
		cfg.Host = strings.TrimSpace(name)
	}

	cfg.Policy, cfg.PolicyRecognized = domain.ParseTempOfflinePolicy(cfg.TempOfflineState)

	return &cfg, nil
}

// optionalValue accepts a trailing --instance or --temp-offline-state given
// without a value. A bare instance means no URL; a bare state is an
// unrecognised policy.
func optionalValue(fs *pflag.FlagSet, err error) error {
	var valueErr *pflag.ValueRequiredError
	if !errors.As(err, &valueErr) || valueErr.GetFlag() == nil {
		return err
	}

	switch valueErr.GetFlag().Name {
	case "instance":
		return ErrMissingInstance
	case "temp-offline-state":
		return fs.Set("temp-offline-state", "")
	}

	return err
}

// Usage returns the flag help text.
func Usage() string {
	return newFlagSet().FlagUsages()
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("check_jenkins_agent", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	fs.StringP("instance", "i", "", "Base URL of the Jenkins controller")
	fs.StringP("host", "h", "", "Optionally override host to check. This is the hostname by default")
	fs.StringP("user", "u", "", "Authentication username")
	fs.StringP("password", "p", "", "Authentication password")
	fs.StringP("temp-offline-state", "t", string(domain.DefaultTempOfflinePolicy), "Report temporarily offline nodes as: OK, WARN or CRIT")
	fs.Int("timeout", 10, "HTTP timeout in seconds")
	fs.StringP("config", "c", "", "Path to a YAML config file")
	fs.String("env", "prod", "Log format: local, dev or prod")
	fs.BoolP("verbose", "v", false, "Write debug logs to stderr")

	return fs
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "")
	v.SetDefault("user", "")
	v.SetDefault("password", "")
	v.SetDefault("temp_offline_state", string(domain.DefaultTempOfflinePolicy))
	v.SetDefault("timeout", 10)
	v.SetDefault("env", "prod")
	v.SetDefault("verbose", false)
}

func readConfigFile(v *viper.Viper, fs *pflag.FlagSet) error {
	path, _ := fs.GetString("config")
	if path == "" {
		path = os.Getenv(envPrefix + "_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		return nil
	}

	v.SetConfigName("check_jenkins_agent")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/check_jenkins_agent")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	return nil
}

func (c *Config) GetTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}
