package config

import (
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/mutker/zensensors/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel  = string(LogLevelInfo)
	DefaultEnvPrefix = "ZENSENSORS"

	configName = "zensensors"
	configType = "toml"
	configDir  = "/etc"
	pidName    = "zensensors.pid"
)

type Config struct {
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
	Monitor  bool   `mapstructure:"monitor"`
	PIDFile  string `mapstructure:"pid_file"`
}

// DefaultPIDFile is where the PID file goes unless configured otherwise.
func DefaultPIDFile() string {
	return filepath.Join(os.TempDir(), pidName)
}

// Load resolves the configuration from defaults, the config file, the
// environment and args, in increasing order of precedence. args excludes
// the program name.
func Load(args []string, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := options{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(&o)
	}

	v := viper.New()
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("monitor", false)
	v.SetDefault("pid_file", DefaultPIDFile())

	// Define flags
	fs := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	configFlag := fs.String("config", "", "Path to configuration file")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.String("log-file", "", "Write logs to this file (TUI mode discards logs otherwise)")
	fs.Bool("monitor", false, "Log readings instead of starting the terminal UI")
	fs.String("pid-file", DefaultPIDFile(), "Path to PID file")

	if err := fs.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	for key, flag := range map[string]string{
		"log_level": "log-level",
		"log_file":  "log-file",
		"monitor":   "monitor",
		"pid_file":  "pid-file",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Explicit file: flag, then option, then environment
	path := *configFlag
	if path == "" {
		path = o.configPath
	}
	if path == "" {
		path = os.Getenv(o.envPrefix + "_CONFIG")
	}

	if err := readConfigFile(v, path); err != nil {
		return nil, err
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	errFactory := errors.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errFactory.WrapWithData(errors.ErrReadConfig, err, path)
		}

		return nil
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	return nil
}

// Validate checks the resolved values.
func (c *Config) Validate() error {
	errFactory := errors.New()

	c.LogLevel = strings.ToLower(c.LogLevel)
	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if c.PIDFile == "" {
		return errFactory.WithData(errors.ErrInvalidConfig, "pid_file must not be empty")
	}

	return nil
}
