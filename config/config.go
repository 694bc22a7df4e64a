package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

type ServerConfig struct {
	Environment string `mapstructure:"environment"`
}

type CircuitBreakerConfig struct {
	Threshold    int    `mapstructure:"threshold"`
	ResetTimeout string `mapstructure:"reset_timeout"`
}

type MonitorConfig struct {
	Workers        int                  `mapstructure:"workers"`
	RequestTimeout string               `mapstructure:"request_timeout"`
	MaxRetries     int                  `mapstructure:"max_retries"`
	RetryBackoff   string               `mapstructure:"retry_backoff"`
	PollInterval   string               `mapstructure:"poll_interval"`
	MaxRedirects   int                  `mapstructure:"max_redirects"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type WatchConfig struct {
	// Interval between passes. Empty means a single pass.
	Interval string `mapstructure:"interval"`
}

type MetricsConfig struct {
	// Address of the metrics endpoint. Empty disables it.
	Address string `mapstructure:"address"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Monitor MonitorConfig `mapstructure:"monitor"`
	Targets []string      `mapstructure:"targets"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// flagKeys maps command line flags to the configuration keys they override.
var flagKeys = map[string]string{
	"workers":      "monitor.workers",
	"timeout":      "monitor.request_timeout",
	"retries":      "monitor.max_retries",
	"backoff":      "monitor.retry_backoff",
	"watch":        "watch.interval",
	"metrics-addr": "metrics.address",
	"format":       "output.format",
	"log-level":    "logging.level",
}

// RegisterFlags adds the monitor's command line flags to fs. Flags left
// unset do not override the config file or the environment.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a config file")
	fs.IntP("workers", "w", 50, "number of concurrent workers")
	fs.StringP("timeout", "t", "5s", "per-request timeout")
	fs.IntP("retries", "r", 0, "retries per URL after a failed check")
	fs.String("backoff", "100ms", "base delay between retries, multiplied by the attempt number")
	fs.String("watch", "", "repeat checks at this interval until interrupted")
	fs.String("metrics-addr", "", "serve run metrics on this host:port")
	fs.String("format", FormatText, "output format: text or json")
	fs.Bool("no-color", false, "disable colored output")
	fs.String("log-level", LogLevelInfo, "log level: debug, info, warn or error")
}

// Load builds the configuration from defaults, the config file, environment
// variables and flags, in increasing order of precedence. flags may be nil.
// Positional arguments in flags replace the configured targets.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.environment", EnvDev)
	v.SetDefault("monitor.workers", 50)
	v.SetDefault("monitor.request_timeout", "5s")
	v.SetDefault("monitor.max_retries", 0)
	v.SetDefault("monitor.retry_backoff", "100ms")
	v.SetDefault("monitor.poll_interval", "100ms")
	v.SetDefault("monitor.max_redirects", 5)
	v.SetDefault("monitor.circuit_breaker.threshold", 0)
	v.SetDefault("monitor.circuit_breaker.reset_timeout", "30s")
	v.SetDefault("targets", []string{})
	v.SetDefault("watch.interval", "")
	v.SetDefault("metrics.address", "")
	v.SetDefault("output.format", FormatText)
	v.SetDefault("output.color", true)
	v.SetDefault("logging.level", LogLevelInfo)

	configFile := ""
	if flags != nil {
		if f := flags.Lookup("config"); f != nil {
			configFile = f.Value.String()
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := bindFlags(v, flags); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		slog.Debug("config file not found, using defaults and environment variables")
	} else {
		slog.Debug("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if flags != nil && flags.NArg() > 0 {
		cfg.Targets = flags.Args()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}

	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", name, err)
		}
	}

	if noColor, err := flags.GetBool("no-color"); err == nil && noColor {
		v.Set("output.color", false)
	}

	return nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.Monitor,
			validation.Required,
			validation.By(validateMonitorConfig),
		),
		validation.Field(&c.Targets,
			validation.Required,
			validation.Length(1, 0),
			validation.Each(validation.By(validateTargetURL)),
		),
		validation.Field(&c.Watch,
			validation.By(func(value interface{}) error {
				wc, ok := value.(WatchConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a WatchConfig")
				}
				return validation.ValidateStruct(&wc,
					validation.Field(&wc.Interval,
						validation.When(wc.Interval != "", validation.By(validatePositiveDuration)),
					),
				)
			}),
		),
		validation.Field(&c.Metrics,
			validation.By(func(value interface{}) error {
				mc, ok := value.(MetricsConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a MetricsConfig")
				}
				return validation.ValidateStruct(&mc,
					validation.Field(&mc.Address,
						validation.When(mc.Address != "", validation.By(validateHostPort)),
					),
				)
			}),
		),
		validation.Field(&c.Output,
			validation.By(func(value interface{}) error {
				oc, ok := value.(OutputConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be an OutputConfig")
				}
				return validation.ValidateStruct(&oc,
					validation.Field(&oc.Format,
						validation.Required,
						validation.In(FormatText, FormatJSON),
					),
				)
			}),
		),
	)
}

func validateMonitorConfig(value interface{}) error {
	mc, ok := value.(MonitorConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a MonitorConfig")
	}

	return validation.ValidateStruct(&mc,
		validation.Field(&mc.Workers, validation.Min(0)),
		validation.Field(&mc.MaxRetries, validation.Min(0)),
		validation.Field(&mc.MaxRedirects, validation.Min(0)),
		validation.Field(&mc.RequestTimeout,
			validation.Required,
			validation.By(validatePositiveDuration),
		),
		validation.Field(&mc.RetryBackoff,
			validation.Required,
			validation.By(validateDuration),
		),
		validation.Field(&mc.PollInterval,
			validation.Required,
			validation.By(validatePositiveDuration),
		),
		validation.Field(&mc.CircuitBreaker,
			validation.By(func(value interface{}) error {
				cb, ok := value.(CircuitBreakerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a CircuitBreakerConfig")
				}
				return validation.ValidateStruct(&cb,
					validation.Field(&cb.Threshold, validation.Min(0)),
					validation.Field(&cb.ResetTimeout,
						validation.When(cb.Threshold > 0, validation.Required, validation.By(validatePositiveDuration)),
					),
				)
			}),
		),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}

	if d < 0 {
		return validation.NewError("validation_negative_duration", "must not be negative")
	}

	return nil
}

func validatePositiveDuration(value interface{}) error {
	if err := validateDuration(value); err != nil {
		return err
	}

	// validateDuration has already checked the type and format.
	if d, _ := time.ParseDuration(value.(string)); d == 0 {
		return validation.NewError("validation_zero_duration", "must be greater than zero")
	}

	return nil
}

func validateTargetURL(value interface{}) error {
	target, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if target == "" {
		return validation.NewError("validation_empty_url", "target URL cannot be empty")
	}

	parsedURL, err := url.Parse(target)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}
