// Package config loads thriftrtd's server configuration from defaults, a
// YAML file, and environment variables, in that order of increasing
// precedence, the way pkg/config/config.go in the teacher repo layers
// spf13/viper over a typed struct.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/marmos91/thriftrt/internal/bytesize"
)

// Config is thriftrtd's top-level configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" validate:"required"`
	Server  ServerConfig  `mapstructure:"server" validate:"required"`
	Metrics MetricsConfig `mapstructure:"metrics" validate:"required"`
	Admin   AdminConfig   `mapstructure:"admin" validate:"required"`
}

// LoggingConfig controls internal/logger's behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
	Output string `mapstructure:"output" validate:"required"`
}

// ServerConfig controls the reactor and dispatcher a server command
// starts.
type ServerConfig struct {
	BindAddress string `mapstructure:"bind_address" validate:"required"`

	// MaxFrameSize caps the framed transport's length prefix; accepts
	// human-readable sizes like "16Mi" via internal/bytesize.
	MaxFrameSize bytesize.ByteSize `mapstructure:"max_frame_size" validate:"required,gt=0"`

	// ShutdownTimeout bounds how long the serve command waits for the
	// admin HTTP server to shut down gracefully. The reactor and
	// dispatchers are stopped without waiting for in-flight calls.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`

	// ReconnectInitialBackoff and ReconnectMaxBackoff bound the reactor's
	// capped exponential retry delay while an outbound Connect dials its
	// target. A connection that closes after being established is not
	// redialed.
	ReconnectInitialBackoff time.Duration `mapstructure:"reconnect_initial_backoff" validate:"required,gt=0"`
	ReconnectMaxBackoff     time.Duration `mapstructure:"reconnect_max_backoff" validate:"required,gtfield=ReconnectInitialBackoff"`
}

// MetricsConfig controls the Prometheus collectors the reactor and
// dispatcher record against. Enabled gates only the collectors
// themselves: the admin HTTP server (health, readiness, and /metrics)
// listens on BindAddress regardless, since liveness/readiness probing
// must not depend on metrics collection being turned on.
type MetricsConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	BindAddress string `mapstructure:"bind_address" validate:"required"`
}

// AdminConfig holds thriftrtd's service identity; the serve command passes
// ServiceName to tracing.Init as the service name.
type AdminConfig struct {
	ServiceName string `mapstructure:"service_name" validate:"required"`
}

// Load reads configuration from configPath (if non-empty), THRIFTRT_*
// environment variables, and defaults, in that precedence, and validates
// the result. When no config file is found, Load validates and returns the
// defaults without applying environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if found {
		if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHooks())); err != nil {
			return nil, fmt.Errorf("config: unmarshal: %w", err)
		}
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

var validate = validator.New()

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("THRIFTRT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("thriftrtd")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		return false, fmt.Errorf("config: read: %w", err)
	}
	return true, nil
}

func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "INFO", Format: "text", Output: "stdout"},
		Server: ServerConfig{
			BindAddress:             "127.0.0.1:9090",
			MaxFrameSize:            16 << 20,
			ShutdownTimeout:         5 * time.Second,
			ReconnectInitialBackoff: 10 * time.Millisecond,
			ReconnectMaxBackoff:     5 * time.Second,
		},
		Metrics: MetricsConfig{Enabled: true, BindAddress: "127.0.0.1:9091"},
		Admin:   AdminConfig{ServiceName: "thriftrtd"},
	}
}

// decodeHooks lets the config file express MaxFrameSize as a
// human-readable size ("16Mi") and durations as "10ms"/"5s" strings,
// matching pkg/config/config.go's byteSizeDecodeHook/durationDecodeHook
// (rebased here onto go-viper/mapstructure/v2, the fork viper itself
// depends on, rather than the teacher's unmaintained mitchellh/mapstructure).
func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}
