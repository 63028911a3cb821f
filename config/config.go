// Package config defines the configuration of the pvss command.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	log "github.com/sirupsen/logrus"
)

// EnvPrefix is the prefix of environment variables overriding the config.
// `__` separates levels, e.g. PVSS_RSA__SERVERS sets rsa.servers.
const EnvPrefix = "PVSS_"

const (
	// MinPaillierBits is the smallest accepted Paillier modulus
	MinPaillierBits = 2048
	// MinRSABits is the smallest accepted RSA modulus
	MinRSABits = 1024
)

// Config is the top-level configuration.
type Config struct {
	Log     *LogConfig     `koanf:"log"`
	PVSS    *PVSSConfig    `koanf:"pvss"`
	RSA     *RSAConfig     `koanf:"rsa"`
	Signing *SigningConfig `koanf:"signing"`
	Metrics *MetricsConfig `koanf:"metrics"`
}

// Validate performs config validation.
func (cfg *Config) Validate() error {
	if cfg.Log != nil {
		if err := cfg.Log.Validate(); err != nil {
			return fmt.Errorf("log: %w", err)
		}
	}
	if cfg.PVSS != nil {
		if err := cfg.PVSS.Validate(); err != nil {
			return fmt.Errorf("pvss: %w", err)
		}
	}
	if cfg.RSA != nil {
		if err := cfg.RSA.Validate(); err != nil {
			return fmt.Errorf("rsa: %w", err)
		}
	}
	if cfg.Signing != nil {
		if err := cfg.Signing.Validate(); err != nil {
			return fmt.Errorf("signing: %w", err)
		}
	}
	if cfg.Metrics != nil {
		if err := cfg.Metrics.Validate(); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}
	return nil
}

// LogConfig contains the logging configuration.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
	File   string `koanf:"file"`
}

// Validate validates the logging configuration.
func (cfg *LogConfig) Validate() error {
	if cfg.Format != "text" && cfg.Format != "json" {
		return fmt.Errorf("unknown log format '%s'", cfg.Format)
	}
	_, err := log.ParseLevel(cfg.Level)
	return err
}

// PVSSConfig contains the parameters of the share command.
type PVSSConfig struct {
	Shareholders int `koanf:"shareholders"`
	Threshold    int `koanf:"threshold"`
	PaillierBits int `koanf:"paillier_bits"`
}

// Validate validates the sharing parameters.
func (cfg *PVSSConfig) Validate() error {
	if cfg.Shareholders < 1 {
		return fmt.Errorf("shareholders must be positive, got %d", cfg.Shareholders)
	}
	if cfg.Threshold < 1 || cfg.Threshold > cfg.Shareholders {
		return fmt.Errorf("threshold %d out of range [1, %d]", cfg.Threshold, cfg.Shareholders)
	}
	if cfg.PaillierBits < MinPaillierBits {
		return fmt.Errorf("paillier_bits must be at least %d, got %d", MinPaillierBits, cfg.PaillierBits)
	}
	return nil
}

// RSAConfig contains the parameters of the threshold RSA deal.
type RSAConfig struct {
	Servers        int `koanf:"servers"`
	Threshold      int `koanf:"threshold"`
	ModulusBits    int `koanf:"modulus_bits"`
	PublicExponent int `koanf:"public_exponent"`
}

// Validate validates the threshold RSA parameters.
func (cfg *RSAConfig) Validate() error {
	if cfg.Servers < 1 {
		return fmt.Errorf("servers must be positive, got %d", cfg.Servers)
	}
	if cfg.Threshold < 1 || cfg.Threshold > cfg.Servers {
		return fmt.Errorf("threshold %d out of range [1, %d]", cfg.Threshold, cfg.Servers)
	}
	if cfg.ModulusBits < MinRSABits {
		return fmt.Errorf("modulus_bits must be at least %d, got %d", MinRSABits, cfg.ModulusBits)
	}
	if cfg.PublicExponent <= cfg.Servers {
		return fmt.Errorf("public_exponent %d must exceed the number of servers", cfg.PublicExponent)
	}
	return nil
}

// SigningConfig contains the configuration of the signing servers.
type SigningConfig struct {
	// ThrottleInterval is the minimum time between two signature shares
	// of the same user on one server.
	ThrottleInterval time.Duration `koanf:"throttle_interval"`
}

// Validate validates the signing configuration.
func (cfg *SigningConfig) Validate() error {
	if cfg.ThrottleInterval < 0 {
		return fmt.Errorf("negative throttle_interval %v", cfg.ThrottleInterval)
	}
	return nil
}

// MetricsConfig contains the metrics configuration.
type MetricsConfig struct {
	Enabled      bool   `koanf:"enabled"`
	PullEndpoint string `koanf:"pull_endpoint"`
}

// Validate validates the metrics configuration.
func (cfg *MetricsConfig) Validate() error {
	if cfg.Enabled && cfg.PullEndpoint == "" {
		return fmt.Errorf("malformed Prometheus pull endpoint '%s'", cfg.PullEndpoint)
	}
	return nil
}

// Defaults are the values used for keys not set in the file or environment.
var Defaults = map[string]interface{}{
	"log.format":                "text",
	"log.level":                 "info",
	"pvss.shareholders":         5,
	"pvss.threshold":            3,
	"pvss.paillier_bits":        MinPaillierBits,
	"rsa.servers":               5,
	"rsa.threshold":             3,
	"rsa.modulus_bits":          2048,
	"rsa.public_exponent":       65537,
	"signing.throttle_interval": "1s",
	"metrics.enabled":           false,
	"metrics.pull_endpoint":     "localhost:7000",
}

func envKey(s string) string {
	// `__` is used as a hierarchy delimiter.
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

func initConfig(providers ...koanf.Provider) (*Config, error) {
	var config Config
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults, "."), nil); err != nil {
		return nil, err
	}

	for _, p := range providers {
		if err := k.Load(p, yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Load environment variables and merge into the loaded config.
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", &config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// InitConfig initializes configuration from file. With an empty path only
// the defaults and the environment are used.
func InitConfig(f string) (*Config, error) {
	if f == "" {
		return initConfig()
	}
	return initConfig(file.Provider(f))
}
