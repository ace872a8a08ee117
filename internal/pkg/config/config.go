package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration lets time.Duration values be written as "10s" in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config carries the runtime settings for the storefront service.
// Values come from an optional YAML file, overridden by environment
// variables so container deployments can tune single knobs.
type Config struct {
	ServiceName string        `yaml:"service_name"`
	Env         string        `yaml:"env"`
	HTTPAddr    string        `yaml:"http_addr"`
	TokenSecret string        `yaml:"token_secret"`
	TokenTTL    Duration      `yaml:"token_ttl"`
	Payment     PaymentConfig `yaml:"payment"`
	RateLimit   RateConfig    `yaml:"rate_limit"`
}

type PaymentConfig struct {
	// Endpoint of the hosted-checkout provider. Empty selects the
	// built-in simulated provider.
	Endpoint string   `yaml:"endpoint"`
	APIKey   string   `yaml:"api_key"`
	Timeout  Duration `yaml:"timeout"`
}

type RateConfig struct {
	// Mutations per second allowed per client, with Burst headroom.
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

func defaults() *Config {
	return &Config{
		ServiceName: "storefront",
		Env:         "dev",
		HTTPAddr:    ":8080",
		TokenSecret: "dev-only-secret",
		TokenTTL:    Duration(24 * time.Hour),
		Payment: PaymentConfig{
			Timeout: Duration(10 * time.Second),
		},
		RateLimit: RateConfig{
			PerSecond: 10,
			Burst:     20,
		},
	}
}

// Load reads the YAML file at path when it exists, then applies
// environment overrides. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		file, err := os.Open(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// fall through to env overrides
		case err != nil:
			return nil, err
		default:
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
				return nil, err
			}
		}
	}

	cfg.ServiceName = getEnv("SERVICE_NAME", cfg.ServiceName)
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.TokenSecret = getEnv("TOKEN_SECRET", cfg.TokenSecret)
	cfg.Payment.Endpoint = getEnv("PAYMENT_ENDPOINT", cfg.Payment.Endpoint)
	cfg.Payment.APIKey = getEnv("PAYMENT_API_KEY", cfg.Payment.APIKey)

	if err := getEnvDuration("TOKEN_TTL", &cfg.TokenTTL); err != nil {
		return nil, err
	}
	if err := getEnvDuration("PAYMENT_TIMEOUT", &cfg.Payment.Timeout); err != nil {
		return nil, err
	}
	if v := os.Getenv("RATE_LIMIT_PER_SECOND"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("config: parse RATE_LIMIT_PER_SECOND: %w", err)
		}
		cfg.RateLimit.PerSecond = parsed
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: parse RATE_LIMIT_BURST: %w", err)
		}
		cfg.RateLimit.Burst = parsed
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, dst *Duration) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", key, err)
	}
	*dst = Duration(parsed)
	return nil
}
