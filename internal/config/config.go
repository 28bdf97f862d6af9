// Package config loads server configuration from an optional YAML file
// with environment-variable overrides. Environment always wins, so a
// deployment can ship a base file and override per instance.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the yurtgate server configuration.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `yaml:"listen_addr"`
	// DataDir holds the bbolt user database.
	DataDir string `yaml:"data_dir"`
	// JWTSecret signs the access and refresh tokens. Required in
	// production; a missing value gets a loud dev default.
	JWTSecret string `yaml:"jwt_secret"`
	// AccessTokenTTL and RefreshTokenTTL override the token lifetimes.
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`
	// BcryptCost overrides the password hashing cost.
	BcryptCost int `yaml:"bcrypt_cost"`
	// TLSCert and TLSKey enable TLS when both are set.
	TLSCert string `yaml:"tls_cert"`
	TLSKey  string `yaml:"tls_key"`
}

// DevJWTSecret is the fallback signing secret when none is configured.
// It is intentionally recognizable so it never survives a deploy review.
const DevJWTSecret = "yurtgate-dev-secret-change-me"

func defaults() Config {
	return Config{
		ListenAddr: ":8642",
		DataDir:    defaultDataDir(),
		JWTSecret:  DevJWTSecret,
	}
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home + "/.yurtgate"
	}
	return "."
}

// Load reads the YAML file at path (skipped when path is empty or the
// file does not exist) and then applies YURTGATE_* environment
// overrides on top of the defaults.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Optional file.
		case err != nil:
			return Config{}, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("YURTGATE_LISTEN_ADDR", &cfg.ListenAddr)
	setString("YURTGATE_DATA_DIR", &cfg.DataDir)
	setString("YURTGATE_JWT_SECRET", &cfg.JWTSecret)
	setString("YURTGATE_TLS_CERT", &cfg.TLSCert)
	setString("YURTGATE_TLS_KEY", &cfg.TLSKey)

	if v := os.Getenv("YURTGATE_ACCESS_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("YURTGATE_ACCESS_TOKEN_TTL: %w", err)
		}
		cfg.AccessTokenTTL = d
	}
	if v := os.Getenv("YURTGATE_REFRESH_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("YURTGATE_REFRESH_TOKEN_TTL: %w", err)
		}
		cfg.RefreshTokenTTL = d
	}
	if v := os.Getenv("YURTGATE_BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("YURTGATE_BCRYPT_COST: %w", err)
		}
		cfg.BcryptCost = n
	}
	return nil
}
