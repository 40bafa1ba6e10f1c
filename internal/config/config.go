package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config groups the web client's settings, read via Viper from an optional
// config file with environment overrides.
type Config struct {
	Environment string
	LogLevel    string
	ListenAddr  string

	// BackendURL is the base URL of the REST API this client talks to.
	BackendURL string

	// CredentialFile is where the bearer token is persisted across restarts.
	CredentialFile string
	CookieName     string

	RequestTimeout time.Duration

	// Login throttle: LoginBurst attempts, refilling one per LoginEvery.
	LoginBurst int
	LoginEvery time.Duration
}

// Load reads taskboard.yaml (working directory, optional) and TASKBOARD_*
// environment variables. Env vars win.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("taskboard")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("TASKBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("listen_addr", ":3000")
	v.SetDefault("backend_url", "http://localhost:8000/api")
	v.SetDefault("credential_file", ".taskboard/credentials.json")
	v.SetDefault("cookie_name", "auth_token")
	v.SetDefault("request_timeout", "30s")
	v.SetDefault("login_burst", 5)
	v.SetDefault("login_every", "10s")

	cfg := &Config{
		Environment:    v.GetString("environment"),
		LogLevel:       v.GetString("log_level"),
		ListenAddr:     v.GetString("listen_addr"),
		BackendURL:     strings.TrimRight(v.GetString("backend_url"), "/"),
		CredentialFile: v.GetString("credential_file"),
		CookieName:     v.GetString("cookie_name"),
		RequestTimeout: v.GetDuration("request_timeout"),
		LoginBurst:     v.GetInt("login_burst"),
		LoginEvery:     v.GetDuration("login_every"),
	}
	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("backend_url is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	return cfg, nil
}
