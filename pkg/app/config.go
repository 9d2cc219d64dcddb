package app

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// Config is read from an optional YAML file and then from the environment.
type Config struct {
	Env         string        `yaml:"env" env:"STOREROOM_ENV" env-default:"local"`
	CatalogPath string        `yaml:"catalog_path" env:"STOREROOM_CATALOG"`
	Latency     time.Duration `yaml:"simulated_latency" env:"STOREROOM_LATENCY" env-default:"1s"`
	HTTP        HTTPConfig    `yaml:"http"`
	Mock        MockConfig    `yaml:"mock"`
	Auth        AuthConfig    `yaml:"auth"`
}

type HTTPConfig struct {
	Port         int           `yaml:"port" env:"STOREROOM_PORT" env-default:"8765"`
	TLSHost      string        `yaml:"tls_host" env:"STOREROOM_TLS_HOST"`
	RedirectPort int           `yaml:"redirect_port" env:"STOREROOM_REDIRECT_PORT"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"STOREROOM_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"STOREROOM_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"STOREROOM_IDLE_TIMEOUT" env-default:"60s"`
	CORSOrigins  string        `yaml:"cors_origins" env:"STOREROOM_CORS_ORIGINS" env-default:"*"`
	LoginLimit   int           `yaml:"login_limit" env:"STOREROOM_LOGIN_LIMIT" env-default:"10"`
	LoginWindow  time.Duration `yaml:"login_window" env:"STOREROOM_LOGIN_WINDOW" env-default:"1m"`
}

// MockConfig controls the fixture data the ledger starts with.
// Defaults only fill zero values, so the switch is an opt-out.
type MockConfig struct {
	Disabled bool   `yaml:"disabled" env:"STOREROOM_MOCK_DISABLED"`
	Seed     uint64 `yaml:"seed" env:"STOREROOM_MOCK_SEED" env-default:"1"`
	Days     int    `yaml:"days" env:"STOREROOM_MOCK_DAYS" env-default:"30"`
}

type AuthConfig struct {
	Secret   string        `yaml:"secret" env:"STOREROOM_AUTH_SECRET" env-default:"change-me"`
	TokenTTL time.Duration `yaml:"token_ttl" env:"STOREROOM_TOKEN_TTL" env-default:"24h"`
}

// LoadConfig reads path when given, otherwise the environment alone.
func LoadConfig(path string) (Config, error) {
	const op = "app.LoadConfig"

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: %w", op, err)
		}
		return cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}
	return cfg, nil
}
