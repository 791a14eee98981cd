package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"gamenight/pkg/database"
)

// Store backends.
const (
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

type Config struct {
	Env    string       `yaml:"env"`
	Store  StoreConfig  `yaml:"store"`
	BGG    BGGConfig    `yaml:"bgg"`
	Server ServerConfig `yaml:"server"`
	Auth   AuthConfig   `yaml:"auth"`
}

type StoreConfig struct {
	Backend          string `yaml:"backend"`
	DBPath           string `yaml:"db_path"`
	FirestoreProject string `yaml:"firestore_project"`
}

type BGGConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Token      string        `yaml:"token"`
	RatePerSec float64       `yaml:"rate_per_sec"`
	Timeout    time.Duration `yaml:"timeout"`
	ThingBatch int           `yaml:"thing_batch"`
}

type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	GRPCAddr string `yaml:"grpc_addr"`
	TCPAddr  string `yaml:"tcp_addr"`
}

type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret"`
	JWTIssuer   string        `yaml:"jwt_issuer"`
	JWTDuration time.Duration `yaml:"jwt_ttl"`
}

// Defaults returns the configuration used when no file or env is given.
func Defaults() Config {
	return Config{
		Env: "prod",
		Store: StoreConfig{
			Backend: StoreSQLite,
			DBPath:  database.DefaultConfig().Path,
		},
		BGG: BGGConfig{
			BaseURL:    "https://boardgamegeek.com/xmlapi2",
			RatePerSec: 1,
			Timeout:    30 * time.Second,
			ThingBatch: 20,
		},
		Server: ServerConfig{
			HTTPAddr: ":8080",
			GRPCAddr: ":9090",
			TCPAddr:  ":7070",
		},
		Auth: AuthConfig{
			// dev default (change for production)
			JWTSecret:   "dev-secret-change-me",
			JWTIssuer:   "gamenight",
			JWTDuration: 24 * time.Hour,
		},
	}
}

// LoadConfig reads the YAML file at path over the defaults, then applies
// GAMENIGHT_* environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("GAMENIGHT_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("GAMENIGHT_STORE"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("GAMENIGHT_DB_PATH"); v != "" {
		cfg.Store.DBPath = v
	}
	if v := os.Getenv("GAMENIGHT_FIRESTORE_PROJECT"); v != "" {
		cfg.Store.FirestoreProject = v
	}
	if v := os.Getenv("GAMENIGHT_BGG_BASE_URL"); v != "" {
		cfg.BGG.BaseURL = v
	}
	if v := os.Getenv("GAMENIGHT_BGG_TOKEN"); v != "" {
		cfg.BGG.Token = v
	}
	if v := os.Getenv("GAMENIGHT_BGG_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid GAMENIGHT_BGG_RATE value: %w", err)
		}
		cfg.BGG.RatePerSec = f
	}
	if v := os.Getenv("GAMENIGHT_BGG_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid GAMENIGHT_BGG_TIMEOUT value: %w", err)
		}
		cfg.BGG.Timeout = d
	}
	if v := os.Getenv("GAMENIGHT_THING_BATCH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GAMENIGHT_THING_BATCH value: %w", err)
		}
		cfg.BGG.ThingBatch = n
	}
	if v := os.Getenv("GAMENIGHT_HTTP_ADDR"); v != "" {
		cfg.Server.HTTPAddr = v
	}
	if v := os.Getenv("GAMENIGHT_GRPC_ADDR"); v != "" {
		cfg.Server.GRPCAddr = v
	}
	if v := os.Getenv("GAMENIGHT_TCP_ADDR"); v != "" {
		cfg.Server.TCPAddr = v
	}
	if v := os.Getenv("GAMENIGHT_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("GAMENIGHT_JWT_ISSUER"); v != "" {
		cfg.Auth.JWTIssuer = v
	}
	if v := os.Getenv("GAMENIGHT_JWT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid GAMENIGHT_JWT_TTL value: %w", err)
		}
		cfg.Auth.JWTDuration = d
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreSQLite:
		if c.Store.DBPath == "" {
			return errors.New("config: store.db_path required for sqlite")
		}
	case StoreFirestore:
		if c.Store.FirestoreProject == "" {
			return errors.New("config: store.firestore_project required for firestore")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	if c.BGG.ThingBatch <= 0 {
		return errors.New("config: bgg.thing_batch must be positive")
	}
	return nil
}

// Dev reports whether the development environment is selected.
func (c Config) Dev() bool {
	return c.Env == "dev" || c.Env == "development"
}
