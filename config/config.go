package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// MemoryURI selects the in-process store instead of MongoDB.
const MemoryURI = "memory"

type Config struct {
	Port           string        `yaml:"port"`
	MongoURI       string        `yaml:"mongoURI"`
	MongoDB        string        `yaml:"mongoDB"`
	JWTSecret      string        `yaml:"jwtSecret"`
	TokenTTL       time.Duration `yaml:"tokenTTL"`
	GinMode        string        `yaml:"ginMode"`
	CORSOrigins    []string      `yaml:"corsOrigins"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

func Default() Config {
	return Config{
		Port:           "8080",
		MongoURI:       "mongodb://127.0.0.1:27017",
		MongoDB:        "chirp",
		TokenTTL:       24 * time.Hour,
		GinMode:        "debug",
		CORSOrigins:    []string{"http://localhost:3000", "http://localhost:5173", "http://127.0.0.1:5500"},
		RequestTimeout: 10 * time.Second,
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables, which may come from .env.
func Load() (Config, error) {
	// .env is optional; a missing file is not an error
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ResolveEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML at path onto cfg.
func LoadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, cfg)
}

// ResolveEnv overrides fields from environment variables that are set.
func (c *Config) ResolveEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("MONGODB_URI"); v != "" {
		c.MongoURI = v
	}
	if v := os.Getenv("MONGODB_DB"); v != "" {
		c.MongoDB = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		c.GinMode = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.New("TOKEN_TTL: " + err.Error())
		}
		c.TokenTTL = d
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.New("REQUEST_TIMEOUT: " + err.Error())
		}
		c.RequestTimeout = d
	}
	return nil
}

func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.MongoURI == "" {
		return errors.New("MONGODB_URI must be set")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token TTL must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	return nil
}

// Release reports whether gin should run in release mode.
func (c Config) Release() bool {
	return c.GinMode == "release"
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
