package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// DefaultConfigPath is read when no --config flag is given.
const DefaultConfigPath = ".config.json"

type Config struct {
	Port         int            `json:"port" toml:"port"`
	Env          string         `json:"env" toml:"env"`
	Pepper       string         `json:"pepper" toml:"pepper"`
	HMACKey      string         `json:"hmac_key" toml:"hmac_key"`
	ClientToken  string         `json:"client_token" toml:"client_token"`
	ImagesDir    string         `json:"images_dir" toml:"images_dir"`
	PrivateBlogs bool           `json:"private_blogs" toml:"private_blogs"`
	TokenCache   Duration       `json:"token_cache_ttl" toml:"token_cache_ttl"`
	Database     DatabaseConfig `json:"database" toml:"database"`
}

// IsProd reports whether the app runs in production.
func (c Config) IsProd() bool {
	return c.Env == "prod"
}

type DatabaseConfig struct {
	// Dialect is either "postgres" or "sqlite".
	Dialect  string `json:"dialect" toml:"dialect"`
	Host     string `json:"host" toml:"host"`
	Port     int    `json:"port" toml:"port"`
	User     string `json:"user" toml:"user"`
	Password string `json:"password" toml:"password"`
	Name     string `json:"name" toml:"name"`
	// Path is the database file of the sqlite dialect.
	Path string `json:"path" toml:"path"`
}

// ConnectionInfo returns the dsn the database driver of the dialect is opened with.
func (dc DatabaseConfig) ConnectionInfo() string {
	if dc.Dialect == DialectSQLite {
		return dc.Path
	}
	if dc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable", dc.Host, dc.Port, dc.User, dc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", dc.Host, dc.Port, dc.User, dc.Password, dc.Name)
}

// Duration is a time.Duration that is written as a string like "15m" in config files.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func DefaultConfig() Config {
	return Config{
		Port:       1111,
		Env:        "dev",
		Pepper:     "secret-random-string",
		HMACKey:    "secret-hmac-key",
		ImagesDir:  "storage/images",
		TokenCache: Duration{15 * time.Minute},
		Database:   DefaultDatabaseConfig(),
	}
}

func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Dialect: DialectSQLite,
		Path:    "blog_api.db",
	}
}

// LoadConfig loads the configuration from path. Files ending in .toml are
// decoded as toml, everything else as json. Fields missing from the file
// keep their default values.
// Without a config file the default dev setup is used, unless required is
// set, which is the case in production.
func LoadConfig(path string, required bool) (Config, error) {
	c := DefaultConfig()
	if _, err := os.Stat(path); err != nil {
		if required {
			return c, errors.Wrapf(err, "config file %s is required", path)
		}
		return c, nil
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, &c); err != nil {
			return c, errors.Wrapf(err, "decoding %s", path)
		}
	} else {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, errors.Wrapf(err, "reading %s", path)
		}
		if err := json.Unmarshal(b, &c); err != nil {
			return c, errors.Wrapf(err, "decoding %s", path)
		}
	}
	if err := c.validate(); err != nil {
		return c, errors.Wrapf(err, "invalid config %s", path)
	}
	return c, nil
}

func (c Config) validate() error {
	switch c.Database.Dialect {
	case DialectPostgres, DialectSQLite:
	default:
		return errors.Errorf("unknown database dialect %q", c.Database.Dialect)
	}
	if c.IsProd() && (c.Pepper == DefaultConfig().Pepper || c.HMACKey == DefaultConfig().HMACKey) {
		return errors.New("pepper and hmac_key must be set in production")
	}
	if c.ImagesDir == "" {
		return errors.New("images_dir must not be empty")
	}
	return nil
}
