package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/sir_venger/charimg_lite/internal/logging"
	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr    = ":3000"
	defaultStorageRoot   = "./public"
	defaultSpoolDir      = "./spool"
	defaultSweepTTL      = 24 * time.Hour
	defaultSweepInterval = 30 * time.Minute
)

type Config struct {
	ListenAddr  string `yaml:"listen_addr" json:"listen_addr" env:"LISTEN_ADDR"`
	StorageRoot string `yaml:"storage_root" json:"storage_root" env:"STORAGE_ROOT"`
	SpoolDir    string `yaml:"spool_dir" json:"spool_dir" env:"SPOOL_DIR"`

	// PruneStaleExtensions включает удаление файлов того же имени с другим расширением.
	PruneStaleExtensions bool `yaml:"prune_stale_extensions" json:"prune_stale_extensions" env:"PRUNE_STALE_EXTENSIONS"`

	CORSOrigins   []string       `yaml:"cors_origins" json:"cors_origins"`
	SweepTTL      time.Duration  `yaml:"sweep_ttl" json:"sweep_ttl"`
	SweepInterval time.Duration  `yaml:"sweep_interval" json:"sweep_interval"`
	Log           logging.Config `yaml:"log" json:"log"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() *Config {
	return &Config{
		ListenAddr:    defaultListenAddr,
		StorageRoot:   defaultStorageRoot,
		SpoolDir:      defaultSpoolDir,
		CORSOrigins:   []string{"*"},
		SweepTTL:      defaultSweepTTL,
		SweepInterval: defaultSweepInterval,
		Log:           logging.Config{Level: "info", Format: "json"},
	}
}

// Load читает .env и YAML-конфигурацию, применяет ENV-переопределения и возвращает актуальную структуру.
// Отсутствующий YAML-файл не ошибка: остаются значения по умолчанию.
func Load() (*Config, error) {
	// .env опционален, уже выставленные переменные он не перетирает.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c := Default()

	path := getenv("CONFIG_PATH", "./config.yaml")
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}

	return c, c.Validate()
}

// applyEnv переопределяет поля значениями из окружения.
func (c *Config) applyEnv() error {
	if _, err := env.UnmarshalFromEnviron(c); err != nil {
		return fmt.Errorf("env override: %w", err)
	}
	if _, err := env.UnmarshalFromEnviron(&c.Log); err != nil {
		return fmt.Errorf("env override: %w", err)
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitComma(v)
	}
	if v := os.Getenv("SWEEP_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SWEEP_TTL: %w", err)
		}
		c.SweepTTL = d
	}
	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SWEEP_INTERVAL: %w", err)
		}
		c.SweepInterval = d
	}

	return nil
}

// Validate проверяет обязательные поля.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.StorageRoot) == "" {
		return fmt.Errorf("storage_root is not configured")
	}
	if strings.TrimSpace(c.SpoolDir) == "" {
		return fmt.Errorf("spool_dir is not configured")
	}

	return nil
}

func splitComma(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}

	return def
}
