// Package config loads the service settings from the environment (and an optional
// .env file) and the parser layout from an optional TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"sinapi-service/internal/core/sinapi"
	"sinapi-service/internal/domain"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the service settings.
type Config struct {
	Port             string
	LogLevel         string
	ParserConfigPath string
	MaxUploadMB      int64
	PreviewRows      int
	DetectRows       int
	DetectCols       int
}

// Load reads .env (when present) and the SINAPI_* environment variables.
// Variables already set in the environment take precedence over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("erro ao carregar .env: %w", err)
	}

	cfg := &Config{
		Port:             getEnv("SINAPI_PORT", "8084"),
		LogLevel:         getEnv("SINAPI_LOG_LEVEL", "info"),
		ParserConfigPath: os.Getenv("SINAPI_PARSER_CONFIG"),
	}

	var err error
	if cfg.MaxUploadMB, err = getInt64("SINAPI_MAX_UPLOAD_MB", 64); err != nil {
		return nil, err
	}
	if cfg.PreviewRows, err = getInt("SINAPI_PREVIEW_ROWS", sinapi.DefaultPreviewRows); err != nil {
		return nil, err
	}
	def := sinapi.DefaultDetectOptions()
	if cfg.DetectRows, err = getInt("SINAPI_DETECT_ROWS", def.MaxRows); err != nil {
		return nil, err
	}
	if cfg.DetectCols, err = getInt("SINAPI_DETECT_COLS", def.MaxCols); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EngineOptions converts the settings into ingestion engine options.
func (c *Config) EngineOptions() sinapi.Options {
	detect := sinapi.DefaultDetectOptions()
	detect.MaxRows = c.DetectRows
	detect.MaxCols = c.DetectCols
	return sinapi.Options{Detect: detect, PreviewRows: c.PreviewRows}
}

// LoadParserConfig returns the default layout overlaid with the TOML file at path.
// An empty path yields the defaults.
func LoadParserConfig(path string) (domain.ParserConfig, error) {
	cfg := domain.DefaultParserConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("erro ao ler configuração do parser: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("configuração do parser inválida em %s: %w", path, err)
	}
	return cfg, nil
}

// NewLogger builds a production zap logger at the given level.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("nível de log inválido %q: %w", level, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("variável %s inválida: %w", key, err)
	}
	return n, nil
}

func getInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("variável %s inválida: %w", key, err)
	}
	return n, nil
}
