package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"undoCalc/internal/api/http"
	"undoCalc/internal/domain"
	"undoCalc/internal/history"
	"undoCalc/internal/infrastructure/click"
	"undoCalc/internal/infrastructure/kafka"
	"undoCalc/internal/infrastructure/mongo"
	"undoCalc/internal/infrastructure/pg"
	"undoCalc/internal/infrastructure/redis"
)

const AppName = "CALCULATOR"

const (
	defaultLogName     = "calculator.log"
	defaultHistoryName = "calculator_history.csv"
)

// Flag — логический флаг окружения. Принимает 1/true/yes/on и 0/false/no/off в любом регистре.
type Flag bool

// Decode реализует envconfig.Decoder.
func (f *Flag) Decode(value string) error {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on", "y":
		*f = true
	case "", "0", "false", "no", "off", "n":
		*f = false
	default:
		return fmt.Errorf("invalid boolean %q", value)
	}
	return nil
}

// Config — конфиг приложения. Заполняется через envconfig с префиксом CALCULATOR.
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogDir   string `envconfig:"LOG_DIR" default:"logs"`
	LogFile  string `envconfig:"LOG_FILE"`

	HistoryDir        string `envconfig:"HISTORY_DIR" default:"history"`
	HistoryFile       string `envconfig:"HISTORY_FILE"`
	LegacyHistoryPath string `envconfig:"LEGACY_HISTORY_PATH"`
	LoadOnStart       Flag   `envconfig:"LOAD_ON_START" default:"false"`

	AutoSave     Flag   `envconfig:"AUTO_SAVE" default:"false"`
	AutoSavePath string `envconfig:"AUTO_SAVE_PATH"`

	MaxHistorySize int     `envconfig:"MAX_HISTORY_SIZE" default:"1000"`
	MaxUndoDepth   int     `envconfig:"MAX_UNDO_DEPTH" default:"0"`
	Precision      int     `envconfig:"PRECISION" default:"10"`
	MaxInputValue  float64 `envconfig:"MAX_INPUT_VALUE" default:"1e10"`
	Encoding       string  `envconfig:"DEFAULT_ENCODING" default:"utf-8"`

	Server     http.ServerConfig `envconfig:"SERVER"`
	DB         pg.Config         `envconfig:"DB"`
	Mongo      mongo.Config      `envconfig:"MONGO"`
	Redis      redis.Config      `envconfig:"REDIS"`
	Kafka      kafka.Config      `envconfig:"KAFKA"`
	ClickHouse click.Config      `envconfig:"CLICKHOUSE"`
}

// LoadCfg загружает конфиг: подтягивает .env (godotenv), заполняет структуру из окружения (envconfig),
// выводит производные пути и проверяет значения. Любая ошибка оборачивает domain.ErrConfiguration.
func LoadCfg(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("%w: env file: %v", domain.ErrConfiguration, err)
	}

	var cfg Config
	if err := envconfig.Process(AppName, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	cfg.applyDerived()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyDerived заполняет пути, которые по умолчанию зависят от каталогов.
func (c *Config) applyDerived() {
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.LogDir, defaultLogName)
	}
	if c.HistoryFile == "" {
		c.HistoryFile = filepath.Join(c.HistoryDir, defaultHistoryName)
	}
	if c.AutoSavePath == "" {
		c.AutoSavePath = c.HistoryFile
	}
}

// Validate проверяет значения и создаёт каталоги логов, истории и автосохранения.
func (c *Config) Validate() error {
	switch {
	case c.MaxHistorySize <= 0:
		return fmt.Errorf("%w: MAX_HISTORY_SIZE must be positive, got %d", domain.ErrConfiguration, c.MaxHistorySize)
	case c.MaxUndoDepth < 0:
		return fmt.Errorf("%w: MAX_UNDO_DEPTH must not be negative, got %d", domain.ErrConfiguration, c.MaxUndoDepth)
	case c.Precision < 0:
		return fmt.Errorf("%w: PRECISION must not be negative, got %d", domain.ErrConfiguration, c.Precision)
	case c.MaxInputValue <= 0:
		return fmt.Errorf("%w: MAX_INPUT_VALUE must be positive, got %g", domain.ErrConfiguration, c.MaxInputValue)
	}
	if _, err := history.LookupEncoding(c.Encoding); err != nil {
		return err
	}

	dirs := []struct {
		key, path string
	}{
		{"LOG_DIR", c.LogDir},
		{"LOG_FILE", filepath.Dir(c.LogFile)},
		{"HISTORY_DIR", c.HistoryDir},
		{"HISTORY_FILE", filepath.Dir(c.HistoryFile)},
		{"AUTO_SAVE_PATH", filepath.Dir(c.AutoSavePath)},
	}
	for _, d := range dirs {
		if d.path == "" {
			continue
		}
		if err := os.MkdirAll(d.path, 0o755); err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrConfiguration, d.key, err)
		}
	}
	return nil
}
