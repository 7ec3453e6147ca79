package console

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Config — настройки консоли. Файл конфигурации — JSONC: комментарии и
// висячие запятые допустимы.
type Config struct {
	// APIBaseURL — адрес API-сервера, без завершающего слэша.
	APIBaseURL string `json:"api_base_url"`
	// SessionFile — путь к файлу с access-токеном.
	SessionFile string `json:"session_file"`
	// HistoryFile — путь к истории команд.
	HistoryFile string `json:"history_file"`
}

// DefaultConfigPath возвращает путь к файлу конфигурации по умолчанию:
// $XDG_CONFIG_HOME/salesconsole/config.json или ~/.config/salesconsole/config.json.
func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "salesconsole", "config.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "salesconsole", "config.json")
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		APIBaseURL:  "http://localhost:8080",
		SessionFile: filepath.Join(home, ".config", "salesconsole", "session"),
		HistoryFile: filepath.Join(home, ".config", "salesconsole", "history"),
	}
}

// LoadConfig читает конфигурацию из файла поверх значений по умолчанию.
// Отсутствующий файл — не ошибка. Переменная окружения SALES_CONSOLE_API_URL
// имеет приоритет над файлом.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Работаем на значениях по умолчанию.
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			standardized, err := hujson.Standardize(data)
			if err != nil {
				return Config{}, fmt.Errorf("invalid JSONC in %s: %w", path, err)
			}
			if err := json.Unmarshal(standardized, &cfg); err != nil {
				return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv("SALES_CONSOLE_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}

	if cfg.APIBaseURL == "" {
		return Config{}, fmt.Errorf("api_base_url must not be empty")
	}
	return cfg, nil
}
