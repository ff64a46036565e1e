package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Gemini  GeminiConfig
	Storage StorageConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port  int
	Token string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4700,
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from an optional .env file in the working
// directory, the JSON config file at $XDG_CONFIG_HOME/cikgu/config.json,
// and CIKGU_* environment variables, in increasing priority. The Gemini
// API key is required. A missing API bearer token is generated and
// written back to the config file so restarts keep the same token.
func Load() (Config, error) {
	// A missing .env is the normal case, not an error.
	_ = godotenv.Load()
	return loadWith(newFileBackend(configFilePath()))
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.Gemini.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: Gemini API key. " +
			"Set it via environment variable CIKGU_GEMINI_API_KEY or gemini.api_key in the config file")
	}

	if cfg.Server.Token == "" {
		token, err := generateToken()
		if err != nil {
			return Config{}, fmt.Errorf("generating API token: %w", err)
		}
		if err := b.SetString("server.token", token); err != nil {
			return Config{}, fmt.Errorf("persisting API token: %w", err)
		}
		cfg.Server.Token = token
	}

	return cfg, nil
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "cikgu-data"
		}
	}
	return filepath.Join(dir, "cikgu")
}

func configFilePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "cikgu", "config.json")
}
