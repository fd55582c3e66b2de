package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const (
	configDir      = ".colecta"
	configFileName = "config.json"
)

// Config is the CLI configuration stored at ~/.colecta/config.json.
type Config struct {
	// BackendURL is the sync backend base URL. Empty means local-only use.
	BackendURL string `json:"backend_url"`
	// APIKey is the backend's anonymous API key.
	APIKey string `json:"api_key"`
	// OMDBAPIKey enables movie lookups in `colecta search`.
	OMDBAPIKey string `json:"omdb_api_key,omitempty"`
	// DataDir overrides the local snapshot directory (defaults to ~/.colecta).
	DataDir string `json:"data_dir,omitempty"`
}

// GetConfigPath returns the path to the config file (~/.colecta/config.json).
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir, configFileName), nil
}

// LoadConfig reads the config file, applying environment overrides. A
// missing file yields an empty config rather than an error.
func LoadConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("COLECTA_BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv("COLECTA_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("OMDB_API_KEY"); v != "" {
		cfg.OMDBAPIKey = v
	}

	return cfg, nil
}

// SaveConfig writes the config file, creating the directory if needed.
func SaveConfig(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
