package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
)

// Config captures the multilogue settings file.
type Config struct {
	StorePath         string
	LogDir            string
	MachineConfigPath string
	Settings          string
	PollInterval      time.Duration
}

// Machine mirrors the machine configuration file.
type Machine struct {
	Token        string `json:"token"`
	TokenHost    string `json:"token_host"`
	InsecureTLS  bool   `json:"insecure_tls"`
	Endpoint     string `json:"endpoint"`
	Model        string `json:"model"`
	Speaker      string `json:"speaker"`
	SystemPrompt string `json:"system_prompt"`
}

const (
	defaultConfigPath  = "~/.config/multilogue/config.toml"
	defaultStorePath   = "~/.local/share/multilogue/store.toml"
	defaultLogDir      = "~/.local/state/multilogue"
	defaultMachinePath = "~/.config/multilogue/machine.jsonc"
	defaultPollSeconds = 2
	defaultTokenPath   = "token"
	logFileName        = "multilogue.log"
)

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return defaultConfigPath
}

// Load locates and parses the config file, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw struct {
		StorePath     string `toml:"store_path"`
		LogDir        string `toml:"log_dir"`
		MachineConfig string `toml:"machine_config"`
		Settings      string `toml:"settings"`
		PollSeconds   int    `toml:"poll_seconds"`
	}

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer func() { _ = file.Close() }()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg := Config{
		StorePath:         mustExpand(orDefault(raw.StorePath, defaultStorePath)),
		LogDir:            mustExpand(orDefault(raw.LogDir, defaultLogDir)),
		MachineConfigPath: mustExpand(orDefault(raw.MachineConfig, defaultMachinePath)),
		Settings:          strings.TrimSpace(raw.Settings),
		PollInterval:      defaultPollSeconds * time.Second,
	}
	if raw.PollSeconds > 0 {
		cfg.PollInterval = time.Duration(raw.PollSeconds) * time.Second
	}
	return cfg, nil
}

// LogPath returns the application log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return filepath.Join(mustExpand(defaultLogDir), logFileName)
	}
	return filepath.Join(c.LogDir, logFileName)
}

// LoadMachine parses the JSONC machine config. A missing file yields defaults.
func LoadMachine(path string) (Machine, error) {
	m := Machine{Token: defaultTokenPath}
	resolved, err := expandPath(orDefault(path, defaultMachinePath))
	if err != nil {
		return m, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m, nil
		}
		return m, fmt.Errorf("read machine config: %w", err)
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return Machine{Token: defaultTokenPath}, fmt.Errorf("parse machine config: %w", err)
	}
	m.Token = orDefault(m.Token, defaultTokenPath)
	m.TokenHost = strings.TrimSpace(m.TokenHost)
	m.Endpoint = strings.TrimSpace(m.Endpoint)
	m.Model = strings.TrimSpace(m.Model)
	m.Speaker = strings.TrimSpace(m.Speaker)
	return m, nil
}

// ExpandPath expands a leading "~" and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func orDefault(value, def string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return def
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
