package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultHistoryLimit = 50
	DefaultTimeout      = 60 * time.Second

	ThemeDark  = "dark"
	ThemeLight = "light"
)

type Config struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key,omitempty"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url,omitempty"`

	// RequestsPerMinute caps outbound model calls; zero disables the limit.
	RequestsPerMinute int           `yaml:"requests_per_minute,omitempty"`
	Timeout           time.Duration `yaml:"timeout,omitempty"`

	Theme        string `yaml:"theme,omitempty"`
	HistoryLimit int    `yaml:"history_limit,omitempty"`
	LogLevel     string `yaml:"log_level,omitempty"`

	// Sandbox optionally routes prompt tests to a different provider.
	Sandbox *SandboxConfig `yaml:"sandbox,omitempty"`
}

type SandboxConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key,omitempty"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Provider:     "gemini",
		Model:        "gemini-1.5-flash",
		Timeout:      DefaultTimeout,
		Theme:        ThemeDark,
		HistoryLimit: DefaultHistoryLimit,
		LogLevel:     "info",
	}
}

// applyDefaults fills fields a hand-edited file may have left out.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Provider == "" {
		c.Provider = d.Provider
	}
	if c.Model == "" {
		if p := GetProvider(c.Provider); p != nil {
			c.Model = p.DefaultModel
		}
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.Theme != ThemeLight {
		c.Theme = ThemeDark
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = d.HistoryLimit
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// ConfigDir is ~/.config/polish unless POLISH_CONFIG_DIR is set.
func ConfigDir() (string, error) {
	if dir := os.Getenv("POLISH_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "polish"), nil
}

func ConfigPath() (string, error) {
	return inConfigDir("config.yaml")
}

func HistoryPath() (string, error) {
	return inConfigDir("history.db")
}

func LogPath() (string, error) {
	return inConfigDir("polish.log")
}

// TemplatesDir holds user-supplied prompt templates.
func TemplatesDir() (string, error) {
	return inConfigDir("templates")
}

func inConfigDir(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func Exists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads the config file. It returns nil, nil when no file exists yet.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// LoadEnv reads .env from the working directory and the config dir.
// Variables already present in the environment win.
func LoadEnv() error {
	var files []string
	if _, err := os.Stat(".env"); err == nil {
		files = append(files, ".env")
	}
	if path, err := inConfigDir(".env"); err == nil {
		if _, err := os.Stat(path); err == nil {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		return nil
	}
	return godotenv.Load(files...)
}

// ApplyEnv overlays POLISH_* variables on c. GEMINI_API_KEY fills the key
// for the gemini provider when nothing else set one.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("POLISH_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("POLISH_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("POLISH_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("POLISH_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if c.APIKey == "" && c.Provider == "gemini" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	c.applyDefaults()
}

// Resolve loads the file, falls back to defaults and applies the environment.
// The boolean reports whether a config file was found.
func Resolve() (*Config, bool, error) {
	if err := LoadEnv(); err != nil {
		return nil, false, err
	}
	cfg, err := Load()
	if err != nil {
		return nil, false, err
	}
	found := cfg != nil
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.ApplyEnv()
	return cfg, found, nil
}

func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Ready reports whether the configured provider has the credentials it needs.
func (c *Config) Ready() bool {
	p := GetProvider(c.Provider)
	if p == nil {
		return false
	}
	if p.NeedsAPIKey && c.APIKey == "" {
		return false
	}
	if p.NeedsBaseURL && c.BaseURL == "" {
		return false
	}
	return true
}

// MaskKey hides all but the last four characters of an API key.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
