package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("POLISH_CONFIG_DIR", t.TempDir())

	cfg := DefaultConfig()
	cfg.APIKey = "secret-key"
	cfg.Theme = ThemeLight
	cfg.Timeout = 90 * time.Second
	cfg.Sandbox = &SandboxConfig{Enabled: true, Provider: "ollama", Model: "llama3.2"}
	require.NoError(t, cfg.Save())
	assert.True(t, Exists())

	got, err := Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, cfg, got)

	path, err := ConfigPath()
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadMissing(t *testing.T) {
	t.Setenv("POLISH_CONFIG_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Nil(t, cfg)
	assert.False(t, Exists())
}

func TestLoadFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("POLISH_CONFIG_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("provider: openai\ntheme: neon\n"), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, ThemeDark, cfg.Theme)
	assert.Equal(t, DefaultHistoryLimit, cfg.HistoryLimit)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		base *Config
		want func(t *testing.T, c *Config)
	}{
		{
			name: "gemini key fallback",
			env:  map[string]string{"GEMINI_API_KEY": "g-key"},
			base: DefaultConfig(),
			want: func(t *testing.T, c *Config) {
				assert.Equal(t, "g-key", c.APIKey)
			},
		},
		{
			name: "polish key wins",
			env:  map[string]string{"GEMINI_API_KEY": "g-key", "POLISH_API_KEY": "p-key"},
			base: DefaultConfig(),
			want: func(t *testing.T, c *Config) {
				assert.Equal(t, "p-key", c.APIKey)
			},
		},
		{
			name: "provider switch",
			env:  map[string]string{"POLISH_PROVIDER": "ollama", "POLISH_MODEL": "qwen2.5:7b", "GEMINI_API_KEY": "g-key"},
			base: DefaultConfig(),
			want: func(t *testing.T, c *Config) {
				assert.Equal(t, "ollama", c.Provider)
				assert.Equal(t, "qwen2.5:7b", c.Model)
				assert.Empty(t, c.APIKey)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"POLISH_PROVIDER", "POLISH_MODEL", "POLISH_API_KEY", "POLISH_BASE_URL", "GEMINI_API_KEY"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			tt.base.ApplyEnv()
			tt.want(t, tt.base)
		})
	}
}

func TestResolveReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("POLISH_CONFIG_DIR", dir)
	// godotenv never overrides a variable that is present, even when empty
	t.Setenv("POLISH_API_KEY", "")
	require.NoError(t, os.Unsetenv("POLISH_API_KEY"))
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("POLISH_API_KEY=from-dotenv\n"), 0600))

	cfg, found, err := Resolve()
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "from-dotenv", cfg.APIKey)
}

func TestReady(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"gemini without key", Config{Provider: "gemini"}, false},
		{"gemini with key", Config{Provider: "gemini", APIKey: "k"}, true},
		{"ollama", Config{Provider: "ollama"}, true},
		{"custom without url", Config{Provider: "custom"}, false},
		{"custom with url", Config{Provider: "custom", BaseURL: "http://localhost:8080/v1"}, true},
		{"unknown", Config{Provider: "nope"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Ready())
		})
	}
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "", MaskKey(""))
	assert.Equal(t, "****", MaskKey("abc"))
	assert.Equal(t, "****wxyz", MaskKey("sk-abcdwxyz"))
}
