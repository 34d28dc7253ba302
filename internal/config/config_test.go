package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg == nil {
		t.Fatal("expected config, got nil")
	}

	if cfg.Logging.Level == "" {
		t.Error("expected default log level, got empty")
	}

	if cfg.Paths.DataDir == "" {
		t.Error("expected default data_dir, got empty")
	}
}

func TestLoadWith_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadWith(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "abort", cfg.Extract.ErrorPolicy)
	assert.False(t, cfg.Extract.IgnoreCase)
	assert.True(t, cfg.Extract.History)
	assert.Equal(t, "vsixextract-", cfg.Extract.TempPrefix)
	assert.Equal(t, "history.db", filepath.Base(cfg.Paths.DBFile))
	assert.Equal(t, "vsixextract.lock", filepath.Base(cfg.Paths.LockFile))
}

func TestLoadWith_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := `
[extract]
error_policy = "continue"
ignore_case = true

[logging]
level = "debug"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	cfg, err := LoadWith(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "continue", cfg.Extract.ErrorPolicy)
	assert.True(t, cfg.Extract.IgnoreCase)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadWith_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VSIXEXTRACT_LOGGING_LEVEL", "warn")

	cfg, err := LoadWith(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestExpandPath(t *testing.T) {
	homeDir, _ := os.UserHomeDir()
	t.Setenv("VSIXEXTRACT_TEST_DIR", "/opt/vs")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty path",
			input: "",
			want:  "",
		},
		{
			name:  "absolute path",
			input: "/usr/local/bin",
			want:  "/usr/local/bin",
		},
		{
			name:  "home expansion",
			input: "~/test",
			want:  filepath.Join(homeDir, "test"),
		},
		{
			name:  "env expansion",
			input: "$VSIXEXTRACT_TEST_DIR/history.db",
			want:  "/opt/vs/history.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expandPath(tt.input)
			if got != tt.want {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
