package cmd

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/quantmind-br/vsixextract/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// writeVSIX writes a zip archive with the given entries to path
func writeVSIX(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dataDir := t.TempDir()
	return &config.Config{
		Paths: config.PathsConfig{
			DataDir:  dataDir,
			DBFile:   filepath.Join(dataDir, "history.db"),
			LockFile: filepath.Join(dataDir, "vsixextract.lock"),
		},
		Extract: config.ExtractConfig{
			ErrorPolicy: "abort",
			TempPrefix:  "vsixextract-test-",
			History:     true,
		},
	}
}

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
