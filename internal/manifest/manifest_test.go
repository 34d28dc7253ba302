package manifest

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		wantDir string
		wantSet bool
		wantErr bool
	}{
		{
			name:    "extension dir",
			input:   []byte(`{"extensionDir": "extension\\dir"}`),
			wantDir: `extension\dir`,
			wantSet: true,
		},
		{
			name:  "empty object",
			input: []byte(`{}`),
		},
		{
			name:  "explicit null",
			input: []byte(`{"extensionDir": null}`),
		},
		{
			name:    "empty string is present",
			input:   []byte(`{"extensionDir": ""}`),
			wantDir: "",
			wantSet: true,
		},
		{
			name:    "other fields ignored",
			input:   []byte(`{"id":"Microsoft.CodeAnalysis","version":"3.10","extensionDir":"[installdir]\\Common7","payloads":[{"fileName":"a.vsix"}]}`),
			wantDir: `[installdir]\Common7`,
			wantSet: true,
		},
		{
			name:    "utf8 bom",
			input:   append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"extensionDir": "[installdir]\\nested_dir"}`)...),
			wantDir: `[installdir]\nested_dir`,
			wantSet: true,
		},
		{
			name:    "utf16le bom",
			input:   []byte{0xFF, 0xFE, '{', 0, '"', 0, 'e', 0, 'x', 0, 't', 0, 'e', 0, 'n', 0, 's', 0, 'i', 0, 'o', 0, 'n', 0, 'D', 0, 'i', 0, 'r', 0, '"', 0, ':', 0, '"', 0, 'x', 0, '"', 0, '}', 0},
			wantDir: "x",
			wantSet: true,
		},
		{
			name:    "invalid json",
			input:   []byte(`{"extensionDir": `),
			wantErr: true,
		},
		{
			name:    "wrong type",
			input:   []byte(`{"extensionDir": 42}`),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidManifest)
				return
			}
			require.NoError(t, err)

			dir, ok := m.ExtensionDir()
			assert.Equal(t, tt.wantSet, ok)
			assert.Equal(t, tt.wantDir, dir)
		})
	}
}

func TestParse_BOMIsTransparent(t *testing.T) {
	plain := []byte(`{"extensionDir": "[installdir]\\nested_dir"}`)
	withBOM := append([]byte("\uFEFF"), plain...)

	a, err := Parse(plain)
	require.NoError(t, err)
	b, err := Parse(withBOM)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestNew(t *testing.T) {
	dir := `extension\dir`
	assert.Equal(t, New(&dir), &Manifest{ExtensionDirField: &dir})

	_, ok := New(nil).ExtensionDir()
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	t.Run("reads manifest.json", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/payload/manifest.json", []byte(`{"extensionDir":"x"}`), 0644))

		m, err := Load(fs, "/payload")
		require.NoError(t, err)

		dir, ok := m.ExtensionDir()
		assert.True(t, ok)
		assert.Equal(t, "x", dir)
	})

	t.Run("missing manifest", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/payload", 0755))

		_, err := Load(fs, "/payload")
		assert.ErrorIs(t, err, ErrManifestNotFound)
	})

	t.Run("unparsable manifest", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/payload/manifest.json", []byte("not json"), 0644))

		_, err := Load(fs, "/payload")
		assert.ErrorIs(t, err, ErrInvalidManifest)
	})
}
