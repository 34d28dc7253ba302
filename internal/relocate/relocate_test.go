package relocate

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/quantmind-br/vsixextract/internal/manifest"
	"github.com/quantmind-br/vsixextract/internal/pathtmpl"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRelocator(fs afero.Fs) *Relocator {
	log := zerolog.Nop()
	return New(fs, &log)
}

func createManifestWithContent(t *testing.T, fs afero.Fs, dir, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, manifest.FileName), []byte(content), 0644))
}

func TestRelocate_NoExtensionDirCopiesContentsFolder(t *testing.T) {
	fs := afero.NewMemMapFs()
	createManifestWithContent(t, fs, "/source", "{}")
	require.NoError(t, afero.WriteFile(fs, "/source/Contents/Common7/somefile.txt", []byte("successfully moved!!!"), 0644))

	result, err := newTestRelocator(fs).Relocate(context.Background(), "/source", "/target")
	require.NoError(t, err)

	assert.Equal(t, StrategyContents, result.Strategy)
	assert.Equal(t, "/target", result.Destination)
	assert.Equal(t, 1, result.Files)

	content, err := afero.ReadFile(fs, "/target/Common7/somefile.txt")
	require.NoError(t, err)
	assert.Equal(t, "successfully moved!!!", string(content))

	exists, _ := afero.Exists(fs, "/target/Contents")
	assert.False(t, exists, "Contents itself must not be copied")
	exists, _ = afero.Exists(fs, "/target/manifest.json")
	assert.False(t, exists, "manifest is outside Contents")
}

func TestRelocate_NoExtensionDirNoContentsIsNoop(t *testing.T) {
	fs := afero.NewMemMapFs()
	createManifestWithContent(t, fs, "/source", "{}")
	require.NoError(t, afero.WriteFile(fs, "/source/other/file.txt", []byte("ignored"), 0644))

	result, err := newTestRelocator(fs).Relocate(context.Background(), "/source", "/target")
	require.NoError(t, err)
	assert.Equal(t, StrategyNone, result.Strategy)
	assert.Zero(t, result.Files)

	entries, err := afero.ReadDir(fs, "/target")
	require.NoError(t, err, "target root must be created")
	assert.Empty(t, entries)
}

func TestRelocate_ExtensionDirMovesAllContent(t *testing.T) {
	target := filepath.Join(t.TempDir(), "target")
	source := t.TempDir()
	fs := afero.NewOsFs()

	createManifestWithContent(t, fs, source, `{"extensionDir": "[installdir]\\nested_dir"}`)
	require.NoError(t, fs.MkdirAll(filepath.Join(source, "otherDirectory"), 0755))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(source, "otherDirectory", "somefile.txt"), []byte("another success!!!"), 0644))

	result, err := newTestRelocator(fs).Relocate(context.Background(), source, target)
	require.NoError(t, err)

	assert.Equal(t, StrategyExtensionDir, result.Strategy)
	assert.Equal(t, filepath.Join(target, "nested_dir"), result.Destination)
	assert.Equal(t, 2, result.Files)

	content, err := afero.ReadFile(fs, filepath.Join(target, "nested_dir", "otherDirectory", "somefile.txt"))
	require.NoError(t, err)
	assert.Equal(t, "another success!!!", string(content))

	exists, _ := afero.Exists(fs, filepath.Join(target, "nested_dir", manifest.FileName))
	assert.True(t, exists, "the whole payload is copied, manifest included")
}

func TestRelocate_ManifestWithBOM(t *testing.T) {
	fs := afero.NewMemMapFs()
	createManifestWithContent(t, fs, "/source", "\uFEFF{\"extensionDir\": \"[installdir]\\\\nested_dir\"}")
	require.NoError(t, afero.WriteFile(fs, "/source/otherDirectory/somefile.txt", []byte("another success!!!"), 0644))

	_, err := newTestRelocator(fs).Relocate(context.Background(), "/source", "/target")
	require.NoError(t, err)

	content, err := afero.ReadFile(fs, "/target/nested_dir/otherDirectory/somefile.txt")
	require.NoError(t, err)
	assert.Equal(t, "another success!!!", string(content))
}

func TestRelocate_OverwritesAndMerges(t *testing.T) {
	fs := afero.NewMemMapFs()
	createManifestWithContent(t, fs, "/source", "{}")
	require.NoError(t, afero.WriteFile(fs, "/source/Contents/shared/a.txt", []byte("new"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/target/shared/a.txt", []byte("old"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/target/shared/b.txt", []byte("untouched"), 0644))

	_, err := newTestRelocator(fs).Relocate(context.Background(), "/source", "/target")
	require.NoError(t, err)

	a, err := afero.ReadFile(fs, "/target/shared/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "new", string(a))

	b, err := afero.ReadFile(fs, "/target/shared/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "untouched", string(b))
}

func TestRelocate_Errors(t *testing.T) {
	t.Run("missing manifest", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/source", 0755))

		_, err := newTestRelocator(fs).Relocate(context.Background(), "/source", "/target")
		assert.ErrorIs(t, err, ErrRelocate)
		assert.ErrorIs(t, err, manifest.ErrManifestNotFound)
	})

	t.Run("invalid manifest", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		createManifestWithContent(t, fs, "/source", "{not json")

		_, err := newTestRelocator(fs).Relocate(context.Background(), "/source", "/target")
		assert.ErrorIs(t, err, ErrRelocate)
		assert.ErrorIs(t, err, manifest.ErrInvalidManifest)
	})

	t.Run("extension dir escaping the root", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		createManifestWithContent(t, fs, "/source", `{"extensionDir": "[installdir]\\..\\..\\etc"}`)

		_, err := newTestRelocator(fs).Relocate(context.Background(), "/source", "/target")
		assert.ErrorIs(t, err, ErrRelocate)
		assert.ErrorIs(t, err, pathtmpl.ErrEscapesInstallRoot)
	})

	t.Run("read-only filesystem", func(t *testing.T) {
		base := afero.NewMemMapFs()
		createManifestWithContent(t, base, "/source", "{}")
		fs := afero.NewReadOnlyFs(base)

		_, err := newTestRelocator(fs).Relocate(context.Background(), "/source", "/target")
		assert.ErrorIs(t, err, ErrRelocate)
		assert.NotErrorIs(t, err, ErrPathTooLong)
	})

	t.Run("path too long", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("long path behaviour differs on windows")
		}
		fs := afero.NewOsFs()
		source := t.TempDir()
		longSegment := strings.Repeat("a", 300)
		createManifestWithContent(t, fs, source, `{"extensionDir": "[installdir]\\`+longSegment+`"}`)

		_, err := newTestRelocator(fs).Relocate(context.Background(), source, t.TempDir())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRelocate)
		assert.ErrorIs(t, err, ErrPathTooLong)
		assert.Contains(t, err.Error(), "path-length limit")
	})
}
