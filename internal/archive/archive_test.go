package archive_test

import (
	"archive/tar"
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lode-build/lode/internal/archive"
)

// writeZip builds a zip archive. Names ending in "/" become directory
// entries.
func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	names := sortedKeys(files)
	for _, name := range names {
		if name[len(name)-1] == '/' {
			_, err := zw.Create(name)
			require.NoError(t, err)
			continue
		}
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func writeTarball(t *testing.T, path string, files map[string]string, compress string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	var w io.WriteCloser
	switch compress {
	case "gzip":
		w = gzip.NewWriter(f)
	case "zstd":
		zw, err := zstd.NewWriter(f)
		require.NoError(t, err)
		w = zw
	default:
		w = f
	}

	tw := tar.NewWriter(w)
	for _, name := range sortedKeys(files) {
		if name[len(name)-1] == '/' {
			require.NoError(t, tw.WriteHeader(&tar.Header{
				Name: name, Typeflag: tar.TypeDir, Mode: 0o755,
			}))
			continue
		}
		content := files[name]
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name, Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	if w != f {
		require.NoError(t, w.Close())
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func readEntries(t *testing.T, r *archive.Reader) (dirs []string, files map[string]string) {
	t.Helper()
	files = make(map[string]string)
	for _, e := range r.Entries() {
		if e.IsDir {
			dirs = append(dirs, e.Name)
			continue
		}
		rc, err := e.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		files[e.Name] = string(data)
	}
	return dirs, files
}

var fixture = map[string]string{
	"pkg/":            "",
	"pkg/lode.json":   `{"name":"pkg"}`,
	"pkg/src/":        "",
	"pkg/src/main.go": "package main\n",
}

func TestOpenZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkg.zip")
	writeZip(t, path, fixture)

	r, err := archive.Open(path)
	require.NoError(t, err)
	defer r.Close()

	dirs, files := readEntries(t, r)
	assert.ElementsMatch(t, []string{"pkg/", "pkg/src/"}, dirs)
	assert.Equal(t, `{"name":"pkg"}`, files["pkg/lode.json"])
	assert.Equal(t, "package main\n", files["pkg/src/main.go"])
}

func TestOpenTarball(t *testing.T) {
	for _, compress := range []string{"none", "gzip", "zstd"} {
		t.Run(compress, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "pkg.tar")
			writeTarball(t, path, fixture, compress)

			r, err := archive.Open(path)
			require.NoError(t, err)
			defer r.Close()

			dirs, files := readEntries(t, r)
			assert.ElementsMatch(t, []string{"pkg/", "pkg/src/"}, dirs)
			assert.Equal(t, "package main\n", files["pkg/src/main.go"])
		})
	}
}

func TestOpenUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkg.txt")
	require.NoError(t, os.WriteFile(path, []byte("just text, not an archive"), 0o644))

	_, err := archive.Open(path)
	assert.Error(t, err)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := archive.Open(filepath.Join(t.TempDir(), "nope.zip"))
	assert.Error(t, err)
}

func TestDepth(t *testing.T) {
	assert.Equal(t, 0, archive.Depth(""))
	assert.Equal(t, 0, archive.Depth("/"))
	assert.Equal(t, 1, archive.Depth("lode.json"))
	assert.Equal(t, 1, archive.Depth("pkg/"))
	assert.Equal(t, 2, archive.Depth("pkg/lode.json"))
	assert.Equal(t, 3, archive.Depth("pkg/src/main.go"))
}
