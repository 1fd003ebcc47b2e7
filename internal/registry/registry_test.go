package registry_test

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lode-build/lode/internal/logging"
	"github.com/lode-build/lode/internal/registry"
	"github.com/lode-build/lode/internal/version"
)

// newTestManager creates a manager over two fresh repository roots.
func newTestManager(t *testing.T) (m *registry.Manager, userRoot, systemRoot string) {
	t.Helper()
	userRoot = t.TempDir()
	systemRoot = t.TempDir()
	m = registry.New(registry.Settings{
		UserRoot:   userRoot,
		SystemRoot: systemRoot,
	}, logging.NewNop())
	return m, userRoot, systemRoot
}

// writePackage creates a package directory with a descriptor under parent
// and returns its path.
func writePackage(t *testing.T, parent, dirName, name, ver string) string {
	t.Helper()
	dir := filepath.Join(parent, dirName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	descriptor := fmt.Sprintf(`{"name": %q, "version": %q}`+"\n", name, ver)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lode.json"), []byte(descriptor), 0o644))
	return dir
}

// installPackage seeds an installable package under the repository's
// packages directory and returns its path.
func installPackage(t *testing.T, root, name, ver string) string {
	t.Helper()
	return writePackage(t, filepath.Join(root, "packages"), name+"-"+ver, name, ver)
}

// writeZip builds a zip archive at path. Names ending in "/" become
// directory entries; map iteration is sorted so archives are reproducible.
func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
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

// packageArchive builds the typical source-hosting export: everything
// wrapped in one top-level folder, descriptor carrying a placeholder
// version.
func packageArchive(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "vecmath.zip")
	writeZip(t, path, map[string]string{
		"vecmath-export/":            "",
		"vecmath-export/lode.json":   `{"name": "VecMath", "version": "~selected-on-download", "license": "MIT"}`,
		"vecmath-export/src/":        "",
		"vecmath-export/src/vec.go":  "package vecmath\n",
		"vecmath-export/src/mat.go":  "package vecmath\n",
		"vecmath-export/docs/":       "",
		"vecmath-export/docs/api.md": "# API\n",
		"vecmath-export/README.md":   "readme\n",
	})
	return path
}

func v(t *testing.T, s string) version.Version {
	t.Helper()
	ver, err := version.Parse(s)
	require.NoError(t, err)
	return ver
}
