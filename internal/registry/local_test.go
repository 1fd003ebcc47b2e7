package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lode-build/lode/internal/logging"
	"github.com/lode-build/lode/internal/registry"
)

func TestAddLocalPersists(t *testing.T) {
	m, userRoot, systemRoot := newTestManager(t)
	checkout := writePackage(t, t.TempDir(), "checkout", "mylib", "1.0.0")

	pkg, err := m.AddLocal(checkout, v(t, "~dev"), registry.LocationUser)
	require.NoError(t, err)
	assert.Equal(t, "mylib", pkg.Name())
	assert.Equal(t, "~dev", pkg.Version().String(), "registration version overrides the descriptor")

	// A fresh manager over the same roots sees the registration.
	fresh := registry.New(registry.Settings{UserRoot: userRoot, SystemRoot: systemRoot}, logging.NewNop())
	p := fresh.Get("mylib", v(t, "~dev"))
	require.NotNil(t, p)
	assert.Equal(t, checkout, p.Path())
}

func TestAddLocalWithoutDescriptor(t *testing.T) {
	m, _, _ := newTestManager(t)
	dir := filepath.Join(t.TempDir(), "BareTree")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	pkg, err := m.AddLocal(dir, v(t, "1.0.0"), registry.LocationUser)
	require.NoError(t, err)
	assert.Equal(t, "baretree", pkg.Name(), "name falls back to the lower-cased directory name")
}

func TestAddLocalIdempotent(t *testing.T) {
	m, _, _ := newTestManager(t)
	checkout := writePackage(t, t.TempDir(), "checkout", "mylib", "1.0.0")

	first, err := m.AddLocal(checkout, v(t, "1.0.0"), registry.LocationUser)
	require.NoError(t, err)
	second, err := m.AddLocal(checkout, v(t, "1.0.0"), registry.LocationUser)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Len(t, m.Repository(registry.LocationUser).LocalPackages(), 1)
}

func TestAddLocalVersionConflict(t *testing.T) {
	m, _, _ := newTestManager(t)
	checkout := writePackage(t, t.TempDir(), "checkout", "mylib", "1.0.0")

	_, err := m.AddLocal(checkout, v(t, "1.0.0"), registry.LocationUser)
	require.NoError(t, err)
	_, err = m.AddLocal(checkout, v(t, "2.0.0"), registry.LocationUser)
	assert.ErrorIs(t, err, registry.ErrVersionConflict)
}

func TestRemoveLocal(t *testing.T) {
	m, userRoot, systemRoot := newTestManager(t)
	checkout := writePackage(t, t.TempDir(), "checkout", "mylib", "1.0.0")

	_, err := m.AddLocal(checkout, v(t, "1.0.0"), registry.LocationUser)
	require.NoError(t, err)
	require.NoError(t, m.RemoveLocal(checkout, registry.LocationUser))
	assert.Empty(t, m.Repository(registry.LocationUser).LocalPackages())

	// The removal is persisted.
	fresh := registry.New(registry.Settings{UserRoot: userRoot, SystemRoot: systemRoot}, logging.NewNop())
	assert.Nil(t, fresh.Get("mylib", v(t, "1.0.0")))

	// The checkout itself is untouched; only the registration is gone.
	_, statErr := os.Stat(filepath.Join(checkout, "lode.json"))
	assert.NoError(t, statErr)

	err = m.RemoveLocal(checkout, registry.LocationUser)
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestRemoveLocalWrongRepository(t *testing.T) {
	m, _, _ := newTestManager(t)
	checkout := writePackage(t, t.TempDir(), "checkout", "mylib", "1.0.0")

	_, err := m.AddLocal(checkout, v(t, "1.0.0"), registry.LocationUser)
	require.NoError(t, err)
	err = m.RemoveLocal(checkout, registry.LocationSystem)
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestSearchPathPersistence(t *testing.T) {
	m, userRoot, systemRoot := newTestManager(t)
	scanRoot := t.TempDir()
	writePackage(t, scanRoot, "dep", "dep", "1.0.0")

	require.NoError(t, m.AddSearchPath(scanRoot, registry.LocationUser))
	m.Refresh(false)
	require.NotNil(t, m.Get("dep", v(t, "1.0.0")))

	fresh := registry.New(registry.Settings{UserRoot: userRoot, SystemRoot: systemRoot}, logging.NewNop())
	require.NotNil(t, fresh.Get("dep", v(t, "1.0.0")))

	require.NoError(t, fresh.RemoveSearchPath(scanRoot, registry.LocationUser))
	fresh.Refresh(false)
	assert.Nil(t, fresh.Get("dep", v(t, "1.0.0")))

	err := fresh.RemoveSearchPath(scanRoot, registry.LocationUser)
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestLocalPackageListWireFormat(t *testing.T) {
	m, userRoot, _ := newTestManager(t)
	scanRoot := t.TempDir()
	checkout := writePackage(t, t.TempDir(), "checkout", "mylib", "1.0.0")

	_, err := m.AddLocal(checkout, v(t, "1.0.0"), registry.LocationUser)
	require.NoError(t, err)
	require.NoError(t, m.AddSearchPath(scanRoot, registry.LocationUser))

	data, err := os.ReadFile(filepath.Join(userRoot, "packages", "local-packages.json"))
	require.NoError(t, err)
	var entries []map[string]string
	require.NoError(t, sonic.Unmarshal(data, &entries))

	// Wildcard scan roots come first, explicit registrations after.
	require.Len(t, entries, 2)
	assert.Equal(t, map[string]string{"name": "*", "path": scanRoot}, entries[0])
	assert.Equal(t, map[string]string{"name": "mylib", "version": "1.0.0", "path": checkout}, entries[1])
}
