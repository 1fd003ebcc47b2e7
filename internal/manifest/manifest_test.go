package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lode-build/lode/internal/manifest"
)

func writeDescriptor(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, manifest.FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeDescriptor(t, t.TempDir(), `{
		"name": "vecmath",
		"version": "1.2.3",
		"description": "vector math",
		"dependencies": {"core-utils": "^2.0"}
	}`)

	m, err := manifest.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "vecmath", m.Name)
	assert.Equal(t, "1.2.3", m.Version)
	assert.Equal(t, "^2.0", m.Dependencies["core-utils"])
}

func TestLoadMissingName(t *testing.T) {
	path := writeDescriptor(t, t.TempDir(), `{"version": "1.0.0"}`)
	_, err := manifest.Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := manifest.Load(filepath.Join(t.TempDir(), manifest.FileName))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadMalformed(t *testing.T) {
	path := writeDescriptor(t, t.TempDir(), `{"name": `)
	_, err := manifest.Load(path)
	assert.Error(t, err)
}

func TestSubPackageForms(t *testing.T) {
	path := writeDescriptor(t, t.TempDir(), `{
		"name": "suite",
		"version": "1.0.0",
		"subPackages": ["./runner", {"name": "codegen"}]
	}`)

	m, err := manifest.Load(path)
	require.NoError(t, err)
	require.Len(t, m.SubPackages, 2)

	assert.Equal(t, "./runner", m.SubPackages[0].Path)
	assert.Nil(t, m.SubPackages[0].Inline)

	require.NotNil(t, m.SubPackages[1].Inline)
	assert.Equal(t, "codegen", m.SubPackages[1].Inline.Name)
	assert.Empty(t, m.SubPackages[1].Path)
}

func TestRewrite(t *testing.T) {
	path := writeDescriptor(t, t.TempDir(), `{
		"name": "VecMath",
		"version": "~selected-by-archive",
		"license": "MIT",
		"customField": {"kept": true}
	}`)

	require.NoError(t, manifest.Rewrite(path, "VecMath", "1.2.3"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, sonic.Unmarshal(data, &raw))

	// Name is lower-cased and the version becomes authoritative.
	assert.Equal(t, "vecmath", raw["name"])
	assert.Equal(t, "1.2.3", raw["version"])
	// Fields lode does not model survive the rewrite.
	assert.Equal(t, "MIT", raw["license"])
	assert.Equal(t, map[string]any{"kept": true}, raw["customField"])
}

func TestRewriteMissingFile(t *testing.T) {
	err := manifest.Rewrite(filepath.Join(t.TempDir(), manifest.FileName), "x", "1.0.0")
	assert.Error(t, err)
}
