package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lode-build/lode/internal/version"
)

func TestParseRelease(t *testing.T) {
	v, err := version.Parse("1.2.3")
	require.NoError(t, err)
	assert.False(t, v.IsBranch())
	assert.Equal(t, "1.2.3", v.String())
	assert.Equal(t, "1.2.3", v.Display())
}

func TestParseBranch(t *testing.T) {
	v, err := version.Parse("~main")
	require.NoError(t, err)
	assert.True(t, v.IsBranch())
	assert.Equal(t, "main", v.Branch())
	assert.Equal(t, "~main", v.String())
	assert.Equal(t, "main", v.Display())
}

func TestParseInvalid(t *testing.T) {
	tests := []string{"", "~", "not a version", "1.2.3.4.5"}
	for _, input := range tests {
		_, err := version.Parse(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "1.2.0", -1},
		{"2.0.0", "1.9.9", 1},
		{"1.0.0-rc.1", "1.0.0", -1},
		{"~main", "~main", 0},
		{"~alpha", "~beta", -1},
		// Branches order below every release.
		{"~main", "0.0.1", -1},
		{"99.0.0", "~main", 1},
	}
	for _, tt := range tests {
		a := version.MustParse(tt.a)
		b := version.MustParse(tt.b)
		assert.Equal(t, tt.want, a.Compare(b), "%s vs %s", tt.a, tt.b)
		assert.Equal(t, -tt.want, b.Compare(a), "%s vs %s reversed", tt.b, tt.a)
	}
}

func TestEqualAndLessThan(t *testing.T) {
	assert.True(t, version.MustParse("1.0.0").Equal(version.MustParse("1.0.0")))
	assert.False(t, version.MustParse("1.0.0").Equal(version.MustParse("~main")))
	assert.True(t, version.MustParse("1.0.0").LessThan(version.MustParse("1.0.1")))
}

func TestRangeConstraint(t *testing.T) {
	c, err := version.ParseConstraint("<2.0.0")
	require.NoError(t, err)

	assert.True(t, c.Matches(version.MustParse("1.2.0")))
	assert.False(t, c.Matches(version.MustParse("2.0.0")))
	// Ranges never match branch versions.
	assert.False(t, c.Matches(version.MustParse("~main")))
}

func TestCaretConstraint(t *testing.T) {
	c, err := version.ParseConstraint("^1.2")
	require.NoError(t, err)

	assert.True(t, c.Matches(version.MustParse("1.2.0")))
	assert.True(t, c.Matches(version.MustParse("1.9.3")))
	assert.False(t, c.Matches(version.MustParse("2.0.0")))
}

func TestBranchConstraint(t *testing.T) {
	c, err := version.ParseConstraint("~main")
	require.NoError(t, err)

	assert.True(t, c.Matches(version.MustParse("~main")))
	assert.False(t, c.Matches(version.MustParse("~other")))
	assert.False(t, c.Matches(version.MustParse("1.0.0")))
}

func TestAnyConstraint(t *testing.T) {
	for _, input := range []string{"", "*"} {
		c, err := version.ParseConstraint(input)
		require.NoError(t, err)
		assert.True(t, c.Matches(version.MustParse("1.0.0")))
		assert.True(t, c.Matches(version.MustParse("~main")))
	}
}

func TestExactConstraint(t *testing.T) {
	c := version.Exact(version.MustParse("1.2.3"))
	assert.True(t, c.Matches(version.MustParse("1.2.3")))
	assert.False(t, c.Matches(version.MustParse("1.2.4")))
}

func TestConstraintInvalid(t *testing.T) {
	_, err := version.ParseConstraint("~")
	assert.Error(t, err)
	_, err = version.ParseConstraint(">>nope")
	assert.Error(t, err)
}
