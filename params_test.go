package loopgo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParameters(t *testing.T) {
	p := DefaultParameters(480, 640)

	require.NoError(t, p.Validate())
	assert.Equal(t, 640, p.ImageWidth)
	assert.Equal(t, 480, p.ImageHeight)
	assert.True(t, p.UseNSS)
	assert.Equal(t, 0.3, p.Alpha)
	assert.Equal(t, 3, p.K)
	assert.Equal(t, GeometryDirectIndex, p.GeometricCheck)
	assert.Equal(t, 20, p.ExclusionWindow)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*Parameters)
	}{
		{"image_width", func(p *Parameters) { p.ImageWidth = -1 }},
		{"alpha", func(p *Parameters) { p.Alpha = -0.1 }},
		{"k", func(p *Parameters) { p.K = 0 }},
		{"geometric_check", func(p *Parameters) { p.GeometricCheck = 9 }},
		{"direct_index_levels", func(p *Parameters) { p.DirectIndexLevels = -1 }},
		{"exclusion_window", func(p *Parameters) { p.ExclusionWindow = -1 }},
		{"max_intra_group_gap", func(p *Parameters) { p.MaxIntraGroupGap = 0 }},
		{"min_matches_per_group", func(p *Parameters) { p.MinMatchesPerGroup = 0 }},
		{"max_distance_between_queries", func(p *Parameters) { p.MaxDistanceBetweenQueries = 0 }},
		{"ransac_probability", func(p *Parameters) { p.RANSACProbability = 1 }},
		{"max_reprojection_error", func(p *Parameters) { p.MaxReprojectionError = 0 }},
		{"max_neighbor_ratio", func(p *Parameters) { p.MaxNeighborRatio = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			p := DefaultParameters(480, 640)
			tt.mutate(&p)

			err := p.Validate()
			require.ErrorIs(t, err, ErrInvalidParameters)
			var pe *ParameterError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.field, pe.Field)
		})
	}
}

const parametersYAML = `
image_width: 752
image_height: 480
use_nss: false
alpha: 0.25
k: 2
geometric_check: fundamental_matrix
exclusion_window: 40
`

func TestParseParameters(t *testing.T) {
	t.Run("OverridesDefaults", func(t *testing.T) {
		p, err := ParseParameters([]byte(parametersYAML))
		require.NoError(t, err)

		want := DefaultParameters(480, 752)
		want.UseNSS = false
		want.Alpha = 0.25
		want.K = 2
		want.GeometricCheck = GeometryFundamentalMatrix
		want.ExclusionWindow = 40
		assert.Equal(t, want, p)
	})

	t.Run("Empty", func(t *testing.T) {
		p, err := ParseParameters(nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultParameters(0, 0), p)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		want := DefaultParameters(480, 640)
		want.GeometricCheck = GeometryNone

		data, err := want.YAML()
		require.NoError(t, err)
		assert.Contains(t, string(data), "geometric_check: none")

		got, err := ParseParameters(data)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		_, err := ParseParameters([]byte("alpah: 0.3\n"))
		assert.ErrorIs(t, err, ErrInvalidParameters)
	})

	t.Run("UnknownGeometricCheck", func(t *testing.T) {
		_, err := ParseParameters([]byte("geometric_check: homography\n"))
		assert.ErrorIs(t, err, ErrInvalidParameters)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := ParseParameters([]byte("k: 0\n"))
		var pe *ParameterError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "k", pe.Field)
	})
}

func TestLoadParameters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yml")
	require.NoError(t, os.WriteFile(path, []byte(parametersYAML), 0o600))

	p, err := LoadParameters(path)
	require.NoError(t, err)
	assert.Equal(t, 752, p.ImageWidth)

	_, err = LoadParameters(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, ErrInvalidParameters)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
