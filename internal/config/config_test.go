package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "image_thumbs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
thumbs:
  - name: standard
    quality: 95
    size: [640, 480]
    mode: fit
  - name: mini
    naming_pattern: "/{image_stem}_{thumb_name}"
    quality: 70
    size: [40, 40]
    mode: crop
`)

	specs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, specs, 2)

	// File order is preserved.
	require.Equal(t, "standard", specs[0].Name)
	require.Equal(t, 640, specs[0].Width())
	require.Equal(t, 480, specs[0].Height())
	require.Equal(t, ModeFit, specs[0].Mode)
	require.Empty(t, specs[0].NamingPattern)

	require.Equal(t, "mini", specs[1].Name)
	require.Equal(t, ModeCrop, specs[1].Mode)
	require.Equal(t, "/{image_stem}_{thumb_name}", specs[1].NamingPattern)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "thumbs: [\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := ThumbnailSpec{
		Name:    "standard",
		Quality: 90,
		Size:    [2]int{100, 100},
		Mode:    ModeFit,
	}

	testCases := []struct {
		Name  string
		Specs []ThumbnailSpec
		Err   error
	}{
		{
			Name:  "empty set",
			Specs: nil,
			Err:   ErrNoSpecs,
		},
		{
			Name: "missing name",
			Specs: []ThumbnailSpec{
				{Quality: 90, Size: [2]int{100, 100}, Mode: ModeFit},
			},
			Err: ErrMissingName,
		},
		{
			Name:  "duplicate names",
			Specs: []ThumbnailSpec{valid, valid},
			Err:   ErrDuplicateName,
		},
		{
			Name: "quality above range",
			Specs: []ThumbnailSpec{
				{Name: "a", Quality: 101, Size: [2]int{100, 100}, Mode: ModeFit},
			},
			Err: ErrQualityRange,
		},
		{
			Name: "negative quality",
			Specs: []ThumbnailSpec{
				{Name: "a", Quality: -1, Size: [2]int{100, 100}, Mode: ModeFit},
			},
			Err: ErrQualityRange,
		},
		{
			Name: "zero width",
			Specs: []ThumbnailSpec{
				{Name: "a", Quality: 90, Size: [2]int{0, 100}, Mode: ModeFit},
			},
			Err: ErrZeroDimension,
		},
		{
			Name: "zero height",
			Specs: []ThumbnailSpec{
				{Name: "a", Quality: 90, Size: [2]int{100, 0}, Mode: ModeCrop},
			},
			Err: ErrZeroDimension,
		},
		{
			Name: "unknown mode",
			Specs: []ThumbnailSpec{
				{Name: "a", Quality: 90, Size: [2]int{100, 100}, Mode: "stretch"},
			},
			Err: ErrUnknownMode,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			require.ErrorIs(t, Validate(tc.Specs), tc.Err)
		})
	}

	require.NoError(t, Validate([]ThumbnailSpec{valid}))
}
