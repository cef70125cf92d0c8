package resize

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imagethumbs/imagethumbs/internal/config"
)

func testImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / width),
				G: uint8(y * 255 / height),
				B: 128,
				A: 255,
			})
		}
	}

	return img
}

func TestFit(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		Name string
		SrcW int
		SrcH int
		BoxW int
		BoxH int
		OutW int
		OutH int
	}{
		{"landscape into square", 400, 200, 100, 100, 100, 50},
		{"portrait into square", 200, 400, 100, 100, 50, 100},
		{"upscale is permitted", 40, 20, 100, 100, 100, 50},
		{"exact match", 100, 100, 100, 100, 100, 100},
		{"rounded dimension", 300, 200, 100, 100, 100, 67},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			out, err := Resize(
				testImage(tc.SrcW, tc.SrcH),
				tc.BoxW,
				tc.BoxH,
				config.ModeFit,
			)
			require.NoError(t, err)

			bounds := out.Bounds()
			require.Equal(t, tc.OutW, bounds.Dx())
			require.Equal(t, tc.OutH, bounds.Dy())
			require.LessOrEqual(t, bounds.Dx(), tc.BoxW)
			require.LessOrEqual(t, bounds.Dy(), tc.BoxH)

			srcRatio := float64(tc.SrcW) / float64(tc.SrcH)
			outRatio := float64(bounds.Dx()) / float64(bounds.Dy())
			require.InDelta(t, srcRatio, outRatio, 0.05)
		})
	}
}

func TestCrop(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		Name string
		SrcW int
		SrcH int
		BoxW int
		BoxH int
	}{
		{"landscape to square", 400, 200, 100, 100},
		{"portrait to square", 200, 400, 100, 100},
		{"upscale to cover", 40, 20, 100, 100},
		{"wide target", 200, 200, 160, 40},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			out, err := Resize(
				testImage(tc.SrcW, tc.SrcH),
				tc.BoxW,
				tc.BoxH,
				config.ModeCrop,
			)
			require.NoError(t, err)

			// Crop output matches the target box exactly, always.
			require.Equal(t, tc.BoxW, out.Bounds().Dx())
			require.Equal(t, tc.BoxH, out.Bounds().Dy())
		})
	}
}

func TestResizeDeterministic(t *testing.T) {
	t.Parallel()

	src := testImage(123, 77)

	first, err := Resize(src, 50, 50, config.ModeCrop)
	require.NoError(t, err)
	second, err := Resize(src, 50, 50, config.ModeCrop)
	require.NoError(t, err)

	firstRGBA, ok := first.(*image.RGBA)
	require.True(t, ok)
	secondRGBA, ok := second.(*image.RGBA)
	require.True(t, ok)
	require.Equal(t, firstRGBA.Pix, secondRGBA.Pix)
}

func TestResizeDegenerateInputs(t *testing.T) {
	t.Parallel()

	empty := image.NewRGBA(image.Rect(0, 0, 0, 0))
	_, err := Resize(empty, 100, 100, config.ModeFit)
	require.ErrorIs(t, err, ErrZeroSourceDimension)

	_, err = Resize(testImage(10, 10), 0, 100, config.ModeFit)
	require.ErrorIs(t, err, ErrZeroTargetDimension)

	_, err = Resize(testImage(10, 10), 100, 0, config.ModeCrop)
	require.ErrorIs(t, err, ErrZeroTargetDimension)
}

func TestFitNeverRoundsToZero(t *testing.T) {
	t.Parallel()

	// A very wide source scaled into a small box would round its
	// height to zero without clamping.
	out, err := Resize(testImage(1000, 10), 10, 10, config.ModeFit)
	require.NoError(t, err)
	require.Equal(t, 10, out.Bounds().Dx())
	require.Equal(t, 1, out.Bounds().Dy())

	ratio := float64(out.Bounds().Dx()) / float64(out.Bounds().Dy())
	require.False(t, math.IsInf(ratio, 0))
}
