package codec

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func testImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / width),
				G: uint8(y * 255 / height),
				B: 64,
				A: 255,
			})
		}
	}

	return img
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		Path   string
		Format Format
	}{
		{"penguin.png", FormatPNG},
		{"penguin.PNG", FormatPNG},
		{"dir/penguin.jpg", FormatJPEG},
		{"penguin.jpeg", FormatJPEG},
		{"penguin.JPeG", FormatJPEG},
	}

	for _, tc := range testCases {
		format, err := FormatFromPath(tc.Path)
		require.NoError(t, err)
		require.Equal(t, tc.Format, format)
	}
}

func TestFormatFromPathUnsupported(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"penguin.gif", "penguin.webp", "penguin", "penguin.png.txt"} {
		_, err := FormatFromPath(path)
		require.ErrorIs(t, err, ErrUnsupportedFormat, path)
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatPNG, FormatJPEG} {
		encoded, err := Encode(testImage(64, 48), format, 90)
		require.NoError(t, err)

		decoded, err := Decode(encoded, format)
		require.NoError(t, err)
		require.Equal(t, 64, decoded.Bounds().Dx())
		require.Equal(t, 48, decoded.Bounds().Dy())
	}
}

func TestPNGIgnoresQuality(t *testing.T) {
	t.Parallel()

	img := testImage(64, 64)

	low, err := Encode(img, FormatPNG, 10)
	require.NoError(t, err)
	high, err := Encode(img, FormatPNG, 95)
	require.NoError(t, err)

	require.Equal(t, low, high)
}

func TestJPEGQualityApplied(t *testing.T) {
	t.Parallel()

	img := testImage(200, 200)

	low, err := Encode(img, FormatJPEG, 10)
	require.NoError(t, err)
	high, err := Encode(img, FormatJPEG, 95)
	require.NoError(t, err)

	require.Less(t, len(low), len(high))
}

func TestDecodeMismatchedPayload(t *testing.T) {
	t.Parallel()

	encoded, err := Encode(testImage(16, 16), FormatPNG, 90)
	require.NoError(t, err)

	_, err = Decode(encoded, FormatJPEG)
	require.Error(t, err)
}

func TestDecodeCorruptBytes(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte{0x01, 0x02, 0x03, 0x04}, FormatPNG)
	require.Error(t, err)
}
