// Package codec decodes and encodes thumbnail payloads. PNG and JPEG
// are the only supported formats.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
)

// Format identifies a supported image format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

var ErrUnsupportedFormat = errors.New("image format not supported")

// Extension returns the canonical file extension including the dot.
func (f Format) Extension() string {
	if f == FormatPNG {
		return ".png"
	}

	return ".jpg"
}

// sniffExtension is the extension reported by filetype for each format.
func (f Format) sniffExtension() string {
	if f == FormatPNG {
		return "png"
	}

	return "jpg"
}

// FormatFromPath resolves the image format from the file extension,
// case-insensitive. It does no I/O.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Decode parses data into a pixel buffer. The payload is sniffed first
// so a mislabeled file fails here instead of producing a thumbnail in
// the wrong format.
func Decode(data []byte, format Format) (image.Image, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return nil, fmt.Errorf("failed to sniff image type: %w", err)
	}

	if kind.Extension != format.sniffExtension() {
		return nil, fmt.Errorf(
			"failed to decode image: payload is %q, expected %q",
			kind.Extension,
			format.sniffExtension(),
		)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", format, err)
	}

	return img, nil
}

// Encode serializes a pixel buffer. Quality applies to JPEG only and is
// silently ignored for PNG, which is lossless.
func Encode(img image.Image, format Format, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case FormatPNG:
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, fmt.Errorf("failed to encode png image: %w", err)
		}
	case FormatJPEG:
		err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
		if err != nil {
			return nil, fmt.Errorf("failed to encode jpeg image: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	return buf.Bytes(), nil
}
