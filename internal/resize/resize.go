// Package resize implements the fit and crop scaling algorithms over
// decoded pixel buffers.
package resize

import (
	"errors"
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/imagethumbs/imagethumbs/internal/config"
)

var (
	ErrZeroSourceDimension = errors.New("source image has a zero dimension")
	ErrZeroTargetDimension = errors.New("target size has a zero dimension")
	errUnexpectedMode      = errors.New("unexpected resize mode")
)

// Resize scales src into a width x height box according to mode.
//
// Fit guarantees the bounding box only: the result may be smaller than
// the box on one axis, and callers must not assume exact dimensions.
// Crop always returns exactly width x height. Both modes use the same
// Catmull-Rom scaler, so output is deterministic for identical input.
func Resize(
	src image.Image,
	width int,
	height int,
	mode config.Mode,
) (image.Image, error) {
	bounds := src.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()

	if srcW == 0 || srcH == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrZeroSourceDimension, srcW, srcH)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrZeroTargetDimension, width, height)
	}

	switch mode {
	case config.ModeFit:
		return fit(src, srcW, srcH, width, height), nil
	case config.ModeCrop:
		return crop(src, srcW, srcH, width, height), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnexpectedMode, mode)
	}
}

// fit scales so the whole image lies within the box. Upscaling is
// permitted when the source is smaller than the box.
func fit(src image.Image, srcW, srcH, boxW, boxH int) image.Image {
	scale := math.Min(
		float64(boxW)/float64(srcW),
		float64(boxH)/float64(srcH),
	)

	outW := roundDimension(float64(srcW) * scale)
	outH := roundDimension(float64(srcH) * scale)

	return scaleTo(src, outW, outH)
}

// crop scales so the image fully covers the box, then crops the excess
// symmetrically around the center.
func crop(src image.Image, srcW, srcH, boxW, boxH int) image.Image {
	scale := math.Max(
		float64(boxW)/float64(srcW),
		float64(boxH)/float64(srcH),
	)

	// Rounding may undershoot the covering size by a pixel.
	scaledW := roundDimension(float64(srcW) * scale)
	scaledH := roundDimension(float64(srcH) * scale)
	if scaledW < boxW {
		scaledW = boxW
	}
	if scaledH < boxH {
		scaledH = boxH
	}

	scaled := scaleTo(src, scaledW, scaledH)

	left := (scaledW - boxW) / 2
	top := (scaledH - boxH) / 2

	dst := image.NewRGBA(image.Rect(0, 0, boxW, boxH))
	xdraw.Draw(dst, dst.Bounds(), scaled, image.Pt(left, top), xdraw.Src)

	return dst
}

func scaleTo(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	return dst
}

func roundDimension(v float64) int {
	out := int(math.Round(v))
	if out < 1 {
		out = 1
	}

	return out
}
