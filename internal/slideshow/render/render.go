// Package render holds the pure image operations for the slideshow: decoding
// with EXIF normalization, cover-style resize and crop, and JPEG encoding of
// single and side-by-side frames.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

const (
	jpegQuality = 85

	// cropTopBias places the top of the vertical crop window at 30% of the
	// overflow instead of centering it. Faces tend to sit in the upper part
	// of a frame. Tunable, not derived.
	cropTopBias = 0.3
)

// Decode decodes image bytes into an upright bitmap. The EXIF orientation tag
// is applied during decoding, so callers never see rotated or mirrored
// pixels. Indexed and alpha formats come back as plain color images.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// ResizeCenterCrop scales the image up or down so it covers the target box,
// then crops to exactly targetW x targetH. The crop is horizontally centered
// and vertically biased toward the top of the frame (see cropTopBias). This
// is the single cropping rule used for both full frames and dual halves.
func ResizeCenterCrop(img image.Image, targetW, targetH int) *image.NRGBA {
	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()
	if srcW <= 0 || srcH <= 0 {
		return imaging.New(targetW, targetH, color.NRGBA{A: 0xff})
	}

	// Pin the axis that determines the scale to the target so the scaled
	// image always covers the crop box; the other axis rounds.
	var scaledW, scaledH int
	if srcW*targetH > srcH*targetW {
		// Source is wider than the target aspect, height decides.
		scaledH = targetH
		scaledW = int(math.Round(float64(srcW) * float64(targetH) / float64(srcH)))
	} else {
		scaledW = targetW
		scaledH = int(math.Round(float64(srcH) * float64(targetW) / float64(srcW)))
	}
	scaled := imaging.Resize(img, scaledW, scaledH, imaging.Lanczos)

	left := (scaledW - targetW) / 2
	top := int(float64(scaledH-targetH) * cropTopBias)
	return imaging.Crop(scaled, image.Rect(left, top, left+targetW, top+targetH))
}

// Single renders one image at the target size and encodes it as JPEG.
func Single(img image.Image, targetW, targetH int) ([]byte, error) {
	return encodeJPEG(ResizeCenterCrop(img, targetW, targetH))
}

// SideBySide composes two portrait images into one landscape frame: the
// target width is split into two equal halves and each image is rendered into
// its half with the shared cropping rule. An odd target width leaves the
// rightmost pixel column black.
func SideBySide(left, right image.Image, targetW, targetH int) ([]byte, error) {
	halfW := targetW / 2
	canvas := imaging.New(targetW, targetH, color.NRGBA{A: 0xff})
	canvas = imaging.Paste(canvas, ResizeCenterCrop(left, halfW, targetH), image.Pt(0, 0))
	canvas = imaging.Paste(canvas, ResizeCenterCrop(right, halfW, targetH), image.Pt(halfW, 0))
	return encodeJPEG(canvas)
}

// encodeJPEG encodes the image with the slideshow's fixed quality setting.
func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
