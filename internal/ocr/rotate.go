package ocr

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	"image/png"
	"os"
)

// Rotate returns src rotated counter-clockwise by degrees, which must be a
// multiple of 90. The canvas grows to fit, so 90 and 270 swap width and height.
func Rotate(src image.Image, degrees int) (image.Image, error) {
	degrees = ((degrees % 360) + 360) % 360
	if degrees%90 != 0 {
		return nil, fmt.Errorf("unsupported rotation %d: must be a multiple of 90", degrees)
	}
	if degrees == 0 {
		return src, nil
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	var dst *image.NRGBA
	if degrees == 180 {
		dst = image.NewNRGBA(image.Rect(0, 0, w, h))
	} else {
		dst = image.NewNRGBA(image.Rect(0, 0, h, w))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := src.At(b.Min.X+x, b.Min.Y+y)
			switch degrees {
			case 90:
				dst.Set(y, w-1-x, c)
			case 180:
				dst.Set(w-1-x, h-1-y, c)
			case 270:
				dst.Set(h-1-y, x, c)
			}
		}
	}
	return dst, nil
}

// decodeFile opens and decodes a JPEG or PNG image.
func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// writeRotated decodes path, rotates it and writes a PNG into dir.
// The caller removes the returned file.
func writeRotated(path, dir string, degrees int) (string, error) {
	img, err := decodeFile(path)
	if err != nil {
		return "", err
	}

	rotated, err := Rotate(img, degrees)
	if err != nil {
		return "", err
	}

	out, err := os.CreateTemp(dir, fmt.Sprintf("cordon-rot%d-*.png", degrees))
	if err != nil {
		return "", fmt.Errorf("failed to create rotated image: %w", err)
	}
	if err := png.Encode(out, rotated); err != nil {
		_ = out.Close()
		_ = os.Remove(out.Name())
		return "", fmt.Errorf("failed to encode rotated image: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(out.Name())
		return "", fmt.Errorf("failed to close rotated image: %w", err)
	}
	return out.Name(), nil
}
