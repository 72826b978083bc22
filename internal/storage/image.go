package storage

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

var (
	ErrTooLarge     = errors.New("file too large")
	ErrInvalidImage = errors.New("invalid image")
	ErrUnsupported  = errors.New("unsupported image type")
)

type ImageProcessOptions struct {
	MaxBytes    int64
	MaxDim      int
	JPEGQuality int
}

func DefaultChatImageOptions() ImageProcessOptions {
	return ImageProcessOptions{
		MaxBytes:    10 * 1024 * 1024,
		MaxDim:      2048,
		JPEGQuality: 85,
	}
}

// Detect allowed types by magic number.
func detectMagic(header []byte) (string, error) {
	if len(header) < 12 {
		return "", ErrInvalidImage
	}
	// JPEG: FF D8 FF
	if header[0] == 0xFF && header[1] == 0xD8 && header[2] == 0xFF {
		return "image/jpeg", nil
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if header[0] == 0x89 && header[1] == 0x50 && header[2] == 0x4E && header[3] == 0x47 &&
		header[4] == 0x0D && header[5] == 0x0A && header[6] == 0x1A && header[7] == 0x0A {
		return "image/png", nil
	}
	// WebP: RIFF....WEBP
	if header[0] == 'R' && header[1] == 'I' && header[2] == 'F' && header[3] == 'F' &&
		header[8] == 'W' && header[9] == 'E' && header[10] == 'B' && header[11] == 'P' {
		return "image/webp", nil
	}
	return "", ErrUnsupported
}

// ProcessChatImage reads an uploaded image, validates it by magic number,
// decodes, downscales to fit within MaxDim (never upscales), and re-encodes
// as JPEG. Returns the bytes plus the final dimensions the attachment row
// records.
func ProcessChatImage(r io.Reader, opts ImageProcessOptions) ([]byte, int, int, error) {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 10 * 1024 * 1024
	}
	if opts.MaxDim <= 0 {
		opts.MaxDim = 2048
	}
	if opts.JPEGQuality <= 0 {
		opts.JPEGQuality = 85
	}

	raw, err := io.ReadAll(io.LimitReader(r, opts.MaxBytes+1))
	if err != nil {
		return nil, 0, 0, err
	}
	if int64(len(raw)) > opts.MaxBytes {
		return nil, 0, 0, ErrTooLarge
	}

	contentType, err := detectMagic(raw)
	if err != nil {
		return nil, 0, 0, err
	}

	var img image.Image
	switch contentType {
	case "image/jpeg":
		img, err = jpeg.Decode(bytes.NewReader(raw))
	case "image/png":
		img, err = png.Decode(bytes.NewReader(raw))
	case "image/webp":
		img, err = webp.Decode(bytes.NewReader(raw))
	default:
		return nil, 0, 0, ErrUnsupported
	}
	if err != nil {
		return nil, 0, 0, ErrInvalidImage
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, 0, 0, ErrInvalidImage
	}

	if width > opts.MaxDim || height > opts.MaxDim {
		scale := float64(opts.MaxDim) / float64(width)
		if height > width {
			scale = float64(opts.MaxDim) / float64(height)
		}
		width = int(float64(width) * scale)
		height = int(float64(height) * scale)
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.JPEGQuality}); err != nil {
		return nil, 0, 0, err
	}
	return buf.Bytes(), width, height, nil
}
