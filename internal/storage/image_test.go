package storage

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestProcessChatImage_PNG_ToJPEG(t *testing.T) {
	src := encodePNG(t, 120, 60)

	out, w, h, err := ProcessChatImage(bytes.NewReader(src), DefaultChatImageOptions())
	if err != nil {
		t.Fatalf("ProcessChatImage: %v", err)
	}
	if w != 120 || h != 60 {
		t.Fatalf("dims = %dx%d, want 120x60", w, h)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("jpeg decode: %v", err)
	}
	if decoded.Bounds().Dx() != 120 || decoded.Bounds().Dy() != 60 {
		t.Fatalf("decoded dims = %dx%d, want 120x60", decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}

func TestProcessChatImage_DownscalesToFit(t *testing.T) {
	src := encodePNG(t, 200, 50)

	opts := DefaultChatImageOptions()
	opts.MaxDim = 100
	out, w, h, err := ProcessChatImage(bytes.NewReader(src), opts)
	if err != nil {
		t.Fatalf("ProcessChatImage: %v", err)
	}
	// 200x50 scaled to fit MaxDim=100 => 100x25
	if w != 100 || h != 25 {
		t.Fatalf("dims = %dx%d, want 100x25", w, h)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("jpeg decode: %v", err)
	}
	if decoded.Bounds().Dx() != 100 || decoded.Bounds().Dy() != 25 {
		t.Fatalf("decoded dims = %dx%d, want 100x25", decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}

func TestProcessChatImage_NeverUpscales(t *testing.T) {
	src := encodePNG(t, 40, 30)

	_, w, h, err := ProcessChatImage(bytes.NewReader(src), DefaultChatImageOptions())
	if err != nil {
		t.Fatalf("ProcessChatImage: %v", err)
	}
	if w != 40 || h != 30 {
		t.Fatalf("dims = %dx%d, want unchanged 40x30", w, h)
	}
}

func TestProcessChatImage_RejectsTooLarge(t *testing.T) {
	src := encodePNG(t, 64, 64)

	opts := DefaultChatImageOptions()
	opts.MaxBytes = 10
	if _, _, _, err := ProcessChatImage(bytes.NewReader(src), opts); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("want ErrTooLarge, got %v", err)
	}
}

func TestProcessChatImage_RejectsUnsupported(t *testing.T) {
	gif := []byte("GIF89a.................")
	if _, _, _, err := ProcessChatImage(bytes.NewReader(gif), DefaultChatImageOptions()); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("want ErrUnsupported, got %v", err)
	}
}

func TestProcessChatImage_RejectsCorrupt(t *testing.T) {
	// Valid PNG magic, garbage body.
	corrupt := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, []byte("not a png body")...)
	if _, _, _, err := ProcessChatImage(bytes.NewReader(corrupt), DefaultChatImageOptions()); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("want ErrInvalidImage, got %v", err)
	}
}
