package helpers

import (
	"bytes"
	"image/png"
	"testing"
)

func TestGenerateAvatar(t *testing.T) {
	data, err := GenerateAvatar()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 128 || b.Dy() != 128 {
		t.Fatalf("got %dx%d, want 128x128", b.Dx(), b.Dy())
	}
}
