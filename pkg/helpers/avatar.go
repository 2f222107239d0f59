package helpers

import (
	"bytes"
	"crypto/rand"
	"image"
	"image/color"
	"image/png"
)

const avatarSize = 128

// GenerateAvatar renders a 128x128 PNG with a random two-color diagonal
// gradient, used as the default avatar for accounts created without one.
func GenerateAvatar() ([]byte, error) {
	c1, err := randomColor()
	if err != nil {
		return nil, err
	}
	c2, err := randomColor()
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, avatarSize, avatarSize))
	for y := 0; y < avatarSize; y++ {
		for x := 0; x < avatarSize; x++ {
			// Distance along the top-left -> bottom-right diagonal.
			t := float64(x+y) / float64(2*avatarSize-2)
			img.Set(x, y, lerpColor(c1, c2, t))
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func randomColor() (color.RGBA, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return color.RGBA{}, err
	}
	return color.RGBA{R: b[0], G: b[1], B: b[2], A: 255}, nil
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 255}
}
