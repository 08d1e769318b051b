package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
)

var (
	iconOnce sync.Once
	iconData []byte
)

// Icon returns the tray icon: a red horizontal rule crossed by a blue
// vertical one on a transparent 32x32 canvas.
func Icon() []byte {
	iconOnce.Do(func() {
		const size = 32
		img := image.NewNRGBA(image.Rect(0, 0, size, size))
		red := color.NRGBA{R: 0xFF, A: 0xFF}
		blue := color.NRGBA{B: 0xFF, A: 0xFF}
		for i := 2; i < size-2; i++ {
			for w := 0; w < 3; w++ {
				img.Set(i, 20+w, red)
				img.Set(11+w, i, blue)
			}
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err == nil {
			iconData = buf.Bytes()
		}
	})
	return iconData
}
