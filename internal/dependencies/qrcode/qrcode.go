package qrcode

import (
	"encoding/base64"

	goqrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the edge length in pixels of generated images
const DefaultSize = 256

// Encoder renders content into a QR code image
type Encoder interface {
	PNG(content string) ([]byte, error)
}

// PNGEncoder renders QR codes as PNG images
type PNGEncoder struct {
	size  int
	level goqrcode.RecoveryLevel
}

// New creates a PNGEncoder producing size x size images
func New(size int) *PNGEncoder {
	if size <= 0 {
		size = DefaultSize
	}
	return &PNGEncoder{
		size:  size,
		level: goqrcode.Low,
	}
}

// PNG encodes content as a PNG QR code
func (e *PNGEncoder) PNG(content string) ([]byte, error) {
	return goqrcode.Encode(content, e.level, e.size)
}

// DataURL wraps PNG bytes in a data URL suitable for an <img> src attribute
func DataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
