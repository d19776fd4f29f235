package mocks

import (
	"sync"

	"github.com/zn-har/Bingo/internal/dependencies/qrcode"
)

// MockQREncoder is a mock implementation of Encoder for testing
type MockQREncoder struct {
	mu sync.Mutex

	// Image is returned from every PNG call
	Image []byte
	// Err, when set, is returned instead of Image
	Err error
	// Encoded records every content string passed to PNG
	Encoded []string
}

// Ensure MockQREncoder implements Encoder
var _ qrcode.Encoder = (*MockQREncoder)(nil)

// NewMockQREncoder creates a MockQREncoder returning a fixed payload
func NewMockQREncoder() *MockQREncoder {
	return &MockQREncoder{Image: []byte("png")}
}

// PNG records content and returns the configured image
func (e *MockQREncoder) PNG(content string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Encoded = append(e.Encoded, content)
	if e.Err != nil {
		return nil, e.Err
	}
	return e.Image, nil
}
