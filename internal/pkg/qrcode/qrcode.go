package qrcode

import (
	"encoding/json"
	"fmt"

	goqrcode "github.com/skip2/go-qrcode"
)

const DefaultSize = 256

// RenderJSON encodes payload as JSON and renders it as a PNG QR code.
func RenderJSON(payload any, size int) ([]byte, error) {
	content, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal qr payload: %w", err)
	}
	return Render(string(content), size)
}

// Render returns a PNG QR code of content. size <= 0 falls back to DefaultSize.
func Render(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	png, err := goqrcode.Encode(content, goqrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}
