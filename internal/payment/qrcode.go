package payment

import (
	"encoding/base64"

	qr "github.com/skip2/go-qrcode"
)

// Renderer turns payloads into PNG QR codes.
type Renderer struct {
	size int
}

// NewRenderer returns a Renderer producing size×size pixel images.
func NewRenderer(size int) *Renderer {
	return &Renderer{size: size}
}

// PNG encodes payload as a QR code image. Low error correction keeps the
// symbol small enough for the long Cyrillic payloads.
func (r *Renderer) PNG(payload string) ([]byte, error) {
	return qr.Encode(payload, qr.Low, r.size)
}

// DataURI returns the PNG as a data: URI suitable for HTML templates.
func (r *Renderer) DataURI(payload string) (string, error) {
	png, err := r.PNG(payload)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
