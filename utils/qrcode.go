package utils

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// QRCodePNG renders content as a PNG QR code.
func QRCodePNG(content string) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qr content is empty")
	}
	png, err := qrcode.Encode(content, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// PNGDataURI wraps PNG bytes in a data URI the portals drop into <img src>.
func PNGDataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
