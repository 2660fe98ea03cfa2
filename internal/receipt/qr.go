package receipt

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const DefaultQRSize = 256

// QREncoder turns arbitrary text into image bytes
type QREncoder interface {
	Encode(content string) ([]byte, error)
}

// PNGEncoder renders PNG QR codes at medium error correction
type PNGEncoder struct {
	Size int
}

func NewPNGEncoder(size int) PNGEncoder {
	if size <= 0 {
		size = DefaultQRSize
	}
	return PNGEncoder{Size: size}
}

func (e PNGEncoder) Encode(content string) ([]byte, error) {
	size := e.Size
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// WriteQR encodes content and writes the image to path
func WriteQR(enc QREncoder, content, path string) error {
	img, err := enc.Encode(content)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, img); err != nil {
		return fmt.Errorf("write qr: %w", err)
	}
	return nil
}
