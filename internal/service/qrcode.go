package service

import (
	qrcode "github.com/skip2/go-qrcode"

	"shortlink/internal/apperror"
)

// QRCode renders the public short link for a code as a PNG of the given
// pixel size.
func (s *Service) QRCode(code string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(s.ShortLink(code), qrcode.Medium, size)
	if err != nil {
		return nil, s.fail(apperror.Internal(err))
	}
	return png, nil
}
