// Package badge renders the QR badge handed to each student. The payload is
// the bare NISN, which is what the scan stations decode.
package badge

import (
	"errors"

	qrcode "github.com/skip2/go-qrcode"
)

const defaultSize = 256

// ErrEmptyPayload is returned for a blank NISN.
var ErrEmptyPayload = errors.New("badge payload is empty")

// PNG encodes the NISN as a QR code PNG. Size is in pixels per side;
// non-positive picks the default.
func PNG(nisn string, size int) ([]byte, error) {
	if nisn == "" {
		return nil, ErrEmptyPayload
	}
	if size <= 0 {
		size = defaultSize
	}
	return qrcode.Encode(nisn, qrcode.Medium, size)
}
