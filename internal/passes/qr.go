package passes

import (
	"github.com/skip2/go-qrcode"
)

// QRPNG renders the scannable payload for an issued ticket: a PNG QR code
// encoding the ticket identifier. The id already carries the random suffix
// that makes it resistant to enumeration, so the payload is the plain id.
func QRPNG(ticketID string) ([]byte, error) {
	return qrcode.Encode(ticketID, qrcode.Medium, 256)
}
