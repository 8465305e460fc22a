package service

// QRCodeService generates and parses pickup QR codes for confirmed orders.
// The code is presented at the parts counter for click-and-collect.
type QRCodeService interface {
	// GeneratePickupQR renders a PNG QR code identifying a confirmed order.
	GeneratePickupQR(orderID string) ([]byte, error)

	// ParsePickupQR extracts the order ID from scanned QR payload data.
	ParsePickupQR(qrData string) (string, error)
}
