package services

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// LabelService renders the QR label printed on each manufactured unit
type LabelService struct {
	size int
}

func NewLabelService(size int) *LabelService {
	if size <= 0 {
		size = 256
	}
	return &LabelService{size: size}
}

// RenderOrderLabel returns a PNG QR code encoding the order number
func (s *LabelService) RenderOrderLabel(orderNumber string) ([]byte, error) {
	if orderNumber == "" {
		return nil, fmt.Errorf("order number is required")
	}
	return qrcode.Encode(orderNumber, qrcode.Medium, s.size)
}
