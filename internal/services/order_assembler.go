package services

import (
	"maps"
	"strings"

	"github.com/doorcraft/backend/internal/models"
	"github.com/shopspring/decimal"
)

// moneyScale matches the NUMERIC(14,2) money columns
const moneyScale = 2

// isCents reports whether d is stored exactly by a NUMERIC(14,2) column
func isCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(moneyScale))
}

// OrderAssembler builds the order aggregate from a placement request.
// It never touches storage and produces the same output for the same input.
type OrderAssembler struct{}

func NewOrderAssembler() *OrderAssembler {
	return &OrderAssembler{}
}

// AssembleOrder validates req and returns a pending order whose total is
// the sum of the line subtotals. ID, number and timestamps are left empty.
func (a *OrderAssembler) AssembleOrder(req *models.PlaceOrderRequest) (*models.Order, error) {
	if req == nil {
		return nil, invalidRequest("request is empty")
	}
	if strings.TrimSpace(req.DealerID) == "" {
		return nil, invalidRequest("dealer identity is required")
	}
	if len(req.Items) == 0 {
		return nil, invalidRequest("order must have at least one line")
	}

	lines := make([]models.OrderLine, 0, len(req.Items))
	total := decimal.Zero

	for i, item := range req.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return nil, invalidRequest("line %d: product reference is required", i+1)
		}
		if item.Quantity <= 0 {
			return nil, invalidRequest("line %d: quantity must be greater than zero", i+1)
		}
		if !item.Subtotal.IsPositive() {
			return nil, invalidRequest("line %d: subtotal must be greater than zero", i+1)
		}
		if item.Width < 0 || item.Height < 0 {
			return nil, invalidRequest("line %d: dimensions cannot be negative", i+1)
		}
		if item.UnitPrice.IsNegative() {
			return nil, invalidRequest("line %d: unit price cannot be negative", i+1)
		}
		if !isCents(item.Subtotal) || !isCents(item.UnitPrice) {
			return nil, invalidRequest("line %d: amounts must have at most %d decimal places", i+1, moneyScale)
		}

		lines = append(lines, models.OrderLine{
			LineNo:        i + 1,
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			Quantity:      item.Quantity,
			Width:         item.Width,
			Height:        item.Height,
			Configuration: maps.Clone(item.Configuration),
			UnitPrice:     item.UnitPrice,
			Subtotal:      item.Subtotal,
		})
		total = total.Add(item.Subtotal)
	}

	return &models.Order{
		DealerID:       req.DealerID,
		ProjectName:    req.ProjectName,
		Shipping:       req.Shipping,
		Remark:         req.Remark,
		TotalAmount:    total,
		Status:         models.OrderStatusPending,
		IdempotencyKey: req.IdempotencyKey,
		LineItems:      lines,
	}, nil
}
