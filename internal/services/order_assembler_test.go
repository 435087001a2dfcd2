package services

import (
	"testing"

	"github.com/doorcraft/backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderAssembler_AssembleOrder(t *testing.T) {
	assembler := NewOrderAssembler()

	t.Run("sums subtotals and keeps line order", func(t *testing.T) {
		req := validPlaceOrderRequest()
		req.DealerID = "dealer-1"
		req.IdempotencyKey = "key-1"
		req.Items = append(req.Items,
			models.LineItemRequest{
				ProductID:     "CD-220",
				ProductName:   "Casement door",
				Quantity:      1,
				Configuration: models.Metadata{"glass": "tempered", "color": "graphite"},
				UnitPrice:     decimal.RequireFromString("0.10"),
				Subtotal:      decimal.RequireFromString("0.10"),
			},
			models.LineItemRequest{
				ProductID: "CD-221",
				Quantity:  1,
				Subtotal:  decimal.RequireFromString("0.20"),
			},
		)

		order, err := assembler.AssembleOrder(&req)
		require.NoError(t, err)

		assert.Equal(t, "dealer-1", order.DealerID)
		assert.Equal(t, "key-1", order.IdempotencyKey)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.Equal(t, "600.3", order.TotalAmount.String())
		assert.Empty(t, order.ID)
		assert.Empty(t, order.OrderNumber)

		require.Len(t, order.LineItems, 3)
		for i, line := range order.LineItems {
			assert.Equal(t, i+1, line.LineNo)
			assert.Equal(t, req.Items[i].ProductID, line.ProductID)
		}
		assert.Equal(t, 1200, order.LineItems[0].Width)
		assert.Equal(t, "tempered", order.LineItems[1].Configuration["glass"])

		sum := decimal.Zero
		for _, line := range order.LineItems {
			sum = sum.Add(line.Subtotal)
		}
		assert.True(t, sum.Equal(order.TotalAmount))
	})

	t.Run("configuration is copied", func(t *testing.T) {
		req := validPlaceOrderRequest()
		req.DealerID = "dealer-1"
		req.Items[0].Configuration = models.Metadata{"glass": "double"}

		order, err := assembler.AssembleOrder(&req)
		require.NoError(t, err)

		req.Items[0].Configuration["glass"] = "single"
		assert.Equal(t, "double", order.LineItems[0].Configuration["glass"])
	})

	t.Run("same input gives same output", func(t *testing.T) {
		req := validPlaceOrderRequest()
		req.DealerID = "dealer-1"

		first, err := assembler.AssembleOrder(&req)
		require.NoError(t, err)
		second, err := assembler.AssembleOrder(&req)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	invalid := []struct {
		name   string
		mutate func(*models.PlaceOrderRequest)
		reason string
	}{
		{"missing dealer", func(r *models.PlaceOrderRequest) { r.DealerID = " " }, "dealer identity"},
		{"no lines", func(r *models.PlaceOrderRequest) { r.Items = nil }, "at least one line"},
		{"missing product", func(r *models.PlaceOrderRequest) { r.Items[0].ProductID = "" }, "line 1: product reference"},
		{"zero quantity", func(r *models.PlaceOrderRequest) { r.Items[0].Quantity = 0 }, "line 1: quantity"},
		{"zero subtotal", func(r *models.PlaceOrderRequest) { r.Items[0].Subtotal = decimal.Zero }, "line 1: subtotal"},
		{"negative subtotal", func(r *models.PlaceOrderRequest) { r.Items[0].Subtotal = decimal.NewFromInt(-5) }, "line 1: subtotal"},
		{"negative width", func(r *models.PlaceOrderRequest) { r.Items[0].Width = -1 }, "line 1: dimensions"},
		{"negative unit price", func(r *models.PlaceOrderRequest) { r.Items[0].UnitPrice = decimal.NewFromInt(-1) }, "line 1: unit price"},
		{"sub-cent subtotal", func(r *models.PlaceOrderRequest) { r.Items[0].Subtotal = decimal.RequireFromString("0.001") }, "line 1: amounts must have at most 2 decimal places"},
		{"sub-cent unit price", func(r *models.PlaceOrderRequest) { r.Items[0].UnitPrice = decimal.RequireFromString("299.995") }, "line 1: amounts must have at most 2 decimal places"},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			req := validPlaceOrderRequest()
			req.DealerID = "dealer-1"
			tt.mutate(&req)

			order, err := assembler.AssembleOrder(&req)
			assert.Nil(t, order)
			assert.ErrorIs(t, err, ErrInvalidOrderRequest)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}

	t.Run("sub-cent lines that would round apart in storage", func(t *testing.T) {
		req := validPlaceOrderRequest()
		req.DealerID = "dealer-1"
		req.Items = []models.LineItemRequest{
			{ProductID: "SW-100", Quantity: 1, UnitPrice: decimal.RequireFromString("1.004"), Subtotal: decimal.RequireFromString("1.004")},
			{ProductID: "SW-101", Quantity: 1, UnitPrice: decimal.RequireFromString("1.004"), Subtotal: decimal.RequireFromString("1.004")},
		}

		order, err := assembler.AssembleOrder(&req)
		assert.Nil(t, order)
		assert.ErrorIs(t, err, ErrInvalidOrderRequest)
	})

	t.Run("trailing zeros beyond cents are accepted", func(t *testing.T) {
		req := validPlaceOrderRequest()
		req.DealerID = "dealer-1"
		req.Items[0].Subtotal = decimal.RequireFromString("600.000")

		order, err := assembler.AssembleOrder(&req)
		require.NoError(t, err)
		assert.Equal(t, "600.00", order.TotalAmount.StringFixed(2))
	})

	t.Run("nil request", func(t *testing.T) {
		_, err := assembler.AssembleOrder(nil)
		assert.ErrorIs(t, err, ErrInvalidOrderRequest)
	})
}
