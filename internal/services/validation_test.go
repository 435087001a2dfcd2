package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/doorcraft/backend/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPlaceOrderRequest() models.PlaceOrderRequest {
	return models.PlaceOrderRequest{
		ProjectName: "Riverside Villas",
		Shipping: models.ShippingInfo{
			ContactName:  "Li Wei",
			ContactPhone: "+86 138 0000 0000",
			Address:      "12 Harbour Rd, Ningbo",
		},
		Items: []models.LineItemRequest{
			{
				ProductID:   "SW-100",
				ProductName: "Sliding window",
				Quantity:    2,
				Width:       1200,
				Height:      1500,
				UnitPrice:   decimal.NewFromInt(300),
				Subtotal:    decimal.NewFromInt(600),
			},
		},
	}
}

func TestValidationHelper_ValidateStruct(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("valid request", func(t *testing.T) {
		req := validPlaceOrderRequest()
		assert.NoError(t, vh.ValidateStruct(&req))
	})

	t.Run("missing items", func(t *testing.T) {
		req := validPlaceOrderRequest()
		req.Items = nil

		err := vh.ValidateStruct(&req)
		require.Error(t, err)

		validationErrors, ok := err.(validator.ValidationErrors)
		require.True(t, ok)
		assert.Len(t, validationErrors, 1)
		assert.Equal(t, "Items", validationErrors[0].Field())
		assert.Equal(t, "required", validationErrors[0].Tag())
	})

	t.Run("line item fields are validated", func(t *testing.T) {
		req := validPlaceOrderRequest()
		req.Items[0].ProductID = ""
		req.Items[0].Quantity = 0

		err := vh.ValidateStruct(&req)
		require.Error(t, err)

		validationErrors, ok := err.(validator.ValidationErrors)
		require.True(t, ok)
		assert.Len(t, validationErrors, 2)
	})

	t.Run("remark too long", func(t *testing.T) {
		req := validPlaceOrderRequest()
		long := make([]byte, 501)
		for i := range long {
			long[i] = 'x'
		}
		req.Remark = string(long)

		err := vh.ValidateStruct(&req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Remark")
	})
}

func TestSendErrorResponse(t *testing.T) {
	t.Run("error response without validation errors", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendErrorResponse(w, "Something went wrong", http.StatusInternalServerError, nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "Something went wrong", response.Error)
		assert.Nil(t, response.Details)
	})

	t.Run("error response with validation errors", func(t *testing.T) {
		vh := NewValidationHelper()
		req := validPlaceOrderRequest()
		req.Items[0].Quantity = -1

		validationErr := vh.ValidateStruct(&req)
		assert.Error(t, validationErr)

		w := httptest.NewRecorder()
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, validationErr)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "Validation failed", response.Error)
		assert.Contains(t, response.Details, "PlaceOrderRequest.Items[0].Quantity")
	})

	t.Run("unauthorized error", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendErrorResponse(w, "Unauthorized access", http.StatusUnauthorized, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "Unauthorized access", response.Error)
	})
}

func TestWriteErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()

	WriteErrorResponse(w, http.StatusPaymentRequired, ErrorResponse{
		Error:   "Insufficient balance",
		Code:    "INSUFFICIENT_FUNDS",
		Details: map[string]string{"required": "600.00", "available": "400.00"},
	})

	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "INSUFFICIENT_FUNDS", response.Code)
	assert.Equal(t, "400.00", response.Details["available"])
}
