package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DealerAccount is the prepaid wallet of a dealer. Balance never goes negative.
type DealerAccount struct {
	ID        string          `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}
