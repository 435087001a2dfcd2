package audit

import (
	"encoding/json"
	"log"
	"time"

	"github.com/shopspring/decimal"
)

type AuditEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	EventType   string    `json:"event_type"`
	OrderNumber string    `json:"order_number,omitempty"`
	DealerID    string    `json:"dealer_id"`
	Amount      string    `json:"amount,omitempty"`
	Status      string    `json:"status"`
	Details     any       `json:"details,omitempty"`
}

type AuditLogger struct{}

func NewAuditLogger() *AuditLogger {
	return &AuditLogger{}
}

func (a *AuditLogger) LogPlacement(orderNumber, dealerID string, amount decimal.Decimal, lineCount int) {
	a.log(AuditEvent{
		Timestamp:   time.Now(),
		EventType:   "ORDER_PLACED",
		OrderNumber: orderNumber,
		DealerID:    dealerID,
		Amount:      amount.StringFixed(2),
		Status:      "SUCCESS",
		Details:     map[string]int{"line_count": lineCount},
	})
}

func (a *AuditLogger) LogReplay(orderNumber, dealerID, idempotencyKey string) {
	a.log(AuditEvent{
		Timestamp:   time.Now(),
		EventType:   "ORDER_REPLAYED",
		OrderNumber: orderNumber,
		DealerID:    dealerID,
		Status:      "SUCCESS",
		Details:     map[string]string{"idempotency_key": idempotencyKey},
	})
}

func (a *AuditLogger) LogRejection(dealerID string, amount decimal.Decimal, reason string) {
	a.log(AuditEvent{
		Timestamp: time.Now(),
		EventType: "ORDER_REJECTED",
		DealerID:  dealerID,
		Amount:    amount.StringFixed(2),
		Status:    "REJECTED",
		Details:   map[string]string{"reason": reason},
	})
}

func (a *AuditLogger) LogError(dealerID, operation string, err error) {
	a.log(AuditEvent{
		Timestamp: time.Now(),
		EventType: "ERROR",
		DealerID:  dealerID,
		Status:    "FAILED",
		Details:   map[string]string{"operation": operation, "error": err.Error()},
	})
}

// LogIntegrityViolation records states that correct locking makes impossible.
// These must be investigated by hand, nothing repairs them.
func (a *AuditLogger) LogIntegrityViolation(dealerID, orderNumber string, err error, context map[string]string) {
	details := map[string]string{"error": err.Error()}
	for k, v := range context {
		details[k] = v
	}
	a.log(AuditEvent{
		Timestamp:   time.Now(),
		EventType:   "INTEGRITY_VIOLATION",
		OrderNumber: orderNumber,
		DealerID:    dealerID,
		Status:      "CRITICAL",
		Details:     details,
	})
}

func (a *AuditLogger) log(event AuditEvent) {
	data, _ := json.Marshal(event)
	if event.Status == "CRITICAL" {
		log.Printf("AUDIT CRITICAL: %s", string(data))
		return
	}
	log.Printf("AUDIT: %s", string(data))
}
