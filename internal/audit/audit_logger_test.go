package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevFlags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func decodeEvent(t *testing.T, line, prefix string) AuditEvent {
	t.Helper()
	require.True(t, strings.HasPrefix(line, prefix), "unexpected line %q", line)
	var event AuditEvent
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, prefix)), &event))
	return event
}

func TestAuditLogger_LogPlacement(t *testing.T) {
	buf := captureLog(t)
	logger := NewAuditLogger()

	logger.LogPlacement("ORD-202501-038", "dealer-1", decimal.RequireFromString("1250.5"), 3)

	event := decodeEvent(t, strings.TrimSpace(buf.String()), "AUDIT: ")
	assert.Equal(t, "ORDER_PLACED", event.EventType)
	assert.Equal(t, "ORD-202501-038", event.OrderNumber)
	assert.Equal(t, "1250.50", event.Amount)
	assert.Equal(t, "SUCCESS", event.Status)
}

func TestAuditLogger_LogIntegrityViolation(t *testing.T) {
	buf := captureLog(t)
	logger := NewAuditLogger()

	logger.LogIntegrityViolation("dealer-1", "ORD-202501-001", errors.New("duplicate key"), map[string]string{"operation": "insert order"})

	event := decodeEvent(t, strings.TrimSpace(buf.String()), "AUDIT CRITICAL: ")
	assert.Equal(t, "INTEGRITY_VIOLATION", event.EventType)
	assert.Equal(t, "CRITICAL", event.Status)
	details, ok := event.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "duplicate key", details["error"])
	assert.Equal(t, "insert order", details["operation"])
}
