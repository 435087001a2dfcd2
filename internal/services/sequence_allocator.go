package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
)

const (
	defaultOrderNumberPrefix = "ORD"
	minSequenceWidth         = 3
)

// SequenceAllocator hands out ORD-<YYYYMM>-<seq> numbers. The per-cycle
// row in order_sequences is locked FOR UPDATE for the rest of the caller's
// transaction, which serializes every allocation within a cycle.
type SequenceAllocator struct {
	prefix string
}

func NewSequenceAllocator(prefix string) *SequenceAllocator {
	if prefix == "" {
		prefix = defaultOrderNumberPrefix
	}
	return &SequenceAllocator{prefix: prefix}
}

// CyclePrefix returns the billing cycle key for now. Days before resetDay
// still belong to the previous month's cycle.
func (a *SequenceAllocator) CyclePrefix(now time.Time, resetDay int) string {
	return CyclePrefix(a.prefix, now, resetDay)
}

func CyclePrefix(prefix string, now time.Time, resetDay int) string {
	if resetDay < 1 || resetDay > 31 {
		resetDay = 1
	}

	year, month, day := now.Date()
	if day < resetDay {
		month--
		if month < time.January {
			month = time.December
			year--
		}
	}

	return fmt.Sprintf("%s-%04d%02d", prefix, year, int(month))
}

// FormatOrderNumber zero-pads seq to three digits; larger values keep all digits
func FormatOrderNumber(cyclePrefix string, seq int) string {
	return fmt.Sprintf("%s-%0*d", cyclePrefix, minSequenceWidth, seq)
}

// ParseSequence extracts the trailing sequence of an order number issued
// under cyclePrefix.
func ParseSequence(orderNumber, cyclePrefix string) (int, error) {
	suffix, ok := strings.CutPrefix(orderNumber, cyclePrefix+"-")
	if !ok || len(suffix) < minSequenceWidth {
		return 0, fmt.Errorf("order number %q does not match %s-NNN", orderNumber, cyclePrefix)
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("order number %q has a non-numeric sequence", orderNumber)
		}
	}

	seq, err := strconv.Atoi(suffix)
	if err != nil || seq < 1 {
		return 0, fmt.Errorf("order number %q has an invalid sequence", orderNumber)
	}
	return seq, nil
}

// NextOrderNumber allocates the next number in cyclePrefix inside tx. The
// counter update commits or rolls back together with the order itself.
func (a *SequenceAllocator) NextOrderNumber(ctx context.Context, tx *sql.Tx, cyclePrefix string) (string, error) {
	counter, err := a.lockCounter(ctx, tx, cyclePrefix)
	if err != nil {
		return "", err
	}

	last, err := a.lastIssuedSequence(ctx, tx, cyclePrefix)
	if err != nil {
		return "", err
	}

	next := max(counter, last) + 1
	if counter != last {
		log.Printf("[SEQUENCE] Counter for %s (%d) differs from last issued order (%d), continuing at %d", cyclePrefix, counter, last, next)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE order_sequences
		SET last_seq = $1, updated_at = $2
		WHERE prefix = $3`,
		next, time.Now(), cyclePrefix)
	if err != nil {
		return "", classifyStorageError("advance order sequence", err)
	}
	if rows, err := result.RowsAffected(); err != nil {
		return "", classifyStorageError("advance order sequence", err)
	} else if rows != 1 {
		return "", &IntegrityViolationError{Op: "advance order sequence", Detail: fmt.Sprintf("counter row for %s vanished while locked", cyclePrefix)}
	}

	return FormatOrderNumber(cyclePrefix, next), nil
}

func (a *SequenceAllocator) lockCounter(ctx context.Context, tx *sql.Tx, cyclePrefix string) (int, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO order_sequences (prefix, last_seq, updated_at)
		VALUES ($1, 0, $2)
		ON CONFLICT (prefix) DO NOTHING`,
		cyclePrefix, time.Now()); err != nil {
		return 0, classifyStorageError("create order sequence", err)
	}

	var counter int
	err := tx.QueryRowContext(ctx, `
		SELECT last_seq
		FROM order_sequences
		WHERE prefix = $1
		FOR UPDATE`, cyclePrefix).Scan(&counter)
	if err != nil {
		if isLockTimeout(err) {
			log.Printf("[SEQUENCE] Lock timeout on counter %s", cyclePrefix)
		}
		return 0, classifyStorageError("lock order sequence", err)
	}
	return counter, nil
}

// lastIssuedSequence reads the highest order number already stored under
// cyclePrefix. Longer suffixes sort first so 1000 ranks above 999.
func (a *SequenceAllocator) lastIssuedSequence(ctx context.Context, tx *sql.Tx, cyclePrefix string) (int, error) {
	var orderNumber string
	err := tx.QueryRowContext(ctx, `
		SELECT order_number
		FROM orders
		WHERE order_number LIKE $1
		ORDER BY length(order_number) DESC, order_number DESC
		LIMIT 1`, cyclePrefix+"-%").Scan(&orderNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, classifyStorageError("read last order number", err)
	}

	seq, err := ParseSequence(orderNumber, cyclePrefix)
	if err != nil {
		log.Printf("[SEQUENCE] Refusing to number orders in %s: %v", cyclePrefix, err)
		return 0, &IntegrityViolationError{Op: "read last order number", Detail: "unparseable historical order number", Err: err}
	}
	return seq, nil
}
