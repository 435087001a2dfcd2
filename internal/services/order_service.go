package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/doorcraft/backend/internal/audit"
	"github.com/doorcraft/backend/internal/config"
	"github.com/doorcraft/backend/internal/metrics"
	"github.com/doorcraft/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ResetDayProvider supplies the billing cycle reset day for one placement
type ResetDayProvider interface {
	CycleResetDay(ctx context.Context) int
}

// Dispatcher sends the post-commit notification without blocking
type Dispatcher interface {
	Dispatch(n OrderNotification) bool
}

type placementState string

const (
	stateStarted    placementState = "Started"
	stateLocked     placementState = "Locked"
	stateDebited    placementState = "Debited"
	stateNumbered   placementState = "Numbered"
	stateAssembled  placementState = "Assembled"
	statePersisted  placementState = "Persisted"
	stateCommitted  placementState = "Committed"
	stateRolledBack placementState = "RolledBack"
)

// OrderService coordinates wallet debit, order numbering and persistence
// in a single database transaction.
type OrderService struct {
	db        *sql.DB
	guard     *WalletGuard
	allocator *SequenceAllocator
	assembler *OrderAssembler
	settings  ResetDayProvider
	notifier  Dispatcher
	audit     *audit.AuditLogger
	metrics   *metrics.PlacementMetrics
	config    *config.PlacementConfig
	now       func() time.Time
}

func NewOrderService(db *sql.DB, settings ResetDayProvider, notifier Dispatcher, cfg *config.PlacementConfig, m *metrics.PlacementMetrics) *OrderService {
	if cfg == nil {
		cfg = config.LoadPlacementConfig()
	}
	return &OrderService{
		db:        db,
		guard:     NewWalletGuard(),
		allocator: NewSequenceAllocator(cfg.OrderNumberPrefix),
		assembler: NewOrderAssembler(),
		settings:  settings,
		notifier:  notifier,
		audit:     audit.NewAuditLogger(),
		metrics:   m,
		config:    cfg,
		now:       time.Now,
	}
}

// PlaceOrder debits the dealer's wallet, numbers and stores the order, all
// or nothing. On success the notification is fired after commit.
func (s *OrderService) PlaceOrder(ctx context.Context, req *models.PlaceOrderRequest) (*models.Order, error) {
	start := time.Now()
	order, err := s.placeOrder(ctx, req)
	s.metrics.ObservePlacement(placementOutcome(err), time.Since(start))
	return order, err
}

func (s *OrderService) placeOrder(ctx context.Context, req *models.PlaceOrderRequest) (*models.Order, error) {
	order, err := s.assembler.AssembleOrder(req)
	if err != nil {
		dealerID := ""
		if req != nil {
			dealerID = req.DealerID
		}
		log.Printf("[ORDER_PLACEMENT] Rejected request from dealer %s: %v", dealerID, err)
		s.audit.LogRejection(dealerID, decimal.Zero, err.Error())
		return nil, err
	}
	if s.config.MaxOrderLines > 0 && len(order.LineItems) > s.config.MaxOrderLines {
		err := invalidRequest("order has %d lines, limit is %d", len(order.LineItems), s.config.MaxOrderLines)
		s.audit.LogRejection(order.DealerID, order.TotalAmount, err.Error())
		return nil, err
	}

	resetDay := s.settings.CycleResetDay(ctx)

	// The transaction follows the request context up to Commit. database/sql
	// never interrupts a commit once it has been issued.
	ctx, cancel := context.WithTimeout(ctx, s.config.PlacementTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.fail(order, stateStarted, classifyStorageError("begin placement", err))
	}
	defer tx.Rollback()

	if s.config.LockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.config.LockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return nil, s.fail(order, stateStarted, classifyStorageError("set lock timeout", err))
		}
	}

	dealer, err := s.guard.Lock(ctx, tx, order.DealerID)
	if err != nil {
		return nil, s.fail(order, stateStarted, err)
	}

	if order.IdempotencyKey != "" {
		existing, err := s.findByIdempotencyKey(ctx, tx, order.DealerID, order.IdempotencyKey)
		if err != nil {
			return nil, s.fail(order, stateLocked, err)
		}
		if existing != nil {
			if len(existing.LineItems) != len(order.LineItems) || !existing.TotalAmount.Equal(order.TotalAmount) {
				return nil, s.fail(order, stateLocked, invalidRequest(
					"idempotency key %s was already used for order %s with a different payload", order.IdempotencyKey, existing.OrderNumber))
			}
			log.Printf("[ORDER_PLACEMENT] Idempotent replay for dealer %s key %s, returning %s", order.DealerID, order.IdempotencyKey, existing.OrderNumber)
			s.audit.LogReplay(existing.OrderNumber, order.DealerID, order.IdempotencyKey)
			return existing, nil
		}
	}

	if err := s.guard.Debit(ctx, tx, dealer, order.TotalAmount); err != nil {
		return nil, s.fail(order, stateLocked, err)
	}

	now := s.now()
	orderNumber, err := s.allocator.NextOrderNumber(ctx, tx, s.allocator.CyclePrefix(now, resetDay))
	if err != nil {
		return nil, s.fail(order, stateDebited, err)
	}
	log.Printf("[ORDER_PLACEMENT] %s: dealer %s assigned %s", stateNumbered, order.DealerID, orderNumber)

	order.ID = uuid.NewString()
	order.OrderNumber = orderNumber
	order.CreatedAt = now

	if err := s.persistOrder(ctx, tx, order); err != nil {
		return nil, s.fail(order, stateAssembled, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, s.fail(order, statePersisted, classifyStorageError("commit placement", err))
	}

	log.Printf("[ORDER_PLACEMENT] %s: order %s for dealer %s, total %s, balance now %s",
		stateCommitted, order.OrderNumber, order.DealerID, order.TotalAmount.StringFixed(2), dealer.Balance.StringFixed(2))
	s.audit.LogPlacement(order.OrderNumber, order.DealerID, order.TotalAmount, len(order.LineItems))

	if s.notifier == nil || !s.notifier.Dispatch(NewOrderNotification(order, dealer)) {
		log.Printf("[ORDER_PLACEMENT] NotificationSkipped for %s", order.OrderNumber)
	}

	return order, nil
}

// fail logs the transition to RolledBack. The deferred tx.Rollback in
// placeOrder runs before the error reaches the caller.
func (s *OrderService) fail(order *models.Order, from placementState, err error) error {
	log.Printf("[ORDER_PLACEMENT] %s -> %s for dealer %s: %v", from, stateRolledBack, order.DealerID, err)

	var funds *InsufficientFundsError
	switch {
	case errors.As(err, &funds):
		s.audit.LogRejection(order.DealerID, order.TotalAmount,
			fmt.Sprintf("insufficient funds: available %s", funds.Available.StringFixed(2)))
	case errors.Is(err, ErrInvalidOrderRequest):
		s.audit.LogRejection(order.DealerID, order.TotalAmount, err.Error())
	case errors.Is(err, ErrIntegrityViolation):
		log.Printf("[ORDER_PLACEMENT] !!! INTEGRITY VIOLATION for dealer %s order %q: %v", order.DealerID, order.OrderNumber, err)
		s.audit.LogIntegrityViolation(order.DealerID, order.OrderNumber, err, map[string]string{
			"state":        string(from),
			"total_amount": order.TotalAmount.StringFixed(2),
		})
	default:
		s.audit.LogError(order.DealerID, string(from), err)
	}
	return err
}

func (s *OrderService) persistOrder(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	idempotencyKey := sql.NullString{String: order.IdempotencyKey, Valid: order.IdempotencyKey != ""}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO orders
		(id, order_number, dealer_id, project_name, contact_name, contact_phone, shipping_address, remark, total_amount, status, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		order.ID, order.OrderNumber, order.DealerID, order.ProjectName,
		order.Shipping.ContactName, order.Shipping.ContactPhone, order.Shipping.Address, order.Remark,
		order.TotalAmount, string(order.Status), idempotencyKey, order.CreatedAt)
	if err != nil {
		return classifyStorageError("insert order", err)
	}

	for _, line := range order.LineItems {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_lines
			(order_id, line_no, product_id, product_name, quantity, width_mm, height_mm, configuration, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			order.ID, line.LineNo, line.ProductID, line.ProductName, line.Quantity,
			line.Width, line.Height, line.Configuration, line.UnitPrice, line.Subtotal)
		if err != nil {
			return classifyStorageError(fmt.Sprintf("insert order line %d", line.LineNo), err)
		}
	}
	return nil
}

func (s *OrderService) findByIdempotencyKey(ctx context.Context, tx *sql.Tx, dealerID, key string) (*models.Order, error) {
	var orderNumber string
	err := tx.QueryRowContext(ctx, `
		SELECT order_number
		FROM orders
		WHERE dealer_id = $1 AND idempotency_key = $2`, dealerID, key).Scan(&orderNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classifyStorageError("lookup idempotency key", err)
	}
	return s.loadOrder(ctx, tx, dealerID, orderNumber)
}

// GetOrder returns one of the dealer's orders with its lines
func (s *OrderService) GetOrder(ctx context.Context, dealerID, orderNumber string) (*models.Order, error) {
	return s.loadOrder(ctx, s.db, dealerID, orderNumber)
}

func (s *OrderService) loadOrder(ctx context.Context, q querier, dealerID, orderNumber string) (*models.Order, error) {
	var order models.Order
	var status string
	err := q.QueryRowContext(ctx, `
		SELECT id, order_number, dealer_id, project_name, contact_name, contact_phone, shipping_address, remark, total_amount, status, created_at
		FROM orders
		WHERE dealer_id = $1 AND order_number = $2`, dealerID, orderNumber).Scan(
		&order.ID, &order.OrderNumber, &order.DealerID, &order.ProjectName,
		&order.Shipping.ContactName, &order.Shipping.ContactPhone, &order.Shipping.Address, &order.Remark,
		&order.TotalAmount, &status, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, classifyStorageError("read order", err)
	}
	order.Status = models.OrderStatus(status)

	rows, err := q.QueryContext(ctx, `
		SELECT line_no, product_id, product_name, quantity, width_mm, height_mm, configuration, unit_price, subtotal
		FROM order_lines
		WHERE order_id = $1
		ORDER BY line_no`, order.ID)
	if err != nil {
		return nil, classifyStorageError("read order lines", err)
	}
	defer rows.Close()

	linesTotal := decimal.Zero
	for rows.Next() {
		var line models.OrderLine
		if err := rows.Scan(&line.LineNo, &line.ProductID, &line.ProductName, &line.Quantity,
			&line.Width, &line.Height, &line.Configuration, &line.UnitPrice, &line.Subtotal); err != nil {
			return nil, classifyStorageError("scan order line", err)
		}
		linesTotal = linesTotal.Add(line.Subtotal)
		order.LineItems = append(order.LineItems, line)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyStorageError("read order lines", err)
	}

	if !linesTotal.Equal(order.TotalAmount) {
		err := &IntegrityViolationError{Op: "read order", Detail: fmt.Sprintf("total %s does not match line sum %s", order.TotalAmount, linesTotal)}
		s.audit.LogIntegrityViolation(dealerID, order.OrderNumber, err, nil)
		return nil, err
	}

	return &order, nil
}

// ListOrders returns the dealer's most recent order headers
func (s *OrderService) ListOrders(ctx context.Context, dealerID string, limit int) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_number, dealer_id, project_name, contact_name, contact_phone, shipping_address, remark, total_amount, status, created_at
		FROM orders
		WHERE dealer_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, dealerID, limit)
	if err != nil {
		return nil, classifyStorageError("list orders", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var order models.Order
		var status string
		if err := rows.Scan(&order.ID, &order.OrderNumber, &order.DealerID, &order.ProjectName,
			&order.Shipping.ContactName, &order.Shipping.ContactPhone, &order.Shipping.Address, &order.Remark,
			&order.TotalAmount, &status, &order.CreatedAt); err != nil {
			return nil, classifyStorageError("scan order", err)
		}
		order.Status = models.OrderStatus(status)
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// WalletBalance returns the dealer's current balance
func (s *OrderService) WalletBalance(ctx context.Context, dealerID string) (*models.DealerAccount, error) {
	return s.guard.Balance(ctx, s.db, dealerID)
}

func placementOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidOrderRequest):
		return "invalid_request"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrIntegrityViolation):
		return "integrity_violation"
	default:
		return "transient_error"
	}
}
