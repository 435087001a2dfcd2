package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/doorcraft/backend/internal/models"
	"github.com/shopspring/decimal"
)

// WalletGuard locks a dealer's balance row and debits it. The row lock is
// held until the caller's transaction ends, so two placements can never
// both pass the sufficiency check against the same funds.
type WalletGuard struct{}

func NewWalletGuard() *WalletGuard {
	return &WalletGuard{}
}

// Lock acquires the exclusive row lock on the dealer account and returns its current state
func (g *WalletGuard) Lock(ctx context.Context, tx *sql.Tx, dealerID string) (*models.DealerAccount, error) {
	var account models.DealerAccount
	err := tx.QueryRowContext(ctx, `
		SELECT id, name, balance, updated_at
		FROM dealer_accounts
		WHERE id = $1
		FOR UPDATE`, dealerID).Scan(&account.ID, &account.Name, &account.Balance, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[WALLET] Dealer account not found: %s", dealerID)
			return nil, invalidRequest("dealer account %s not found", dealerID)
		}
		if isLockTimeout(err) {
			log.Printf("[WALLET] Lock timeout on dealer account %s", dealerID)
		}
		return nil, classifyStorageError("lock dealer account", err)
	}

	if account.Balance.IsNegative() {
		return nil, &IntegrityViolationError{Op: "lock dealer account", Detail: fmt.Sprintf("negative balance %s on %s", account.Balance, dealerID)}
	}

	return &account, nil
}

// Debit subtracts amount from a locked account. account must come from Lock
// on the same tx; it is updated in place on success.
func (g *WalletGuard) Debit(ctx context.Context, tx *sql.Tx, account *models.DealerAccount, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return invalidRequest("order total must be greater than zero")
	}

	if account.Balance.LessThan(amount) {
		log.Printf("[WALLET] Insufficient balance for dealer %s: %s < %s", account.ID, account.Balance.StringFixed(2), amount.StringFixed(2))
		return &InsufficientFundsError{
			DealerID:  account.ID,
			Required:  amount,
			Available: account.Balance,
		}
	}

	newBalance := account.Balance.Sub(amount)
	now := time.Now()

	result, err := tx.ExecContext(ctx, `
		UPDATE dealer_accounts
		SET balance = $1, updated_at = $2
		WHERE id = $3`,
		newBalance, now, account.ID)
	if err != nil {
		return classifyStorageError("debit dealer account", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return classifyStorageError("debit dealer account", err)
	}
	if rowsAffected != 1 {
		return &IntegrityViolationError{Op: "debit dealer account", Detail: fmt.Sprintf("%d rows updated for locked account %s", rowsAffected, account.ID)}
	}

	log.Printf("[WALLET] Debited dealer %s: %s -> %s", account.ID, account.Balance.StringFixed(2), newBalance.StringFixed(2))
	account.Balance = newBalance
	account.UpdatedAt = now
	return nil
}

// Balance reads the current balance without locking
func (g *WalletGuard) Balance(ctx context.Context, q querier, dealerID string) (*models.DealerAccount, error) {
	var account models.DealerAccount
	err := q.QueryRowContext(ctx, `
		SELECT id, name, balance, updated_at
		FROM dealer_accounts
		WHERE id = $1`, dealerID).Scan(&account.ID, &account.Name, &account.Balance, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invalidRequest("dealer account %s not found", dealerID)
		}
		return nil, classifyStorageError("read dealer balance", err)
	}
	return &account, nil
}
