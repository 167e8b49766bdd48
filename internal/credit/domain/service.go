package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Service interface {
	// Deduct verifies membership and balance, then decrements the balance and
	// writes one ledger row atomically. Insufficient balance rejects the whole
	// operation with ErrInsufficientCredits and writes nothing. When the
	// request carries an Apply hook, it runs inside the same transaction so
	// the charged side effect commits or rolls back together with the charge.
	Deduct(ctx context.Context, req DeductRequest) (*CreditTransaction, error)
	// Grant adds credits (signup grant, top-up). Recorded as a negative-amount
	// ledger row under the same transaction discipline as Deduct.
	Grant(ctx context.Context, req GrantRequest) (*CreditTransaction, error)
	Balance(ctx context.Context, orgID snowflake.ID) (int64, error)
	History(ctx context.Context, orgID snowflake.ID, limit, offset int) ([]CreditTransaction, error)
}

type DeductRequest struct {
	OrganizationID  snowflake.ID
	UserID          snowflake.ID
	Amount          int64
	CreditType      CreditType
	RelatedEntityID snowflake.ID
	Description     string
	Metadata        map[string]any

	// Apply, when set, executes inside the deduction transaction after the
	// ledger row is written. Returning an error rolls back the charge.
	Apply func(tx *gorm.DB) error
}

type GrantRequest struct {
	OrganizationID  snowflake.ID
	UserID          snowflake.ID
	Amount          int64
	CreditType      CreditType
	RelatedEntityID snowflake.ID
	Description     string
}

var (
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInsufficientCredits = errors.New("insufficient_credits")
	ErrBalanceNotFound     = errors.New("credit_balance_not_found")
)
