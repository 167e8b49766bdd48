package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// CreditType tags what a ledger entry paid for.
type CreditType string

const (
	CreditTypeProfileReveal    CreditType = "profile_reveal"
	CreditTypeCandidateScoring CreditType = "candidate_scoring"
	CreditTypeSignupGrant      CreditType = "signup_grant"
	CreditTypeAdjustment       CreditType = "adjustment"
)

// CreditBalance is the current per-organization balance. All mutations go
// through the ledger inside one transaction.
type CreditBalance struct {
	OrgID     snowflake.ID `json:"organization_id" gorm:"column:org_id;primaryKey"`
	Balance   int64        `json:"balance" gorm:"not null"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CreditBalance) TableName() string { return "credit_balances" }

// CreditTransaction is an immutable ledger row. Amount is positive for
// deductions and negative for grants; BalanceAfter = BalanceBefore - Amount.
type CreditTransaction struct {
	ID              snowflake.ID      `json:"id" gorm:"primaryKey"`
	OrgID           snowflake.ID      `json:"organization_id" gorm:"column:org_id;not null;index"`
	UserID          snowflake.ID      `json:"user_id" gorm:"not null"`
	Amount          int64             `json:"amount" gorm:"not null"`
	CreditType      CreditType        `json:"credit_type" gorm:"type:text;not null"`
	RelatedEntityID snowflake.ID      `json:"related_entity_id"`
	BalanceBefore   int64             `json:"balance_before" gorm:"not null"`
	BalanceAfter    int64             `json:"balance_after" gorm:"not null"`
	Description     string            `json:"description" gorm:"type:text"`
	Metadata        datatypes.JSONMap `json:"metadata"`
	CreatedAt       time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CreditTransaction) TableName() string { return "credit_transactions" }
