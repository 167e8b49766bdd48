package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status mirrors the billing provider's subscription state. The core only
// reads it for gating; lifecycle updates arrive from the provider webhook.
type Status string

const (
	StatusTrialing Status = "trialing"
	StatusActive   Status = "active"
	StatusCanceled Status = "canceled"
	StatusExpired  Status = "expired"
)

type Subscription struct {
	ID               snowflake.ID `json:"id" gorm:"primaryKey"`
	OrgID            snowflake.ID `json:"organization_id" gorm:"column:org_id;not null;uniqueIndex"`
	Status           Status       `json:"status" gorm:"type:text;not null"`
	TrialEndsAt      *time.Time   `json:"trial_ends_at"`
	CurrentPeriodEnd *time.Time   `json:"current_period_end"`
	CreatedAt        time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }
