package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Get(ctx context.Context, orgID snowflake.ID) (*Subscription, error)
	// GateSearch reports whether the organization may start a new search run.
	// Returns ErrTrialExpired or ErrSubscriptionInactive when it may not.
	GateSearch(ctx context.Context, orgID snowflake.ID) error
}

var (
	ErrNotFound             = errors.New("subscription_not_found")
	ErrTrialExpired         = errors.New("trial_expired")
	ErrSubscriptionInactive = errors.New("subscription_inactive")
)
