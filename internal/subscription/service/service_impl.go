package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	subscriptiondomain "github.com/talentsift/talentsift/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(p Params) subscriptiondomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("subscription.service"),
	}
}

func (s *Service) Get(ctx context.Context, orgID snowflake.ID) (*subscriptiondomain.Subscription, error) {
	var sub subscriptiondomain.Subscription
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, org_id, status, trial_ends_at, current_period_end, created_at, updated_at
		 FROM subscriptions WHERE org_id = ?`,
		orgID,
	).Scan(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.ID == 0 {
		return nil, subscriptiondomain.ErrNotFound
	}
	return &sub, nil
}

func (s *Service) GateSearch(ctx context.Context, orgID snowflake.ID) error {
	sub, err := s.Get(ctx, orgID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	switch sub.Status {
	case subscriptiondomain.StatusActive:
		return nil
	case subscriptiondomain.StatusTrialing:
		if sub.TrialEndsAt != nil && now.After(*sub.TrialEndsAt) {
			return subscriptiondomain.ErrTrialExpired
		}
		return nil
	default:
		return subscriptiondomain.ErrSubscriptionInactive
	}
}
