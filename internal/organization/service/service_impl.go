package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/talentsift/talentsift/internal/config"
	creditdomain "github.com/talentsift/talentsift/internal/credit/domain"
	orgdomain "github.com/talentsift/talentsift/internal/organization/domain"
	subscriptiondomain "github.com/talentsift/talentsift/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Cfg   config.Config
	Repo  orgdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	cfg   config.Config
	repo  orgdomain.Repository
}

func New(p Params) orgdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("organization.service"),
		genID: p.GenID,
		cfg:   p.Cfg,
		repo:  p.Repo,
	}
}

func (s *Service) Provision(ctx context.Context, req orgdomain.ProvisionRequest) (*orgdomain.Organization, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, orgdomain.ErrInvalidName
	}
	if req.UserID == 0 {
		return nil, orgdomain.ErrInvalidUser
	}

	now := time.Now().UTC()
	org := &orgdomain.Organization{
		ID:        s.genID.Generate(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, org); err != nil {
			return err
		}

		member := &orgdomain.OrganizationMember{
			ID:        s.genID.Generate(),
			OrgID:     org.ID,
			UserID:    req.UserID,
			Role:      orgdomain.RoleOwner,
			CreatedAt: now,
		}
		if err := s.repo.InsertMember(ctx, tx, member); err != nil {
			return err
		}

		trialEnd := now.AddDate(0, 0, s.cfg.TrialDays)
		sub := &subscriptiondomain.Subscription{
			ID:          s.genID.Generate(),
			OrgID:       org.ID,
			Status:      subscriptiondomain.StatusTrialing,
			TrialEndsAt: &trialEnd,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.WithContext(ctx).Create(sub).Error; err != nil {
			return err
		}

		grant := s.cfg.SignupCreditGrant
		balance := &creditdomain.CreditBalance{
			OrgID:     org.ID,
			Balance:   grant,
			UpdatedAt: now,
		}
		if err := tx.WithContext(ctx).Create(balance).Error; err != nil {
			return err
		}

		if grant > 0 {
			row := &creditdomain.CreditTransaction{
				ID:            s.genID.Generate(),
				OrgID:         org.ID,
				UserID:        req.UserID,
				Amount:        -grant,
				CreditType:    creditdomain.CreditTypeSignupGrant,
				BalanceBefore: 0,
				BalanceAfter:  grant,
				Description:   "signup trial credits",
				CreatedAt:     now,
			}
			if err := tx.WithContext(ctx).Create(row).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("organization provisioned",
		zap.String("org_id", org.ID.String()),
		zap.String("user_id", req.UserID.String()),
	)
	return org, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*orgdomain.Organization, error) {
	org, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, orgdomain.ErrNotFound
	}
	return org, nil
}

func (s *Service) IsMember(ctx context.Context, orgID, userID snowflake.ID) (bool, error) {
	if orgID == 0 || userID == 0 {
		return false, nil
	}
	member, err := s.repo.FindMember(ctx, s.db, orgID, userID)
	if err != nil {
		return false, err
	}
	return member != nil, nil
}

func (s *Service) ListForUser(ctx context.Context, userID snowflake.ID) ([]orgdomain.Organization, error) {
	return s.repo.ListByUser(ctx, s.db, userID)
}
