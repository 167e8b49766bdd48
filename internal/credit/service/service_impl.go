package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/talentsift/talentsift/internal/analytics"
	creditdomain "github.com/talentsift/talentsift/internal/credit/domain"
	orgdomain "github.com/talentsift/talentsift/internal/organization/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	OrgSvc    orgdomain.Service
	Analytics analytics.Emitter `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	orgSvc    orgdomain.Service
	analytics analytics.Emitter
}

func New(p Params) creditdomain.Service {
	emitter := p.Analytics
	if emitter == nil {
		emitter = analytics.NoOpEmitter{}
	}
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("credit.service"),
		genID:     p.GenID,
		orgSvc:    p.OrgSvc,
		analytics: emitter,
	}
}

func (s *Service) Deduct(ctx context.Context, req creditdomain.DeductRequest) (*creditdomain.CreditTransaction, error) {
	if req.OrganizationID == 0 {
		return nil, creditdomain.ErrInvalidOrganization
	}
	if req.Amount <= 0 {
		return nil, creditdomain.ErrInvalidAmount
	}
	if req.UserID == 0 {
		return nil, orgdomain.ErrInvalidUser
	}

	isMember, err := s.orgSvc.IsMember(ctx, req.OrganizationID, req.UserID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, orgdomain.ErrNotMember
	}

	var row *creditdomain.CreditTransaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		// The guarded UPDATE is the serialization point: under concurrent
		// deductions on the same organization only the callers whose combined
		// amounts fit the balance see RowsAffected = 1.
		result := tx.WithContext(ctx).Exec(
			`UPDATE credit_balances
			 SET balance = balance - ?, updated_at = ?
			 WHERE org_id = ? AND balance >= ?`,
			req.Amount,
			now,
			req.OrganizationID,
			req.Amount,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var found int64
			if err := tx.WithContext(ctx).Raw(
				`SELECT COUNT(1) FROM credit_balances WHERE org_id = ?`,
				req.OrganizationID,
			).Scan(&found).Error; err != nil {
				return err
			}
			if found == 0 {
				return creditdomain.ErrBalanceNotFound
			}
			return creditdomain.ErrInsufficientCredits
		}

		var after int64
		if err := tx.WithContext(ctx).Raw(
			`SELECT balance FROM credit_balances WHERE org_id = ?`,
			req.OrganizationID,
		).Scan(&after).Error; err != nil {
			return err
		}

		row = &creditdomain.CreditTransaction{
			ID:              s.genID.Generate(),
			OrgID:           req.OrganizationID,
			UserID:          req.UserID,
			Amount:          req.Amount,
			CreditType:      req.CreditType,
			RelatedEntityID: req.RelatedEntityID,
			BalanceBefore:   after + req.Amount,
			BalanceAfter:    after,
			Description:     req.Description,
			Metadata:        datatypes.JSONMap(req.Metadata),
			CreatedAt:       now,
		}
		if err := tx.WithContext(ctx).Create(row).Error; err != nil {
			return err
		}
		if req.Apply != nil {
			return req.Apply(tx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.analytics.Emit(ctx, analytics.Event{
		Name:           "credits.deducted",
		OrganizationID: req.OrganizationID.String(),
		UserID:         req.UserID.String(),
		Properties: map[string]any{
			"amount":        req.Amount,
			"credit_type":   string(req.CreditType),
			"balance_after": row.BalanceAfter,
		},
	})

	return row, nil
}

func (s *Service) Grant(ctx context.Context, req creditdomain.GrantRequest) (*creditdomain.CreditTransaction, error) {
	if req.OrganizationID == 0 {
		return nil, creditdomain.ErrInvalidOrganization
	}
	if req.Amount <= 0 {
		return nil, creditdomain.ErrInvalidAmount
	}

	creditType := req.CreditType
	if creditType == "" {
		creditType = creditdomain.CreditTypeAdjustment
	}

	var row *creditdomain.CreditTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		result := tx.WithContext(ctx).Exec(
			`UPDATE credit_balances
			 SET balance = balance + ?, updated_at = ?
			 WHERE org_id = ?`,
			req.Amount,
			now,
			req.OrganizationID,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return creditdomain.ErrBalanceNotFound
		}

		var after int64
		if err := tx.WithContext(ctx).Raw(
			`SELECT balance FROM credit_balances WHERE org_id = ?`,
			req.OrganizationID,
		).Scan(&after).Error; err != nil {
			return err
		}

		row = &creditdomain.CreditTransaction{
			ID:              s.genID.Generate(),
			OrgID:           req.OrganizationID,
			UserID:          req.UserID,
			Amount:          -req.Amount,
			CreditType:      creditType,
			RelatedEntityID: req.RelatedEntityID,
			BalanceBefore:   after - req.Amount,
			BalanceAfter:    after,
			Description:     req.Description,
			CreatedAt:       now,
		}
		return tx.WithContext(ctx).Create(row).Error
	})
	if err != nil {
		return nil, err
	}

	return row, nil
}

func (s *Service) Balance(ctx context.Context, orgID snowflake.ID) (int64, error) {
	if orgID == 0 {
		return 0, creditdomain.ErrInvalidOrganization
	}

	var balance creditdomain.CreditBalance
	err := s.db.WithContext(ctx).Raw(
		`SELECT org_id, balance, updated_at FROM credit_balances WHERE org_id = ?`,
		orgID,
	).Scan(&balance).Error
	if err != nil {
		return 0, err
	}
	if balance.OrgID == 0 {
		return 0, creditdomain.ErrBalanceNotFound
	}
	return balance.Balance, nil
}

func (s *Service) History(ctx context.Context, orgID snowflake.ID, limit, offset int) ([]creditdomain.CreditTransaction, error) {
	if orgID == 0 {
		return nil, creditdomain.ErrInvalidOrganization
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rows []creditdomain.CreditTransaction
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, org_id, user_id, amount, credit_type, related_entity_id,
		        balance_before, balance_after, description, metadata, created_at
		 FROM credit_transactions
		 WHERE org_id = ?
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`,
		orgID,
		limit,
		offset,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
