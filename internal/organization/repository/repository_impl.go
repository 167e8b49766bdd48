package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	orgdomain "github.com/talentsift/talentsift/internal/organization/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() orgdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, org *orgdomain.Organization) error {
	return db.WithContext(ctx).Create(org).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*orgdomain.Organization, error) {
	var org orgdomain.Organization
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, created_at, updated_at FROM organizations WHERE id = ?`,
		id,
	).Scan(&org).Error
	if err != nil {
		return nil, err
	}
	if org.ID == 0 {
		return nil, nil
	}
	return &org, nil
}

func (r *repo) InsertMember(ctx context.Context, db *gorm.DB, member *orgdomain.OrganizationMember) error {
	return db.WithContext(ctx).Create(member).Error
}

func (r *repo) FindMember(ctx context.Context, db *gorm.DB, orgID, userID snowflake.ID) (*orgdomain.OrganizationMember, error) {
	var member orgdomain.OrganizationMember
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, user_id, role, created_at
		 FROM organization_members WHERE org_id = ? AND user_id = ?`,
		orgID,
		userID,
	).Scan(&member).Error
	if err != nil {
		return nil, err
	}
	if member.ID == 0 {
		return nil, nil
	}
	return &member, nil
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]orgdomain.Organization, error) {
	var orgs []orgdomain.Organization
	err := db.WithContext(ctx).Raw(
		`SELECT o.id, o.name, o.created_at, o.updated_at
		 FROM organizations o
		 JOIN organization_members m ON m.org_id = o.id
		 WHERE m.user_id = ?
		 ORDER BY o.created_at ASC`,
		userID,
	).Scan(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}
