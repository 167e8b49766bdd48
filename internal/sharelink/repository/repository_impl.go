package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	sharelinkdomain "github.com/talentsift/talentsift/internal/sharelink/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() sharelinkdomain.Repository {
	return &repo{}
}

func (r *repo) FindActiveBySearchID(ctx context.Context, db *gorm.DB, searchID snowflake.ID) (*sharelinkdomain.ShareLink, error) {
	var link sharelinkdomain.ShareLink
	err := db.WithContext(ctx).
		Where("search_id = ? AND revoked_at IS NULL", searchID).
		First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repo) FindActiveByToken(ctx context.Context, db *gorm.DB, token string) (*sharelinkdomain.ShareLink, error) {
	var link sharelinkdomain.ShareLink
	err := db.WithContext(ctx).
		Where("token = ? AND revoked_at IS NULL", token).
		First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, link *sharelinkdomain.ShareLink) error {
	return db.WithContext(ctx).Create(link).Error
}
