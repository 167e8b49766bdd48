package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Provision creates the organization, its owner membership, a trial
	// subscription and the signup credit grant in a single transaction.
	Provision(ctx context.Context, req ProvisionRequest) (*Organization, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Organization, error)
	// IsMember reports whether the user belongs to the organization.
	IsMember(ctx context.Context, orgID, userID snowflake.ID) (bool, error)
	ListForUser(ctx context.Context, userID snowflake.ID) ([]Organization, error)
}

type ProvisionRequest struct {
	Name   string
	UserID snowflake.ID
}

var (
	ErrInvalidName = errors.New("invalid_organization_name")
	ErrInvalidUser = errors.New("invalid_user")
	ErrNotFound    = errors.New("organization_not_found")
	ErrNotMember   = errors.New("not_a_member")
)
