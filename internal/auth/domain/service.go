package domain

import (
	"context"
	"time"
)

type Service interface {
	// Signup creates the user and provisions their organization with a
	// trial subscription and signup credit grant in one flow.
	Signup(ctx context.Context, req SignupRequest) (*LoginResult, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (*Session, error)
}

type SignupRequest struct {
	Email            string
	Password         string
	DisplayName      string
	OrganizationName string
	UserAgent        string
	IPAddress        string
}

type LoginRequest struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

type LoginResult struct {
	User      *User
	RawToken  string
	ExpiresAt time.Time
}
