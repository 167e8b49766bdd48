package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentsift/talentsift/internal/auth/domain"
	authrepo "github.com/talentsift/talentsift/internal/auth/repository"
	orgdomain "github.com/talentsift/talentsift/internal/organization/domain"
	pkgdb "github.com/talentsift/talentsift/pkg/db"
	"go.uber.org/zap"
)

type stubOrgService struct {
	provisioned []orgdomain.ProvisionRequest
	err         error
}

func (s *stubOrgService) Provision(_ context.Context, req orgdomain.ProvisionRequest) (*orgdomain.Organization, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.provisioned = append(s.provisioned, req)
	return &orgdomain.Organization{Name: req.Name}, nil
}

func (s *stubOrgService) GetByID(context.Context, snowflake.ID) (*orgdomain.Organization, error) {
	return nil, errors.New("not implemented")
}

func (s *stubOrgService) IsMember(context.Context, snowflake.ID, snowflake.ID) (bool, error) {
	return false, errors.New("not implemented")
}

func (s *stubOrgService) ListForUser(context.Context, snowflake.ID) ([]orgdomain.Organization, error) {
	return nil, errors.New("not implemented")
}

func newTestService(t *testing.T) (domain.Service, *stubOrgService) {
	t.Helper()

	db, err := pkgdb.NewTest()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Session{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	repo, sessionRepo := authrepo.New(db)
	orgSvc := &stubOrgService{}
	return New(zap.NewNop(), repo, sessionRepo, orgSvc, node), orgSvc
}

func signupReq() domain.SignupRequest {
	return domain.SignupRequest{
		Email:            "jane@example.com",
		Password:         "correct horse battery",
		DisplayName:      "Jane Doe",
		OrganizationName: "Acme Recruiting",
	}
}

func TestSignupProvisionsOrganization(t *testing.T) {
	svc, orgSvc := newTestService(t)

	result, err := svc.Signup(context.Background(), signupReq())
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", result.User.Email)
	assert.NotEmpty(t, result.RawToken)
	assert.True(t, result.ExpiresAt.After(time.Now()))

	require.Len(t, orgSvc.provisioned, 1)
	assert.Equal(t, "Acme Recruiting", orgSvc.provisioned[0].Name)
	assert.Equal(t, result.User.ID, orgSvc.provisioned[0].UserID)
}

func TestSignupDefaultsOrganizationName(t *testing.T) {
	svc, orgSvc := newTestService(t)

	req := signupReq()
	req.OrganizationName = ""
	_, err := svc.Signup(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, orgSvc.provisioned, 1)
	assert.Equal(t, "Jane Doe", orgSvc.provisioned[0].Name)
}

func TestSignupNormalizesEmail(t *testing.T) {
	svc, _ := newTestService(t)

	req := signupReq()
	req.Email = "  Jane@Example.COM "
	result, err := svc.Signup(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", result.User.Email)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Signup(context.Background(), signupReq())
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), signupReq())
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestSignupRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)

	req := signupReq()
	req.Email = "not-an-email"
	_, err := svc.Signup(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	req = signupReq()
	req.Password = "short"
	_, err = svc.Signup(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginVerifiesPassword(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Signup(context.Background(), signupReq())
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "jane@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.RawToken)

	_, err = svc.Login(context.Background(), domain.LoginRequest{
		Email:    "jane@example.com",
		Password: "wrong password",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginUnknownUserIsInvalidCredentials(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever password",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticateAcceptsIssuedToken(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Signup(context.Background(), signupReq())
	require.NoError(t, err)

	session, err := svc.Authenticate(context.Background(), result.RawToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, session.UserID)
}

func TestAuthenticateRejectsGarbageToken(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "not-a-real-token")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)

	_, err = svc.Authenticate(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Signup(context.Background(), signupReq())
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), result.RawToken))

	_, err = svc.Authenticate(context.Background(), result.RawToken)
	assert.ErrorIs(t, err, domain.ErrSessionRevoked)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	encoded, err := hashPassword("a strong passphrase")
	require.NoError(t, err)
	assert.True(t, verifyPassword("a strong passphrase", encoded))
	assert.False(t, verifyPassword("a wrong passphrase", encoded))
	assert.False(t, verifyPassword("a strong passphrase", "$argon2id$v=19$bogus"))
}
