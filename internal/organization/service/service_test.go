package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentsift/talentsift/internal/config"
	creditdomain "github.com/talentsift/talentsift/internal/credit/domain"
	orgdomain "github.com/talentsift/talentsift/internal/organization/domain"
	orgrepo "github.com/talentsift/talentsift/internal/organization/repository"
	subscriptiondomain "github.com/talentsift/talentsift/internal/subscription/domain"
	pkgdb "github.com/talentsift/talentsift/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (orgdomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := pkgdb.NewTest()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&orgdomain.Organization{},
		&orgdomain.OrganizationMember{},
		&subscriptiondomain.Subscription{},
		&creditdomain.CreditBalance{},
		&creditdomain.CreditTransaction{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Cfg: config.Config{
			TrialDays:         14,
			SignupCreditGrant: 100,
		},
		Repo: orgrepo.Provide(),
	})
	return svc, db, node
}

func TestProvisionCreatesFullTenant(t *testing.T) {
	svc, db, node := newTestService(t)
	userID := node.Generate()

	org, err := svc.Provision(context.Background(), orgdomain.ProvisionRequest{
		Name:   "Acme Recruiting",
		UserID: userID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Recruiting", org.Name)

	isMember, err := svc.IsMember(context.Background(), org.ID, userID)
	require.NoError(t, err)
	assert.True(t, isMember)

	var member orgdomain.OrganizationMember
	require.NoError(t, db.Where("org_id = ? AND user_id = ?", org.ID, userID).First(&member).Error)
	assert.Equal(t, orgdomain.RoleOwner, member.Role)

	var sub subscriptiondomain.Subscription
	require.NoError(t, db.Where("org_id = ?", org.ID).First(&sub).Error)
	assert.Equal(t, subscriptiondomain.StatusTrialing, sub.Status)
	require.NotNil(t, sub.TrialEndsAt)

	var balance creditdomain.CreditBalance
	require.NoError(t, db.Where("org_id = ?", org.ID).First(&balance).Error)
	assert.Equal(t, int64(100), balance.Balance)

	var grant creditdomain.CreditTransaction
	require.NoError(t, db.Where("org_id = ?", org.ID).First(&grant).Error)
	assert.Equal(t, creditdomain.CreditTypeSignupGrant, grant.CreditType)
	assert.Equal(t, int64(-100), grant.Amount)
	assert.Equal(t, int64(0), grant.BalanceBefore)
	assert.Equal(t, int64(100), grant.BalanceAfter)
}

func TestProvisionValidatesInput(t *testing.T) {
	svc, _, node := newTestService(t)

	_, err := svc.Provision(context.Background(), orgdomain.ProvisionRequest{
		Name:   "   ",
		UserID: node.Generate(),
	})
	assert.ErrorIs(t, err, orgdomain.ErrInvalidName)

	_, err = svc.Provision(context.Background(), orgdomain.ProvisionRequest{
		Name: "Acme Recruiting",
	})
	assert.ErrorIs(t, err, orgdomain.ErrInvalidUser)
}

func TestIsMemberFalseForOutsiders(t *testing.T) {
	svc, _, node := newTestService(t)
	userID := node.Generate()

	org, err := svc.Provision(context.Background(), orgdomain.ProvisionRequest{
		Name:   "Acme Recruiting",
		UserID: userID,
	})
	require.NoError(t, err)

	isMember, err := svc.IsMember(context.Background(), org.ID, node.Generate())
	require.NoError(t, err)
	assert.False(t, isMember)

	isMember, err = svc.IsMember(context.Background(), 0, userID)
	require.NoError(t, err)
	assert.False(t, isMember)
}

func TestGetByIDUnknownOrganization(t *testing.T) {
	svc, _, node := newTestService(t)

	_, err := svc.GetByID(context.Background(), node.Generate())
	assert.ErrorIs(t, err, orgdomain.ErrNotFound)
}

func TestListForUser(t *testing.T) {
	svc, _, node := newTestService(t)
	userID := node.Generate()

	for _, name := range []string{"Acme Recruiting", "Globex Talent"} {
		_, err := svc.Provision(context.Background(), orgdomain.ProvisionRequest{
			Name:   name,
			UserID: userID,
		})
		require.NoError(t, err)
	}
	_, err := svc.Provision(context.Background(), orgdomain.ProvisionRequest{
		Name:   "Initech Hiring",
		UserID: node.Generate(),
	})
	require.NoError(t, err)

	orgs, err := svc.ListForUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, orgs, 2)
}
