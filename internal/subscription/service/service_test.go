package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	subscriptiondomain "github.com/talentsift/talentsift/internal/subscription/domain"
	pkgdb "github.com/talentsift/talentsift/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (subscriptiondomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := pkgdb.NewTest()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&subscriptiondomain.Subscription{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{DB: db, Log: zap.NewNop()})
	return svc, db, node
}

func seedSubscription(t *testing.T, db *gorm.DB, node *snowflake.Node, status subscriptiondomain.Status, trialEndsAt *time.Time) snowflake.ID {
	t.Helper()
	orgID := node.Generate()
	now := time.Now().UTC()
	require.NoError(t, db.Create(&subscriptiondomain.Subscription{
		ID:          node.Generate(),
		OrgID:       orgID,
		Status:      status,
		TrialEndsAt: trialEndsAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}).Error)
	return orgID
}

func TestGateSearchActive(t *testing.T) {
	svc, db, node := newTestService(t)
	orgID := seedSubscription(t, db, node, subscriptiondomain.StatusActive, nil)

	assert.NoError(t, svc.GateSearch(context.Background(), orgID))
}

func TestGateSearchTrialing(t *testing.T) {
	svc, db, node := newTestService(t)
	future := time.Now().UTC().Add(7 * 24 * time.Hour)
	orgID := seedSubscription(t, db, node, subscriptiondomain.StatusTrialing, &future)

	assert.NoError(t, svc.GateSearch(context.Background(), orgID))
}

func TestGateSearchTrialExpired(t *testing.T) {
	svc, db, node := newTestService(t)
	past := time.Now().UTC().Add(-time.Hour)
	orgID := seedSubscription(t, db, node, subscriptiondomain.StatusTrialing, &past)

	err := svc.GateSearch(context.Background(), orgID)
	assert.ErrorIs(t, err, subscriptiondomain.ErrTrialExpired)
}

func TestGateSearchTrialWithoutDeadlineAllows(t *testing.T) {
	svc, db, node := newTestService(t)
	orgID := seedSubscription(t, db, node, subscriptiondomain.StatusTrialing, nil)

	assert.NoError(t, svc.GateSearch(context.Background(), orgID))
}

func TestGateSearchInactiveStatuses(t *testing.T) {
	svc, db, node := newTestService(t)

	for _, status := range []subscriptiondomain.Status{
		subscriptiondomain.StatusCanceled,
		subscriptiondomain.StatusExpired,
	} {
		orgID := seedSubscription(t, db, node, status, nil)
		err := svc.GateSearch(context.Background(), orgID)
		assert.ErrorIs(t, err, subscriptiondomain.ErrSubscriptionInactive, "status %s", status)
	}
}

func TestGateSearchUnknownOrganization(t *testing.T) {
	svc, _, node := newTestService(t)

	err := svc.GateSearch(context.Background(), node.Generate())
	assert.ErrorIs(t, err, subscriptiondomain.ErrNotFound)
}

func TestGetReturnsSubscription(t *testing.T) {
	svc, db, node := newTestService(t)
	future := time.Now().UTC().Add(14 * 24 * time.Hour)
	orgID := seedSubscription(t, db, node, subscriptiondomain.StatusTrialing, &future)

	sub, err := svc.Get(context.Background(), orgID)
	require.NoError(t, err)
	assert.Equal(t, orgID, sub.OrgID)
	assert.Equal(t, subscriptiondomain.StatusTrialing, sub.Status)
	require.NotNil(t, sub.TrialEndsAt)
}
