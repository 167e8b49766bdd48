package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	creditdomain "github.com/talentsift/talentsift/internal/credit/domain"
	orgdomain "github.com/talentsift/talentsift/internal/organization/domain"
	searchdomain "github.com/talentsift/talentsift/internal/search/domain"
	dbpkg "github.com/talentsift/talentsift/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubOrgService struct {
	member bool
}

func (s *stubOrgService) Provision(ctx context.Context, req orgdomain.ProvisionRequest) (*orgdomain.Organization, error) {
	return nil, nil
}

func (s *stubOrgService) GetByID(ctx context.Context, id snowflake.ID) (*orgdomain.Organization, error) {
	return nil, orgdomain.ErrNotFound
}

func (s *stubOrgService) IsMember(ctx context.Context, orgID, userID snowflake.ID) (bool, error) {
	return s.member, nil
}

func (s *stubOrgService) ListForUser(ctx context.Context, userID snowflake.ID) ([]orgdomain.Organization, error) {
	return nil, nil
}

func newTestService(t *testing.T, member bool) (creditdomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	conn, err := dbpkg.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&creditdomain.CreditBalance{}, &creditdomain.CreditTransaction{}))

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// Serialize connections so concurrent deductions contend on the guarded
	// update instead of on sqlite's writer lock.
	sqlDB.SetMaxOpenConns(1)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:     conn,
		Log:    zap.NewNop(),
		GenID:  node,
		OrgSvc: &stubOrgService{member: member},
	})
	return svc, conn, node
}

func seedBalance(t *testing.T, conn *gorm.DB, orgID snowflake.ID, balance int64) {
	t.Helper()
	require.NoError(t, conn.Create(&creditdomain.CreditBalance{OrgID: orgID, Balance: balance}).Error)
}

func TestDeductSuccess(t *testing.T) {
	svc, conn, node := newTestService(t, true)
	orgID := node.Generate()
	userID := node.Generate()
	seedBalance(t, conn, orgID, 50)

	row, err := svc.Deduct(context.Background(), creditdomain.DeductRequest{
		OrganizationID: orgID,
		UserID:         userID,
		Amount:         10,
		CreditType:     creditdomain.CreditTypeProfileReveal,
	})
	require.NoError(t, err)
	require.EqualValues(t, 50, row.BalanceBefore)
	require.EqualValues(t, 40, row.BalanceAfter)
	require.EqualValues(t, 10, row.Amount)

	balance, err := svc.Balance(context.Background(), orgID)
	require.NoError(t, err)
	require.EqualValues(t, 40, balance)
}

func TestDeductInsufficientWritesNothing(t *testing.T) {
	svc, conn, node := newTestService(t, true)
	orgID := node.Generate()
	seedBalance(t, conn, orgID, 5)

	_, err := svc.Deduct(context.Background(), creditdomain.DeductRequest{
		OrganizationID: orgID,
		UserID:         node.Generate(),
		Amount:         10,
		CreditType:     creditdomain.CreditTypeProfileReveal,
	})
	require.ErrorIs(t, err, creditdomain.ErrInsufficientCredits)

	balance, err := svc.Balance(context.Background(), orgID)
	require.NoError(t, err)
	require.EqualValues(t, 5, balance)

	var count int64
	require.NoError(t, conn.Model(&creditdomain.CreditTransaction{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestDeductConcurrentPairNeverOverdraws(t *testing.T) {
	svc, conn, node := newTestService(t, true)
	orgID := node.Generate()
	userID := node.Generate()
	seedBalance(t, conn, orgID, 10)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Deduct(context.Background(), creditdomain.DeductRequest{
				OrganizationID: orgID,
				UserID:         userID,
				Amount:         7,
				CreditType:     creditdomain.CreditTypeProfileReveal,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, creditdomain.ErrInsufficientCredits) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one deduction to succeed, got %d", succeeded)
	}

	balance, err := svc.Balance(context.Background(), orgID)
	require.NoError(t, err)
	require.EqualValues(t, 3, balance)
}

func TestDeductRejectsNonPositiveAmount(t *testing.T) {
	svc, _, node := newTestService(t, true)

	for _, amount := range []int64{0, -5} {
		_, err := svc.Deduct(context.Background(), creditdomain.DeductRequest{
			OrganizationID: node.Generate(),
			UserID:         node.Generate(),
			Amount:         amount,
			CreditType:     creditdomain.CreditTypeProfileReveal,
		})
		require.ErrorIs(t, err, creditdomain.ErrInvalidAmount)
	}
}

func TestDeductRequiresMembership(t *testing.T) {
	svc, conn, node := newTestService(t, false)
	orgID := node.Generate()
	seedBalance(t, conn, orgID, 50)

	_, err := svc.Deduct(context.Background(), creditdomain.DeductRequest{
		OrganizationID: orgID,
		UserID:         node.Generate(),
		Amount:         1,
		CreditType:     creditdomain.CreditTypeProfileReveal,
	})
	require.ErrorIs(t, err, orgdomain.ErrNotMember)
}

func TestDeductUnknownOrgBalance(t *testing.T) {
	svc, _, node := newTestService(t, true)

	_, err := svc.Deduct(context.Background(), creditdomain.DeductRequest{
		OrganizationID: node.Generate(),
		UserID:         node.Generate(),
		Amount:         1,
		CreditType:     creditdomain.CreditTypeProfileReveal,
	})
	require.ErrorIs(t, err, creditdomain.ErrBalanceNotFound)
}

func TestDeductApplyCommitsWithCharge(t *testing.T) {
	svc, conn, node := newTestService(t, true)
	require.NoError(t, conn.AutoMigrate(&searchdomain.SearchCandidate{}))

	orgID := node.Generate()
	userID := node.Generate()
	seedBalance(t, conn, orgID, 10)

	candidate := &searchdomain.SearchCandidate{
		ID:       node.Generate(),
		SearchID: node.Generate(),
		OrgID:    orgID,
		PublicID: "jane-doe",
	}
	require.NoError(t, conn.Create(candidate).Error)

	_, err := svc.Deduct(context.Background(), creditdomain.DeductRequest{
		OrganizationID:  orgID,
		UserID:          userID,
		Amount:          1,
		CreditType:      creditdomain.CreditTypeProfileReveal,
		RelatedEntityID: candidate.ID,
		Apply: func(tx *gorm.DB) error {
			return tx.Model(&searchdomain.SearchCandidate{}).
				Where("id = ?", candidate.ID).
				Update("revealed", true).Error
		},
	})
	require.NoError(t, err)

	var reloaded searchdomain.SearchCandidate
	require.NoError(t, conn.First(&reloaded, "id = ?", candidate.ID).Error)
	require.True(t, reloaded.Revealed)

	balance, err := svc.Balance(context.Background(), orgID)
	require.NoError(t, err)
	require.EqualValues(t, 9, balance)
}

func TestDeductApplyFailureRollsBackCharge(t *testing.T) {
	svc, conn, node := newTestService(t, true)
	orgID := node.Generate()
	seedBalance(t, conn, orgID, 10)

	boom := errors.New("mark failed")
	_, err := svc.Deduct(context.Background(), creditdomain.DeductRequest{
		OrganizationID: orgID,
		UserID:         node.Generate(),
		Amount:         1,
		CreditType:     creditdomain.CreditTypeProfileReveal,
		Apply: func(tx *gorm.DB) error {
			return boom
		},
	})
	require.ErrorIs(t, err, boom)

	balance, err := svc.Balance(context.Background(), orgID)
	require.NoError(t, err)
	require.EqualValues(t, 10, balance)

	var count int64
	require.NoError(t, conn.Model(&creditdomain.CreditTransaction{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestGrantRecordsNegativeAmount(t *testing.T) {
	svc, conn, node := newTestService(t, true)
	orgID := node.Generate()
	seedBalance(t, conn, orgID, 10)

	row, err := svc.Grant(context.Background(), creditdomain.GrantRequest{
		OrganizationID: orgID,
		UserID:         node.Generate(),
		Amount:         25,
		CreditType:     creditdomain.CreditTypeSignupGrant,
	})
	require.NoError(t, err)
	require.EqualValues(t, -25, row.Amount)
	require.EqualValues(t, 10, row.BalanceBefore)
	require.EqualValues(t, 35, row.BalanceAfter)

	balance, err := svc.Balance(context.Background(), orgID)
	require.NoError(t, err)
	require.EqualValues(t, 35, balance)
}

func TestHistoryScopedToOrganization(t *testing.T) {
	svc, conn, node := newTestService(t, true)
	orgA := node.Generate()
	orgB := node.Generate()
	userID := node.Generate()
	seedBalance(t, conn, orgA, 100)
	seedBalance(t, conn, orgB, 100)

	for i := 0; i < 3; i++ {
		_, err := svc.Deduct(context.Background(), creditdomain.DeductRequest{
			OrganizationID: orgA,
			UserID:         userID,
			Amount:         1,
			CreditType:     creditdomain.CreditTypeProfileReveal,
		})
		require.NoError(t, err)
	}
	_, err := svc.Deduct(context.Background(), creditdomain.DeductRequest{
		OrganizationID: orgB,
		UserID:         userID,
		Amount:         1,
		CreditType:     creditdomain.CreditTypeProfileReveal,
	})
	require.NoError(t, err)

	rows, err := svc.History(context.Background(), orgA, 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		require.Equal(t, orgA, row.OrgID)
	}
}
