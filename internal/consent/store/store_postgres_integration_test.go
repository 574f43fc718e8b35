//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ledger/internal/consent/models"
	"ledger/internal/consent/store"
	dirmodels "ledger/internal/directory/models"
	dirstore "ledger/internal/directory/store"
	id "ledger/pkg/domain"
	"ledger/pkg/platform/sentinel"
	"ledger/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	store     *store.PostgresStore
	directory *dirstore.PostgresStore
	user      id.UserID
	org       id.OrganizationID
	t0        time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.directory = dirstore.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx))

	s.t0 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	s.user = id.NewUserID()
	owner := id.NewUserID()
	s.Require().NoError(s.directory.SaveUser(ctx, &dirmodels.User{ID: s.user, Email: "ada@example.ng", Role: id.RoleCitizen, CreatedAt: s.t0}))
	s.Require().NoError(s.directory.SaveUser(ctx, &dirmodels.User{ID: owner, Email: "ops@acme.ng", Role: id.RoleOrganization, CreatedAt: s.t0}))
	org, err := dirmodels.NewOrganization(id.NewOrganizationID(), owner, "Acme Bank", s.t0)
	s.Require().NoError(err)
	s.Require().NoError(s.directory.SaveOrganization(ctx, org))
	s.org = org.ID
}

func (s *PostgresStoreSuite) grant(days *int, grantedAt time.Time) *models.Consent {
	c, err := models.NewConsent(id.NewConsentID(), s.user, s.org,
		[]id.DataType{id.DataTypeFinancial, id.DataTypeContact}, id.PurposeKYCVerification, "kyc", days, grantedAt)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Save(context.Background(), c))
	return c
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	ten := 10
	c := s.grant(&ten, s.t0)

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.DataTypes, found.DataTypes)
	s.Equal(c.Purpose, found.Purpose)
	s.Require().NotNil(found.ExpiresAt)
	s.True(c.ExpiresAt.Equal(*found.ExpiresAt))
	s.Nil(found.RevokedAt)

	_, err = s.store.FindByID(ctx, id.NewConsentID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestStatusFilteredListing() {
	ctx := context.Background()
	one := 1
	stale := s.grant(&one, s.t0)
	live := s.grant(nil, s.t0.Add(time.Hour))

	asOf := s.t0.AddDate(0, 0, 2)
	active, expired := models.StatusActive, models.StatusExpired

	got, total, err := s.store.ListByUser(ctx, s.user, models.ListFilter{Status: &active, AsOf: asOf}, id.NewPage(1, 20))
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Equal(live.ID, got[0].ID)

	got, total, err = s.store.ListByOrganization(ctx, s.org, models.ListFilter{Status: &expired, AsOf: asOf}, id.NewPage(1, 20))
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Equal(stale.ID, got[0].ID)
}

func (s *PostgresStoreSuite) TestConcurrentRevocation() {
	ctx := context.Background()
	c := s.grant(nil, s.t0)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Execute(ctx, c.ID,
				func(c *models.Consent) error { return c.CanRevoke(s.t0) },
				func(c *models.Consent) { c.ApplyRevocation(s.t0, "withdrawn") })
			if err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(1), wins.Load())

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusRevoked, found.Status)
	s.Equal("withdrawn", found.RevokeReason)
}

func (s *PostgresStoreSuite) TestExpireDueIsIdempotent() {
	ctx := context.Background()
	one := 1
	s.grant(&one, s.t0)
	s.grant(nil, s.t0)

	asOf := s.t0.AddDate(0, 0, 1)
	n, err := s.store.ExpireDue(ctx, asOf)
	s.Require().NoError(err)
	s.Equal(1, n)

	n, err = s.store.ExpireDue(ctx, asOf)
	s.Require().NoError(err)
	s.Equal(0, n)
}
