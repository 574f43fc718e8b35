//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ledger/internal/access/models"
	"ledger/internal/access/store"
	id "ledger/pkg/domain"
	"ledger/pkg/platform/sentinel"
	"ledger/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	user     id.UserID
	org      id.OrganizationID
	t0       time.Time
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
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background()))
	s.t0 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	s.user = id.NewUserID()
	s.org = id.NewOrganizationID()
}

func (s *PostgresStoreSuite) record(at time.Time, authorized bool, consentID *id.ConsentID) *models.AccessEvent {
	e, err := models.NewAccessEvent(id.NewAccessEventID(), s.user, s.org, "ops@acme.ng",
		id.DataTypeContact, id.ActionExport, id.PurposeMarketing, authorized, at)
	s.Require().NoError(err)
	e.ConsentID = consentID
	e.ClientIP = "10.0.0.7"
	e.UserAgent = "curl/8.4.0"
	e.AgentSummary = "curl on Unknown OS"
	s.Require().NoError(s.store.Save(context.Background(), e))
	return e
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	cid := id.NewConsentID()
	withConsent := s.record(s.t0, true, &cid)
	without := s.record(s.t0.Add(time.Minute), false, nil)

	found, err := s.store.FindByID(ctx, withConsent.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.ConsentID)
	s.Equal(cid, *found.ConsentID)
	s.Equal(id.ActionExport, found.Action)
	s.Equal("curl on Unknown OS", found.AgentSummary)
	s.True(found.OccurredAt.Equal(s.t0))

	found, err = s.store.FindByID(ctx, without.ID)
	s.Require().NoError(err)
	s.Nil(found.ConsentID)
	s.False(found.Authorized)

	s.ErrorIs(s.store.Save(ctx, without), sentinel.ErrConflict)
	_, err = s.store.FindByID(ctx, id.NewAccessEventID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestQueries() {
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		s.record(s.t0.Add(time.Duration(i)*time.Hour), i == 0, nil)
	}

	events, total, err := s.store.ListByOrganization(ctx, s.org, models.Range{}, id.NewPage(2, 3))
	s.Require().NoError(err)
	s.Equal(4, total)
	s.Require().Len(events, 1)
	s.True(events[0].OccurredAt.Equal(s.t0))

	from := s.t0.Add(2 * time.Hour)
	_, total, err = s.store.ListByUser(ctx, s.user, models.Range{From: &from}, id.Page{})
	s.Require().NoError(err)
	s.Equal(2, total)

	since := s.t0.Add(time.Hour)
	unauthorized, err := s.store.ListUnauthorized(ctx, models.UnauthorizedFilter{OrganizationID: &s.org, Since: &since}, 2)
	s.Require().NoError(err)
	s.Len(unauthorized, 2)

	window, err := s.store.ListByOrganizationSince(ctx, s.org, s.t0)
	s.Require().NoError(err)
	s.Len(window, 4)

	n, err := s.store.CountByOrganization(ctx, s.org)
	s.Require().NoError(err)
	s.Equal(4, n)
	n, err = s.store.CountAuthorizedByOrganization(ctx, s.org)
	s.Require().NoError(err)
	s.Equal(1, n)
}
