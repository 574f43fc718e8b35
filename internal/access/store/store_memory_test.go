package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ledger/internal/access/models"
	id "ledger/pkg/domain"
	"ledger/pkg/platform/sentinel"
)

type AccessStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	t0    time.Time
	user  id.UserID
	org   id.OrganizationID
}

func TestAccessStoreSuite(t *testing.T) {
	suite.Run(t, new(AccessStoreSuite))
}

func (s *AccessStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.t0 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	s.user = id.NewUserID()
	s.org = id.NewOrganizationID()
}

func (s *AccessStoreSuite) record(org id.OrganizationID, at time.Time, authorized bool) *models.AccessEvent {
	e, err := models.NewAccessEvent(id.NewAccessEventID(), s.user, org, "ops@acme.ng",
		id.DataTypeFinancial, id.ActionRead, id.PurposeKYCVerification, authorized, at)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Save(s.ctx, e))
	return e
}

func (s *AccessStoreSuite) TestSaveAndFind() {
	e := s.record(s.org, s.t0, true)

	found, err := s.store.FindByID(s.ctx, e.ID)
	s.Require().NoError(err)
	s.Equal(e.Principal, found.Principal)

	s.ErrorIs(s.store.Save(s.ctx, e), sentinel.ErrConflict)

	_, err = s.store.FindByID(s.ctx, id.NewAccessEventID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *AccessStoreSuite) TestListing() {
	for i := 0; i < 5; i++ {
		s.record(s.org, s.t0.Add(time.Duration(i)*time.Hour), i%2 == 0)
	}
	s.record(id.NewOrganizationID(), s.t0, false)

	s.Run("organization listing is newest first and paged", func() {
		events, total, err := s.store.ListByOrganization(s.ctx, s.org, models.Range{}, id.NewPage(1, 2))
		s.Require().NoError(err)
		s.Equal(5, total)
		s.Require().Len(events, 2)
		s.Equal(s.t0.Add(4*time.Hour), events[0].OccurredAt)
	})

	s.Run("date range is inclusive", func() {
		from, to := s.t0.Add(time.Hour), s.t0.Add(3*time.Hour)
		_, total, err := s.store.ListByOrganization(s.ctx, s.org, models.Range{From: &from, To: &to}, id.Page{})
		s.Require().NoError(err)
		s.Equal(3, total)
	})

	s.Run("user listing spans organizations", func() {
		_, total, err := s.store.ListByUser(s.ctx, s.user, models.Range{}, id.Page{})
		s.Require().NoError(err)
		s.Equal(6, total)
	})

	s.Run("unauthorized view filters and caps", func() {
		all, err := s.store.ListUnauthorized(s.ctx, models.UnauthorizedFilter{}, 0)
		s.Require().NoError(err)
		s.Len(all, 3)

		scoped, err := s.store.ListUnauthorized(s.ctx, models.UnauthorizedFilter{OrganizationID: &s.org}, 1)
		s.Require().NoError(err)
		s.Require().Len(scoped, 1)
		s.Equal(s.t0.Add(3*time.Hour), scoped[0].OccurredAt)
	})

	s.Run("window and counts", func() {
		window, err := s.store.ListByOrganizationSince(s.ctx, s.org, s.t0.Add(2*time.Hour))
		s.Require().NoError(err)
		s.Len(window, 3)

		total, err := s.store.CountByOrganization(s.ctx, s.org)
		s.Require().NoError(err)
		s.Equal(5, total)

		authorized, err := s.store.CountAuthorizedByOrganization(s.ctx, s.org)
		s.Require().NoError(err)
		s.Equal(3, authorized)
	})
}
