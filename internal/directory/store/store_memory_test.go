package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ledger/internal/directory/models"
	id "ledger/pkg/domain"
	"ledger/pkg/platform/sentinel"
)

type DirectoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestDirectoryStoreSuite(t *testing.T) {
	suite.Run(t, new(DirectoryStoreSuite))
}

func (s *DirectoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *DirectoryStoreSuite) TestLookups() {
	s.Run("finds saved user", func() {
		u := &models.User{ID: id.NewUserID(), Email: "ada@example.ng", Role: id.RoleCitizen}
		s.Require().NoError(s.store.SaveUser(s.ctx, u))

		found, err := s.store.FindUser(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal(u.Email, found.Email)
	})

	s.Run("unknown IDs are not found", func() {
		_, err := s.store.FindUser(s.ctx, id.NewUserID())
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.FindOrganization(s.ctx, id.NewOrganizationID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *DirectoryStoreSuite) TestComplianceScore() {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	org, err := models.NewOrganization(id.NewOrganizationID(), id.NewUserID(), "Acme Bank", now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.SaveOrganization(s.ctx, org))

	s.Run("new organizations start at 100", func() {
		found, err := s.store.FindOrganization(s.ctx, org.ID)
		s.Require().NoError(err)
		s.Equal(100.0, found.ComplianceScore)
		s.Nil(found.ScoreUpdatedAt)
	})

	s.Run("score updates are visible", func() {
		s.Require().NoError(s.store.SetComplianceScore(s.ctx, org.ID, 72.5, now.Add(time.Hour)))
		found, err := s.store.FindOrganization(s.ctx, org.ID)
		s.Require().NoError(err)
		s.Equal(72.5, found.ComplianceScore)
		s.Require().NotNil(found.ScoreUpdatedAt)
		s.Equal(now.Add(time.Hour), *found.ScoreUpdatedAt)
	})

	s.Run("unknown organization", func() {
		err := s.store.SetComplianceScore(s.ctx, id.NewOrganizationID(), 50, now)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *DirectoryStoreSuite) TestListOrganizationIDsInCreationOrder() {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	second, _ := models.NewOrganization(id.NewOrganizationID(), id.NewUserID(), "Second", base.Add(time.Minute))
	first, _ := models.NewOrganization(id.NewOrganizationID(), id.NewUserID(), "First", base)
	s.Require().NoError(s.store.SaveOrganization(s.ctx, second))
	s.Require().NoError(s.store.SaveOrganization(s.ctx, first))

	ids, err := s.store.ListOrganizationIDs(s.ctx)
	s.Require().NoError(err)
	s.Equal([]id.OrganizationID{first.ID, second.ID}, ids)
}
