package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Directory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ledger/internal/consent/models"
	"ledger/internal/consent/service/mocks"
	"ledger/internal/consent/store"
	dirmodels "ledger/internal/directory/models"
	dirstore "ledger/internal/directory/store"
	id "ledger/pkg/domain"
	dErrors "ledger/pkg/domain-errors"
	audit "ledger/pkg/platform/audit"
	auditmocks "ledger/pkg/platform/audit/mocks"
	"ledger/pkg/platform/audit/publisher"
	"ledger/pkg/platform/audit/store/memory"
	"ledger/pkg/testutil"
)

type ConsentServiceSuite struct {
	suite.Suite
	clock     *testutil.Clock
	store     *store.InMemory
	directory *dirstore.InMemory
	inbox     *memory.InMemoryStore
	service   *Service
	logger    *slog.Logger

	subject id.UserID
	org     *dirmodels.Organization
}

func TestConsentServiceSuite(t *testing.T) {
	suite.Run(t, new(ConsentServiceSuite))
}

func (s *ConsentServiceSuite) SetupTest() {
	s.clock = testutil.NewClock(testutil.Epoch)
	s.store = store.NewInMemory()
	s.directory = dirstore.NewInMemory()
	s.inbox = memory.NewInMemoryStore()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx := context.Background()
	s.subject = id.NewUserID()
	owner := id.NewUserID()
	s.Require().NoError(s.directory.SaveUser(ctx, &dirmodels.User{ID: s.subject, Email: "ada@example.ng", Role: id.RoleCitizen}))
	s.Require().NoError(s.directory.SaveUser(ctx, &dirmodels.User{ID: owner, Email: "ops@acme.ng", Role: id.RoleOrganization}))
	org, err := dirmodels.NewOrganization(id.NewOrganizationID(), owner, "Acme Bank", testutil.Epoch)
	s.Require().NoError(err)
	s.Require().NoError(s.directory.SaveOrganization(ctx, org))
	s.org = org

	svc, err := New(s.store, s.directory,
		WithLogger(s.logger),
		WithAuditEmitter(publisher.New([]audit.Sink{s.inbox})),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *ConsentServiceSuite) request(dts ...id.DataType) GrantRequest {
	if len(dts) == 0 {
		dts = []id.DataType{id.DataTypeFinancial}
	}
	return GrantRequest{
		UserID:             s.subject,
		OrganizationID:     s.org.ID,
		DataTypes:          dts,
		Purpose:            id.PurposeKYCVerification,
		PurposeDescription: "identity verification for account opening",
	}
}

func durationDays(n int) *int { return &n }

func (s *ConsentServiceSuite) TestNew() {
	_, err := New(nil, s.directory)
	s.Error(err)
	_, err = New(s.store, nil)
	s.Error(err)
}

func (s *ConsentServiceSuite) TestGrant() {
	s.Run("records an active consent and notifies both parties", func() {
		c, err := s.service.Grant(s.clock.Ctx(), s.request(id.DataTypeFinancial, id.DataTypeContact, id.DataTypeFinancial))
		s.Require().NoError(err)

		s.Equal(models.StatusActive, c.Status)
		s.Equal(testutil.Epoch, c.GrantedAt)
		s.Nil(c.ExpiresAt)
		s.Equal([]id.DataType{id.DataTypeFinancial, id.DataTypeContact}, c.DataTypes)

		stored, err := s.store.FindByID(context.Background(), c.ID)
		s.Require().NoError(err)
		s.Equal(c.Purpose, stored.Purpose)

		toOrg, _ := s.inbox.ListByAudience(context.Background(), audit.ToOrganization(s.org.ID))
		toUser, _ := s.inbox.ListByAudience(context.Background(), audit.ToUser(s.subject))
		s.Require().Len(toOrg, 1)
		s.Require().Len(toUser, 1)
		s.Equal(audit.KindConsentGranted, toOrg[0].Kind)
		s.Equal(c.ID.String(), toUser[0].Attributes["consent_id"])
		s.Contains(toUser[0].Message, "Acme Bank")
	})

	s.Run("duration sets expiry", func() {
		req := s.request()
		req.DurationDays = durationDays(30)
		c, err := s.service.Grant(s.clock.Ctx(), req)
		s.Require().NoError(err)
		s.Require().NotNil(c.ExpiresAt)
		s.Equal(testutil.Epoch.AddDate(0, 0, 30), *c.ExpiresAt)
	})

	s.Run("rejects invalid input", func() {
		cases := map[string]func(r *GrantRequest){
			"no data types":        func(r *GrantRequest) { r.DataTypes = nil },
			"unknown data type":    func(r *GrantRequest) { r.DataTypes = []id.DataType{"genome"} },
			"unknown purpose":      func(r *GrantRequest) { r.Purpose = "resale" },
			"long description":     func(r *GrantRequest) { r.PurposeDescription = strings.Repeat("x", 501) },
			"zero duration":        func(r *GrantRequest) { r.DurationDays = durationDays(0) },
			"over-long duration":   func(r *GrantRequest) { r.DurationDays = durationDays(3651) },
			"missing user":         func(r *GrantRequest) { r.UserID = id.UserID{} },
			"missing organization": func(r *GrantRequest) { r.OrganizationID = id.OrganizationID{} },
		}
		for name, mutate := range cases {
			req := s.request()
			mutate(&req)
			_, err := s.service.Grant(s.clock.Ctx(), req)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), name)
		}
	})

	s.Run("unknown parties are not found", func() {
		req := s.request()
		req.UserID = id.NewUserID()
		_, err := s.service.Grant(s.clock.Ctx(), req)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		req = s.request()
		req.OrganizationID = id.NewOrganizationID()
		_, err = s.service.Grant(s.clock.Ctx(), req)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ConsentServiceSuite) TestRevoke() {
	s.Run("subject revokes; validity ends immediately", func() {
		c, err := s.service.Grant(s.clock.Ctx(), s.request())
		s.Require().NoError(err)

		ctx := s.clock.Ctx()
		revoked, err := s.service.Revoke(ctx, c.ID, s.subject, "no longer a customer")
		s.Require().NoError(err)
		s.Equal(models.StatusRevoked, revoked.Status)
		s.Require().NotNil(revoked.RevokedAt)
		s.Equal("no longer a customer", revoked.RevokeReason)

		valid, err := s.service.IsValid(ctx, s.subject, s.org.ID, id.DataTypeFinancial, s.clock.Now())
		s.Require().NoError(err)
		s.False(valid)

		events, _ := s.inbox.ListByKind(context.Background(), audit.KindConsentRevoked)
		s.Len(events, 2)
	})

	s.Run("second revocation conflicts", func() {
		c, _ := s.service.Grant(s.clock.Ctx(), s.request())
		_, err := s.service.Revoke(s.clock.Ctx(), c.ID, s.subject, "")
		s.Require().NoError(err)
		_, err = s.service.Revoke(s.clock.Ctx(), c.ID, s.subject, "")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("only the subject may revoke", func() {
		c, _ := s.service.Grant(s.clock.Ctx(), s.request())
		_, err := s.service.Revoke(s.clock.Ctx(), c.ID, s.org.OwnerID, "")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		stored, _ := s.store.FindByID(context.Background(), c.ID)
		s.Equal(models.StatusActive, stored.Status)
	})

	s.Run("unknown consent", func() {
		_, err := s.service.Revoke(s.clock.Ctx(), id.NewConsentID(), s.subject, "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("reason is bounded", func() {
		c, _ := s.service.Grant(s.clock.Ctx(), s.request())
		_, err := s.service.Revoke(s.clock.Ctx(), c.ID, s.subject, strings.Repeat("r", 501))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ConsentServiceSuite) TestCheck() {
	req := s.request(id.DataTypeFinancial)
	req.DurationDays = durationDays(1)
	c, err := s.service.Grant(s.clock.Ctx(), req)
	s.Require().NoError(err)

	s.Run("valid for covered data type", func() {
		v, err := s.service.Check(s.clock.Ctx(), s.subject, s.org.ID, id.DataTypeFinancial, s.clock.Now())
		s.Require().NoError(err)
		s.True(v.Valid)
		s.Equal(c.ID, *v.ConsentID)
	})

	s.Run("uncovered data type", func() {
		v, err := s.service.Check(s.clock.Ctx(), s.subject, s.org.ID, id.DataTypeHealth, s.clock.Now())
		s.Require().NoError(err)
		s.False(v.Valid)
		s.Equal(models.ReasonDataTypeNotCovered, v.Reason)
	})

	s.Run("stale consent is invalid before any sweep", func() {
		after := testutil.Epoch.AddDate(0, 0, 1)
		valid, err := s.service.IsValid(s.clock.Ctx(), s.subject, s.org.ID, id.DataTypeFinancial, after)
		s.Require().NoError(err)
		s.False(valid)

		stored, _ := s.store.FindByID(context.Background(), c.ID)
		s.Equal(models.StatusActive, stored.Status, "stored status is untouched")
	})

	s.Run("no consent between the pair", func() {
		v, err := s.service.Check(s.clock.Ctx(), id.NewUserID(), s.org.ID, id.DataTypeFinancial, s.clock.Now())
		s.Require().NoError(err)
		s.Equal(models.ReasonNoConsent, v.Reason)
	})

	s.Run("invalid data type", func() {
		_, err := s.service.Check(s.clock.Ctx(), s.subject, s.org.ID, "genome", s.clock.Now())
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("valid purposes", func() {
		purposes, err := s.service.ValidPurposes(s.clock.Ctx(), s.subject, s.org.ID, id.DataTypeFinancial, s.clock.Now())
		s.Require().NoError(err)
		s.Equal([]id.Purpose{id.PurposeKYCVerification}, purposes)
	})
}

func (s *ConsentServiceSuite) TestExpireDue() {
	req := s.request()
	req.DurationDays = durationDays(1)
	c, err := s.service.Grant(s.clock.Ctx(), req)
	s.Require().NoError(err)
	_, err = s.service.Grant(s.clock.Ctx(), s.request())
	s.Require().NoError(err)

	s.clock.Advance(48 * time.Hour)
	asOf := s.clock.Now()

	s.Run("expires due consents once", func() {
		n, err := s.service.ExpireDue(s.clock.Ctx(), asOf)
		s.Require().NoError(err)
		s.Equal(1, n)

		stored, _ := s.store.FindByID(context.Background(), c.ID)
		s.Equal(models.StatusExpired, stored.Status)

		n, err = s.service.ExpireDue(s.clock.Ctx(), asOf)
		s.Require().NoError(err)
		s.Equal(0, n)
	})

	s.Run("rejects instants ahead of the clock", func() {
		_, err := s.service.ExpireDue(s.clock.Ctx(), asOf.Add(time.Hour))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("expired consent cannot be revoked", func() {
		_, err := s.service.Revoke(s.clock.Ctx(), c.ID, s.subject, "")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ConsentServiceSuite) TestListing() {
	for i := 0; i < 3; i++ {
		s.clock.Advance(time.Minute)
		_, err := s.service.Grant(s.clock.Ctx(), s.request())
		s.Require().NoError(err)
	}
	first, err := s.service.ListForUser(s.clock.Ctx(), s.subject, nil, id.NewPage(1, 2))
	s.Require().NoError(err)
	s.Equal(3, first.Total)
	s.Equal(2, first.TotalPages)
	s.Len(first.Items, 2)
	s.True(first.Items[0].GrantedAt.After(first.Items[1].GrantedAt), "newest first")

	_, err = s.service.Revoke(s.clock.Ctx(), first.Items[0].ID, s.subject, "")
	s.Require().NoError(err)

	revoked := models.StatusRevoked
	byOrg, err := s.service.ListForOrganization(s.clock.Ctx(), s.org.ID, &revoked, id.Page{})
	s.Require().NoError(err)
	s.Equal(1, byOrg.Total)
	s.Equal(id.DefaultPageSize, byOrg.PageSize)

	bogus := models.Status("paused")
	_, err = s.service.ListForUser(s.clock.Ctx(), s.subject, &bogus, id.Page{})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ConsentServiceSuite) TestGet() {
	c, err := s.service.Grant(s.clock.Ctx(), s.request())
	s.Require().NoError(err)

	got, err := s.service.Get(s.clock.Ctx(), c.ID)
	s.Require().NoError(err)
	s.Equal(c.ID, got.ID)

	_, err = s.service.Get(s.clock.Ctx(), id.NewConsentID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// ConsentServiceMockSuite covers failure paths with mocked collaborators.
type ConsentServiceMockSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	directory *mocks.MockDirectory
	emitter   *auditmocks.MockEmitter
	service   *Service
}

func TestConsentServiceMockSuite(t *testing.T) {
	suite.Run(t, new(ConsentServiceMockSuite))
}

func (s *ConsentServiceMockSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.directory = mocks.NewMockDirectory(s.ctrl)
	s.emitter = auditmocks.NewMockEmitter(s.ctrl)
	svc, err := New(s.store, s.directory,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditEmitter(s.emitter),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *ConsentServiceMockSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ConsentServiceMockSuite) expectParties(userID id.UserID, orgID id.OrganizationID) {
	s.directory.EXPECT().FindUser(gomock.Any(), userID).Return(&dirmodels.User{ID: userID}, nil)
	s.directory.EXPECT().FindOrganization(gomock.Any(), orgID).Return(&dirmodels.Organization{ID: orgID, Name: "Acme"}, nil)
}

func (s *ConsentServiceMockSuite) TestGrantStoreFailureIsInternal() {
	userID, orgID := id.NewUserID(), id.NewOrganizationID()
	s.expectParties(userID, orgID)
	s.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	_, err := s.service.Grant(context.Background(), GrantRequest{
		UserID: userID, OrganizationID: orgID,
		DataTypes: []id.DataType{id.DataTypeContact}, Purpose: id.PurposeMarketing,
	})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ConsentServiceMockSuite) TestNotificationFailureDoesNotFailGrant() {
	userID, orgID := id.NewUserID(), id.NewOrganizationID()
	s.expectParties(userID, orgID)
	s.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	s.emitter.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("broker down")).Times(2)

	c, err := s.service.Grant(context.Background(), GrantRequest{
		UserID: userID, OrganizationID: orgID,
		DataTypes: []id.DataType{id.DataTypeContact}, Purpose: id.PurposeMarketing,
	})
	s.Require().NoError(err)
	s.Equal(models.StatusActive, c.Status)
}

func (s *ConsentServiceMockSuite) TestDirectoryFailureIsInternal() {
	userID := id.NewUserID()
	s.directory.EXPECT().FindUser(gomock.Any(), userID).Return(nil, errors.New("connection reset"))

	_, err := s.service.Grant(context.Background(), GrantRequest{
		UserID: userID, OrganizationID: id.NewOrganizationID(),
		DataTypes: []id.DataType{id.DataTypeContact}, Purpose: id.PurposeMarketing,
	})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ConsentServiceMockSuite) TestCheckStoreFailure() {
	s.store.EXPECT().ListByUserAndOrganization(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))
	_, err := s.service.Check(context.Background(), id.NewUserID(), id.NewOrganizationID(), id.DataTypeFinancial, time.Now())
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
