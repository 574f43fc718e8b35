package scorer

//go:generate mockgen -source=scorer.go -destination=mocks/mocks.go -package=mocks Violations,AccessCounter,ScoreWriter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	accessmodels "ledger/internal/access/models"
	accessstore "ledger/internal/access/store"
	"ledger/internal/compliance/models"
	"ledger/internal/compliance/scorer/mocks"
	violationstore "ledger/internal/compliance/store/violation"
	dirmodels "ledger/internal/directory/models"
	dirstore "ledger/internal/directory/store"
	id "ledger/pkg/domain"
	dErrors "ledger/pkg/domain-errors"
	"ledger/pkg/platform/sentinel"
	"ledger/pkg/testutil"
)

type ScorerSuite struct {
	suite.Suite
	clock      *testutil.Clock
	accesses   *accessstore.InMemory
	violations *violationstore.InMemory
	directory  *dirstore.InMemory
	scorer     *Scorer
	org        id.OrganizationID
	rule       *models.Rule
}

func TestScorerSuite(t *testing.T) {
	suite.Run(t, new(ScorerSuite))
}

func (s *ScorerSuite) SetupTest() {
	ctx := context.Background()
	s.clock = testutil.NewClock(testutil.Epoch)
	s.accesses = accessstore.NewInMemory()
	s.violations = violationstore.NewInMemory()
	s.directory = dirstore.NewInMemory()

	org, err := dirmodels.NewOrganization(id.NewOrganizationID(), id.NewUserID(), "Acme Bank", testutil.Epoch)
	s.Require().NoError(err)
	s.Require().NoError(s.directory.SaveOrganization(ctx, org))
	s.org = org.ID

	s.rule, err = models.NewRule(id.NewRuleID(), "lawful_consent", "Access needs consent",
		models.RuleConsentRequired, models.SeverityHigh, "NDPR", true, testutil.Epoch)
	s.Require().NoError(err)

	s.scorer, err = New(s.violations, s.accesses, s.directory,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)
}

func (s *ScorerSuite) recordAccesses(n int, authorized bool) []*accessmodels.AccessEvent {
	out := make([]*accessmodels.AccessEvent, 0, n)
	for i := 0; i < n; i++ {
		e, err := accessmodels.NewAccessEvent(id.NewAccessEventID(), id.NewUserID(), s.org, "teller-7",
			id.DataTypeFinancial, id.ActionRead, id.PurposeKYCVerification, authorized, s.clock.Now())
		s.Require().NoError(err)
		s.Require().NoError(s.accesses.Save(context.Background(), e))
		out = append(out, e)
	}
	return out
}

func (s *ScorerSuite) flag(events []*accessmodels.AccessEvent) []*models.Violation {
	out := make([]*models.Violation, 0, len(events))
	for _, e := range events {
		eid := e.ID
		v, err := models.NewViolation(id.NewViolationID(), s.rule, s.org, &eid, "unauthorized read", s.clock.Now())
		s.Require().NoError(err)
		created, err := s.violations.Create(context.Background(), v)
		s.Require().NoError(err)
		s.Require().True(created)
		out = append(out, v)
	}
	return out
}

func (s *ScorerSuite) storedScore() float64 {
	org, err := s.directory.FindOrganization(context.Background(), s.org)
	s.Require().NoError(err)
	return org.ComplianceScore
}

func (s *ScorerSuite) TestNew() {
	_, err := New(nil, s.accesses, s.directory)
	s.Error(err)
	_, err = New(s.violations, nil, s.directory)
	s.Error(err)
	_, err = New(s.violations, s.accesses, nil)
	s.Error(err)
}

func (s *ScorerSuite) TestRecompute() {
	s.Run("no accesses scores 100", func() {
		score, err := s.scorer.Recompute(s.clock.Ctx(), s.org)
		s.Require().NoError(err)
		s.Equal(100.0, score)
		s.Equal(100.0, s.storedScore())
	})

	s.Run("two unresolved high violations cost 20", func() {
		s.recordAccesses(8, true)
		flagged := s.flag(s.recordAccesses(2, false))

		score, err := s.scorer.Recompute(s.clock.Ctx(), s.org)
		s.Require().NoError(err)
		s.Equal(80.0, score)
		s.Equal(80.0, s.storedScore())

		org, err := s.directory.FindOrganization(context.Background(), s.org)
		s.Require().NoError(err)
		s.Require().NotNil(org.ScoreUpdatedAt)
		s.Equal(testutil.Epoch, *org.ScoreUpdatedAt)

		s.Run("resolving one restores 10", func() {
			s.resolve(flagged[0])
			score, err := s.scorer.Recompute(s.clock.Ctx(), s.org)
			s.Require().NoError(err)
			s.Equal(90.0, score)
		})
	})
}

func (s *ScorerSuite) resolve(v *models.Violation) {
	_, err := s.violations.Execute(context.Background(), v.ID, func(v *models.Violation) error {
		return v.CanResolve()
	}, func(v *models.Violation) {
		v.ApplyResolution(s.clock.Now(), id.NewUserID(), "consent re-collected")
	})
	s.Require().NoError(err)
}

func (s *ScorerSuite) TestFloorsAtZero() {
	s.flag(s.recordAccesses(12, false))

	score, err := s.scorer.Recompute(s.clock.Ctx(), s.org)
	s.Require().NoError(err)
	s.Equal(0.0, score)
}

func (s *ScorerSuite) TestResolvingNeverLowersScore() {
	flagged := s.flag(s.recordAccesses(5, false))
	before, err := s.scorer.Recompute(s.clock.Ctx(), s.org)
	s.Require().NoError(err)

	for _, v := range flagged {
		s.clock.Advance(time.Minute)
		s.resolve(v)
		after, err := s.scorer.Recompute(s.clock.Ctx(), s.org)
		s.Require().NoError(err)
		s.GreaterOrEqual(after, before)
		before = after
	}
	s.Equal(100.0, before)
}

func (s *ScorerSuite) TestRecomputeIsRepeatable() {
	s.flag(s.recordAccesses(3, false))
	first, err := s.scorer.Recompute(s.clock.Ctx(), s.org)
	s.Require().NoError(err)
	second, err := s.scorer.Recompute(s.clock.Ctx(), s.org)
	s.Require().NoError(err)
	s.Equal(first, second)
	s.Equal(70.0, second)
}

func (s *ScorerSuite) TestUnknownOrganization() {
	_, err := s.scorer.Recompute(s.clock.Ctx(), id.NewOrganizationID())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

type ScorerMockSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	violations *mocks.MockViolations
	accesses   *mocks.MockAccessCounter
	writer     *mocks.MockScoreWriter
	scorer     *Scorer
}

func TestScorerMockSuite(t *testing.T) {
	suite.Run(t, new(ScorerMockSuite))
}

func (s *ScorerMockSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.violations = mocks.NewMockViolations(s.ctrl)
	s.accesses = mocks.NewMockAccessCounter(s.ctrl)
	s.writer = mocks.NewMockScoreWriter(s.ctrl)
	var err error
	s.scorer, err = New(s.violations, s.accesses, s.writer,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)
}

func (s *ScorerMockSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ScorerMockSuite) TestStoreFailures() {
	org := id.NewOrganizationID()
	ctx := testutil.NewClock(testutil.Epoch).Ctx()

	s.Run("count failure is internal", func() {
		s.accesses.EXPECT().CountByOrganization(gomock.Any(), org).Return(0, errors.New("db down"))
		_, err := s.scorer.Recompute(ctx, org)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("violation listing failure is internal", func() {
		s.accesses.EXPECT().CountByOrganization(gomock.Any(), org).Return(4, nil)
		s.violations.EXPECT().ListUnresolved(gomock.Any(), org).Return(nil, errors.New("db down"))
		_, err := s.scorer.Recompute(ctx, org)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("write failure is internal", func() {
		s.accesses.EXPECT().CountByOrganization(gomock.Any(), org).Return(4, nil)
		s.violations.EXPECT().ListUnresolved(gomock.Any(), org).Return(nil, nil)
		s.writer.EXPECT().SetComplianceScore(gomock.Any(), org, 100.0, testutil.Epoch).Return(errors.New("db down"))
		_, err := s.scorer.Recompute(ctx, org)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("missing organization is not found", func() {
		s.accesses.EXPECT().CountByOrganization(gomock.Any(), org).Return(0, nil)
		s.violations.EXPECT().ListUnresolved(gomock.Any(), org).Return(nil, nil)
		s.writer.EXPECT().SetComplianceScore(gomock.Any(), org, 100.0, testutil.Epoch).Return(sentinel.ErrNotFound)
		_, err := s.scorer.Recompute(ctx, org)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
