package scheduler

//go:generate mockgen -source=scheduler.go -destination=mocks/mocks.go -package=mocks Expirer,Scanner,Organizations,Leaser

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ledger/internal/compliance/models"
	"ledger/internal/compliance/scheduler/mocks"
	"ledger/internal/compliance/store/scanlock"
	id "ledger/pkg/domain"
	"ledger/pkg/testutil"
)

type SchedulerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	expirer *mocks.MockExpirer
	scanner *mocks.MockScanner
	orgs    *mocks.MockOrganizations
	leases  *scanlock.InMemory
	logger  *slog.Logger
}

func TestSchedulerSuite(t *testing.T) {
	suite.Run(t, new(SchedulerSuite))
}

func (s *SchedulerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.expirer = mocks.NewMockExpirer(s.ctrl)
	s.scanner = mocks.NewMockScanner(s.ctrl)
	s.orgs = mocks.NewMockOrganizations(s.ctrl)
	s.leases = scanlock.NewInMemory()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *SchedulerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *SchedulerSuite) newScheduler(opts ...Option) *Scheduler {
	sch, err := New(s.expirer, s.scanner, s.orgs, s.leases, append([]Option{WithLogger(s.logger)}, opts...)...)
	s.Require().NoError(err)
	return sch
}

func (s *SchedulerSuite) TestNew() {
	_, err := New(nil, s.scanner, s.orgs, s.leases)
	s.Error(err)
	_, err = New(s.expirer, nil, s.orgs, s.leases)
	s.Error(err)
	_, err = New(s.expirer, s.scanner, nil, s.leases)
	s.Error(err)
	_, err = New(s.expirer, s.scanner, s.orgs, nil)
	s.Error(err)
}

func (s *SchedulerSuite) TestSweepOnceUsesContextClock() {
	s.expirer.EXPECT().ExpireDue(gomock.Any(), testutil.Epoch).Return(3, nil)

	n, err := s.newScheduler().SweepOnce(testutil.NewClock(testutil.Epoch).Ctx())
	s.Require().NoError(err)
	s.Equal(3, n)
}

func (s *SchedulerSuite) TestScanAll() {
	s.Run("a failed scan does not stop the rest", func() {
		a, b, c := id.NewOrganizationID(), id.NewOrganizationID(), id.NewOrganizationID()
		s.orgs.EXPECT().ListOrganizationIDs(gomock.Any()).Return([]id.OrganizationID{a, b, c}, nil)
		s.scanner.EXPECT().Scan(gomock.Any(), a).Return(&models.ScanResult{OrganizationID: a, ViolationsCreated: 2}, nil)
		s.scanner.EXPECT().Scan(gomock.Any(), b).Return(nil, errors.New("boom"))
		s.scanner.EXPECT().Scan(gomock.Any(), c).Return(&models.ScanResult{OrganizationID: c, ViolationsCreated: 1}, nil)

		report, err := s.newScheduler().ScanAll(context.Background())
		s.Require().NoError(err)
		s.Equal(Report{Scanned: 2, Failed: 1, ViolationsCreated: 3}, report)
	})

	s.Run("organizations leased elsewhere are skipped", func() {
		busy, free := id.NewOrganizationID(), id.NewOrganizationID()
		lease, err := s.leases.Acquire(context.Background(), busy, time.Hour)
		s.Require().NoError(err)
		defer lease.Release(context.Background())

		s.orgs.EXPECT().ListOrganizationIDs(gomock.Any()).Return([]id.OrganizationID{busy, free}, nil)
		s.scanner.EXPECT().Scan(gomock.Any(), free).Return(&models.ScanResult{OrganizationID: free}, nil)

		report, err := s.newScheduler().ScanAll(context.Background())
		s.Require().NoError(err)
		s.Equal(Report{Scanned: 1, Skipped: 1}, report)
	})

	s.Run("leases are released after each scan", func() {
		org := id.NewOrganizationID()
		s.orgs.EXPECT().ListOrganizationIDs(gomock.Any()).Return([]id.OrganizationID{org}, nil).Times(2)
		s.scanner.EXPECT().Scan(gomock.Any(), org).Return(&models.ScanResult{OrganizationID: org}, nil).Times(2)

		sch := s.newScheduler()
		for i := 0; i < 2; i++ {
			report, err := sch.ScanAll(context.Background())
			s.Require().NoError(err)
			s.Equal(1, report.Scanned)
		}
	})

	s.Run("listing failure is returned", func() {
		s.orgs.EXPECT().ListOrganizationIDs(gomock.Any()).Return(nil, errors.New("db down"))
		_, err := s.newScheduler().ScanAll(context.Background())
		s.Error(err)
	})
}

func (s *SchedulerSuite) TestScanAllBoundsParallelism() {
	orgIDs := make([]id.OrganizationID, 8)
	for i := range orgIDs {
		orgIDs[i] = id.NewOrganizationID()
	}
	var inFlight, peak atomic.Int32
	s.orgs.EXPECT().ListOrganizationIDs(gomock.Any()).Return(orgIDs, nil)
	s.scanner.EXPECT().Scan(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, orgID id.OrganizationID) (*models.ScanResult, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return &models.ScanResult{OrganizationID: orgID}, nil
		}).Times(len(orgIDs))

	report, err := s.newScheduler(WithParallel(2)).ScanAll(context.Background())
	s.Require().NoError(err)
	s.Equal(len(orgIDs), report.Scanned)
	s.LessOrEqual(peak.Load(), int32(2))
}

func (s *SchedulerSuite) TestLeaseFailureCountsAsFailed() {
	leaser := mocks.NewMockLeaser(s.ctrl)
	org := id.NewOrganizationID()
	s.orgs.EXPECT().ListOrganizationIDs(gomock.Any()).Return([]id.OrganizationID{org}, nil)
	leaser.EXPECT().Acquire(gomock.Any(), org, DefaultLeaseTTL).Return(nil, errors.New("redis down"))

	sch, err := New(s.expirer, s.scanner, s.orgs, leaser, WithLogger(s.logger))
	s.Require().NoError(err)
	report, err := sch.ScanAll(context.Background())
	s.Require().NoError(err)
	s.Equal(Report{Failed: 1}, report)
}

func (s *SchedulerSuite) TestRunStopsOnCancel() {
	ctx, cancel := context.WithCancel(context.Background())
	var sweeps atomic.Int32
	s.expirer.EXPECT().ExpireDue(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, time.Time) (int, error) {
			if sweeps.Add(1) == 3 {
				cancel()
			}
			return 0, nil
		}).MinTimes(3)
	s.orgs.EXPECT().ListOrganizationIDs(gomock.Any()).Return(nil, nil).AnyTimes()

	sch := s.newScheduler(WithSweepInterval(time.Millisecond), WithScanInterval(time.Millisecond))
	done := make(chan error, 1)
	go func() { done <- sch.Run(ctx) }()

	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(5 * time.Second):
		s.Fail("scheduler did not stop")
	}
}
