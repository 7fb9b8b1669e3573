package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"bizdir/internal/audit"
	"bizdir/internal/directory"
	"bizdir/internal/reconcile"
	id "bizdir/pkg/domain"
	dErrors "bizdir/pkg/domain-errors"
	"bizdir/pkg/requestcontext"
)

// recordingSink captures audit events synchronously for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingSink) Emit(_ context.Context, event audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingSink) byAction(action audit.Action) []audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []audit.Event
	for _, e := range r.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

type ServiceSuite struct {
	suite.Suite
	ctx       context.Context
	now       time.Time
	dir       *directory.InMemoryStore
	requests  *reconcile.InMemoryStore
	sink      *recordingSink
	svc       *Service
	cityID    id.CityID
	category  id.CategoryID
	reviewer  id.UserID
	claimant  id.UserID
	secondary id.UserID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	s.dir = directory.NewInMemoryStore()
	s.requests = reconcile.NewInMemoryStore()
	s.sink = &recordingSink{}

	s.cityID = id.CityID(uuid.New())
	s.category = id.CategoryID(uuid.New())
	s.dir.SeedCity(s.cityID)
	s.dir.SeedCategory(s.category)

	s.reviewer = id.UserID(uuid.New())
	s.claimant = id.UserID(uuid.New())
	s.secondary = id.UserID(uuid.New())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.svc = NewService(s.dir, s.requests, NewMemoryTx(), s.sink, nil, logger)
}

func (s *ServiceSuite) seedBusiness() *directory.Business {
	b := &directory.Business{
		ID:         id.NewBusinessID(),
		Slug:       "corner-bakery",
		Name:       "Corner Bakery",
		Instagram:  "cornerbakery",
		CityID:     s.cityID,
		CategoryID: s.category,
		Status:     directory.BusinessActive,
		CreatedAt:  s.now.Add(-24 * time.Hour),
	}
	s.Require().NoError(s.dir.CreateBusiness(s.ctx, b))
	return b
}

func contact() reconcile.ContactInfo {
	return reconcile.ContactInfo{Name: "Jane Doe", Email: "jane@example.com", Phone: "+1-555-0100"}
}

func payload(cityID id.CityID, categoryID id.CategoryID) reconcile.BusinessPayload {
	return reconcile.BusinessPayload{
		Name:       "Jane's Cakes",
		Instagram:  "janescakes",
		CityID:     cityID,
		CategoryID: categoryID,
	}
}

// --- intake -----------------------------------------------------------------

func (s *ServiceSuite) TestSubmitClaim_CreatesPendingRequest() {
	b := s.seedBusiness()

	claim, err := s.svc.SubmitClaim(s.ctx, s.claimant, b.ID, contact())
	s.Require().NoError(err)

	s.Equal(reconcile.StatusPending, claim.Status)
	s.Equal(b.ID, claim.BusinessID)
	s.Equal(s.claimant, claim.UserID)
	s.Equal(s.now, claim.CreatedAt)
	s.Nil(claim.ReviewedAt)
	s.Len(s.sink.byAction(audit.ActionClaimSubmitted), 1)
}

func (s *ServiceSuite) TestSubmitClaim_UnknownBusiness() {
	_, err := s.svc.SubmitClaim(s.ctx, s.claimant, id.NewBusinessID(), contact())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestSubmitClaim_DuplicatePendingClaim() {
	b := s.seedBusiness()
	_, err := s.svc.SubmitClaim(s.ctx, s.claimant, b.ID, contact())
	s.Require().NoError(err)

	_, err = s.svc.SubmitClaim(s.ctx, s.secondary, b.ID, contact())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestSubmitClaim_OwnedBusiness() {
	b := s.seedBusiness()
	claim, err := s.svc.SubmitClaim(s.ctx, s.claimant, b.ID, contact())
	s.Require().NoError(err)
	_, err = s.svc.DecideClaim(s.ctx, claim.ID, reconcile.DecisionApprove, s.reviewer)
	s.Require().NoError(err)

	_, err = s.svc.SubmitClaim(s.ctx, s.secondary, b.ID, contact())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestSubmitClaim_AllowedAfterRejection() {
	b := s.seedBusiness()
	claim, err := s.svc.SubmitClaim(s.ctx, s.claimant, b.ID, contact())
	s.Require().NoError(err)
	_, err = s.svc.DecideClaim(s.ctx, claim.ID, reconcile.DecisionReject, s.reviewer)
	s.Require().NoError(err)

	// A rejected prior claim does not block a new claim on the same business.
	second, err := s.svc.SubmitClaim(s.ctx, s.secondary, b.ID, contact())
	s.Require().NoError(err)
	s.Equal(reconcile.StatusPending, second.Status)
}

func (s *ServiceSuite) TestSubmitClaim_RejectsInvalidContact() {
	b := s.seedBusiness()
	_, err := s.svc.SubmitClaim(s.ctx, s.claimant, b.ID, reconcile.ContactInfo{Name: "Jane"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestSubmitRegistration_CreatesPendingRequest() {
	reg, err := s.svc.SubmitRegistration(s.ctx, s.claimant, payload(s.cityID, s.category), contact())
	s.Require().NoError(err)

	s.Equal(reconcile.StatusPending, reg.Status)
	s.Nil(reg.CreatedBusinessID)
	s.Len(s.sink.byAction(audit.ActionRegistrationSubmitted), 1)
}

func (s *ServiceSuite) TestSubmitRegistration_MissingRequiredFields() {
	p := payload(s.cityID, s.category)
	p.Name = ""
	_, err := s.svc.SubmitRegistration(s.ctx, s.claimant, p, contact())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestSubmitRegistration_DanglingCategory() {
	p := payload(s.cityID, id.CategoryID(uuid.New()))
	_, err := s.svc.SubmitRegistration(s.ctx, s.claimant, p, contact())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestSubmitRegistration_NoCrossRequestUniqueness() {
	_, err := s.svc.SubmitRegistration(s.ctx, s.claimant, payload(s.cityID, s.category), contact())
	s.Require().NoError(err)
	// Same proposed business again; registrations carry no uniqueness rule.
	_, err = s.svc.SubmitRegistration(s.ctx, s.claimant, payload(s.cityID, s.category), contact())
	s.Require().NoError(err)

	pending, err := s.svc.ListPendingRegistrations(s.ctx)
	s.Require().NoError(err)
	s.Len(pending, 2)
}

// --- listing ----------------------------------------------------------------

func (s *ServiceSuite) TestListPendingClaims_OldestFirst() {
	b1 := s.seedBusiness()
	b2 := s.seedBusiness()

	ctxEarly := requestcontext.WithTime(context.Background(), s.now.Add(-time.Hour))
	_, err := s.svc.SubmitClaim(ctxEarly, s.claimant, b2.ID, contact())
	s.Require().NoError(err)
	_, err = s.svc.SubmitClaim(s.ctx, s.secondary, b1.ID, contact())
	s.Require().NoError(err)

	pending, err := s.svc.ListPendingClaims(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal(b2.ID, pending[0].BusinessID, "earliest submission reviews first")
	s.Equal(b1.ID, pending[1].BusinessID)
}

// --- claim decisions --------------------------------------------------------

func (s *ServiceSuite) TestDecideClaim_ApproveSetsOwnership() {
	b := s.seedBusiness()
	claim, err := s.svc.SubmitClaim(s.ctx, s.claimant, b.ID, contact())
	s.Require().NoError(err)

	decided, err := s.svc.DecideClaim(s.ctx, claim.ID, reconcile.DecisionApprove, s.reviewer)
	s.Require().NoError(err)
	s.Equal(reconcile.StatusApproved, decided.Status)
	s.Equal(s.reviewer, *decided.ReviewerID)
	s.Equal(s.now, *decided.ReviewedAt)

	owned, err := s.dir.GetBusiness(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Require().NotNil(owned.OwnerID)
	s.Equal(s.claimant, *owned.OwnerID)
	s.Equal(s.now, *owned.ClaimedAt)
	s.Equal(s.now, *owned.ApprovedAt)
}

func (s *ServiceSuite) TestDecideClaim_RejectLeavesBusinessUntouched() {
	b := s.seedBusiness()
	claim, err := s.svc.SubmitClaim(s.ctx, s.claimant, b.ID, contact())
	s.Require().NoError(err)

	decided, err := s.svc.DecideClaim(s.ctx, claim.ID, reconcile.DecisionReject, s.reviewer)
	s.Require().NoError(err)
	s.Equal(reconcile.StatusRejected, decided.Status)

	untouched, err := s.dir.GetBusiness(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Nil(untouched.OwnerID)
	s.Nil(untouched.ClaimedAt)
}

func (s *ServiceSuite) TestDecideClaim_UnknownID() {
	_, err := s.svc.DecideClaim(s.ctx, id.NewClaimID(), reconcile.DecisionApprove, s.reviewer)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestDecideClaim_DoubleDecisionFailsAlreadyResolved() {
	b := s.seedBusiness()
	claim, err := s.svc.SubmitClaim(s.ctx, s.claimant, b.ID, contact())
	s.Require().NoError(err)
	_, err = s.svc.DecideClaim(s.ctx, claim.ID, reconcile.DecisionApprove, s.reviewer)
	s.Require().NoError(err)

	for _, d := range []reconcile.Decision{reconcile.DecisionApprove, reconcile.DecisionReject} {
		_, err = s.svc.DecideClaim(s.ctx, claim.ID, d, s.reviewer)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyResolved), "decision %s", d)
	}

	// No further mutation: exactly one decision audit event.
	s.Len(s.sink.byAction(audit.ActionClaimDecided), 1)
}

func (s *ServiceSuite) TestDecideClaim_ConflictLeavesClaimPending() {
	b := s.seedBusiness()
	claim, err := s.svc.SubmitClaim(s.ctx, s.claimant, b.ID, contact())
	s.Require().NoError(err)

	// A registration approval or catalog action owned the business out from
	// under the claim.
	s.Require().NoError(s.dir.SetOwnership(s.ctx, b.ID, s.secondary, s.now, s.now))

	_, err = s.svc.DecideClaim(s.ctx, claim.ID, reconcile.DecisionApprove, s.reviewer)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	// The claim is left pending for a human to re-resolve, not auto-rejected.
	stored, err := s.requests.GetClaim(s.ctx, claim.ID)
	s.Require().NoError(err)
	s.Equal(reconcile.StatusPending, stored.Status)
}

func (s *ServiceSuite) TestDecideClaim_BusinessDeletedWhilePending() {
	b := s.seedBusiness()
	claim, err := s.svc.SubmitClaim(s.ctx, s.claimant, b.ID, contact())
	s.Require().NoError(err)

	s.dir.RemoveBusiness(b.ID)

	_, err = s.svc.DecideClaim(s.ctx, claim.ID, reconcile.DecisionApprove, s.reviewer)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	stored, err := s.requests.GetClaim(s.ctx, claim.ID)
	s.Require().NoError(err)
	s.Equal(reconcile.StatusPending, stored.Status)
}

// --- registration decisions -------------------------------------------------

func (s *ServiceSuite) TestDecideRegistration_ApproveCreatesOwnedBusiness() {
	reg, err := s.svc.SubmitRegistration(s.ctx, s.claimant, payload(s.cityID, s.category), contact())
	s.Require().NoError(err)

	decided, err := s.svc.DecideRegistration(s.ctx, reg.ID, reconcile.DecisionApprove, s.reviewer)
	s.Require().NoError(err)
	s.Equal(reconcile.StatusApproved, decided.Status)
	s.Require().NotNil(decided.CreatedBusinessID)

	created, err := s.dir.GetBusiness(s.ctx, *decided.CreatedBusinessID)
	s.Require().NoError(err)
	s.Equal("Jane's Cakes", created.Name)
	s.Equal("janes-cakes", created.Slug)
	s.Equal(directory.BusinessActive, created.Status)
	s.Require().NotNil(created.OwnerID)
	s.Equal(s.claimant, *created.OwnerID)
	s.Equal(s.now, *created.ClaimedAt)
	s.Equal(s.now, *created.ApprovedAt)
}

func (s *ServiceSuite) TestDecideRegistration_RejectCreatesNoBusiness() {
	reg, err := s.svc.SubmitRegistration(s.ctx, s.claimant, payload(s.cityID, s.category), contact())
	s.Require().NoError(err)

	decided, err := s.svc.DecideRegistration(s.ctx, reg.ID, reconcile.DecisionReject, s.reviewer)
	s.Require().NoError(err)
	s.Equal(reconcile.StatusRejected, decided.Status)
	s.Nil(decided.CreatedBusinessID)

	// Rejection is terminal for the request but not for the idea: a
	// corrected registration for the same proposed business is independent.
	again, err := s.svc.SubmitRegistration(s.ctx, s.claimant, payload(s.cityID, s.category), contact())
	s.Require().NoError(err)
	s.Equal(reconcile.StatusPending, again.Status)
}

func (s *ServiceSuite) TestDecideRegistration_StaleCityLeavesItPending() {
	reg, err := s.svc.SubmitRegistration(s.ctx, s.claimant, payload(s.cityID, s.category), contact())
	s.Require().NoError(err)

	s.dir.RemoveCity(s.cityID)

	_, err = s.svc.DecideRegistration(s.ctx, reg.ID, reconcile.DecisionApprove, s.reviewer)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	stored, err := s.requests.GetRegistration(s.ctx, reg.ID)
	s.Require().NoError(err)
	s.Equal(reconcile.StatusPending, stored.Status)
}

func (s *ServiceSuite) TestDecideRegistration_DoubleDecision() {
	reg, err := s.svc.SubmitRegistration(s.ctx, s.claimant, payload(s.cityID, s.category), contact())
	s.Require().NoError(err)
	_, err = s.svc.DecideRegistration(s.ctx, reg.ID, reconcile.DecisionReject, s.reviewer)
	s.Require().NoError(err)

	_, err = s.svc.DecideRegistration(s.ctx, reg.ID, reconcile.DecisionApprove, s.reviewer)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyResolved))
}

// --- concurrency ------------------------------------------------------------

func (s *ServiceSuite) TestConcurrentDoubleDecision_ExactlyOneWins() {
	b := s.seedBusiness()
	claim, err := s.svc.SubmitClaim(s.ctx, s.claimant, b.ID, contact())
	s.Require().NoError(err)

	const admins = 16
	var wg sync.WaitGroup
	results := make(chan error, admins)
	for i := 0; i < admins; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.DecideClaim(s.ctx, claim.ID, reconcile.DecisionApprove, id.UserID(uuid.New()))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, alreadyResolved int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case dErrors.HasCode(err, dErrors.CodeAlreadyResolved):
			alreadyResolved++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, wins)
	s.Equal(admins-1, alreadyResolved)
	s.Len(s.sink.byAction(audit.ActionClaimDecided), 1)
}

func (s *ServiceSuite) TestConcurrentSubmitVsApprove_NeverTwoOwners() {
	b := s.seedBusiness()
	claim, err := s.svc.SubmitClaim(s.ctx, s.claimant, b.ID, contact())
	s.Require().NoError(err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = s.svc.DecideClaim(s.ctx, claim.ID, reconcile.DecisionApprove, s.reviewer)
	}()
	go func() {
		defer wg.Done()
		_, _ = s.svc.SubmitClaim(s.ctx, s.secondary, b.ID, contact())
	}()
	wg.Wait()

	// Whatever the interleaving, the business has exactly the first
	// claimant as owner and no second claim can ever be approved onto it.
	owned, err := s.dir.GetBusiness(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Require().NotNil(owned.OwnerID)
	s.Equal(s.claimant, *owned.OwnerID)

	pending, err := s.svc.ListPendingClaims(s.ctx)
	s.Require().NoError(err)
	for _, p := range pending {
		_, err := s.svc.DecideClaim(s.ctx, p.ID, reconcile.DecisionApprove, s.reviewer)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	}
}

// --- end-to-end scenarios ---------------------------------------------------

func (s *ServiceSuite) TestScenario_ClaimLifecycle() {
	b := s.seedBusiness()

	first, err := s.svc.SubmitClaim(s.ctx, s.claimant, b.ID, contact())
	s.Require().NoError(err)
	s.Equal(reconcile.StatusPending, first.Status)

	_, err = s.svc.SubmitClaim(s.ctx, s.secondary, b.ID, contact())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	decided, err := s.svc.DecideClaim(s.ctx, first.ID, reconcile.DecisionApprove, s.reviewer)
	s.Require().NoError(err)
	s.Equal(reconcile.StatusApproved, decided.Status)

	owned, err := s.dir.GetBusiness(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(s.claimant, *owned.OwnerID)
	s.Equal(*owned.ClaimedAt, *owned.ApprovedAt)

	_, err = s.svc.DecideClaim(s.ctx, first.ID, reconcile.DecisionApprove, s.reviewer)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyResolved))
}

func (s *ServiceSuite) TestScenario_RegistrationRejectThenResubmit() {
	reg, err := s.svc.SubmitRegistration(s.ctx, s.claimant, payload(s.cityID, s.category), contact())
	s.Require().NoError(err)

	decided, err := s.svc.DecideRegistration(s.ctx, reg.ID, reconcile.DecisionReject, s.reviewer)
	s.Require().NoError(err)
	s.Equal(reconcile.StatusRejected, decided.Status)
	s.Nil(decided.CreatedBusinessID)

	corrected, err := s.svc.SubmitRegistration(s.ctx, s.claimant, payload(s.cityID, s.category), contact())
	s.Require().NoError(err)
	s.Equal(reconcile.StatusPending, corrected.Status)

	approved, err := s.svc.DecideRegistration(s.ctx, corrected.ID, reconcile.DecisionApprove, s.reviewer)
	s.Require().NoError(err)
	s.Require().NotNil(approved.CreatedBusinessID)
}
