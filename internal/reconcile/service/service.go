// Package service implements the ownership reconciliation core: intake of
// claim and registration requests, and their administrator-driven
// resolution. Every request resolves exactly once; every business gains at
// most one owner.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"bizdir/internal/audit"
	"bizdir/internal/directory"
	"bizdir/internal/reconcile"
	"bizdir/internal/reconcile/metrics"
	id "bizdir/pkg/domain"
	dErrors "bizdir/pkg/domain-errors"
	"bizdir/pkg/requestcontext"
)

var tracer = otel.Tracer("bizdir/reconcile")

// AuditSink receives best-effort audit events for intake and decisions.
type AuditSink interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service orchestrates the reconciliation workflow over the directory and
// request stores. The only code path that sets business ownership fields is
// the two approve paths below.
type Service struct {
	directory directory.Store
	requests  reconcile.Store
	tx        Tx
	audit     AuditSink
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewService(
	dir directory.Store,
	requests reconcile.Store,
	tx Tx,
	auditSink AuditSink,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		directory: dir,
		requests:  requests,
		tx:        tx,
		audit:     auditSink,
		metrics:   m,
		logger:    logger,
	}
}

// SubmitClaim creates a pending claim on an existing, unowned business.
// The ownership and pending-claim checks run in the same atomic unit as the
// insert so a concurrent approval cannot slip a new claim past them.
func (s *Service) SubmitClaim(ctx context.Context, userID id.UserID, businessID id.BusinessID, contact reconcile.ContactInfo) (*reconcile.ClaimRequest, error) {
	if err := contact.Validate(); err != nil {
		return nil, err
	}

	claim := &reconcile.ClaimRequest{
		ID:         id.NewClaimID(),
		BusinessID: businessID,
		UserID:     userID,
		Contact:    contact,
		Status:     reconcile.StatusPending,
		CreatedAt:  requestcontext.Now(ctx),
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		business, err := s.directory.GetBusinessForUpdate(ctx, businessID)
		if err != nil {
			return err
		}
		if business.Owned() {
			return dErrors.New(dErrors.CodeConflict, "business already has an owner")
		}
		pending, err := s.requests.HasPendingClaim(ctx, businessID)
		if err != nil {
			return err
		}
		if pending {
			return dErrors.New(dErrors.CodeConflict, "a claim for this business is already pending")
		}
		return s.requests.InsertClaim(ctx, claim)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSubmission("claim")
	s.audit.Emit(ctx, audit.Event{
		Actor:   userID.String(),
		Action:  audit.ActionClaimSubmitted,
		Subject: claim.ID.String(),
		Detail:  "business " + businessID.String(),
	})
	return claim, nil
}

// SubmitRegistration creates a pending registration carrying the full
// proposed-business payload. No Business record is touched.
func (s *Service) SubmitRegistration(ctx context.Context, userID id.UserID, payload reconcile.BusinessPayload, contact reconcile.ContactInfo) (*reconcile.RegistrationRequest, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	if err := contact.Validate(); err != nil {
		return nil, err
	}
	if err := s.validateCatalogRefs(ctx, payload); err != nil {
		return nil, err
	}

	reg := &reconcile.RegistrationRequest{
		ID:        id.NewRegistrationID(),
		UserID:    userID,
		Payload:   payload,
		Contact:   contact,
		Status:    reconcile.StatusPending,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.requests.InsertRegistration(ctx, reg); err != nil {
		return nil, err
	}

	s.metrics.RecordSubmission("registration")
	s.audit.Emit(ctx, audit.Event{
		Actor:   userID.String(),
		Action:  audit.ActionRegistrationSubmitted,
		Subject: reg.ID.String(),
		Detail:  payload.Name,
	})
	return reg, nil
}

// ListPendingClaims returns pending claims oldest-first so early claimants
// are reviewed before later ones.
func (s *Service) ListPendingClaims(ctx context.Context) ([]*reconcile.ClaimRequest, error) {
	return s.requests.ListClaimsByStatus(ctx, reconcile.StatusPending)
}

// ListPendingRegistrations returns pending registrations oldest-first.
func (s *Service) ListPendingRegistrations(ctx context.Context) ([]*reconcile.RegistrationRequest, error) {
	return s.requests.ListRegistrationsByStatus(ctx, reconcile.StatusPending)
}

// DecideClaim resolves a pending claim. Approval links the business to the
// claimant and finalizes the claim as one atomic unit; an ownership
// conflict aborts the approval and leaves the claim pending for a human to
// re-resolve. A request that already left pending fails AlreadyResolved.
func (s *Service) DecideClaim(ctx context.Context, claimID id.ClaimID, decision reconcile.Decision, reviewerID id.UserID) (*reconcile.ClaimRequest, error) {
	ctx, span := tracer.Start(ctx, "reconcile.DecideClaim")
	defer span.End()
	span.SetAttributes(
		attribute.String("claim_id", claimID.String()),
		attribute.String("decision", string(decision)),
	)
	start := time.Now()
	defer func() { s.metrics.ObserveDecide(time.Since(start).Seconds()) }()

	now := requestcontext.Now(ctx)
	fin := reconcile.Finalization{ReviewedAt: now, ReviewerID: reviewerID}

	var decided *reconcile.ClaimRequest
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		claim, err := s.requests.GetClaimForUpdate(ctx, claimID)
		if err != nil {
			return err
		}
		if claim.Status.Terminal() {
			return dErrors.New(dErrors.CodeAlreadyResolved, "claim request already reviewed")
		}

		if decision == reconcile.DecisionApprove {
			// Re-check ownership inside the transaction: the business may
			// have been claimed through another request since submission.
			// SetOwnership is conditional on the listing being unowned, so
			// a racing approval loses here, the claim stays pending, and
			// the transaction unwinds with Conflict.
			if err := s.directory.SetOwnership(ctx, claim.BusinessID, claim.UserID, now, now); err != nil {
				if dErrors.HasCode(err, dErrors.CodeConflict) {
					s.metrics.RecordConflict()
				}
				return err
			}
			if err := s.requests.FinalizeClaim(ctx, claimID, reconcile.StatusPending, reconcile.StatusApproved, fin); err != nil {
				return err
			}
			claim.Status = reconcile.StatusApproved
		} else {
			if err := s.requests.FinalizeClaim(ctx, claimID, reconcile.StatusPending, reconcile.StatusRejected, fin); err != nil {
				return err
			}
			claim.Status = reconcile.StatusRejected
		}
		claim.ReviewedAt = &fin.ReviewedAt
		claim.ReviewerID = &fin.ReviewerID
		decided = claim
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.metrics.RecordDecision("claim", string(decision))
	s.audit.Emit(ctx, audit.Event{
		Actor:    reviewerID.String(),
		Action:   audit.ActionClaimDecided,
		Subject:  claimID.String(),
		Decision: string(decision),
	})
	s.logger.InfoContext(ctx, "claim decided",
		"request_id", requestcontext.RequestID(ctx),
		"claim_id", claimID,
		"decision", decision,
		"reviewer_id", reviewerID,
	)
	return decided, nil
}

// DecideRegistration resolves a pending registration. Approval creates the
// business (already owned, active) and finalizes the registration as one
// atomic unit; stale catalog references abort the approval with a
// validation error and leave the registration pending for re-review.
func (s *Service) DecideRegistration(ctx context.Context, regID id.RegistrationID, decision reconcile.Decision, reviewerID id.UserID) (*reconcile.RegistrationRequest, error) {
	ctx, span := tracer.Start(ctx, "reconcile.DecideRegistration")
	defer span.End()
	span.SetAttributes(
		attribute.String("registration_id", regID.String()),
		attribute.String("decision", string(decision)),
	)
	start := time.Now()
	defer func() { s.metrics.ObserveDecide(time.Since(start).Seconds()) }()

	now := requestcontext.Now(ctx)

	var decided *reconcile.RegistrationRequest
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		reg, err := s.requests.GetRegistrationForUpdate(ctx, regID)
		if err != nil {
			return err
		}
		if reg.Status.Terminal() {
			return dErrors.New(dErrors.CodeAlreadyResolved, "registration request already reviewed")
		}

		fin := reconcile.Finalization{ReviewedAt: now, ReviewerID: reviewerID}
		if decision == reconcile.DecisionApprove {
			// The catalog may have changed since submission; a dangling
			// reference keeps the registration pending rather than
			// auto-rejecting, since the admin may fix the catalog instead.
			// Checked sequentially: a context transaction cannot be shared
			// across goroutines.
			if err := s.checkCatalogRefs(ctx, reg.Payload); err != nil {
				return err
			}

			owner := reg.UserID
			business := &directory.Business{
				ID:            id.NewBusinessID(),
				Slug:          directory.Slugify(reg.Payload.Name),
				Name:          reg.Payload.Name,
				Instagram:     reg.Payload.Instagram,
				CityID:        reg.Payload.CityID,
				CategoryID:    reg.Payload.CategoryID,
				SubcategoryID: reg.Payload.SubcategoryID,
				OwnerID:       &owner,
				ClaimedAt:     &now,
				ApprovedAt:    &now,
				Status:        directory.BusinessActive,
				CreatedAt:     now,
			}
			if err := s.directory.CreateBusiness(ctx, business); err != nil {
				return err
			}
			fin.CreatedBusinessID = &business.ID
			if err := s.requests.FinalizeRegistration(ctx, regID, reconcile.StatusPending, reconcile.StatusApproved, fin); err != nil {
				return err
			}
			reg.Status = reconcile.StatusApproved
			reg.CreatedBusinessID = &business.ID
		} else {
			if err := s.requests.FinalizeRegistration(ctx, regID, reconcile.StatusPending, reconcile.StatusRejected, fin); err != nil {
				return err
			}
			reg.Status = reconcile.StatusRejected
		}
		reg.ReviewedAt = &fin.ReviewedAt
		reg.ReviewerID = &fin.ReviewerID
		decided = reg
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.metrics.RecordDecision("registration", string(decision))
	s.audit.Emit(ctx, audit.Event{
		Actor:    reviewerID.String(),
		Action:   audit.ActionRegistrationDecided,
		Subject:  regID.String(),
		Decision: string(decision),
	})
	s.logger.InfoContext(ctx, "registration decided",
		"request_id", requestcontext.RequestID(ctx),
		"registration_id", regID,
		"decision", decision,
		"reviewer_id", reviewerID,
	)
	return decided, nil
}

// checkCatalogRefs validates the payload's references one by one. Used
// inside transactions, where queries must not run concurrently.
func (s *Service) checkCatalogRefs(ctx context.Context, payload reconcile.BusinessPayload) error {
	ok, err := s.directory.CityExists(ctx, payload.CityID)
	if err != nil {
		return err
	}
	if !ok {
		return dErrors.New(dErrors.CodeValidation, "city does not exist")
	}
	ok, err = s.directory.CategoryExists(ctx, payload.CategoryID)
	if err != nil {
		return err
	}
	if !ok {
		return dErrors.New(dErrors.CodeValidation, "category does not exist")
	}
	if payload.SubcategoryID != nil {
		ok, err = s.directory.SubcategoryExists(ctx, *payload.SubcategoryID)
		if err != nil {
			return err
		}
		if !ok {
			return dErrors.New(dErrors.CodeValidation, "subcategory does not exist")
		}
	}
	return nil
}

// validateCatalogRefs checks the payload's city, category, and optional
// subcategory against the catalog, in parallel. Intake only; never called
// with an active transaction.
func (s *Service) validateCatalogRefs(ctx context.Context, payload reconcile.BusinessPayload) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ok, err := s.directory.CityExists(ctx, payload.CityID)
		if err != nil {
			return err
		}
		if !ok {
			return dErrors.New(dErrors.CodeValidation, "city does not exist")
		}
		return nil
	})
	g.Go(func() error {
		ok, err := s.directory.CategoryExists(ctx, payload.CategoryID)
		if err != nil {
			return err
		}
		if !ok {
			return dErrors.New(dErrors.CodeValidation, "category does not exist")
		}
		return nil
	})
	if payload.SubcategoryID != nil {
		subID := *payload.SubcategoryID
		g.Go(func() error {
			ok, err := s.directory.SubcategoryExists(ctx, subID)
			if err != nil {
				return err
			}
			if !ok {
				return dErrors.New(dErrors.CodeValidation, "subcategory does not exist")
			}
			return nil
		})
	}
	return g.Wait()
}
