// Package handler exposes the reconciliation workflow over HTTP: a
// submission gateway for prospective owners and a review gateway for
// administrators.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bizdir/internal/platform/middleware"
	"bizdir/internal/ratelimit"
	"bizdir/internal/reconcile"
	id "bizdir/pkg/domain"
	dErrors "bizdir/pkg/domain-errors"
	"bizdir/pkg/platform/httputil"
	"bizdir/pkg/requestcontext"
)

// Service defines the reconciliation operations the gateways expose.
type Service interface {
	SubmitClaim(ctx context.Context, userID id.UserID, businessID id.BusinessID, contact reconcile.ContactInfo) (*reconcile.ClaimRequest, error)
	SubmitRegistration(ctx context.Context, userID id.UserID, payload reconcile.BusinessPayload, contact reconcile.ContactInfo) (*reconcile.RegistrationRequest, error)
	ListPendingClaims(ctx context.Context) ([]*reconcile.ClaimRequest, error)
	ListPendingRegistrations(ctx context.Context) ([]*reconcile.RegistrationRequest, error)
	DecideClaim(ctx context.Context, claimID id.ClaimID, decision reconcile.Decision, reviewerID id.UserID) (*reconcile.ClaimRequest, error)
	DecideRegistration(ctx context.Context, regID id.RegistrationID, decision reconcile.Decision, reviewerID id.UserID) (*reconcile.RegistrationRequest, error)
}

// Handler is the submission gateway. Callers must hold a valid user token;
// administrator tokens are rejected so reviewers cannot submit as themselves.
type Handler struct {
	service      Service
	limiter      ratelimit.Limiter
	jwtValidator middleware.JWTValidator
	logger       *slog.Logger
}

func New(service Service, limiter ratelimit.Limiter, jwtValidator middleware.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{
		service:      service,
		limiter:      limiter,
		jwtValidator: jwtValidator,
		logger:       logger,
	}
}

// Register mounts the submission routes.
func (h *Handler) Register(r chi.Router) {
	sub := chi.NewRouter()
	sub.Use(middleware.Timeout(30 * time.Second))
	sub.Use(middleware.ContentTypeJSON)
	sub.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	sub.Use(middleware.RequireNonAdmin(h.logger))
	sub.Post("/businesses/{businessID}/claims", h.handleSubmitClaim)
	sub.Post("/registrations", h.handleSubmitRegistration)

	r.Mount("/", sub)
}

type contactDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

func (c contactDTO) toModel() reconcile.ContactInfo {
	return reconcile.ContactInfo{Name: c.Name, Email: c.Email, Phone: c.Phone}
}

type submitClaimRequest struct {
	Contact contactDTO `json:"contact"`
}

type submitRegistrationRequest struct {
	Business businessPayloadDTO `json:"business"`
	Contact  contactDTO         `json:"contact"`
}

type businessPayloadDTO struct {
	Name          string `json:"name"`
	Instagram     string `json:"instagram"`
	CityID        string `json:"city_id"`
	CategoryID    string `json:"category_id"`
	SubcategoryID string `json:"subcategory_id,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

func (h *Handler) handleSubmitClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	if !h.allowSubmission(ctx, userID) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many submissions, try again later"))
		return
	}

	businessID, err := id.ParseBusinessID(chi.URLParam(r, "businessID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid business id"))
		return
	}

	req, ok := httputil.Decode[submitClaimRequest](w, r, h.logger)
	if !ok {
		return
	}

	claim, err := h.service.SubmitClaim(ctx, userID, businessID, req.Contact.toModel())
	if err != nil {
		h.logger.WarnContext(ctx, "claim submission failed",
			"request_id", requestcontext.RequestID(ctx),
			"business_id", businessID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "claim submitted",
		"request_id", requestcontext.RequestID(ctx),
		"claim_id", claim.ID,
		"business_id", businessID,
	)
	httputil.WriteJSON(w, http.StatusCreated, claimToDTO(claim))
}

func (h *Handler) handleSubmitRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	if !h.allowSubmission(ctx, userID) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many submissions, try again later"))
		return
	}

	req, ok := httputil.Decode[submitRegistrationRequest](w, r, h.logger)
	if !ok {
		return
	}

	payload, err := payloadFromDTO(req.Business)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	reg, err := h.service.SubmitRegistration(ctx, userID, payload, req.Contact.toModel())
	if err != nil {
		h.logger.WarnContext(ctx, "registration submission failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "registration submitted",
		"request_id", requestcontext.RequestID(ctx),
		"registration_id", reg.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, registrationToDTO(reg))
}

// allowSubmission applies the per-user limit. The limiter failing is not the
// caller's fault, so backend errors fail open with a warning.
func (h *Handler) allowSubmission(ctx context.Context, userID id.UserID) bool {
	if h.limiter == nil {
		return true
	}
	allowed, err := h.limiter.Allow(ctx, userID.String())
	if err != nil {
		h.logger.WarnContext(ctx, "rate limiter unavailable, allowing request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return true
	}
	return allowed
}

func payloadFromDTO(dto businessPayloadDTO) (reconcile.BusinessPayload, error) {
	cityID, err := id.ParseCityID(dto.CityID)
	if err != nil {
		return reconcile.BusinessPayload{}, dErrors.New(dErrors.CodeValidation, "invalid city id")
	}
	categoryID, err := id.ParseCategoryID(dto.CategoryID)
	if err != nil {
		return reconcile.BusinessPayload{}, dErrors.New(dErrors.CodeValidation, "invalid category id")
	}
	payload := reconcile.BusinessPayload{
		Name:       dto.Name,
		Instagram:  dto.Instagram,
		CityID:     cityID,
		CategoryID: categoryID,
		Notes:      dto.Notes,
	}
	if dto.SubcategoryID != "" {
		subID, err := id.ParseSubcategoryID(dto.SubcategoryID)
		if err != nil {
			return reconcile.BusinessPayload{}, dErrors.New(dErrors.CodeValidation, "invalid subcategory id")
		}
		payload.SubcategoryID = &subID
	}
	return payload, nil
}
