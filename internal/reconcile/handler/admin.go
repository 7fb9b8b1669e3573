package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bizdir/internal/platform/middleware"
	"bizdir/internal/reconcile"
	id "bizdir/pkg/domain"
	dErrors "bizdir/pkg/domain-errors"
	"bizdir/pkg/platform/httputil"
	"bizdir/pkg/requestcontext"
)

// AdminHandler is the review gateway. Every route requires an administrator:
// either an admin-role JWT or the operator break-glass token.
type AdminHandler struct {
	service        Service
	jwtValidator   middleware.JWTValidator
	adminTokenHash string
	logger         *slog.Logger
}

func NewAdmin(service Service, jwtValidator middleware.JWTValidator, adminTokenHash string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		service:        service,
		jwtValidator:   jwtValidator,
		adminTokenHash: adminTokenHash,
		logger:         logger,
	}
}

// Register mounts the review routes under /admin.
func (h *AdminHandler) Register(r chi.Router) {
	admin := chi.NewRouter()
	admin.Use(middleware.Timeout(30 * time.Second))
	admin.Use(middleware.ContentTypeJSON)
	admin.Use(optionalAuth(h.jwtValidator))
	admin.Use(middleware.RequireAdmin(h.adminTokenHash, h.logger))
	admin.Get("/claims", h.handleListClaims)
	admin.Get("/registrations", h.handleListRegistrations)
	admin.Post("/claims/{claimID}/decision", h.handleDecideClaim)
	admin.Post("/registrations/{registrationID}/decision", h.handleDecideRegistration)

	r.Mount("/admin", admin)
}

// optionalAuth populates the context from a bearer token when one is
// present, but leaves anonymous requests alone so the break-glass
// X-Admin-Token path still works.
func optionalAuth(validator middleware.JWTValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const prefix = "Bearer "
			header := r.Header.Get("Authorization")
			if len(header) > len(prefix) && header[:len(prefix)] == prefix {
				if claims, err := validator.ValidateToken(header[len(prefix):]); err == nil {
					if userID, err := id.ParseUserID(claims.UserID); err == nil {
						ctx := requestcontext.WithUserID(r.Context(), userID)
						ctx = requestcontext.WithRole(ctx, requestcontext.Role(claims.Role))
						r = r.WithContext(ctx)
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

type decisionRequest struct {
	Decision string `json:"decision"`
}

func (h *AdminHandler) handleListClaims(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, err := h.service.ListPendingClaims(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "pending claim listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	out := make([]claimDTO, 0, len(claims))
	for _, c := range claims {
		out = append(out, claimToDTO(c))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"claims": out})
}

func (h *AdminHandler) handleListRegistrations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	regs, err := h.service.ListPendingRegistrations(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "pending registration listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	out := make([]registrationDTO, 0, len(regs))
	for _, reg := range regs {
		out = append(out, registrationToDTO(reg))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"registrations": out})
}

func (h *AdminHandler) handleDecideClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid claim id"))
		return
	}

	req, ok := httputil.Decode[decisionRequest](w, r, h.logger)
	if !ok {
		return
	}
	decision, err := reconcile.ParseDecision(req.Decision)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	claim, err := h.service.DecideClaim(ctx, claimID, decision, requestcontext.UserID(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "claim decision failed",
			"request_id", requestcontext.RequestID(ctx),
			"claim_id", claimID,
			"decision", decision,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, claimToDTO(claim))
}

func (h *AdminHandler) handleDecideRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	regID, err := id.ParseRegistrationID(chi.URLParam(r, "registrationID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid registration id"))
		return
	}

	req, ok := httputil.Decode[decisionRequest](w, r, h.logger)
	if !ok {
		return
	}
	decision, err := reconcile.ParseDecision(req.Decision)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	reg, err := h.service.DecideRegistration(ctx, regID, decision, requestcontext.UserID(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "registration decision failed",
			"request_id", requestcontext.RequestID(ctx),
			"registration_id", regID,
			"decision", decision,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, registrationToDTO(reg))
}
