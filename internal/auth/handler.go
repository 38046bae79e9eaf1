package auth

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/finledger/finledger/internal/platform/httpx"
	"github.com/finledger/finledger/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// PublicRoutes are mounted outside the token middleware; login is rate
// limited at the router.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/login", h.Login)
}

// ProtectedRoutes require a valid token; managing staff is admin work.
func (h *Handler) ProtectedRoutes(r chi.Router) {
	r.Post("/staff", h.Register)
	r.Get("/staff", h.ListStaff)
	r.Post("/staff/{id}/deactivate", h.Deactivate)
	r.Get("/me", h.Me)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var form LoginForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}

	result, err := h.service.Login(r.Context(), form)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	claims, ok := FromContext(r.Context())
	if !ok || claims.Role != RoleAdmin {
		httpx.RespondError(w, shared.ErrForbidden)
		return
	}

	var form RegisterForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}

	staff, err := h.service.Register(r.Context(), form)
	if err != nil {
		h.logger.Error("register staff failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, staff)
}

func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	claims, ok := FromContext(r.Context())
	if !ok || claims.Role != RoleAdmin {
		httpx.RespondError(w, shared.ErrForbidden)
		return
	}

	staff, err := h.service.ListStaff(r.Context())
	if err != nil {
		h.logger.Error("list staff failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	if staff == nil {
		staff = []Staff{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"staff": staff})
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	claims, ok := FromContext(r.Context())
	if !ok || claims.Role != RoleAdmin {
		httpx.RespondError(w, shared.ErrForbidden)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid staff id")
		return
	}

	staff, err := h.service.Deactivate(r.Context(), id)
	if err != nil {
		h.logger.Error("deactivate staff failed", "error", err, "staff_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, staff)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"staff_id": claims.StaffID,
		"name":     claims.Name,
		"role":     claims.Role,
	})
}
