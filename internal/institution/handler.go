package institution

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/research-analytics/internal"
	"github.com/frahmantamala/research-analytics/internal/core/common/validation"
	"github.com/frahmantamala/research-analytics/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateInstitutionDTO) (*Institution, error)
	List(ctx context.Context, f ListFilter, p internal.Pagination) (internal.Page[*Institution], error)
	GetByID(ctx context.Context, id string) (*Institution, error)
	Update(ctx context.Context, id string, dto UpdateInstitutionDTO) (*Institution, error)
	Deactivate(ctx context.Context, id string) (*Institution, error)
	Stats(ctx context.Context, id string) (*Stats, error)
	AddDepartment(ctx context.Context, institutionID string, dto CreateDepartmentDTO) (*Department, error)
	Departments(ctx context.Context, institutionID string) ([]*Department, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

const defaultTake = 50

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateInstitutionDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	inst, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, inst)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, appErr := h.Pagination(r, defaultTake)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	instType, appErr := h.QueryEnum(r, "type", validation.EnumInstitutionType)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	isActive, appErr := h.QueryBool(r, "isActive")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	f := ListFilter{Country: r.URL.Query().Get("country"), Type: instType, IsActive: isActive}
	result, err := h.Service.List(r.Context(), f, page)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	inst, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, inst)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto UpdateInstitutionDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	inst, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, inst)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	inst, err := h.Service.Deactivate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, inst)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) AddDepartment(w http.ResponseWriter, r *http.Request) {
	var dto CreateDepartmentDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	dept, err := h.Service.AddDepartment(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, dept)
}

func (h *Handler) Departments(w http.ResponseWriter, r *http.Request) {
	depts, err := h.Service.Departments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, depts)
}

// Routes mounts the institution endpoints; admin guards the mutating ones.
func (h *Handler) Routes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/stats", h.Stats)
	r.Get("/{id}/departments", h.Departments)
	r.Group(func(ar chi.Router) {
		ar.Use(admin)
		ar.Post("/", h.Create)
		ar.Patch("/{id}", h.Update)
		ar.Delete("/{id}", h.Delete)
		ar.Post("/{id}/departments", h.AddDepartment)
	})
}
