package researcher

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/research-analytics/internal"
	dm "github.com/frahmantamala/research-analytics/internal/core/datamodel/researcher"
	"github.com/frahmantamala/research-analytics/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateResearcherDTO) (*Researcher, error)
	List(ctx context.Context, f dm.Filter, p internal.Pagination) (internal.Page[*Researcher], error)
	GetByID(ctx context.Context, id string) (*Researcher, error)
	GetByUserID(ctx context.Context, userID string) (*Researcher, error)
	Update(ctx context.Context, id string, dto UpdateResearcherDTO) (*Researcher, error)
	Delete(ctx context.Context, id string) error
	TimeAllocation(ctx context.Context, id string, from, to *time.Time) (*TimeAllocation, error)
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
	var dto CreateResearcherDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	res, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, appErr := h.Pagination(r, defaultTake)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	q := r.URL.Query()
	f := dm.Filter{
		InstitutionID: q.Get("institutionId"),
		DepartmentID:  q.Get("departmentId"),
		Position:      q.Get("position"),
	}
	result, err := h.Service.List(r.Context(), f, page)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.GetByUserID(r.Context(), internal.UserIDFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto UpdateResearcherDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	res, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) TimeAllocation(w http.ResponseWriter, r *http.Request) {
	from, appErr := h.QueryDate(r, "fromDate")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	to, appErr := h.QueryDate(r, "toDate")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	alloc, err := h.Service.TimeAllocation(r.Context(), chi.URLParam(r, "id"), from, to)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, alloc)
}

// Routes registers /me ahead of /{id} so it is not captured as an id.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/me", h.Me)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/time-allocation", h.TimeAllocation)
}
