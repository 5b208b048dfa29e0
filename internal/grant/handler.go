package grant

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/research-analytics/internal"
	"github.com/frahmantamala/research-analytics/internal/core/common/validation"
	dm "github.com/frahmantamala/research-analytics/internal/core/datamodel/grant"
	"github.com/frahmantamala/research-analytics/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateGrantDTO) (*Grant, error)
	List(ctx context.Context, f dm.Filter, p internal.Pagination) (internal.Page[*Grant], error)
	GetByID(ctx context.Context, id string) (*Grant, error)
	Update(ctx context.Context, id string, dto UpdateGrantDTO) (*Grant, error)
	Delete(ctx context.Context, id string) error
	AddResearcher(ctx context.Context, grantID string, dto AddResearcherDTO) (*Member, error)
	RemoveResearcher(ctx context.Context, grantID, researcherID string) error
	SuccessRate(ctx context.Context, f SuccessFilter) (*SuccessRate, error)
	TimeSpent(ctx context.Context, grantID string) (*TimeSpent, error)
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
	var dto CreateGrantDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	g, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, g)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, appErr := h.Pagination(r, defaultTake)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	status, appErr := h.QueryEnum(r, "status", validation.EnumGrantStatus)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	funderType, appErr := h.QueryEnum(r, "funderType", validation.EnumFunderType)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	f := dm.Filter{
		InstitutionID: r.URL.Query().Get("institutionId"),
		Status:        status,
		FunderType:    funderType,
		ResearcherID:  r.URL.Query().Get("researcherId"),
	}
	result, err := h.Service.List(r.Context(), f, page)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto UpdateGrantDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	g, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddResearcher(w http.ResponseWriter, r *http.Request) {
	var dto AddResearcherDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	member, err := h.Service.AddResearcher(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, member)
}

func (h *Handler) RemoveResearcher(w http.ResponseWriter, r *http.Request) {
	err := h.Service.RemoveResearcher(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "researcherId"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SuccessRate(w http.ResponseWriter, r *http.Request) {
	funderType, appErr := h.QueryEnum(r, "funderType", validation.EnumFunderType)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
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

	f := SuccessFilter{
		InstitutionID: internal.InstitutionScope(r.Context(), r.URL.Query().Get("institutionId")),
		FunderType:    funderType,
		From:          from,
		To:            to,
	}
	rate, err := h.Service.SuccessRate(r.Context(), f)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rate)
}

func (h *Handler) TimeSpent(w http.ResponseWriter, r *http.Request) {
	spent, err := h.Service.TimeSpent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, spent)
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/success-rate", h.SuccessRate)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/time-spent", h.TimeSpent)
	r.Post("/{id}/researchers", h.AddResearcher)
	r.Delete("/{id}/researchers/{researcherId}", h.RemoveResearcher)
}
