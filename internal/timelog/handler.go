package timelog

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/research-analytics/internal"
	"github.com/frahmantamala/research-analytics/internal/core/common/validation"
	dm "github.com/frahmantamala/research-analytics/internal/core/datamodel/timelog"
	"github.com/frahmantamala/research-analytics/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateTimeLogDTO) (*TimeLog, error)
	BulkCreate(ctx context.Context, dto BulkCreateTimeLogDTO) (*BulkResult, error)
	List(ctx context.Context, f dm.Filter, p internal.Pagination) (internal.Page[*TimeLog], error)
	GetByID(ctx context.Context, id string) (*TimeLog, error)
	Update(ctx context.Context, id string, dto UpdateTimeLogDTO) (*TimeLog, error)
	Delete(ctx context.Context, id string) error
	Weekly(ctx context.Context, researcherID string, weekOf *time.Time) (*Weekly, error)
	AdminBreakdown(ctx context.Context, f BreakdownFilter) (*AdminBreakdown, error)
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

const defaultTake = 100

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateTimeLogDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	log, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, log)
}

func (h *Handler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var dto BulkCreateTimeLogDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	result, err := h.Service.BulkCreate(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, appErr := h.Pagination(r, defaultTake)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	category, appErr := h.QueryEnum(r, "category", validation.EnumTimeCategory)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	activityType, appErr := h.QueryEnum(r, "activityType", validation.EnumActivityType)
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

	f := dm.Filter{
		ResearcherID: r.URL.Query().Get("researcherId"),
		GrantID:      r.URL.Query().Get("grantId"),
		Category:     category,
		ActivityType: activityType,
		From:         from,
		To:           to,
	}
	result, err := h.Service.List(r.Context(), f, page)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, log)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto UpdateTimeLogDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	log, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, log)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Weekly(w http.ResponseWriter, r *http.Request) {
	weekOf, appErr := h.QueryDate(r, "weekOf")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	weekly, err := h.Service.Weekly(r.Context(), chi.URLParam(r, "researcherId"), weekOf)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, weekly)
}

func (h *Handler) AdminBreakdown(w http.ResponseWriter, r *http.Request) {
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
	f := BreakdownFilter{
		InstitutionID: internal.InstitutionScope(r.Context(), r.URL.Query().Get("institutionId")),
		DepartmentID:  r.URL.Query().Get("departmentId"),
		From:          from,
		To:            to,
	}
	breakdown, err := h.Service.AdminBreakdown(r.Context(), f)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, breakdown)
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Post("/bulk", h.BulkCreate)
	r.Get("/", h.List)
	r.Get("/weekly/{researcherId}", h.Weekly)
	r.Get("/admin-breakdown", h.AdminBreakdown)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}
