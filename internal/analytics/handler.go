package analytics

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/research-analytics/internal"
	"github.com/frahmantamala/research-analytics/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Dashboard(ctx context.Context, institutionID string) (*Dashboard, error)
	TimeTrends(ctx context.Context, institutionID string, months int) (*TimeTrends, error)
	Bottlenecks(ctx context.Context, institutionID, departmentID string, limit int) ([]Bottleneck, error)
	ResearcherComparison(ctx context.Context, institutionID, departmentID string) ([]ResearcherComparison, error)
	GrantPipeline(ctx context.Context, institutionID string) (*GrantPipeline, error)
	Benchmarks(ctx context.Context, institutionID string) (*Benchmarks, error)
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

func institutionID(r *http.Request) string {
	return internal.InstitutionScope(r.Context(), r.URL.Query().Get("institutionId"))
}

// requireInstitution resolves the institution scope and rejects an empty one.
func (h *Handler) requireInstitution(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := institutionID(r)
	if id == "" {
		h.WriteAppError(w, internal.NewValidationFieldError("institutionId", "institutionId is required", internal.ErrCodeInstitutionMissing))
		return "", false
	}
	return id, true
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service.Dashboard(r.Context(), institutionID(r))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) TimeTrends(w http.ResponseWriter, r *http.Request) {
	months, appErr := h.QueryInt(r, "months", DefaultTrendMonths)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	out, err := h.Service.TimeTrends(r.Context(), institutionID(r), months)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Bottlenecks(w http.ResponseWriter, r *http.Request) {
	limit, appErr := h.QueryInt(r, "limit", DefaultBottleneckLimit)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	out, err := h.Service.Bottlenecks(r.Context(), institutionID(r), r.URL.Query().Get("departmentId"), limit)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) ResearcherComparison(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireInstitution(w, r)
	if !ok {
		return
	}
	out, err := h.Service.ResearcherComparison(r.Context(), id, r.URL.Query().Get("departmentId"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) GrantPipeline(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service.GrantPipeline(r.Context(), institutionID(r))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Benchmarks(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireInstitution(w, r)
	if !ok {
		return
	}
	out, err := h.Service.Benchmarks(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/dashboard", h.Dashboard)
	r.Get("/time-trends", h.TimeTrends)
	r.Get("/bottlenecks", h.Bottlenecks)
	r.Get("/researcher-comparison", h.ResearcherComparison)
	r.Get("/grant-pipeline", h.GrantPipeline)
	r.Get("/benchmarks", h.Benchmarks)
}
