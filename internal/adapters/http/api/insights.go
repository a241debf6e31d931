package api

import (
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/fieldpulse/internal/app"
	"github.com/okian/fieldpulse/internal/domain/model"
)

// InsightHandler serves the calculator views.
type InsightHandler struct {
	deps InsightDependencies
}

// NewInsightHandler creates a new insight handler.
func NewInsightHandler(deps InsightDependencies) *InsightHandler {
	return &InsightHandler{deps: deps}
}

// HandlePipeline handles GET /forecast/pipeline?stale_days=&now= requests.
func (h *InsightHandler) HandlePipeline(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_pipeline"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, op, http.MethodGet)
		return
	}
	q := r.URL.Query()
	now, err := queryTime(q, "now")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	stale, err := queryInt(q, "stale_days")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.PipelineForecast(r.Context(), service.PipelineRequest{
		Now:                now,
		StaleDaysThreshold: stale,
	}))
}

// HandleTeam handles GET /performance/team?estimated_hours=&available_hours=&now= requests.
func (h *InsightHandler) HandleTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_team"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, op, http.MethodGet)
		return
	}
	q := r.URL.Query()
	now, err := queryTime(q, "now")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	perJob, err := queryFloat(q, "estimated_hours")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	perWeek, err := queryFloat(q, "available_hours")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.TeamPerformance(r.Context(), service.TeamRequest{
		Now:                   now,
		EstimatedHoursPerJob:  perJob,
		AvailableHoursPerWeek: perWeek,
	}))
}

// HandleCashFlow handles GET /forecast/cashflow?horizon=&now= requests.
func (h *InsightHandler) HandleCashFlow(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_cashflow"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, op, http.MethodGet)
		return
	}
	q := r.URL.Query()
	now, err := queryTime(q, "now")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	horizon, err := queryInt(q, "horizon")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.CashFlow(r.Context(), service.CashFlowRequest{
		Now:     now,
		Horizon: horizon,
	}))
}

// HandleGoalProgress handles GET /goals/progress requests.
func (h *InsightHandler) HandleGoalProgress(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_goal_progress"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, op, http.MethodGet)
		return
	}
	req, err := goalRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	progress, err := h.deps.GoalProgress(r.Context(), req)
	switch {
	case errors.Is(err, service.ErrGoalNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	default:
		writeJSON(w, http.StatusOK, progress)
	}
}

func goalRequest(r *http.Request) (service.GoalRequest, error) {
	q := r.URL.Query()
	req := service.GoalRequest{
		GoalType:   model.GoalType(q.Get("goal_type")),
		PeriodType: model.PeriodType(q.Get("period_type")),
	}
	if !req.GoalType.Valid() {
		return req, fmt.Errorf("invalid goal_type %q", req.GoalType)
	}
	if !req.PeriodType.Valid() {
		return req, fmt.Errorf("invalid period_type %q", req.PeriodType)
	}
	var err error
	if req.Now, err = queryTime(q, "now"); err != nil {
		return req, err
	}
	if req.Year, err = queryInt(q, "year"); err != nil {
		return req, err
	}
	switch req.PeriodType {
	case model.PeriodMonthly:
		if req.Period, err = queryInt(q, "month"); err != nil {
			return req, err
		}
		if req.Period > 12 {
			return req, fmt.Errorf("invalid month %d", req.Period)
		}
	case model.PeriodQuarterly:
		if req.Period, err = queryInt(q, "quarter"); err != nil {
			return req, err
		}
		if req.Period > 4 {
			return req, fmt.Errorf("invalid quarter %d", req.Period)
		}
	}
	return req, nil
}
