// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"
	service "github.com/okian/fieldpulse/internal/app"
	"github.com/okian/fieldpulse/internal/domain/cashflow"
	"github.com/okian/fieldpulse/internal/domain/goals"
	"github.com/okian/fieldpulse/internal/domain/model"
	"github.com/okian/fieldpulse/internal/domain/performance"
	"github.com/okian/fieldpulse/internal/domain/pipeline"
)

// RecordDependencies manages the records the calculators read.
type RecordDependencies interface {
	PutProject(ctx context.Context, p model.Project) (model.Project, error)
	PutTechnician(ctx context.Context, t model.Technician) (model.Technician, error)
	PutGoal(ctx context.Context, g model.BusinessGoal) (model.BusinessGoal, error)
	Projects(ctx context.Context) []model.Project
	Technicians(ctx context.Context) []model.Technician
	Goals(ctx context.Context) []model.BusinessGoal
}

// InsightDependencies runs the calculators.
type InsightDependencies interface {
	PipelineForecast(ctx context.Context, req service.PipelineRequest) pipeline.Result
	TeamPerformance(ctx context.Context, req service.TeamRequest) performance.Result
	CashFlow(ctx context.Context, req service.CashFlowRequest) cashflow.Result
	GoalProgress(ctx context.Context, req service.GoalRequest) (*goals.Progress, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RecordDependencies
	InsightDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	recordsHandler *RecordsHandler
	insightHandler *InsightHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		recordsHandler: NewRecordsHandler(deps),
		insightHandler: NewInsightHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/projects", MetricsMiddleware(s.recordsHandler.HandleProjects, "projects"))
	mux.HandleFunc("/technicians", MetricsMiddleware(s.recordsHandler.HandleTechnicians, "technicians"))
	mux.HandleFunc("/goals", MetricsMiddleware(s.recordsHandler.HandleGoals, "goals"))

	mux.HandleFunc("/forecast/pipeline", MetricsMiddleware(s.insightHandler.HandlePipeline, "forecast_pipeline"))
	mux.HandleFunc("/performance/team", MetricsMiddleware(s.insightHandler.HandleTeam, "performance_team"))
	mux.HandleFunc("/forecast/cashflow", MetricsMiddleware(s.insightHandler.HandleCashFlow, "forecast_cashflow"))
	mux.HandleFunc("/goals/progress", MetricsMiddleware(s.insightHandler.HandleGoalProgress, "goals_progress"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func methodNotAllowed(w http.ResponseWriter, op string, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
}
