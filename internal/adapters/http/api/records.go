package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	repository "github.com/okian/fieldpulse/internal/adapters/repository"
)

// maxBodyBytes bounds record payloads.
const maxBodyBytes = 1 << 20

// RecordsHandler lists and stores projects, technicians and goals.
type RecordsHandler struct {
	deps RecordDependencies
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps RecordDependencies) *RecordsHandler {
	return &RecordsHandler{deps: deps}
}

// HandleProjects handles GET and POST /projects requests.
func (h *RecordsHandler) HandleProjects(w http.ResponseWriter, r *http.Request) {
	handleRecords(w, r, "api.projects", h.deps.Projects, h.deps.PutProject)
}

// HandleTechnicians handles GET and POST /technicians requests.
func (h *RecordsHandler) HandleTechnicians(w http.ResponseWriter, r *http.Request) {
	handleRecords(w, r, "api.technicians", h.deps.Technicians, h.deps.PutTechnician)
}

// HandleGoals handles GET and POST /goals requests.
func (h *RecordsHandler) HandleGoals(w http.ResponseWriter, r *http.Request) {
	handleRecords(w, r, "api.goals", h.deps.Goals, h.deps.PutGoal)
}

// handleRecords lists on GET and decodes then stores one record on POST.
func handleRecords[T any](
	w http.ResponseWriter,
	r *http.Request,
	op string,
	list func(context.Context) []T,
	put func(context.Context, T) (T, error),
) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, list(r.Context()))
	case http.MethodPost:
		var rec T
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&rec); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		stored, err := put(r.Context(), rec)
		switch {
		case errors.Is(err, repository.ErrInvalidRecord):
			writeError(w, http.StatusBadRequest, "invalid_record", WrapKind(op, ErrBadRequest, err))
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		default:
			writeJSON(w, http.StatusCreated, stored)
		}
	default:
		methodNotAllowed(w, op, http.MethodGet, http.MethodPost)
	}
}
