// Package api exposes the domain services over HTTP. Authentication is an
// external concern: the actor identity arrives in headers set by the
// platform's auth middleware, and request bodies are re-validated inside the
// domain layer regardless of what the edge checked.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/samSKIF/EmployeeRewards-sub009/domainerr"
	"github.com/samSKIF/EmployeeRewards-sub009/employee"
	"github.com/samSKIF/EmployeeRewards-sub009/eventbus"
	"github.com/samSKIF/EmployeeRewards-sub009/survey"
)

// Handlers holds the controllers' dependencies.
type Handlers struct {
	employees *employee.Service
	surveys   *survey.Service
	bus       *eventbus.Bus
}

// NewHandlers constructs the HTTP handler set.
func NewHandlers(employees *employee.Service, surveys *survey.Service, bus *eventbus.Bus) *Handlers {
	return &Handlers{employees: employees, surveys: surveys, bus: bus}
}

// identity extracts the authenticated actor from the request headers.
func identity(r *http.Request) (organizationID, userID int, err error) {
	organizationID, err = strconv.Atoi(r.Header.Get("X-Organization-ID"))
	if err != nil {
		return 0, 0, domainerr.ValidationError{Field: "X-Organization-ID", Reason: "missing or not an integer"}
	}
	userID, err = strconv.Atoi(r.Header.Get("X-User-ID"))
	if err != nil {
		return 0, 0, domainerr.ValidationError{Field: "X-User-ID", Reason: "missing or not an integer"}
	}
	return organizationID, userID, nil
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, domainerr.ValidationError{Field: "id", Reason: "must be an integer"}
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := domainerr.HTTPStatus(err)
	body := map[string]string{"error": err.Error()}
	if status == http.StatusInternalServerError {
		slog.Error("Unexpected error", "error", err)
		body["error"] = "internal server error"
	}
	writeJSON(w, status, body)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domainerr.ValidationError{Field: "body", Reason: "malformed JSON"}
	}
	return nil
}

// CreateEmployee handles POST /api/employees.
func (h *Handlers) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	orgID, actorID, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var in employee.CreateInput
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	emp, err := h.employees.Create(r.Context(), in, orgID, actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, emp)
}

// ListEmployees handles GET /api/employees.
func (h *Handlers) ListEmployees(w http.ResponseWriter, r *http.Request) {
	orgID, _, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	filters, err := employee.ValidateFilters(employee.RawFilters{
		Search:     q.Get("search"),
		Department: q.Get("department"),
		Status:     q.Get("status"),
		Limit:      q.Get("limit"),
		Offset:     q.Get("offset"),
		SortBy:     q.Get("sort_by"),
		SortOrder:  q.Get("sort_order"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := h.employees.List(r.Context(), orgID, filters)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetEmployee handles GET /api/employees/{id}.
func (h *Handlers) GetEmployee(w http.ResponseWriter, r *http.Request) {
	orgID, _, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	emp, err := h.employees.Get(r.Context(), orgID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

// UpdateEmployee handles PATCH /api/employees/{id}.
func (h *Handlers) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	orgID, actorID, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var in employee.UpdateInput
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	emp, err := h.employees.Update(r.Context(), id, in, orgID, actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

// DeactivateEmployee handles POST /api/employees/{id}/deactivate.
func (h *Handlers) DeactivateEmployee(w http.ResponseWriter, r *http.Request) {
	orgID, actorID, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	emp, err := h.employees.Deactivate(r.Context(), id, body.Reason, orgID, actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

// CreateSurvey handles POST /api/surveys.
func (h *Handlers) CreateSurvey(w http.ResponseWriter, r *http.Request) {
	orgID, actorID, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var in survey.CreateInput
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	s, err := h.surveys.Create(r.Context(), in, orgID, actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// GetSurvey handles GET /api/surveys/{id}.
func (h *Handlers) GetSurvey(w http.ResponseWriter, r *http.Request) {
	orgID, _, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s, err := h.surveys.Get(r.Context(), orgID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// UpdateSurvey handles PATCH /api/surveys/{id}.
func (h *Handlers) UpdateSurvey(w http.ResponseWriter, r *http.Request) {
	orgID, actorID, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var in survey.UpdateInput
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	s, err := h.surveys.Update(r.Context(), id, in, orgID, actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// PublishSurvey handles POST /api/surveys/{id}/publish.
func (h *Handlers) PublishSurvey(w http.ResponseWriter, r *http.Request) {
	orgID, actorID, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s, err := h.surveys.Publish(r.Context(), id, orgID, actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// DeleteSurvey handles DELETE /api/surveys/{id}.
func (h *Handlers) DeleteSurvey(w http.ResponseWriter, r *http.Request) {
	orgID, actorID, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.surveys.Delete(r.Context(), id, orgID, actorID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitSurveyResponse handles POST /api/surveys/{id}/responses. The user
// header is optional here: anonymous submissions carry no identity.
func (h *Handlers) SubmitSurveyResponse(w http.ResponseWriter, r *http.Request) {
	orgID, err := strconv.Atoi(r.Header.Get("X-Organization-ID"))
	if err != nil {
		writeError(w, domainerr.ValidationError{Field: "X-Organization-ID", Reason: "missing or not an integer"})
		return
	}
	var userID *int
	if raw := r.Header.Get("X-User-ID"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, domainerr.ValidationError{Field: "X-User-ID", Reason: "not an integer"})
			return
		}
		userID = &id
	}
	surveyID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var in survey.SubmitResponseInput
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	in.SurveyID = surveyID
	resp, err := h.surveys.SubmitResponse(r.Context(), in, userID, orgID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// EventHistory handles GET /api/events/history, a diagnostics endpoint over
// the bus's bounded event history.
func (h *Handlers) EventHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, domainerr.ValidationError{Field: "limit", Reason: "must be an integer"})
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, h.bus.History(limit))
}

// EventMetrics handles GET /api/events/metrics.
func (h *Handlers) EventMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.bus.AllMetrics())
}
