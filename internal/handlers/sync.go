package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// triggerSync runs one source's reconciliation immediately
func (r *Router) triggerSync(w http.ResponseWriter, req *http.Request) {
	id, err := uuid.Parse(mux.Vars(req)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid data source id")
		return
	}

	report, err := r.reconciler.TriggerSource(req.Context(), id)
	if err != nil {
		// The run outcome is recorded on the source row; return the report
		// alongside the failure so the dashboard can show both.
		respondJSON(w, http.StatusBadGateway, map[string]any{
			"error":  err.Error(),
			"report": report,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"report": report,
	})
}

// syncStatus returns a snapshot of the reconciler service
func (r *Router) syncStatus(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, r.reconciler.Status())
}
