package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/northlane/feedsync/internal/models"
)

// listDataSources returns all feed subscriptions with their sync state
func (r *Router) listDataSources(w http.ResponseWriter, req *http.Request) {
	var sources []models.DataSource
	if err := r.db.WithContext(req.Context()).Order("identifier").Find(&sources).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list data sources")
		return
	}
	respondJSON(w, http.StatusOK, sources)
}

// getDataSource returns one feed subscription
func (r *Router) getDataSource(w http.ResponseWriter, req *http.Request) {
	id, err := uuid.Parse(mux.Vars(req)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid data source id")
		return
	}

	var source models.DataSource
	if err := r.db.WithContext(req.Context()).First(&source, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusNotFound, "data source not found")
		return
	}
	respondJSON(w, http.StatusOK, source)
}

// listSourceRuns returns the recent reconciliation history for a source
func (r *Router) listSourceRuns(w http.ResponseWriter, req *http.Request) {
	id, err := uuid.Parse(mux.Vars(req)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid data source id")
		return
	}

	var runs []models.SyncRun
	err = r.db.WithContext(req.Context()).
		Where("data_source_id = ?", id).
		Order("started_at DESC").
		Limit(50).
		Find(&runs).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	respondJSON(w, http.StatusOK, runs)
}
