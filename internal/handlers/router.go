package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/northlane/feedsync/internal/database"
	"github.com/northlane/feedsync/internal/middleware"
	"github.com/northlane/feedsync/internal/services/reconciler"
)

// Router wraps the mux router with its collaborators
type Router struct {
	*mux.Router
	db         *database.DB
	reconciler *reconciler.Service
	jwtSecret  string
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(db *database.DB, svc *reconciler.Service, jwtSecret string) *Router {
	r := &Router{
		Router:     mux.NewRouter(),
		db:         db,
		reconciler: svc,
		jwtSecret:  jwtSecret,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")

	// Admin API routes (protected)
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(jwtSecret))
	api.HandleFunc("/data-sources", r.listDataSources).Methods("GET")
	api.HandleFunc("/data-sources/{id}", r.getDataSource).Methods("GET")
	api.HandleFunc("/data-sources/{id}/runs", r.listSourceRuns).Methods("GET")
	api.HandleFunc("/data-sources/{id}/sync", r.triggerSync).Methods("POST")
	api.HandleFunc("/sync/status", r.syncStatus).Methods("GET")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
