package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/northlane/feedsync/internal/models"
	"github.com/northlane/feedsync/internal/utils"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login authenticates an admin user and returns a JWT
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var user models.AdminUser
	if err := r.db.WithContext(req.Context()).First(&user, "email = ?", body.Email).Error; err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if !utils.CheckPasswordHash(body.Password, user.PasswordHash) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := utils.GenerateToken(&user, r.jwtSecret)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"token": token,
	})
}
