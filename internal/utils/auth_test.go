package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/northlane/feedsync/internal/models"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	if !CheckPasswordHash("secret123", hash) {
		t.Error("Expected matching password to verify")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("Expected wrong password to fail")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	user := &models.AdminUser{
		ID:    uuid.New(),
		Email: "admin@example.com",
		Role:  "admin",
	}

	token, err := GenerateToken(user, "test-secret")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := ValidateToken(token, "test-secret")
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}

	if claims["email"] != "admin@example.com" {
		t.Errorf("Expected email claim, got %v", claims["email"])
	}
	if claims["id"] != user.ID.String() {
		t.Errorf("Expected id claim, got %v", claims["id"])
	}

	if _, err := ValidateToken(token, "other-secret"); err == nil {
		t.Error("Expected validation to fail with the wrong secret")
	}
}
