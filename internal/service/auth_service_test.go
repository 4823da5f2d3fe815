package service

import (
	"testing"

	"github.com/centimeapp/centime-backend/internal/testutil"
)

func TestAuthService_AuthenticateUser_NewUser(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	settingsRepo := testutil.NewMockSettingsRepository()
	service := NewAuthService(userRepo, settingsRepo)

	name := "Jean Dupont"
	result, err := service.AuthenticateUser("auth0|abc123", "jean@example.com", &name)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.IsNewUser {
		t.Error("expected new user")
	}
	if result.User.Email != "jean@example.com" {
		t.Errorf("expected email jean@example.com, got %s", result.User.Email)
	}

	// A zeroed settings row is provisioned on first login
	if _, err := settingsRepo.GetByUser(result.User.ID); err != nil {
		t.Errorf("expected settings row, got %v", err)
	}
}

func TestAuthService_AuthenticateUser_ExistingUser(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	settingsRepo := testutil.NewMockSettingsRepository()
	service := NewAuthService(userRepo, settingsRepo)

	first, err := service.AuthenticateUser("auth0|abc123", "jean@example.com", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	second, err := service.AuthenticateUser("auth0|abc123", "jean@example.com", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if second.IsNewUser {
		t.Error("expected existing user")
	}
	if second.User.ID != first.User.ID {
		t.Error("expected same user on repeat login")
	}
}
