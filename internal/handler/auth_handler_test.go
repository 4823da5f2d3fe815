package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/centimeapp/centime-backend/internal/middleware"
	"github.com/centimeapp/centime-backend/internal/service"
	"github.com/centimeapp/centime-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Helper to set up validated JWT claims in the request context
func setupAuthContext(c echo.Context, auth0ID, email, name string) {
	customClaims := &middleware.CustomClaims{
		Email: email,
		Name:  name,
	}
	claims := &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Subject: auth0ID,
		},
		CustomClaims: customClaims,
	}
	ctx := context.WithValue(c.Request().Context(), middleware.ClaimsKey, claims)
	ctx = context.WithValue(ctx, middleware.Auth0IDKey, auth0ID)
	c.SetRequest(c.Request().WithContext(ctx))
}

// Helper to set up a resolved user ID in the request context
func setupUserContext(c echo.Context, userID uuid.UUID) {
	ctx := context.WithValue(c.Request().Context(), middleware.UserIDKey, userID)
	c.SetRequest(c.Request().WithContext(ctx))
}

func TestCallback_NewUser(t *testing.T) {
	e := echo.New()
	userRepo := testutil.NewMockUserRepository()
	settingsRepo := testutil.NewMockSettingsRepository()
	authService := service.NewAuthService(userRepo, settingsRepo)
	handler := NewAuthHandler(authService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, "auth0|new", "new@example.com", "New User")

	err := handler.Callback(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response AuthCallbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if !response.IsNewUser {
		t.Error("Expected isNewUser to be true on first login")
	}

	if response.User.Email != "new@example.com" {
		t.Errorf("Expected email 'new@example.com', got %s", response.User.Email)
	}

	if response.User.Name == nil || *response.User.Name != "New User" {
		t.Error("Expected name 'New User'")
	}
}

func TestCallback_ExistingUser(t *testing.T) {
	e := echo.New()
	userRepo := testutil.NewMockUserRepository()
	settingsRepo := testutil.NewMockSettingsRepository()
	authService := service.NewAuthService(userRepo, settingsRepo)
	handler := NewAuthHandler(authService)

	userID := uuid.New()
	userRepo.AddUser(&domain.User{
		ID:      userID,
		Auth0ID: "auth0|existing",
		Email:   "existing@example.com",
	})
	settingsRepo.Upsert(&domain.Settings{UserID: userID})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, "auth0|existing", "existing@example.com", "")

	err := handler.Callback(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var response AuthCallbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.IsNewUser {
		t.Error("Expected isNewUser to be false for an existing user")
	}

	if response.User.ID != userID.String() {
		t.Errorf("Expected user ID %s, got %s", userID, response.User.ID)
	}
}

func TestCallback_MissingEmail(t *testing.T) {
	e := echo.New()
	userRepo := testutil.NewMockUserRepository()
	settingsRepo := testutil.NewMockSettingsRepository()
	authService := service.NewAuthService(userRepo, settingsRepo)
	handler := NewAuthHandler(authService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, "auth0|noemail", "", "")

	err := handler.Callback(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	var problemDetails ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problemDetails); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if len(problemDetails.Errors) != 1 || problemDetails.Errors[0].Field != "email" {
		t.Error("Expected validation error for 'email' field")
	}
}

func TestCallback_NoAuthContext(t *testing.T) {
	e := echo.New()
	userRepo := testutil.NewMockUserRepository()
	settingsRepo := testutil.NewMockSettingsRepository()
	authService := service.NewAuthService(userRepo, settingsRepo)
	handler := NewAuthHandler(authService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Callback(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestMe_Success(t *testing.T) {
	e := echo.New()
	userRepo := testutil.NewMockUserRepository()
	settingsRepo := testutil.NewMockSettingsRepository()
	authService := service.NewAuthService(userRepo, settingsRepo)
	handler := NewAuthHandler(authService)

	name := "Jean Dupont"
	userRepo.AddUser(&domain.User{
		ID:      uuid.New(),
		Auth0ID: "auth0|me",
		Email:   "me@example.com",
		Name:    &name,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, "auth0|me", "me@example.com", "Jean Dupont")

	err := handler.Me(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response AuthCallbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.User.Email != "me@example.com" {
		t.Errorf("Expected email 'me@example.com', got %s", response.User.Email)
	}
}

func TestMe_UnknownUser(t *testing.T) {
	e := echo.New()
	userRepo := testutil.NewMockUserRepository()
	settingsRepo := testutil.NewMockSettingsRepository()
	authService := service.NewAuthService(userRepo, settingsRepo)
	handler := NewAuthHandler(authService)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, "auth0|ghost", "ghost@example.com", "")

	err := handler.Me(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}
