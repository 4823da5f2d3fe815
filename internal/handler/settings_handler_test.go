package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/centimeapp/centime-backend/internal/service"
	"github.com/centimeapp/centime-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func settingsTestHandler() (*SettingsHandler, *testutil.MockSettingsRepository) {
	settingsRepo := testutil.NewMockSettingsRepository()
	settingsService := service.NewSettingsService(settingsRepo)
	return NewSettingsHandler(settingsService), settingsRepo
}

func TestGetSettings_CreatesZeroedRowOnFirstAccess(t *testing.T) {
	e := echo.New()
	handler, _ := settingsTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupUserContext(c, uuid.New())

	err := handler.GetSettings(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response SettingsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.UrssafRate != "0.00" {
		t.Errorf("Expected urssaf rate '0.00', got %s", response.UrssafRate)
	}
}

func TestUpdateSettings_Success(t *testing.T) {
	e := echo.New()
	handler, _ := settingsTestHandler()

	reqBody := `{"urssafRate": "22", "incomeTaxRate": "0", "deductionRate": "34", "monthlySalary": "2500", "additionalIncome": "0"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupUserContext(c, uuid.New())

	err := handler.UpdateSettings(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response SettingsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.UrssafRate != "22.00" {
		t.Errorf("Expected urssaf rate '22.00', got %s", response.UrssafRate)
	}

	if response.MonthlySalary != "2500.00" {
		t.Errorf("Expected monthly salary '2500.00', got %s", response.MonthlySalary)
	}
}

func TestUpdateSettings_RateOutOfRange(t *testing.T) {
	e := echo.New()
	handler, _ := settingsTestHandler()

	reqBody := `{"urssafRate": "150", "incomeTaxRate": "0", "deductionRate": "34", "monthlySalary": "0", "additionalIncome": "0"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupUserContext(c, uuid.New())

	err := handler.UpdateSettings(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestYearOverride_RoundTrip(t *testing.T) {
	e := echo.New()
	handler, _ := settingsTestHandler()

	userID := uuid.New()

	// Base settings
	baseBody := `{"urssafRate": "22", "incomeTaxRate": "0", "deductionRate": "34", "monthlySalary": "0", "additionalIncome": "0"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(baseBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)
	if err := handler.UpdateSettings(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Override the urssaf rate for 2026 only
	overrideBody := `{"urssafRate": "23.1"}`
	req = httptest.NewRequest(http.MethodPut, "/api/v1/settings/rates/2026", strings.NewReader(overrideBody))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("year")
	c.SetParamValues("2026")
	setupUserContext(c, userID)
	if err := handler.SetYearOverride(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Effective rates for 2026 blend the override with the base settings
	req = httptest.NewRequest(http.MethodGet, "/api/v1/settings/rates/2026", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("year")
	c.SetParamValues("2026")
	setupUserContext(c, userID)
	if err := handler.GetEffectiveRates(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var rates EffectiveRatesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &rates); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if rates.UrssafRate != "23.10" {
		t.Errorf("Expected urssaf rate '23.10', got %s", rates.UrssafRate)
	}

	if rates.DeductionRate != "34.00" {
		t.Errorf("Expected deduction rate '34.00', got %s", rates.DeductionRate)
	}

	// Other years keep the base rate
	req = httptest.NewRequest(http.MethodGet, "/api/v1/settings/rates/2025", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("year")
	c.SetParamValues("2025")
	setupUserContext(c, userID)
	if err := handler.GetEffectiveRates(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := json.Unmarshal(rec.Body.Bytes(), &rates); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if rates.UrssafRate != "22.00" {
		t.Errorf("Expected urssaf rate '22.00', got %s", rates.UrssafRate)
	}
}

func TestDeleteYearOverride_NotFound(t *testing.T) {
	e := echo.New()
	handler, _ := settingsTestHandler()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/settings/rates/2026", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("year")
	c.SetParamValues("2026")

	setupUserContext(c, uuid.New())

	err := handler.DeleteYearOverride(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}
