package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/centimeapp/centime-backend/internal/service"
	"github.com/centimeapp/centime-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// MockReceiptRepository implements storage.ReceiptRepository for testing
type MockReceiptRepository struct {
	uploadFunc  func(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	deleteFunc  func(ctx context.Context, objectPath string) error
	presignFunc func(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}

func (m *MockReceiptRepository) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.uploadFunc != nil {
		return m.uploadFunc(ctx, objectPath, data, contentType, size)
	}
	return objectPath, nil
}

func (m *MockReceiptRepository) Delete(ctx context.Context, objectPath string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, objectPath)
	}
	return nil
}

func (m *MockReceiptRepository) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	if m.presignFunc != nil {
		return m.presignFunc(ctx, objectPath, expiry)
	}
	return "http://localhost:9000/receipts/" + objectPath, nil
}

// createTestImageData creates a valid JPEG image for testing
func createTestImageData(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 0, B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85})
	return buf.Bytes()
}

// createMultipartForm creates a multipart form with file data
func createMultipartForm(fieldName, filename string, data []byte) (*bytes.Buffer, string) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	part, _ := writer.CreateFormFile(fieldName, filename)
	part.Write(data)

	writer.Close()
	return body, writer.FormDataContentType()
}

type receiptTestEnv struct {
	handler     *ReceiptHandler
	expenseRepo *testutil.MockExpenseRepository
	storage     *MockReceiptRepository
}

func newReceiptTestEnv() receiptTestEnv {
	invoiceRepo := testutil.NewMockInvoiceRepository()
	expenseRepo := testutil.NewMockExpenseRepository()
	storage := &MockReceiptRepository{}
	receiptSvc := service.NewReceiptService(invoiceRepo, expenseRepo, storage)
	return receiptTestEnv{
		handler:     NewReceiptHandler(receiptSvc),
		expenseRepo: expenseRepo,
		storage:     storage,
	}
}

func addReceiptTestExpense(repo *testutil.MockExpenseRepository, userID uuid.UUID) *domain.Expense {
	expense := &domain.Expense{
		UserID:          userID,
		Description:     "Scanner",
		ExpenseDate:     time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		AmountHT:        decimal.NewFromInt(100),
		TaxAmount:       decimal.NewFromInt(20),
		TaxRecoveryRate: decimal.NewFromInt(100),
		Category:        domain.CategoryProfessional,
	}
	repo.AddExpense(expense)
	return expense
}

func TestUploadReceipt_Success(t *testing.T) {
	env := newReceiptTestEnv()

	userID := uuid.New()
	expense := addReceiptTestExpense(env.expenseRepo, userID)

	imageData := createTestImageData(100, 100)
	body, contentType := createMultipartForm("file", "receipt.jpg", imageData)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts/expenses/1", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("entity", "id")
	c.SetParamValues("expenses", "1")

	setupUserContext(c, userID)

	err := env.handler.Upload(c)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}

	if expense.ReceiptKey == nil {
		t.Error("expected receipt key to be set on the expense")
	}
}

func TestUploadReceipt_StorageNotConfigured(t *testing.T) {
	invoiceRepo := testutil.NewMockInvoiceRepository()
	expenseRepo := testutil.NewMockExpenseRepository()
	receiptSvc := service.NewReceiptService(invoiceRepo, expenseRepo, nil)
	handler := NewReceiptHandler(receiptSvc)

	imageData := createTestImageData(100, 100)
	body, contentType := createMultipartForm("file", "receipt.jpg", imageData)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts/expenses/1", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("entity", "id")
	c.SetParamValues("expenses", "1")

	setupUserContext(c, uuid.New())

	err := handler.Upload(c)
	if err != nil {
		t.Errorf("expected error response, got error: %v", err)
	}

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}

func TestUploadReceipt_InvalidFormat(t *testing.T) {
	env := newReceiptTestEnv()

	userID := uuid.New()
	addReceiptTestExpense(env.expenseRepo, userID)

	imageData := createTestImageData(100, 100)
	body, contentType := createMultipartForm("file", "receipt.gif", imageData)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts/expenses/1", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("entity", "id")
	c.SetParamValues("expenses", "1")

	setupUserContext(c, userID)

	err := env.handler.Upload(c)
	if err != nil {
		t.Errorf("expected error response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestUploadReceipt_EntityNotFound(t *testing.T) {
	env := newReceiptTestEnv()

	imageData := createTestImageData(100, 100)
	body, contentType := createMultipartForm("file", "receipt.jpg", imageData)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts/expenses/42", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("entity", "id")
	c.SetParamValues("expenses", "42")

	setupUserContext(c, uuid.New())

	err := env.handler.Upload(c)
	if err != nil {
		t.Errorf("expected error response, got error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestUploadReceipt_InvalidEntity(t *testing.T) {
	env := newReceiptTestEnv()

	imageData := createTestImageData(100, 100)
	body, contentType := createMultipartForm("file", "receipt.jpg", imageData)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts/clients/1", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("entity", "id")
	c.SetParamValues("clients", "1")

	setupUserContext(c, uuid.New())

	err := env.handler.Upload(c)
	if err != nil {
		t.Errorf("expected error response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestUploadReceipt_UploadError(t *testing.T) {
	env := newReceiptTestEnv()
	env.storage.uploadFunc = func(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
		return "", errors.New("upload failed")
	}

	userID := uuid.New()
	addReceiptTestExpense(env.expenseRepo, userID)

	imageData := createTestImageData(100, 100)
	body, contentType := createMultipartForm("file", "receipt.jpg", imageData)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts/expenses/1", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("entity", "id")
	c.SetParamValues("expenses", "1")

	setupUserContext(c, userID)

	err := env.handler.Upload(c)
	if err != nil {
		t.Errorf("expected error response, got error: %v", err)
	}

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}

func TestGetReceiptURL_Success(t *testing.T) {
	env := newReceiptTestEnv()

	userID := uuid.New()
	expense := addReceiptTestExpense(env.expenseRepo, userID)
	key := "some/object/key.jpg"
	expense.ReceiptKey = &key

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/receipts/expenses/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("entity", "id")
	c.SetParamValues("expenses", "1")

	setupUserContext(c, userID)

	err := env.handler.GetURL(c)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response ReceiptURLResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.URL == "" {
		t.Error("expected a presigned URL")
	}
}

func TestGetReceiptURL_NoReceipt(t *testing.T) {
	env := newReceiptTestEnv()

	userID := uuid.New()
	addReceiptTestExpense(env.expenseRepo, userID)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/receipts/expenses/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("entity", "id")
	c.SetParamValues("expenses", "1")

	setupUserContext(c, userID)

	err := env.handler.GetURL(c)
	if err != nil {
		t.Errorf("expected error response, got error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestDeleteReceipt_Success(t *testing.T) {
	env := newReceiptTestEnv()

	userID := uuid.New()
	expense := addReceiptTestExpense(env.expenseRepo, userID)
	key := "some/object/key.jpg"
	expense.ReceiptKey = &key

	deleted := false
	env.storage.deleteFunc = func(ctx context.Context, objectPath string) error {
		deleted = true
		return nil
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/receipts/expenses/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("entity", "id")
	c.SetParamValues("expenses", "1")

	setupUserContext(c, userID)

	err := env.handler.Delete(c)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	if !deleted {
		t.Error("expected the stored object to be deleted")
	}
	if expense.ReceiptKey != nil {
		t.Error("expected receipt key to be cleared")
	}
}
