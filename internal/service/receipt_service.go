package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/centimeapp/centime-backend/internal/repository/storage"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	MaxReceiptSize  = 10 * 1024 * 1024 // 10MB
	MaxReceiptWidth = 2000
	JPEGQuality     = 85

	presignedURLExpiry = 15 * time.Minute
)

var (
	ErrReceiptTooLarge      = errors.New("file too large. Maximum size is 10MB")
	ErrInvalidReceiptFormat = errors.New("invalid format. Supported: JPEG, PNG, WebP, PDF")
	ErrInvalidReceiptData   = errors.New("invalid image data")
	ErrStorageNotConfigured = errors.New("receipt storage not configured")
	ErrNoReceipt            = errors.New("no receipt attached")
)

// receiptExtensions maps accepted extensions to content types. Images are
// re-encoded to JPEG before upload; PDFs are stored untouched.
var receiptExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// ReceiptEntity identifies which entity a receipt is attached to
type ReceiptEntity string

const (
	ReceiptEntityInvoice ReceiptEntity = "invoices"
	ReceiptEntityExpense ReceiptEntity = "expenses"
)

// ReceiptService handles receipt attachments for invoices and expenses
type ReceiptService struct {
	invoiceRepo domain.InvoiceRepository
	expenseRepo domain.ExpenseRepository
	storage     storage.ReceiptRepository
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(invoiceRepo domain.InvoiceRepository, expenseRepo domain.ExpenseRepository, storage storage.ReceiptRepository) *ReceiptService {
	return &ReceiptService{
		invoiceRepo: invoiceRepo,
		expenseRepo: expenseRepo,
		storage:     storage,
	}
}

// IsEnabled indicates whether uploads are supported (storage configured)
func (s *ReceiptService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// Attach validates, processes, and uploads a receipt for the given entity,
// replacing any previously attached file.
func (s *ReceiptService) Attach(ctx context.Context, userID uuid.UUID, entity ReceiptEntity, entityID int32, data []byte, filename string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrStorageNotConfigured
	}

	if len(data) > MaxReceiptSize {
		return "", ErrReceiptTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := receiptExtensions[ext]
	if !ok {
		return "", ErrInvalidReceiptFormat
	}

	previousKey, err := s.currentKey(userID, entity, entityID)
	if err != nil {
		return "", err
	}

	upload := data
	uploadExt := ext
	if contentType != "application/pdf" {
		upload, err = reencodeImage(data)
		if err != nil {
			return "", err
		}
		contentType = "image/jpeg"
		uploadExt = ".jpg"
	}

	objectPath := fmt.Sprintf("%s/%s/%d/%s%s", userID, entity, entityID, uuid.New(), uploadExt)
	key, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(upload), contentType, int64(len(upload)))
	if err != nil {
		return "", fmt.Errorf("failed to upload receipt: %w", err)
	}

	if err := s.setKey(userID, entity, entityID, &key); err != nil {
		// Entity update failed; don't leave the orphan behind
		_ = s.storage.Delete(ctx, key)
		return "", err
	}

	if previousKey != nil {
		_ = s.storage.Delete(ctx, *previousKey)
	}
	return key, nil
}

// URL returns a short-lived presigned URL for the entity's receipt
func (s *ReceiptService) URL(ctx context.Context, userID uuid.UUID, entity ReceiptEntity, entityID int32) (string, error) {
	if !s.IsEnabled() {
		return "", ErrStorageNotConfigured
	}

	key, err := s.currentKey(userID, entity, entityID)
	if err != nil {
		return "", err
	}
	if key == nil {
		return "", ErrNoReceipt
	}
	return s.storage.GeneratePresignedURL(ctx, *key, presignedURLExpiry)
}

// Detach removes the entity's receipt and deletes the stored file
func (s *ReceiptService) Detach(ctx context.Context, userID uuid.UUID, entity ReceiptEntity, entityID int32) error {
	if !s.IsEnabled() {
		return ErrStorageNotConfigured
	}

	key, err := s.currentKey(userID, entity, entityID)
	if err != nil {
		return err
	}
	if key == nil {
		return nil
	}

	if err := s.setKey(userID, entity, entityID, nil); err != nil {
		return err
	}
	return s.storage.Delete(ctx, *key)
}

func (s *ReceiptService) currentKey(userID uuid.UUID, entity ReceiptEntity, entityID int32) (*string, error) {
	switch entity {
	case ReceiptEntityInvoice:
		invoice, err := s.invoiceRepo.GetByID(userID, entityID)
		if err != nil {
			return nil, err
		}
		return invoice.ReceiptKey, nil
	case ReceiptEntityExpense:
		expense, err := s.expenseRepo.GetByID(userID, entityID)
		if err != nil {
			return nil, err
		}
		return expense.ReceiptKey, nil
	default:
		return nil, domain.ErrInvalidInput
	}
}

func (s *ReceiptService) setKey(userID uuid.UUID, entity ReceiptEntity, entityID int32, key *string) error {
	switch entity {
	case ReceiptEntityInvoice:
		invoice, err := s.invoiceRepo.GetByID(userID, entityID)
		if err != nil {
			return err
		}
		invoice.ReceiptKey = key
		_, err = s.invoiceRepo.Update(invoice)
		return err
	case ReceiptEntityExpense:
		expense, err := s.expenseRepo.GetByID(userID, entityID)
		if err != nil {
			return err
		}
		expense.ReceiptKey = key
		_, err = s.expenseRepo.Update(expense)
		return err
	default:
		return domain.ErrInvalidInput
	}
}

// reencodeImage decodes, downscales oversized images, and re-encodes to JPEG
func reencodeImage(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidReceiptData
	}

	if img.Bounds().Dx() > MaxReceiptWidth {
		img = imaging.Resize(img, MaxReceiptWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
