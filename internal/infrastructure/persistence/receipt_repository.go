package persistence

import (
	"context"
	"errors"

	"github.com/bizdocs/backend/internal/domain/billing"
	"github.com/bizdocs/backend/internal/domain/shared/valueobject"
	"github.com/bizdocs/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReceiptRepository implements billing.ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// FindByID finds a receipt by ID
func (r *GormReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Receipt, error) {
	var model models.ReceiptModel
	if err := GetDB(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoice lists an invoice's receipts in payment order
func (r *GormReceiptRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.Receipt, error) {
	var rows []models.ReceiptModel
	if err := GetDB(ctx, r.db).
		Where("invoice_id = ?", invoiceID).
		Order("payment_date ASC, receipt_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	receipts := make([]billing.Receipt, len(rows))
	for i := range rows {
		receipts[i] = *rows[i].ToDomain()
	}
	return receipts, nil
}

// SumPaidByInvoice totals the amounts received against an invoice
func (r *GormReceiptRepository) SumPaidByInvoice(ctx context.Context, invoiceID uuid.UUID) (valueobject.Money, error) {
	var sum decimal.Decimal
	if err := GetDB(ctx, r.db).
		Model(&models.ReceiptModel{}).
		Select("COALESCE(SUM(amount_paid), 0)").
		Where("invoice_id = ?", invoiceID).
		Scan(&sum).Error; err != nil {
		return valueobject.Zero(), err
	}
	// amounts carry at most two places; sqlite sums them as REAL
	return valueobject.NewMoney(sum.Round(valueobject.MoneyPlaces)), nil
}

// Create inserts a receipt. A duplicate receipt number surfaces as gorm.ErrDuplicatedKey.
func (r *GormReceiptRepository) Create(ctx context.Context, receipt *billing.Receipt) error {
	return GetDB(ctx, r.db).Create(models.ReceiptModelFromDomain(receipt)).Error
}

var _ billing.ReceiptRepository = (*GormReceiptRepository)(nil)
