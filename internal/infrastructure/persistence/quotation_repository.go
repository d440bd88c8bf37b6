package persistence

import (
	"context"
	"errors"

	"github.com/bizdocs/backend/internal/domain/billing"
	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormQuotationRepository implements billing.QuotationRepository using GORM
type GormQuotationRepository struct {
	db *gorm.DB
}

// NewGormQuotationRepository creates a new GormQuotationRepository
func NewGormQuotationRepository(db *gorm.DB) *GormQuotationRepository {
	return &GormQuotationRepository{db: db}
}

func preloadQuotationItems(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// FindByID finds a quotation with its items
func (r *GormQuotationRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Quotation, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByNumber finds a quotation by its quote number
func (r *GormQuotationRepository) FindByNumber(ctx context.Context, number string) (*billing.Quotation, error) {
	return r.findOne(ctx, "quote_number = ?", number)
}

func (r *GormQuotationRepository) findOne(ctx context.Context, cond string, arg any) (*billing.Quotation, error) {
	var model models.QuotationModel
	if err := GetDB(ctx, r.db).
		Preload("Items", preloadQuotationItems).
		First(&model, cond, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns one page of quotations and the total matching count
func (r *GormQuotationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Quotation, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := quotationList.where(db.Model(&models.QuotationModel{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.QuotationModel
	query := quotationList.page(quotationList.where(db, filter), filter)
	if err := query.Preload("Items", preloadQuotationItems).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	quotations := make([]billing.Quotation, len(rows))
	for i := range rows {
		quotations[i] = *rows[i].ToDomain()
	}
	return quotations, total, nil
}

// Save upserts the quotation header and replaces its item set
func (r *GormQuotationRepository) Save(ctx context.Context, q *billing.Quotation) error {
	model := models.QuotationModelFromDomain(q)
	return GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}

		keep := make([]uuid.UUID, len(model.Items))
		for i := range model.Items {
			keep[i] = model.Items[i].ID
		}
		stale := tx.Where("quotation_id = ?", q.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&models.QuotationItemModel{}).Error; err != nil {
			return err
		}

		for i := range model.Items {
			if err := tx.Save(&model.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a quotation and its items
func (r *GormQuotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quotation_id = ?", id).Delete(&models.QuotationItemModel{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.QuotationModel{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

var _ billing.QuotationRepository = (*GormQuotationRepository)(nil)
