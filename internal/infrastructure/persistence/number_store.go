package persistence

import (
	"context"
	"fmt"

	"github.com/bizdocs/backend/internal/domain/billing"
	"gorm.io/gorm"
)

type numberColumn struct {
	table  string
	column string
}

var numberColumns = map[billing.Prefix]numberColumn{
	billing.PrefixQuotation: {table: "quotations", column: "quote_number"},
	billing.PrefixInvoice:   {table: "invoices", column: "invoice_number"},
	billing.PrefixReceipt:   {table: "receipts", column: "receipt_number"},
}

// GormNumberStore reads persisted document numbers for the sequence generator
type GormNumberStore struct {
	db *gorm.DB
}

// NewGormNumberStore creates a new GormNumberStore
func NewGormNumberStore(db *gorm.DB) *GormNumberStore {
	return &GormNumberStore{db: db}
}

func lookupColumn(prefix billing.Prefix) (numberColumn, error) {
	col, ok := numberColumns[prefix]
	if !ok {
		return numberColumn{}, fmt.Errorf("no number column for prefix %q", prefix)
	}
	return col, nil
}

// LastNumber returns the greatest number starting with yearPrefix. Longer
// numbers sort first so that sequences past 999 are ordered numerically.
func (s *GormNumberStore) LastNumber(ctx context.Context, prefix billing.Prefix, yearPrefix string) (string, error) {
	col, err := lookupColumn(prefix)
	if err != nil {
		return "", err
	}
	var last string
	if err := GetDB(ctx, s.db).
		Table(col.table).
		Select(col.column).
		Where(col.column+" LIKE ?", yearPrefix+"%").
		Order("LENGTH(" + col.column + ") DESC, " + col.column + " DESC").
		Limit(1).
		Scan(&last).Error; err != nil {
		return "", err
	}
	return last, nil
}

// Exists reports whether number is already used by a document of the family
func (s *GormNumberStore) Exists(ctx context.Context, prefix billing.Prefix, number string) (bool, error) {
	col, err := lookupColumn(prefix)
	if err != nil {
		return false, err
	}
	var count int64
	if err := GetDB(ctx, s.db).
		Table(col.table).
		Where(col.column+" = ?", number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ billing.NumberStore = (*GormNumberStore)(nil)
