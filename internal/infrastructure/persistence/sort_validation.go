package persistence

import (
	"strings"

	"github.com/bizdocs/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// QuotationSortFields contains allowed sort fields for quotations
var QuotationSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"quote_number": true,
	"client_name":  true,
	"status":       true,
	"valid_until":  true,
	"grand_total":  true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"client_name":    true,
	"status":         true,
	"due_date":       true,
	"grand_total":    true,
}

// listQuery describes how a document table answers shared.Filter
type listQuery struct {
	sortFields   map[string]bool
	searchFields []string
	// filterColumns maps accepted filter keys to columns
	filterColumns map[string]string
}

var quotationList = listQuery{
	sortFields:   QuotationSortFields,
	searchFields: []string{"quote_number", "client_name", "client_email"},
	filterColumns: map[string]string{
		"status":      "status",
		"client_name": "client_name",
	},
}

var invoiceList = listQuery{
	sortFields:   InvoiceSortFields,
	searchFields: []string{"invoice_number", "quotation_number", "client_name", "client_email"},
	filterColumns: map[string]string{
		"status":       "status",
		"client_name":  "client_name",
		"quotation_id": "quotation_id",
	},
}

// where applies search and filters. LOWER/LIKE works on both postgres and sqlite.
func (l listQuery) where(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		clauses := make([]string, len(l.searchFields))
		args := make([]any, len(l.searchFields))
		for i, f := range l.searchFields {
			clauses[i] = "LOWER(" + f + ") LIKE ?"
			args[i] = pattern
		}
		query = query.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	for key, value := range filter.Filters {
		if column, ok := l.filterColumns[key]; ok {
			query = query.Where(column+" = ?", value)
		}
	}
	return query
}

// page applies ordering and pagination
func (l listQuery) page(query *gorm.DB, filter shared.Filter) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, l.sortFields, "created_at")
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	return query
}
