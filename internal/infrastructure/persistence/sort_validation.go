package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes orderDir to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" || !allowedFields[trimmed] {
		return defaultField
	}
	return trimmed
}

// orderClause builds a safe ORDER BY expression with id as tie breaker
func orderClause(field, dir string, allowed map[string]bool, defaultField string) string {
	f := ValidateSortField(field, allowed, defaultField)
	d := ValidateSortOrder(dir)
	if f == "id" {
		return f + " " + d
	}
	return f + " " + d + ", id " + d
}

// ClientSortFields are the columns clients may be sorted by
var ClientSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"name":        true,
	"email":       true,
	"hourly_rate": true,
	"status":      true,
}

// TaskSortFields are the columns tasks may be sorted by
var TaskSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"date":        true,
	"hours":       true,
	"amount":      true,
	"hourly_rate": true,
	"status":      true,
	"description": true,
}

// InvoiceSortFields are the columns invoices may be sorted by
var InvoiceSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"sequence":   true,
	"issue_date": true,
	"due_date":   true,
	"total":      true,
	"status":     true,
}
