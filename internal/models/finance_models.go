package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RecordTypeIncome  = "income"
	RecordTypeExpense = "expense"
)

// DefaultRecordCategory is used when a record arrives without a category.
const DefaultRecordCategory = "other"

// FinancialRecord is a manual income or expense entry.
type FinancialRecord struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	SchoolID    *int64          `json:"school_id,omitempty"`
	SchoolName  *string         `json:"school_name,omitempty"`
	Description *string         `json:"description,omitempty"`
	CreatedBy   *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// FinancialRecordFilter narrows record listings.
type FinancialRecordFilter struct {
	Type     *string
	Category *string
	DateFrom *string
	DateTo   *string
	Page     int
	PageSize int
}

// SchoolIncome is the derived income of one school.
type SchoolIncome struct {
	SchoolID   int64           `json:"school_id"`
	SchoolName string          `json:"school_name"`
	Activities int             `json:"activities"`
	Income     decimal.Decimal `json:"income"`
}

// CategoryTotal sums records of one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// FinanceSummary is the income/expense picture of a date range.
type FinanceSummary struct {
	DateFrom           string          `json:"date_from"`
	DateTo             string          `json:"date_to"`
	ActivityIncome     decimal.Decimal `json:"activity_income"`
	AdditionalIncome   decimal.Decimal `json:"additional_income"`
	TotalIncome        decimal.Decimal `json:"total_income"`
	Expenses           decimal.Decimal `json:"expenses"`
	NetProfit          decimal.Decimal `json:"net_profit"`
	BillableActivities int             `json:"billable_activities"`
	IncomeBySchool     []SchoolIncome  `json:"income_by_school"`
	ExpensesByCategory []CategoryTotal `json:"expenses_by_category"`
}
