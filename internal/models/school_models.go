package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SchoolStatusActive   = "active"
	SchoolStatusInactive = "inactive"
)

// DefaultPricePerDay applies to imported schools without a price column.
var DefaultPricePerDay = decimal.NewFromInt(1000)

// DefaultAlertThreshold is the budget remaining amount that triggers an alert.
var DefaultAlertThreshold = decimal.NewFromInt(1000)

// School is a client billed per workshop day.
type School struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	ContactPerson *string         `json:"contact_person,omitempty"`
	Phone         *string         `json:"phone,omitempty"`
	Email         *string         `json:"email,omitempty"`
	Address       *string         `json:"address,omitempty"`
	PricePerDay   decimal.Decimal `json:"price_per_day"`
	Status        string          `json:"status"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SchoolOverview is a school with its current-year budget position, if a budget exists.
type SchoolOverview struct {
	School
	Budget *BudgetStatus `json:"budget,omitempty"`
}

// SchoolFilter narrows school listings.
type SchoolFilter struct {
	Search   *string
	Status   *string
	Page     int
	PageSize int
}

// SchoolBudget is the yearly spending ceiling of one school.
// SpentAmount is a cached projection of the derived usage.
type SchoolBudget struct {
	ID             int64           `json:"id"`
	SchoolID       int64           `json:"school_id"`
	SchoolName     string          `json:"school_name,omitempty"`
	Year           int             `json:"year"`
	BudgetAmount   decimal.Decimal `json:"budget_amount"`
	SpentAmount    decimal.Decimal `json:"spent_amount"`
	AlertThreshold decimal.Decimal `json:"alert_threshold"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// BudgetStatus is a budget evaluated against billable activities.
type BudgetStatus struct {
	BudgetID           int64           `json:"budget_id"`
	SchoolID           int64           `json:"school_id"`
	SchoolName         string          `json:"school_name"`
	Year               int             `json:"year"`
	BudgetAmount       decimal.Decimal `json:"budget_amount"`
	Used               decimal.Decimal `json:"used"`
	Remaining          decimal.Decimal `json:"remaining"`
	AlertThreshold     decimal.Decimal `json:"alert_threshold"`
	UsagePercent       float64         `json:"usage_percent"`
	BillableActivities int             `json:"billable_activities"`
	Alert              bool            `json:"alert"`
}
