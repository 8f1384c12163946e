package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User roles. A manager passes every role check.
const (
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User is a person who can sign in: the manager or a workshop employee.
type User struct {
	ID           uuid.UUID       `json:"id"`
	Email        string          `json:"email"`
	FullName     string          `json:"full_name"`
	Phone        *string         `json:"phone,omitempty"`
	Role         string          `json:"role"`
	Status       string          `json:"status"`
	HourlyRate   decimal.Decimal `json:"hourly_rate"`
	DailyRate    decimal.Decimal `json:"daily_rate"`
	PasswordHash *string         `json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IsManager reports whether u has the manager role.
func (u *User) IsManager() bool {
	return u != nil && u.Role == RoleManager
}

// HasRole reports whether u satisfies a page's required role.
func (u *User) HasRole(required string) bool {
	if u == nil {
		return false
	}
	if u.Role == RoleManager {
		return true
	}
	return u.Role == required
}

// IsValidRole reports whether role is one of the two known roles.
func IsValidRole(role string) bool {
	return role == RoleManager || role == RoleEmployee
}

// UserFilter narrows employee listings.
type UserFilter struct {
	Role     *string
	Status   *string
	Search   *string
	Page     int
	PageSize int
}

// EmployeeOverview is a user row plus this month's workload.
type EmployeeOverview struct {
	User
	MonthActivities int `json:"month_activities"`
	MonthCompleted  int `json:"month_completed"`
}

// PayrollLine is the pay owed to one employee for a period.
type PayrollLine struct {
	EmployeeID          uuid.UUID       `json:"employee_id"`
	FullName            string          `json:"full_name"`
	CompletedActivities int             `json:"completed_activities"`
	HoursWorked         float64         `json:"hours_worked"`
	DailyRate           decimal.Decimal `json:"daily_rate"`
	HourlyRate          decimal.Decimal `json:"hourly_rate"`
	Basis               string          `json:"basis"` // daily, hourly or none
	Amount              decimal.Decimal `json:"amount"`
}

// PayrollReport aggregates pay lines for a date range.
type PayrollReport struct {
	DateFrom string          `json:"date_from"`
	DateTo   string          `json:"date_to"`
	Lines    []PayrollLine   `json:"lines"`
	Total    decimal.Decimal `json:"total"`
}
