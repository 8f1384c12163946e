package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Activity statuses.
const (
	ActivityStatusPlanned   = "planned"
	ActivityStatusConfirmed = "confirmed"
	ActivityStatusCompleted = "completed"
	ActivityStatusCancelled = "cancelled"
)

// BillableStatuses are the statuses counted as income.
var BillableStatuses = []string{ActivityStatusCompleted, ActivityStatusConfirmed}

// IsValidActivityStatus reports whether s is a known activity status.
func IsValidActivityStatus(s string) bool {
	switch s {
	case ActivityStatusPlanned, ActivityStatusConfirmed, ActivityStatusCompleted, ActivityStatusCancelled:
		return true
	}
	return false
}

// Activity is one workshop session at a school.
// Date is YYYY-MM-DD, TimeStart and TimeEnd are HH:MM.
type Activity struct {
	ID                  int64           `json:"id"`
	SchoolID            int64           `json:"school_id"`
	EmployeeID          *uuid.UUID      `json:"employee_id,omitempty"`
	Date                string          `json:"date"`
	TimeStart           string          `json:"time_start"`
	TimeEnd             string          `json:"time_end"`
	Status              string          `json:"status"`
	ConfirmedByEmployee bool            `json:"confirmed_by_employee"`
	Notes               *string         `json:"notes,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	SchoolName          string          `json:"school_name,omitempty"`
	PricePerDay         decimal.Decimal `json:"price_per_day"`
	EmployeeName        *string         `json:"employee_name,omitempty"`
}

// IsBillable reports whether the activity counts toward income.
func (a *Activity) IsBillable() bool {
	return a.Status == ActivityStatusCompleted || a.Status == ActivityStatusConfirmed
}

// AssignedTo reports whether the activity belongs to the given employee.
func (a *Activity) AssignedTo(employeeID uuid.UUID) bool {
	return a.EmployeeID != nil && *a.EmployeeID == employeeID
}

// DurationHours is the length of the time window, 0 if unparsable or inverted.
func (a *Activity) DurationHours() float64 {
	start, err1 := time.Parse("15:04", normalizeClock(a.TimeStart))
	end, err2 := time.Parse("15:04", normalizeClock(a.TimeEnd))
	if err1 != nil || err2 != nil || !end.After(start) {
		return 0
	}
	return end.Sub(start).Hours()
}

// normalizeClock trims a seconds suffix ("08:00:00" -> "08:00").
func normalizeClock(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == len("15:04:05") && strings.Count(s, ":") == 2 {
		return s[:5]
	}
	return s
}

// ActivityFilter narrows schedule listings. Empty fields are ignored.
type ActivityFilter struct {
	DateFrom   *string
	DateTo     *string
	Statuses   []string
	EmployeeID *uuid.UUID
	SchoolID   *int64
	Unassigned bool
	Page       int
	PageSize   int
}

// ScheduleStats summarizes a list of activities.
type ScheduleStats struct {
	Total      int `json:"total"`
	Planned    int `json:"planned"`
	Confirmed  int `json:"confirmed"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
	NoEmployee int `json:"no_employee"`
}

// EmployeeMonthSummary is one employee's line in the monthly schedule summary.
type EmployeeMonthSummary struct {
	EmployeeID   *uuid.UUID `json:"employee_id,omitempty"`
	EmployeeName string     `json:"employee_name"`
	Total        int        `json:"total"`
	Completed    int        `json:"completed"`
	Planned      int        `json:"planned"`
}

// SeriesResult reports a recurring batch insert.
type SeriesResult struct {
	Requested int        `json:"requested"`
	Created   []Activity `json:"created"`
	Errors    []string   `json:"errors"`
}
