package models

import "github.com/shopspring/decimal"

// ManagerDashboard is the manager's overview for a day.
type ManagerDashboard struct {
	Date            string           `json:"date"`
	TodayActivities []Activity       `json:"today_activities"`
	MonthActivities int              `json:"month_activities"`
	MonthCompleted  int              `json:"month_completed"`
	MonthIncome     decimal.Decimal  `json:"month_income"`
	ActiveEmployees int              `json:"active_employees"`
	ActiveSchools   int              `json:"active_schools"`
	LowStock        []EquipmentStock `json:"low_stock"`
	Upcoming        []Activity       `json:"upcoming"`
	BudgetAlerts    []BudgetStatus   `json:"budget_alerts"`
}

// EmployeeDashboard is an employee's own month at a glance.
type EmployeeDashboard struct {
	Date                string          `json:"date"`
	MonthActivities     int             `json:"month_activities"`
	Completed           int             `json:"completed"`
	PendingConfirmation int             `json:"pending_confirmation"`
	Upcoming            int             `json:"upcoming"`
	UniqueSchools       int             `json:"unique_schools"`
	MonthEarnings       decimal.Decimal `json:"month_earnings"`
	PendingActivities   []Activity      `json:"pending_activities"`
	UpcomingActivities  []Activity      `json:"upcoming_activities"`
}

// ImportResult reports a bulk import; rows are inserted independently.
type ImportResult struct {
	Type         string   `json:"type"`
	TotalRows    int      `json:"total_rows"`
	SuccessCount int      `json:"success_count"`
	SkippedCount int      `json:"skipped_count"`
	Errors       []string `json:"errors"`
}
