package services

import (
	"sort"
	"time"

	"dream_build_backend/internal/models"

	"github.com/shopspring/decimal"
)

// ComputeIncome sums the school day-rate over billable activities.
// prices maps school id to price_per_day; activities of unknown schools add nothing.
func ComputeIncome(activities []models.Activity, prices map[int64]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for i := range activities {
		if !activities[i].IsBillable() {
			continue
		}
		if price, ok := prices[activities[i].SchoolID]; ok {
			total = total.Add(price)
		}
	}
	return total
}

// PricesFromActivities builds the price map from the joined school columns.
func PricesFromActivities(activities []models.Activity) map[int64]decimal.Decimal {
	prices := make(map[int64]decimal.Decimal)
	for _, a := range activities {
		prices[a.SchoolID] = a.PricePerDay
	}
	return prices
}

// IncomeBySchool groups billable income per school, highest first.
func IncomeBySchool(activities []models.Activity) []models.SchoolIncome {
	bySchool := make(map[int64]*models.SchoolIncome)
	for _, a := range activities {
		if !a.IsBillable() {
			continue
		}
		line, ok := bySchool[a.SchoolID]
		if !ok {
			line = &models.SchoolIncome{SchoolID: a.SchoolID, SchoolName: a.SchoolName, Income: decimal.Zero}
			bySchool[a.SchoolID] = line
		}
		line.Activities++
		line.Income = line.Income.Add(a.PricePerDay)
	}

	out := make([]models.SchoolIncome, 0, len(bySchool))
	for _, line := range bySchool {
		out = append(out, *line)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Income.Cmp(out[j].Income); c != 0 {
			return c > 0
		}
		return out[i].SchoolName < out[j].SchoolName
	})
	return out
}

// TotalsByCategory sums record amounts per category, highest first.
func TotalsByCategory(records []models.FinancialRecord) []models.CategoryTotal {
	byCategory := make(map[string]decimal.Decimal)
	for _, r := range records {
		byCategory[r.Category] = byCategory[r.Category].Add(r.Amount)
	}
	out := make([]models.CategoryTotal, 0, len(byCategory))
	for cat, total := range byCategory {
		out = append(out, models.CategoryTotal{Category: cat, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// GenerateSeriesDates returns count weekly dates starting at the first target weekday after start.
// A start date that already falls on the weekday is skipped: the first date is a week later.
func GenerateSeriesDates(start time.Time, weekday time.Weekday, count int) []time.Time {
	if count <= 0 {
		return nil
	}
	daysUntil := (int(weekday) - int(start.Weekday()) + 7) % 7
	if daysUntil == 0 {
		daysUntil = 7
	}
	first := start.AddDate(0, 0, daysUntil)
	dates := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		dates = append(dates, first.AddDate(0, 0, 7*i))
	}
	return dates
}

// EvaluateBudget compares a budget with the income derived from the school's billable activities.
func EvaluateBudget(budget models.SchoolBudget, used decimal.Decimal, billable int) models.BudgetStatus {
	remaining := budget.BudgetAmount.Sub(used)
	status := models.BudgetStatus{
		BudgetID:           budget.ID,
		SchoolID:           budget.SchoolID,
		SchoolName:         budget.SchoolName,
		Year:               budget.Year,
		BudgetAmount:       budget.BudgetAmount,
		Used:               used,
		Remaining:          remaining,
		AlertThreshold:     budget.AlertThreshold,
		BillableActivities: billable,
		Alert:              remaining.LessThanOrEqual(budget.AlertThreshold),
	}
	if budget.BudgetAmount.IsPositive() {
		status.UsagePercent = used.Div(budget.BudgetAmount).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
	}
	return status
}

// CalculatePay prices completed work: the daily rate per activity when set,
// otherwise the hourly rate times the hours of the activity windows.
func CalculatePay(employee models.User, activities []models.Activity) models.PayrollLine {
	line := models.PayrollLine{
		EmployeeID: employee.ID,
		FullName:   employee.FullName,
		DailyRate:  employee.DailyRate,
		HourlyRate: employee.HourlyRate,
		Basis:      "none",
		Amount:     decimal.Zero,
	}
	for i := range activities {
		a := &activities[i]
		if a.Status != models.ActivityStatusCompleted || !a.AssignedTo(employee.ID) {
			continue
		}
		line.CompletedActivities++
		line.HoursWorked += a.DurationHours()
	}

	switch {
	case employee.DailyRate.IsPositive():
		line.Basis = "daily"
		line.Amount = employee.DailyRate.Mul(decimal.NewFromInt(int64(line.CompletedActivities)))
	case employee.HourlyRate.IsPositive():
		line.Basis = "hourly"
		line.Amount = employee.HourlyRate.Mul(decimal.NewFromFloat(line.HoursWorked)).Round(2)
	}
	return line
}

// SummarizeSchedule counts activities per status.
func SummarizeSchedule(activities []models.Activity) models.ScheduleStats {
	var stats models.ScheduleStats
	for _, a := range activities {
		stats.Total++
		switch a.Status {
		case models.ActivityStatusPlanned:
			stats.Planned++
		case models.ActivityStatusConfirmed:
			stats.Confirmed++
		case models.ActivityStatusCompleted:
			stats.Completed++
		case models.ActivityStatusCancelled:
			stats.Cancelled++
		}
		if a.EmployeeID == nil {
			stats.NoEmployee++
		}
	}
	return stats
}

// SummarizeByEmployee groups a month of activities per employee, unassigned last.
func SummarizeByEmployee(activities []models.Activity) []models.EmployeeMonthSummary {
	const unassigned = "unassigned"
	byKey := make(map[string]*models.EmployeeMonthSummary)
	var order []string
	for _, a := range activities {
		key := unassigned
		name := unassigned
		if a.EmployeeID != nil {
			key = a.EmployeeID.String()
			if a.EmployeeName != nil {
				name = *a.EmployeeName
			}
		}
		line, ok := byKey[key]
		if !ok {
			line = &models.EmployeeMonthSummary{EmployeeID: a.EmployeeID, EmployeeName: name}
			byKey[key] = line
			order = append(order, key)
		}
		line.Total++
		switch a.Status {
		case models.ActivityStatusCompleted:
			line.Completed++
		case models.ActivityStatusPlanned:
			line.Planned++
		}
	}

	out := make([]models.EmployeeMonthSummary, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if (out[i].EmployeeID == nil) != (out[j].EmployeeID == nil) {
			return out[j].EmployeeID == nil
		}
		return out[i].EmployeeName < out[j].EmployeeName
	})
	return out
}
