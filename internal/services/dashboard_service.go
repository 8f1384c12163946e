package services

import (
	"errors"
	"fmt"
	"time"

	"dream_build_backend/internal/models"
	"dream_build_backend/internal/repositories"
	"dream_build_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

const (
	upcomingDays  = 7
	upcomingLimit = 8
)

// --- DashboardService Interface ---
type DashboardService interface {
	GetManagerDashboard() (*models.ManagerDashboard, error)
	GetEmployeeDashboard(user models.User) (*models.EmployeeDashboard, error)
}

type dashboardService struct {
	activityRepo     repositories.ActivityRepository
	userRepo         repositories.UserRepository
	schoolRepo       repositories.SchoolRepository
	equipmentService EquipmentService
	budgetService    BudgetService
	now              func() time.Time
}

// NewDashboardService creates a new instance of DashboardService.
func NewDashboardService(
	activityRepo repositories.ActivityRepository,
	userRepo repositories.UserRepository,
	schoolRepo repositories.SchoolRepository,
	equipmentService EquipmentService,
	budgetService BudgetService,
) DashboardService {
	return &dashboardService{
		activityRepo:     activityRepo,
		userRepo:         userRepo,
		schoolRepo:       schoolRepo,
		equipmentService: equipmentService,
		budgetService:    budgetService,
		now:              time.Now,
	}
}

func (s *dashboardService) activitiesBetween(from, to time.Time, filter models.ActivityFilter) ([]models.Activity, error) {
	df, dt := utils.FormatDate(from), utils.FormatDate(to)
	filter.DateFrom = &df
	filter.DateTo = &dt
	activities, _, err := s.activityRepo.GetActivities(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities %s..%s: %w", df, dt, err)
	}
	return activities, nil
}

func (s *dashboardService) GetManagerDashboard() (*models.ManagerDashboard, error) {
	today := s.now()
	dash := &models.ManagerDashboard{Date: utils.FormatDate(today), MonthIncome: decimal.Zero}

	var err error
	if dash.TodayActivities, err = s.activitiesBetween(today, today, models.ActivityFilter{}); err != nil {
		return nil, err
	}

	month, err := s.activitiesBetween(utils.StartOfMonth(today), utils.EndOfMonth(today), models.ActivityFilter{})
	if err != nil {
		return nil, err
	}
	stats := SummarizeSchedule(month)
	dash.MonthActivities = stats.Total
	dash.MonthCompleted = stats.Completed
	dash.MonthIncome = ComputeIncome(month, PricesFromActivities(month))

	if dash.ActiveEmployees, err = s.userRepo.CountUsers(models.RoleEmployee, models.UserStatusActive); err != nil {
		return nil, fmt.Errorf("failed to count employees: %w", err)
	}
	if dash.ActiveSchools, err = s.schoolRepo.CountSchools(models.SchoolStatusActive); err != nil {
		return nil, fmt.Errorf("failed to count schools: %w", err)
	}

	if dash.LowStock, err = s.equipmentService.GetLowStockAlerts(); err != nil {
		return nil, err
	}

	dash.Upcoming, err = s.activitiesBetween(today.AddDate(0, 0, 1), today.AddDate(0, 0, upcomingDays), models.ActivityFilter{
		Statuses: []string{models.ActivityStatusPlanned, models.ActivityStatusConfirmed},
		Page:     1,
		PageSize: upcomingLimit,
	})
	if err != nil {
		return nil, err
	}

	if dash.BudgetAlerts, err = s.budgetService.GetBudgetAlerts(today.Year()); err != nil {
		return nil, err
	}
	return dash, nil
}

// GetEmployeeDashboard summarizes the employee's own month. Rates come from the
// stored profile when there is one.
func (s *dashboardService) GetEmployeeDashboard(user models.User) (*models.EmployeeDashboard, error) {
	if stored, err := s.userRepo.GetUserByID(user.ID); err == nil {
		user = *stored
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to load employee profile: %w", err)
	}
	today := s.now()
	todayStr := utils.FormatDate(today)
	dash := &models.EmployeeDashboard{
		Date:               todayStr,
		PendingActivities:  []models.Activity{},
		UpcomingActivities: []models.Activity{},
	}

	month, err := s.activitiesBetween(utils.StartOfMonth(today), utils.EndOfMonth(today), models.ActivityFilter{EmployeeID: &user.ID})
	if err != nil {
		return nil, err
	}

	schools := make(map[int64]bool)
	for _, a := range month {
		dash.MonthActivities++
		schools[a.SchoolID] = true
		switch {
		case a.Status == models.ActivityStatusCompleted:
			dash.Completed++
		case a.Status == models.ActivityStatusCancelled:
		case a.Date <= todayStr && !a.ConfirmedByEmployee:
			dash.PendingConfirmation++
			dash.PendingActivities = append(dash.PendingActivities, a)
		case a.Date > todayStr:
			dash.Upcoming++
			if len(dash.UpcomingActivities) < upcomingLimit {
				dash.UpcomingActivities = append(dash.UpcomingActivities, a)
			}
		}
	}
	dash.UniqueSchools = len(schools)
	dash.MonthEarnings = CalculatePay(user, month).Amount
	return dash, nil
}
