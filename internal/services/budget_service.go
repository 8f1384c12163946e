package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"dream_build_backend/internal/models"
	"dream_build_backend/internal/repositories"
	"dream_build_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

var (
	ErrBudgetNotFound   = errors.New("budget not found")
	ErrBudgetValidation = errors.New("budget data validation error")
)

// UpsertBudgetRequest creates or replaces the (school, year) budget.
type UpsertBudgetRequest struct {
	SchoolID       int64            `json:"school_id" binding:"required"`
	Year           int              `json:"year" binding:"required,min=2000,max=2100"`
	BudgetAmount   decimal.Decimal  `json:"budget_amount"`
	AlertThreshold *decimal.Decimal `json:"alert_threshold"`
}

// BudgetService evaluates yearly school budgets.
// Usage is always derived from billable activities; the stored spent_amount is refreshed from it.
type BudgetService interface {
	GetBudgetStatuses(year int) ([]models.BudgetStatus, error)
	GetBudgetStatus(schoolID int64, year int) (*models.BudgetStatus, error)
	GetBudgetAlerts(year int) ([]models.BudgetStatus, error)
	UpsertBudget(req UpsertBudgetRequest) (*models.BudgetStatus, error)
}

type budgetService struct {
	budgetRepo   repositories.BudgetRepository
	activityRepo repositories.ActivityRepository
	schoolRepo   repositories.SchoolRepository
	db           *sql.DB
}

// NewBudgetService creates a new instance of BudgetService.
func NewBudgetService(budgetRepo repositories.BudgetRepository, activityRepo repositories.ActivityRepository, schoolRepo repositories.SchoolRepository, db *sql.DB) BudgetService {
	return &budgetService{
		budgetRepo:   budgetRepo,
		activityRepo: activityRepo,
		schoolRepo:   schoolRepo,
		db:           db,
	}
}

// billableForYear loads billable activities of a year, optionally for one school.
func (s *budgetService) billableForYear(year int, schoolID *int64) ([]models.Activity, error) {
	from := strconv.Itoa(year) + "-01-01"
	to := strconv.Itoa(year) + "-12-31"
	activities, _, err := s.activityRepo.GetActivities(models.ActivityFilter{
		DateFrom: &from,
		DateTo:   &to,
		Statuses: models.BillableStatuses,
		SchoolID: schoolID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load billable activities: %w", err)
	}
	return activities, nil
}

func (s *budgetService) evaluate(budget models.SchoolBudget, activities []models.Activity) models.BudgetStatus {
	var own []models.Activity
	for _, a := range activities {
		if a.SchoolID == budget.SchoolID {
			own = append(own, a)
		}
	}
	used := ComputeIncome(own, PricesFromActivities(own))
	status := EvaluateBudget(budget, used, len(own))

	if !budget.SpentAmount.Equal(used) {
		if err := s.budgetRepo.UpdateSpentAmount(s.db, budget.ID, used); err != nil {
			utils.LogError(err, "Budget spent amount refresh failed", map[string]interface{}{"budget_id": budget.ID})
		}
	}
	return status
}

func (s *budgetService) GetBudgetStatuses(year int) ([]models.BudgetStatus, error) {
	budgets, err := s.budgetRepo.GetBudgets(year)
	if err != nil {
		return nil, fmt.Errorf("failed to get budgets: %w", err)
	}
	if len(budgets) == 0 {
		return []models.BudgetStatus{}, nil
	}
	activities, err := s.billableForYear(year, nil)
	if err != nil {
		return nil, err
	}
	out := make([]models.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, s.evaluate(b, activities))
	}
	return out, nil
}

func (s *budgetService) GetBudgetStatus(schoolID int64, year int) (*models.BudgetStatus, error) {
	budget, err := s.budgetRepo.GetBudget(schoolID, year)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBudgetNotFound
		}
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	activities, err := s.billableForYear(year, &schoolID)
	if err != nil {
		return nil, err
	}
	status := s.evaluate(*budget, activities)
	return &status, nil
}

func (s *budgetService) GetBudgetAlerts(year int) ([]models.BudgetStatus, error) {
	statuses, err := s.GetBudgetStatuses(year)
	if err != nil {
		return nil, err
	}
	alerts := []models.BudgetStatus{}
	for _, st := range statuses {
		if st.Alert {
			alerts = append(alerts, st)
		}
	}
	return alerts, nil
}

func (s *budgetService) UpsertBudget(req UpsertBudgetRequest) (*models.BudgetStatus, error) {
	if req.BudgetAmount.IsNegative() {
		return nil, fmt.Errorf("%w: budget amount cannot be negative", ErrBudgetValidation)
	}
	threshold := models.DefaultAlertThreshold
	if req.AlertThreshold != nil {
		if req.AlertThreshold.IsNegative() {
			return nil, fmt.Errorf("%w: alert threshold cannot be negative", ErrBudgetValidation)
		}
		threshold = *req.AlertThreshold
	}
	if _, err := s.schoolRepo.GetSchoolByID(req.SchoolID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSchoolNotFound
		}
		return nil, fmt.Errorf("failed to check school: %w", err)
	}

	budget := &models.SchoolBudget{
		SchoolID:       req.SchoolID,
		Year:           req.Year,
		BudgetAmount:   req.BudgetAmount,
		SpentAmount:    decimal.Zero,
		AlertThreshold: threshold,
	}
	if err := s.budgetRepo.UpsertBudget(s.db, budget); err != nil {
		if errors.Is(err, repositories.ErrForeignKey) {
			return nil, ErrSchoolNotFound
		}
		return nil, fmt.Errorf("failed to store budget: %w", err)
	}
	return s.GetBudgetStatus(req.SchoolID, req.Year)
}
