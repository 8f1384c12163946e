package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dream_build_backend/internal/models"

	"github.com/shopspring/decimal"
)

// BudgetRepository stores yearly school budgets.
type BudgetRepository interface {
	GetBudget(schoolID int64, year int) (*models.SchoolBudget, error)
	GetBudgets(year int) ([]models.SchoolBudget, error)
	UpsertBudget(executor SQLExecutor, budget *models.SchoolBudget) error
	UpdateSpentAmount(executor SQLExecutor, budgetID int64, spent decimal.Decimal) error
}

type budgetRepository struct {
	db *sql.DB
}

// NewBudgetRepository creates a new instance of BudgetRepository.
func NewBudgetRepository(db *sql.DB) BudgetRepository {
	return &budgetRepository{db: db}
}

const budgetSelect = `SELECT b.id, b.school_id, s.name, b.year, b.budget_amount, b.spent_amount, b.alert_threshold, b.created_at, b.updated_at
	FROM school_budgets b
	JOIN schools s ON s.id = b.school_id`

func scanBudget(s scanner) (*models.SchoolBudget, error) {
	b := &models.SchoolBudget{}
	err := s.Scan(&b.ID, &b.SchoolID, &b.SchoolName, &b.Year, &b.BudgetAmount, &b.SpentAmount,
		&b.AlertThreshold, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBudget returns one school's budget for a year.
func (r *budgetRepository) GetBudget(schoolID int64, year int) (*models.SchoolBudget, error) {
	b, err := scanBudget(r.db.QueryRow(budgetSelect+` WHERE b.school_id = $1 AND b.year = $2`, schoolID, year))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting budget of school %d for %d: %v", ErrDatabaseError, schoolID, year, err)
	}
	return b, nil
}

// GetBudgets returns every budget of a year ordered by school name.
func (r *budgetRepository) GetBudgets(year int) ([]models.SchoolBudget, error) {
	rows, err := r.db.Query(budgetSelect+` WHERE b.year = $1 ORDER BY s.name ASC`, year)
	if err != nil {
		return nil, fmt.Errorf("%w: querying budgets: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	budgets := []models.SchoolBudget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning budget: %v", ErrDatabaseError, err)
		}
		budgets = append(budgets, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating budget rows: %v", ErrDatabaseError, err)
	}
	return budgets, nil
}

// UpsertBudget creates the (school, year) budget or updates amount and threshold.
func (r *budgetRepository) UpsertBudget(executor SQLExecutor, budget *models.SchoolBudget) error {
	query := `INSERT INTO school_budgets (school_id, year, budget_amount, spent_amount, alert_threshold, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $6)
	          ON CONFLICT (school_id, year) DO UPDATE
	            SET budget_amount = EXCLUDED.budget_amount,
	                alert_threshold = EXCLUDED.alert_threshold,
	                updated_at = EXCLUDED.updated_at
	          RETURNING id, created_at, updated_at`

	now := time.Now()
	err := executor.QueryRow(query,
		budget.SchoolID, budget.Year, budget.BudgetAmount, budget.SpentAmount, budget.AlertThreshold, now,
	).Scan(&budget.ID, &budget.CreatedAt, &budget.UpdatedAt)
	if err != nil {
		return wrapWriteError(err, fmt.Sprintf("upserting budget of school %d", budget.SchoolID))
	}
	return nil
}

// UpdateSpentAmount refreshes the cached projection of used budget.
func (r *budgetRepository) UpdateSpentAmount(executor SQLExecutor, budgetID int64, spent decimal.Decimal) error {
	result, err := executor.Exec(`UPDATE school_budgets SET spent_amount = $1, updated_at = $2 WHERE id = $3`, spent, time.Now(), budgetID)
	if err != nil {
		return wrapWriteError(err, fmt.Sprintf("updating spent amount of budget %d", budgetID))
	}
	return checkAffected(result, fmt.Sprintf("updating spent amount of budget %d", budgetID))
}
