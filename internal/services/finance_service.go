package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dream_build_backend/internal/models"
	"dream_build_backend/internal/repositories"
	"dream_build_backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrRecordNotFound   = errors.New("financial record not found")
	ErrRecordValidation = errors.New("financial record validation error")
)

// --- Finance DTOs ---
type CreateRecordRequest struct {
	Type        string          `json:"type" binding:"required,record_type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        string          `json:"date" binding:"required"`
	SchoolID    *int64          `json:"school_id"`
	Description *string         `json:"description"`
}

// --- FinanceService Interface ---
type FinanceService interface {
	GetSummary(dateFrom, dateTo string) (*models.FinanceSummary, error)
	GetIncomeActivities(dateFrom, dateTo string) ([]models.Activity, error)
	CreateRecord(createdBy *uuid.UUID, req CreateRecordRequest) (*models.FinancialRecord, error)
	GetRecords(filter models.FinancialRecordFilter) ([]models.FinancialRecord, int, error)
	DeleteRecord(id int64) error
}

type financeService struct {
	activityRepo repositories.ActivityRepository
	recordRepo   repositories.FinancialRecordRepository
	db           *sql.DB
}

// NewFinanceService creates a new instance of FinanceService.
func NewFinanceService(activityRepo repositories.ActivityRepository, recordRepo repositories.FinancialRecordRepository, db *sql.DB) FinanceService {
	return &financeService{
		activityRepo: activityRepo,
		recordRepo:   recordRepo,
		db:           db,
	}
}

func (s *financeService) GetIncomeActivities(dateFrom, dateTo string) ([]models.Activity, error) {
	from, to, err := parseRange(dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	activities, _, err := s.activityRepo.GetActivities(models.ActivityFilter{
		DateFrom: &from,
		DateTo:   &to,
		Statuses: models.BillableStatuses,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load billable activities: %w", err)
	}
	return activities, nil
}

// GetSummary recomputes income and expenses for the range from the source rows.
func (s *financeService) GetSummary(dateFrom, dateTo string) (*models.FinanceSummary, error) {
	from, to, err := parseRange(dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	activities, err := s.GetIncomeActivities(from, to)
	if err != nil {
		return nil, err
	}
	records, _, err := s.recordRepo.GetRecords(models.FinancialRecordFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		return nil, fmt.Errorf("failed to load financial records: %w", err)
	}

	summary := &models.FinanceSummary{
		DateFrom:           from,
		DateTo:             to,
		ActivityIncome:     ComputeIncome(activities, PricesFromActivities(activities)),
		AdditionalIncome:   decimal.Zero,
		Expenses:           decimal.Zero,
		BillableActivities: len(activities),
		IncomeBySchool:     IncomeBySchool(activities),
	}
	var expenses []models.FinancialRecord
	for _, r := range records {
		switch r.Type {
		case models.RecordTypeIncome:
			summary.AdditionalIncome = summary.AdditionalIncome.Add(r.Amount)
		case models.RecordTypeExpense:
			summary.Expenses = summary.Expenses.Add(r.Amount)
			expenses = append(expenses, r)
		}
	}
	summary.ExpensesByCategory = TotalsByCategory(expenses)
	summary.TotalIncome = summary.ActivityIncome.Add(summary.AdditionalIncome)
	summary.NetProfit = summary.TotalIncome.Sub(summary.Expenses)
	return summary, nil
}

func (s *financeService) CreateRecord(createdBy *uuid.UUID, req CreateRecordRequest) (*models.FinancialRecord, error) {
	if req.Type != models.RecordTypeIncome && req.Type != models.RecordTypeExpense {
		return nil, fmt.Errorf("%w: type must be income or expense", ErrRecordValidation)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrRecordValidation)
	}
	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordValidation, err)
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = models.DefaultRecordCategory
	}
	record := &models.FinancialRecord{
		Type:        req.Type,
		Amount:      req.Amount,
		Category:    category,
		Date:        utils.FormatDate(date),
		SchoolID:    req.SchoolID,
		Description: req.Description,
		CreatedBy:   createdBy,
	}
	id, err := s.recordRepo.CreateRecord(s.db, record)
	if err != nil {
		if errors.Is(err, repositories.ErrForeignKey) {
			return nil, fmt.Errorf("%w: unknown school or creator", ErrRecordValidation)
		}
		return nil, fmt.Errorf("failed to create financial record: %w", err)
	}
	record.ID = id
	return record, nil
}

func (s *financeService) GetRecords(filter models.FinancialRecordFilter) ([]models.FinancialRecord, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	records, total, err := s.recordRepo.GetRecords(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list financial records: %w", err)
	}
	return records, total, nil
}

func (s *financeService) DeleteRecord(id int64) error {
	if err := s.recordRepo.DeleteRecord(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrRecordNotFound
		}
		return fmt.Errorf("failed to delete financial record: %w", err)
	}
	return nil
}
