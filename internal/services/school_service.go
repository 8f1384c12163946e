package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dream_build_backend/internal/models"
	"dream_build_backend/internal/repositories"
	"dream_build_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// --- Custom Service Errors for School ---
var (
	ErrSchoolNotFound   = errors.New("school not found")
	ErrSchoolNameExists = errors.New("school name already exists")
	ErrSchoolValidation = errors.New("school data validation error")
	ErrSchoolInUse      = errors.New("school cannot be deleted as it is referenced by activities or budgets")
)

// --- School DTOs ---
type CreateSchoolRequest struct {
	Name          string           `json:"name" binding:"required"`
	ContactPerson *string          `json:"contact_person"`
	Phone         *string          `json:"phone"`
	Email         *string          `json:"email"`
	Address       *string          `json:"address"`
	PricePerDay   decimal.Decimal  `json:"price_per_day"`
	Status        string           `json:"status" binding:"omitempty,oneof=active inactive"`
	Notes         *string          `json:"notes"`
	YearlyBudget  *decimal.Decimal `json:"yearly_budget"`
}

type UpdateSchoolRequest struct {
	Name          *string          `json:"name"`
	ContactPerson *string          `json:"contact_person"`
	Phone         *string          `json:"phone"`
	Email         *string          `json:"email"`
	Address       *string          `json:"address"`
	PricePerDay   *decimal.Decimal `json:"price_per_day"`
	Status        *string          `json:"status" binding:"omitempty,oneof=active inactive"`
	Notes         *string          `json:"notes"`
}

// --- SchoolService Interface ---
type SchoolService interface {
	CreateSchool(req CreateSchoolRequest) (*models.School, error)
	GetSchoolByID(schoolID int64) (*models.School, error)
	GetSchools(filter models.SchoolFilter) ([]models.SchoolOverview, int, error)
	UpdateSchool(schoolID int64, req UpdateSchoolRequest) (*models.School, error)
	DeleteSchool(schoolID int64) error
}

type schoolService struct {
	schoolRepo    repositories.SchoolRepository
	budgetService BudgetService
	db            *sql.DB
	now           func() time.Time
}

// NewSchoolService creates a new instance of SchoolService.
func NewSchoolService(repo repositories.SchoolRepository, budgetService BudgetService, db *sql.DB) SchoolService {
	return &schoolService{
		schoolRepo:    repo,
		budgetService: budgetService,
		db:            db,
		now:           time.Now,
	}
}

func (s *schoolService) validate(school *models.School) error {
	if strings.TrimSpace(school.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrSchoolValidation)
	}
	if school.PricePerDay.IsNegative() {
		return fmt.Errorf("%w: price per day cannot be negative", ErrSchoolValidation)
	}
	if school.Email != nil && *school.Email != "" && !utils.IsValidEmail(*school.Email) {
		return fmt.Errorf("%w: email format is invalid", ErrSchoolValidation)
	}
	return nil
}

func (s *schoolService) CreateSchool(req CreateSchoolRequest) (*models.School, error) {
	school := &models.School{
		Name:          strings.TrimSpace(req.Name),
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		PricePerDay:   req.PricePerDay,
		Status:        req.Status,
		Notes:         req.Notes,
	}
	if school.Status == "" {
		school.Status = models.SchoolStatusActive
	}
	if err := s.validate(school); err != nil {
		return nil, err
	}

	id, err := s.schoolRepo.CreateSchool(s.db, school)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrSchoolNameExists
		}
		return nil, fmt.Errorf("failed to create school in repository: %w", err)
	}

	if req.YearlyBudget != nil && req.YearlyBudget.IsPositive() {
		_, err := s.budgetService.UpsertBudget(UpsertBudgetRequest{
			SchoolID:     id,
			Year:         s.now().Year(),
			BudgetAmount: *req.YearlyBudget,
		})
		if err != nil {
			utils.LogError(err, "CreateSchool: initial budget could not be stored", map[string]interface{}{"school_id": id})
		}
	}
	return s.schoolRepo.GetSchoolByID(id)
}

func (s *schoolService) GetSchoolByID(schoolID int64) (*models.School, error) {
	school, err := s.schoolRepo.GetSchoolByID(schoolID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSchoolNotFound
		}
		return nil, fmt.Errorf("failed to get school by ID: %w", err)
	}
	return school, nil
}

// GetSchools lists schools with the current year's budget position attached.
func (s *schoolService) GetSchools(filter models.SchoolFilter) ([]models.SchoolOverview, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	schools, total, err := s.schoolRepo.GetSchools(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get schools: %w", err)
	}

	statuses, err := s.budgetService.GetBudgetStatuses(s.now().Year())
	if err != nil {
		return nil, 0, err
	}
	bySchool := make(map[int64]models.BudgetStatus, len(statuses))
	for _, st := range statuses {
		bySchool[st.SchoolID] = st
	}

	out := make([]models.SchoolOverview, 0, len(schools))
	for _, school := range schools {
		overview := models.SchoolOverview{School: school}
		if st, ok := bySchool[school.ID]; ok {
			st := st
			overview.Budget = &st
		}
		out = append(out, overview)
	}
	return out, total, nil
}

func (s *schoolService) UpdateSchool(schoolID int64, req UpdateSchoolRequest) (*models.School, error) {
	school, err := s.GetSchoolByID(schoolID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		school.Name = strings.TrimSpace(*req.Name)
	}
	if req.ContactPerson != nil {
		school.ContactPerson = req.ContactPerson
	}
	if req.Phone != nil {
		school.Phone = req.Phone
	}
	if req.Email != nil {
		school.Email = req.Email
	}
	if req.Address != nil {
		school.Address = req.Address
	}
	if req.PricePerDay != nil {
		school.PricePerDay = *req.PricePerDay
	}
	if req.Status != nil {
		school.Status = *req.Status
	}
	if req.Notes != nil {
		school.Notes = req.Notes
	}
	if err := s.validate(school); err != nil {
		return nil, err
	}

	if err := s.schoolRepo.UpdateSchool(s.db, school); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrSchoolNameExists
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSchoolNotFound
		}
		return nil, fmt.Errorf("failed to update school in repository: %w", err)
	}
	return s.schoolRepo.GetSchoolByID(schoolID)
}

func (s *schoolService) DeleteSchool(schoolID int64) error {
	err := s.schoolRepo.DeleteSchool(s.db, schoolID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSchoolNotFound
		}
		if errors.Is(err, repositories.ErrForeignKey) {
			return ErrSchoolInUse
		}
		return fmt.Errorf("failed to delete school: %w", err)
	}
	return nil
}
