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

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrEmployeeValidation = errors.New("employee data validation error")
	ErrInvalidDateRange   = errors.New("invalid date range, use YYYY-MM-DD and from <= to")
)

const temporaryPasswordLength = 10

// --- Employee DTOs ---
type CreateEmployeeRequest struct {
	FullName   string          `json:"full_name" binding:"required"`
	Email      string          `json:"email" binding:"required,email"`
	Phone      *string         `json:"phone"`
	Role       string          `json:"role" binding:"omitempty,user_role"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	DailyRate  decimal.Decimal `json:"daily_rate"`
}

// CreateEmployeeResponse returns the temporary password exactly once.
type CreateEmployeeResponse struct {
	Employee          *models.User `json:"employee"`
	TemporaryPassword string       `json:"temporary_password"`
}

type UpdateEmployeeRequest struct {
	FullName   *string          `json:"full_name"`
	Email      *string          `json:"email" binding:"omitempty,email"`
	Phone      *string          `json:"phone"`
	Role       *string          `json:"role" binding:"omitempty,user_role"`
	Status     *string          `json:"status" binding:"omitempty,oneof=active inactive"`
	HourlyRate *decimal.Decimal `json:"hourly_rate"`
	DailyRate  *decimal.Decimal `json:"daily_rate"`
}

// --- EmployeeService Interface ---
type EmployeeService interface {
	CreateEmployee(req CreateEmployeeRequest) (*CreateEmployeeResponse, error)
	GetEmployeeByID(id uuid.UUID) (*models.User, error)
	GetEmployees(filter models.UserFilter) ([]models.EmployeeOverview, int, error)
	UpdateEmployee(id uuid.UUID, req UpdateEmployeeRequest) (*models.User, error)
	DeactivateEmployee(id uuid.UUID) error
	GetPayroll(dateFrom, dateTo string) (*models.PayrollReport, error)
}

type employeeService struct {
	userRepo     repositories.UserRepository
	activityRepo repositories.ActivityRepository
	db           *sql.DB
	now          func() time.Time
}

// NewEmployeeService creates a new instance of EmployeeService.
func NewEmployeeService(userRepo repositories.UserRepository, activityRepo repositories.ActivityRepository, db *sql.DB) EmployeeService {
	return &employeeService{
		userRepo:     userRepo,
		activityRepo: activityRepo,
		db:           db,
		now:          time.Now,
	}
}

func validateRates(hourly, daily decimal.Decimal) error {
	if hourly.IsNegative() || daily.IsNegative() {
		return fmt.Errorf("%w: rates cannot be negative", ErrEmployeeValidation)
	}
	return nil
}

func (s *employeeService) CreateEmployee(req CreateEmployeeRequest) (*CreateEmployeeResponse, error) {
	if !utils.IsValidEmail(req.Email) {
		return nil, fmt.Errorf("%w: email format is invalid", ErrEmployeeValidation)
	}
	if utils.IsEmpty(req.FullName) {
		return nil, fmt.Errorf("%w: full name cannot be empty", ErrEmployeeValidation)
	}
	if err := validateRates(req.HourlyRate, req.DailyRate); err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = models.RoleEmployee
	}
	if !models.IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	password, err := utils.RandomPassword(temporaryPasswordLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate temporary password: %w", err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hash := string(hashed)

	user := &models.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        req.Phone,
		Role:         role,
		Status:       models.UserStatusActive,
		HourlyRate:   req.HourlyRate,
		DailyRate:    req.DailyRate,
		PasswordHash: &hash,
	}
	if err := s.userRepo.CreateUser(s.db, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}
	user.PasswordHash = nil
	return &CreateEmployeeResponse{Employee: user, TemporaryPassword: password}, nil
}

func (s *employeeService) GetEmployeeByID(id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee by ID: %w", err)
	}
	user.PasswordHash = nil
	return user, nil
}

// GetEmployees lists users (employees by default) with this month's activity counts.
func (s *employeeService) GetEmployees(filter models.UserFilter) ([]models.EmployeeOverview, int, error) {
	if filter.Role == nil {
		role := models.RoleEmployee
		filter.Role = &role
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	users, total, err := s.userRepo.GetUsers(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get employees: %w", err)
	}

	now := s.now()
	from := utils.FormatDate(utils.StartOfMonth(now))
	to := utils.FormatDate(utils.EndOfMonth(now))
	activities, _, err := s.activityRepo.GetActivities(models.ActivityFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load month activities: %w", err)
	}

	out := make([]models.EmployeeOverview, 0, len(users))
	for _, u := range users {
		u.PasswordHash = nil
		overview := models.EmployeeOverview{User: u}
		for i := range activities {
			if !activities[i].AssignedTo(u.ID) {
				continue
			}
			overview.MonthActivities++
			if activities[i].Status == models.ActivityStatusCompleted {
				overview.MonthCompleted++
			}
		}
		out = append(out, overview)
	}
	return out, total, nil
}

func (s *employeeService) UpdateEmployee(id uuid.UUID, req UpdateEmployeeRequest) (*models.User, error) {
	user, err := s.GetEmployeeByID(id)
	if err != nil {
		return nil, err
	}
	if req.FullName != nil {
		if utils.IsEmpty(*req.FullName) {
			return nil, fmt.Errorf("%w: full name cannot be empty", ErrEmployeeValidation)
		}
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		if !utils.IsValidEmail(*req.Email) {
			return nil, fmt.Errorf("%w: email format is invalid", ErrEmployeeValidation)
		}
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Role != nil {
		if !models.IsValidRole(*req.Role) {
			return nil, ErrInvalidRole
		}
		user.Role = *req.Role
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
	if req.HourlyRate != nil {
		user.HourlyRate = *req.HourlyRate
	}
	if req.DailyRate != nil {
		user.DailyRate = *req.DailyRate
	}
	if err := validateRates(user.HourlyRate, user.DailyRate); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateUser(s.db, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}
	return s.GetEmployeeByID(id)
}

// DeactivateEmployee marks the user inactive; users are never hard-deleted.
func (s *employeeService) DeactivateEmployee(id uuid.UUID) error {
	if err := s.userRepo.SetUserStatus(s.db, id, models.UserStatusInactive); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to deactivate employee: %w", err)
	}
	return nil
}

// GetPayroll prices completed activities per employee for a date range.
func (s *employeeService) GetPayroll(dateFrom, dateTo string) (*models.PayrollReport, error) {
	from, to, err := parseRange(dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	role := models.RoleEmployee
	employees, err := s.userRepo.ListUsers(&role)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	activities, _, err := s.activityRepo.GetActivities(models.ActivityFilter{
		DateFrom: &from,
		DateTo:   &to,
		Statuses: []string{models.ActivityStatusCompleted},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load completed activities: %w", err)
	}

	report := &models.PayrollReport{DateFrom: from, DateTo: to, Lines: []models.PayrollLine{}, Total: decimal.Zero}
	for _, e := range employees {
		line := CalculatePay(e, activities)
		if line.CompletedActivities == 0 {
			continue
		}
		report.Lines = append(report.Lines, line)
		report.Total = report.Total.Add(line.Amount)
	}
	return report, nil
}

// parseRange validates a YYYY-MM-DD range and returns it normalized.
func parseRange(dateFrom, dateTo string) (string, string, error) {
	from, err := utils.ParseDate(dateFrom)
	if err != nil {
		return "", "", ErrInvalidDateRange
	}
	to, err := utils.ParseDate(dateTo)
	if err != nil {
		return "", "", ErrInvalidDateRange
	}
	if to.Before(from) {
		return "", "", ErrInvalidDateRange
	}
	return utils.FormatDate(from), utils.FormatDate(to), nil
}
