package services

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"dream_build_backend/internal/models"
	"dream_build_backend/internal/repositories"
	"dream_build_backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownImportType = errors.New("unknown import type")
	ErrImportValidation  = errors.New("import file validation error")
)

const (
	ImportActivities       = "activities"
	ImportSchools          = "schools"
	ImportEmployees        = "employees"
	ImportFinancialRecords = "financial_records"
)

// Imported activities have no recorded time window; this one is assumed.
const (
	importTimeStart = "08:00"
	importTimeEnd   = "13:00"
	importNote      = "historical import"
)

var importColumns = map[string][]string{
	ImportActivities:       {"date", "school", "employee"},
	ImportSchools:          {"name", "price"},
	ImportEmployees:        {"name", "email", "rate_day", "rate_hour"},
	ImportFinancialRecords: {"date", "type", "amount", "category", "description"},
}

var importRequired = map[string][]string{
	ImportActivities:       {"date", "school", "employee"},
	ImportSchools:          {"name"},
	ImportEmployees:        {"name", "email"},
	ImportFinancialRecords: {"date", "amount"},
}

var importSamples = map[string][]string{
	ImportActivities:       {"2024-03-04", "Herzl School", "Dana Levi"},
	ImportSchools:          {"Herzl School", "1000"},
	ImportEmployees:        {"Dana Levi", "dana@example.com", "450", "0"},
	ImportFinancialRecords: {"2024-03-04", "expense", "320.50", "materials", "plywood sheets"},
}

// --- ImportService Interface ---
type ImportService interface {
	Import(kind string, file io.Reader, filename string, importer uuid.UUID) (*models.ImportResult, error)
	ImportSheet(kind string, sheet *utils.Sheet, importer uuid.UUID) (*models.ImportResult, error)
	Template(kind string) ([]byte, error)
}

type importService struct {
	schoolRepo   repositories.SchoolRepository
	userRepo     repositories.UserRepository
	activityRepo repositories.ActivityRepository
	recordRepo   repositories.FinancialRecordRepository
	db           *sql.DB
	maxRows      int
}

// NewImportService creates a new instance of ImportService.
func NewImportService(
	schoolRepo repositories.SchoolRepository,
	userRepo repositories.UserRepository,
	activityRepo repositories.ActivityRepository,
	recordRepo repositories.FinancialRecordRepository,
	db *sql.DB,
	maxRows int,
) ImportService {
	return &importService{
		schoolRepo:   schoolRepo,
		userRepo:     userRepo,
		activityRepo: activityRepo,
		recordRepo:   recordRepo,
		db:           db,
		maxRows:      maxRows,
	}
}

func (s *importService) Import(kind string, file io.Reader, filename string, importer uuid.UUID) (*models.ImportResult, error) {
	if _, ok := importColumns[kind]; !ok {
		return nil, ErrUnknownImportType
	}
	sheet, err := utils.ReadSpreadsheet(file, filename, s.maxRows)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportValidation, err)
	}
	return s.ImportSheet(kind, sheet, importer)
}

func (s *importService) ImportSheet(kind string, sheet *utils.Sheet, importer uuid.UUID) (*models.ImportResult, error) {
	required, ok := importRequired[kind]
	if !ok {
		return nil, ErrUnknownImportType
	}
	if missing := sheet.Missing(required...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns: %s", ErrImportValidation, strings.Join(missing, ", "))
	}

	result := &models.ImportResult{Type: kind, TotalRows: len(sheet.Rows), Errors: []string{}}
	var err error
	switch kind {
	case ImportActivities:
		err = s.importActivities(sheet, result)
	case ImportSchools:
		err = s.importSchools(sheet, result)
	case ImportEmployees:
		err = s.importEmployees(sheet, result)
	case ImportFinancialRecords:
		s.importFinancialRecords(sheet, importer, result)
	}
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Import finished", map[string]interface{}{
		"type":    kind,
		"rows":    result.TotalRows,
		"success": result.SuccessCount,
		"skipped": result.SkippedCount,
		"errors":  len(result.Errors),
	})
	return result, nil
}

func (s *importService) rowFailed(result *models.ImportResult, kind string, rowNum int, msg string) {
	line := fmt.Sprintf("row %d: %s", rowNum, msg)
	result.Errors = append(result.Errors, line)
	utils.LogWarn("Import row rejected", map[string]interface{}{"type": kind, "row": rowNum, "reason": msg})
}

// importActivities resolves names against the full schools and users tables,
// loaded once per run.
func (s *importService) importActivities(sheet *utils.Sheet, result *models.ImportResult) error {
	schools, err := s.schoolRepo.ListSchools()
	if err != nil {
		return fmt.Errorf("failed to load schools for import: %w", err)
	}
	users, err := s.userRepo.ListUsers(nil)
	if err != nil {
		return fmt.Errorf("failed to load users for import: %w", err)
	}
	schoolByName := make(map[string]int64, len(schools))
	for _, school := range schools {
		schoolByName[strings.TrimSpace(school.Name)] = school.ID
	}
	userByName := make(map[string]uuid.UUID, len(users))
	for _, user := range users {
		userByName[strings.TrimSpace(user.FullName)] = user.ID
	}

	for i, row := range sheet.Rows {
		rowNum := i + 1
		schoolName := strings.TrimSpace(sheet.Value(row, "school"))
		employeeName := strings.TrimSpace(sheet.Value(row, "employee"))

		schoolID, schoolOK := schoolByName[schoolName]
		employeeID, employeeOK := userByName[employeeName]
		if !schoolOK || !employeeOK {
			var missing []string
			if !schoolOK {
				missing = append(missing, "school not found: "+schoolName)
			}
			if !employeeOK {
				missing = append(missing, "employee not found: "+employeeName)
			}
			s.rowFailed(result, ImportActivities, rowNum, strings.Join(missing, ", "))
			continue
		}

		date, err := utils.ParseSpreadsheetDate(sheet.Value(row, "date"))
		if err != nil {
			s.rowFailed(result, ImportActivities, rowNum, err.Error())
			continue
		}

		note := importNote
		emp := employeeID
		activity := &models.Activity{
			SchoolID:            schoolID,
			EmployeeID:          &emp,
			Date:                utils.FormatDate(date),
			TimeStart:           importTimeStart,
			TimeEnd:             importTimeEnd,
			Status:              models.ActivityStatusCompleted,
			ConfirmedByEmployee: true,
			Notes:               &note,
		}
		if _, err := s.activityRepo.CreateActivity(s.db, activity); err != nil {
			s.rowFailed(result, ImportActivities, rowNum, "database error - "+err.Error())
			continue
		}
		result.SuccessCount++
	}
	return nil
}

func (s *importService) importSchools(sheet *utils.Sheet, result *models.ImportResult) error {
	schools, err := s.schoolRepo.ListSchools()
	if err != nil {
		return fmt.Errorf("failed to load schools for import: %w", err)
	}
	existing := make(map[string]bool, len(schools))
	for _, school := range schools {
		existing[strings.TrimSpace(school.Name)] = true
	}

	for i, row := range sheet.Rows {
		rowNum := i + 1
		name := strings.TrimSpace(sheet.Value(row, "name"))
		if name == "" {
			s.rowFailed(result, ImportSchools, rowNum, "name is empty")
			continue
		}
		if existing[name] {
			result.SkippedCount++
			continue
		}
		price := models.DefaultPricePerDay
		if raw := sheet.Value(row, "price"); raw != "" {
			if price, err = utils.ParseDecimal(raw); err != nil || price.IsNegative() {
				s.rowFailed(result, ImportSchools, rowNum, "invalid price: "+raw)
				continue
			}
		}
		school := &models.School{Name: name, PricePerDay: price, Status: models.SchoolStatusActive}
		if _, err := s.schoolRepo.CreateSchool(s.db, school); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				result.SkippedCount++
				continue
			}
			s.rowFailed(result, ImportSchools, rowNum, "database error - "+err.Error())
			continue
		}
		existing[name] = true
		result.SuccessCount++
	}
	return nil
}

func (s *importService) importEmployees(sheet *utils.Sheet, result *models.ImportResult) error {
	for i, row := range sheet.Rows {
		rowNum := i + 1
		name := strings.TrimSpace(sheet.Value(row, "name"))
		email := strings.ToLower(strings.TrimSpace(sheet.Value(row, "email")))
		if name == "" || !utils.IsValidEmail(email) {
			s.rowFailed(result, ImportEmployees, rowNum, fmt.Sprintf("invalid name or email: %q %q", name, email))
			continue
		}

		if _, err := s.userRepo.GetUserByEmail(email); err == nil {
			result.SkippedCount++
			continue
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("failed to check existing employee: %w", err)
		}

		daily, err := optionalDecimal(sheet.Value(row, "rate_day"))
		if err != nil {
			s.rowFailed(result, ImportEmployees, rowNum, "invalid rate_day")
			continue
		}
		hourly, err := optionalDecimal(sheet.Value(row, "rate_hour"))
		if err != nil {
			s.rowFailed(result, ImportEmployees, rowNum, "invalid rate_hour")
			continue
		}

		user := &models.User{
			ID:         uuid.New(),
			Email:      email,
			FullName:   name,
			Role:       models.RoleEmployee,
			Status:     models.UserStatusActive,
			DailyRate:  daily,
			HourlyRate: hourly,
		}
		if err := s.userRepo.CreateUser(s.db, user); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				result.SkippedCount++
				continue
			}
			s.rowFailed(result, ImportEmployees, rowNum, "database error - "+err.Error())
			continue
		}
		result.SuccessCount++
	}
	return nil
}

func (s *importService) importFinancialRecords(sheet *utils.Sheet, importer uuid.UUID, result *models.ImportResult) {
	for i, row := range sheet.Rows {
		rowNum := i + 1
		date, err := utils.ParseSpreadsheetDate(sheet.Value(row, "date"))
		if err != nil {
			s.rowFailed(result, ImportFinancialRecords, rowNum, err.Error())
			continue
		}
		amount, err := utils.ParseDecimal(sheet.Value(row, "amount"))
		if err != nil || !amount.IsPositive() {
			s.rowFailed(result, ImportFinancialRecords, rowNum, "invalid amount: "+sheet.Value(row, "amount"))
			continue
		}
		recordType := strings.ToLower(sheet.Value(row, "type"))
		if recordType == "" {
			recordType = models.RecordTypeExpense
		}
		if recordType != models.RecordTypeIncome && recordType != models.RecordTypeExpense {
			s.rowFailed(result, ImportFinancialRecords, rowNum, "invalid type: "+recordType)
			continue
		}
		category := sheet.Value(row, "category")
		if category == "" {
			category = models.DefaultRecordCategory
		}

		creator := importer
		record := &models.FinancialRecord{
			Type:        recordType,
			Amount:      amount,
			Category:    category,
			Date:        utils.FormatDate(date),
			Description: utils.NewNullString(sheet.Value(row, "description")),
			CreatedBy:   &creator,
		}
		if _, err := s.recordRepo.CreateRecord(s.db, record); err != nil {
			s.rowFailed(result, ImportFinancialRecords, rowNum, "database error - "+err.Error())
			continue
		}
		result.SuccessCount++
	}
}

// Template renders a CSV with the columns of kind and one sample row.
func (s *importService) Template(kind string) ([]byte, error) {
	columns, ok := importColumns[kind]
	if !ok {
		return nil, ErrUnknownImportType
	}
	return utils.WriteCSV(columns, [][]string{importSamples[kind]})
}

func optionalDecimal(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	d, err := utils.ParseDecimal(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative value %s", raw)
	}
	return d, nil
}
