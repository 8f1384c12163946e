package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dream_build_backend/internal/models"
)

// SchoolRepository defines the interface for school-related database operations.
type SchoolRepository interface {
	CreateSchool(executor SQLExecutor, school *models.School) (int64, error)
	GetSchoolByID(id int64) (*models.School, error)
	GetSchoolByName(name string) (*models.School, error)
	GetSchools(filter models.SchoolFilter) ([]models.School, int, error)
	ListSchools() ([]models.School, error)
	CountSchools(status string) (int, error)
	UpdateSchool(executor SQLExecutor, school *models.School) error
	DeleteSchool(executor SQLExecutor, id int64) error
}

type schoolRepository struct {
	db *sql.DB
}

// NewSchoolRepository creates a new instance of SchoolRepository.
func NewSchoolRepository(db *sql.DB) SchoolRepository {
	return &schoolRepository{db: db}
}

const schoolColumns = `id, name, contact_person, phone, email, address, price_per_day, status, notes, created_at, updated_at`

func scanSchool(s scanner, extra ...interface{}) (*models.School, error) {
	school := &models.School{}
	var contact, phone, email, address, notes sql.NullString
	dest := []interface{}{
		&school.ID, &school.Name, &contact, &phone, &email, &address,
		&school.PricePerDay, &school.Status, &notes, &school.CreatedAt, &school.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	school.ContactPerson = nullStringPtr(contact)
	school.Phone = nullStringPtr(phone)
	school.Email = nullStringPtr(email)
	school.Address = nullStringPtr(address)
	school.Notes = nullStringPtr(notes)
	return school, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// CreateSchool inserts a new school and returns its id.
func (r *schoolRepository) CreateSchool(executor SQLExecutor, school *models.School) (int64, error) {
	query := `INSERT INTO schools (name, contact_person, phone, email, address, price_per_day, status, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id`

	now := time.Now()
	school.CreatedAt = now
	school.UpdatedAt = now
	if school.Status == "" {
		school.Status = models.SchoolStatusActive
	}

	err := executor.QueryRow(query,
		strings.TrimSpace(school.Name), school.ContactPerson, school.Phone, school.Email, school.Address,
		school.PricePerDay, school.Status, school.Notes, school.CreatedAt, school.UpdatedAt,
	).Scan(&school.ID)
	if err != nil {
		return 0, wrapWriteError(err, "creating school")
	}
	return school.ID, nil
}

// GetSchoolByID retrieves a school by its ID.
func (r *schoolRepository) GetSchoolByID(id int64) (*models.School, error) {
	school, err := scanSchool(r.db.QueryRow(`SELECT `+schoolColumns+` FROM schools WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting school by ID %d: %v", ErrDatabaseError, id, err)
	}
	return school, nil
}

// GetSchoolByName retrieves a school by its exact name.
func (r *schoolRepository) GetSchoolByName(name string) (*models.School, error) {
	school, err := scanSchool(r.db.QueryRow(`SELECT `+schoolColumns+` FROM schools WHERE name = $1`, strings.TrimSpace(name)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting school by name: %v", ErrDatabaseError, err)
	}
	return school, nil
}

// GetSchools retrieves schools with pagination and optional search.
func (r *schoolRepository) GetSchools(filter models.SchoolFilter) ([]models.School, int, error) {
	schools := []models.School{}
	totalCount := 0

	var w whereBuilder
	if filter.Search != nil && *filter.Search != "" {
		w.add("(name ILIKE $%[1]d OR contact_person ILIKE $%[1]d OR phone ILIKE $%[1]d)", "%"+*filter.Search+"%")
	}
	if filter.Status != nil && *filter.Status != "" {
		w.add("status = $%d", *filter.Status)
	}

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + schoolColumns + `, COUNT(*) OVER() AS total_count FROM schools`)
	queryBuilder.WriteString(w.clause())
	queryBuilder.WriteString(" ORDER BY name ASC")
	queryBuilder.WriteString(w.paginate(filter.Page, filter.PageSize))

	rows, err := r.db.Query(queryBuilder.String(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying schools: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		school, err := scanSchool(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning school: %v", ErrDatabaseError, err)
		}
		schools = append(schools, *school)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating school rows: %v", ErrDatabaseError, err)
	}
	return schools, totalCount, nil
}

// ListSchools returns the whole table.
func (r *schoolRepository) ListSchools() ([]models.School, error) {
	schools, _, err := r.GetSchools(models.SchoolFilter{})
	return schools, err
}

// CountSchools counts schools by status; "" counts all.
func (r *schoolRepository) CountSchools(status string) (int, error) {
	var w whereBuilder
	if status != "" {
		w.add("status = $%d", status)
	}
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM schools`+w.clause(), w.args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting schools: %v", ErrDatabaseError, err)
	}
	return count, nil
}

// UpdateSchool updates an existing school in the database.
func (r *schoolRepository) UpdateSchool(executor SQLExecutor, school *models.School) error {
	query := `UPDATE schools SET
	            name = $1, contact_person = $2, phone = $3, email = $4, address = $5,
	            price_per_day = $6, status = $7, notes = $8, updated_at = $9
	          WHERE id = $10`

	school.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		strings.TrimSpace(school.Name), school.ContactPerson, school.Phone, school.Email, school.Address,
		school.PricePerDay, school.Status, school.Notes, school.UpdatedAt, school.ID,
	)
	if err != nil {
		return wrapWriteError(err, fmt.Sprintf("updating school ID %d", school.ID))
	}
	return checkAffected(result, fmt.Sprintf("updating school ID %d", school.ID))
}

// DeleteSchool removes a school. Referenced schools yield ErrForeignKey.
func (r *schoolRepository) DeleteSchool(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM schools WHERE id = $1`, id)
	if err != nil {
		return wrapWriteError(err, fmt.Sprintf("deleting school ID %d", id))
	}
	return checkAffected(result, fmt.Sprintf("deleting school ID %d", id))
}
