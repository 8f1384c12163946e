package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dream_build_backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ActivityRepository defines the interface for schedule database operations.
type ActivityRepository interface {
	CreateActivity(executor SQLExecutor, activity *models.Activity) (int64, error)
	GetActivityByID(id int64) (*models.Activity, error)
	GetActivities(filter models.ActivityFilter) ([]models.Activity, int, error)
	UpdateActivity(executor SQLExecutor, activity *models.Activity) error
	ConfirmActivity(executor SQLExecutor, id int64, employeeID uuid.UUID) error
	DeleteActivity(executor SQLExecutor, id int64) error
	DeleteActivitiesBefore(executor SQLExecutor, date string) (int64, error)
}

type activityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a new instance of ActivityRepository.
func NewActivityRepository(db *sql.DB) ActivityRepository {
	return &activityRepository{db: db}
}

const activitySelect = `SELECT a.id, a.school_id, a.employee_id,
	       to_char(a.date, 'YYYY-MM-DD'), to_char(a.time_start, 'HH24:MI'), to_char(a.time_end, 'HH24:MI'),
	       a.status, a.confirmed_by_employee, a.notes, a.created_at, a.updated_at,
	       s.name, s.price_per_day, u.full_name`

const activityFrom = ` FROM activities a
	JOIN schools s ON s.id = a.school_id
	LEFT JOIN users u ON u.id = a.employee_id`

func scanActivity(s scanner, extra ...interface{}) (*models.Activity, error) {
	a := &models.Activity{}
	var employeeID uuid.NullUUID
	var notes, employeeName sql.NullString
	dest := []interface{}{
		&a.ID, &a.SchoolID, &employeeID,
		&a.Date, &a.TimeStart, &a.TimeEnd,
		&a.Status, &a.ConfirmedByEmployee, &notes, &a.CreatedAt, &a.UpdatedAt,
		&a.SchoolName, &a.PricePerDay, &employeeName,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if employeeID.Valid {
		id := employeeID.UUID
		a.EmployeeID = &id
	}
	a.Notes = nullStringPtr(notes)
	a.EmployeeName = nullStringPtr(employeeName)
	return a, nil
}

// CreateActivity inserts one activity and returns its id.
func (r *activityRepository) CreateActivity(executor SQLExecutor, activity *models.Activity) (int64, error) {
	query := `INSERT INTO activities (school_id, employee_id, date, time_start, time_end, status, confirmed_by_employee, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id`

	now := time.Now()
	activity.CreatedAt = now
	activity.UpdatedAt = now
	if activity.Status == "" {
		activity.Status = models.ActivityStatusPlanned
	}

	err := executor.QueryRow(query,
		activity.SchoolID, activity.EmployeeID, activity.Date, activity.TimeStart, activity.TimeEnd,
		activity.Status, activity.ConfirmedByEmployee, activity.Notes, activity.CreatedAt, activity.UpdatedAt,
	).Scan(&activity.ID)
	if err != nil {
		return 0, wrapWriteError(err, "creating activity")
	}
	return activity.ID, nil
}

// GetActivityByID retrieves an activity joined with its school and employee.
func (r *activityRepository) GetActivityByID(id int64) (*models.Activity, error) {
	a, err := scanActivity(r.db.QueryRow(activitySelect+activityFrom+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting activity by ID %d: %v", ErrDatabaseError, id, err)
	}
	return a, nil
}

// GetActivities lists activities ordered by date and start time.
func (r *activityRepository) GetActivities(filter models.ActivityFilter) ([]models.Activity, int, error) {
	activities := []models.Activity{}
	totalCount := 0

	var w whereBuilder
	if filter.DateFrom != nil && *filter.DateFrom != "" {
		w.add("a.date >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil && *filter.DateTo != "" {
		w.add("a.date <= $%d", *filter.DateTo)
	}
	if len(filter.Statuses) > 0 {
		w.add("a.status = ANY($%d)", pq.Array(filter.Statuses))
	}
	if filter.EmployeeID != nil {
		w.add("a.employee_id = $%d", *filter.EmployeeID)
	}
	if filter.SchoolID != nil {
		w.add("a.school_id = $%d", *filter.SchoolID)
	}
	if filter.Unassigned {
		w.addRaw("a.employee_id IS NULL")
	}

	var queryBuilder strings.Builder
	queryBuilder.WriteString(activitySelect + `, COUNT(*) OVER() AS total_count` + activityFrom)
	queryBuilder.WriteString(w.clause())
	queryBuilder.WriteString(" ORDER BY a.date ASC, a.time_start ASC, a.id ASC")
	queryBuilder.WriteString(w.paginate(filter.Page, filter.PageSize))

	rows, err := r.db.Query(queryBuilder.String(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying activities: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanActivity(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning activity: %v", ErrDatabaseError, err)
		}
		activities = append(activities, *a)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating activity rows: %v", ErrDatabaseError, err)
	}
	return activities, totalCount, nil
}

// UpdateActivity writes every mutable column of activity.
func (r *activityRepository) UpdateActivity(executor SQLExecutor, activity *models.Activity) error {
	query := `UPDATE activities SET
	            school_id = $1, employee_id = $2, date = $3, time_start = $4, time_end = $5,
	            status = $6, confirmed_by_employee = $7, notes = $8, updated_at = $9
	          WHERE id = $10`

	activity.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		activity.SchoolID, activity.EmployeeID, activity.Date, activity.TimeStart, activity.TimeEnd,
		activity.Status, activity.ConfirmedByEmployee, activity.Notes, activity.UpdatedAt, activity.ID,
	)
	if err != nil {
		return wrapWriteError(err, fmt.Sprintf("updating activity ID %d", activity.ID))
	}
	return checkAffected(result, fmt.Sprintf("updating activity ID %d", activity.ID))
}

// ConfirmActivity marks an employee's own activity as done.
// ErrNotFound covers both a missing row and an activity assigned to someone else.
func (r *activityRepository) ConfirmActivity(executor SQLExecutor, id int64, employeeID uuid.UUID) error {
	query := `UPDATE activities SET confirmed_by_employee = TRUE, status = $1, updated_at = $2
	          WHERE id = $3 AND employee_id = $4`
	result, err := executor.Exec(query, models.ActivityStatusCompleted, time.Now(), id, employeeID)
	if err != nil {
		return wrapWriteError(err, fmt.Sprintf("confirming activity ID %d", id))
	}
	return checkAffected(result, fmt.Sprintf("confirming activity ID %d", id))
}

// DeleteActivity removes an activity from the database.
func (r *activityRepository) DeleteActivity(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return wrapWriteError(err, fmt.Sprintf("deleting activity ID %d", id))
	}
	return checkAffected(result, fmt.Sprintf("deleting activity ID %d", id))
}

// DeleteActivitiesBefore purges activities dated strictly before date.
func (r *activityRepository) DeleteActivitiesBefore(executor SQLExecutor, date string) (int64, error) {
	result, err := executor.Exec(`DELETE FROM activities WHERE date < $1`, date)
	if err != nil {
		return 0, wrapWriteError(err, "purging activities")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for purging activities: %v", ErrDatabaseError, err)
	}
	return n, nil
}
