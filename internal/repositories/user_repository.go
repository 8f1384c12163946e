package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dream_build_backend/internal/models"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	CreateUser(executor SQLExecutor, user *models.User) error
	GetUserByID(id uuid.UUID) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUsers(filter models.UserFilter) ([]models.User, int, error)
	ListUsers(role *string) ([]models.User, error)
	CountUsers(role, status string) (int, error)
	UpdateUser(executor SQLExecutor, user *models.User) error
	SetUserStatus(executor SQLExecutor, id uuid.UUID, status string) error
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, full_name, phone, role, status, hourly_rate, daily_rate, password_hash, created_at, updated_at`

func scanUser(s scanner, extra ...interface{}) (*models.User, error) {
	user := &models.User{}
	var phone, hash sql.NullString
	dest := []interface{}{
		&user.ID, &user.Email, &user.FullName, &phone, &user.Role, &user.Status,
		&user.HourlyRate, &user.DailyRate, &hash, &user.CreatedAt, &user.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if phone.Valid {
		user.Phone = &phone.String
	}
	if hash.Valid {
		user.PasswordHash = &hash.String
	}
	return user, nil
}

// CreateUser inserts a user. The caller assigns the id.
func (r *userRepository) CreateUser(executor SQLExecutor, user *models.User) error {
	query := `INSERT INTO users (id, email, full_name, phone, role, status, hourly_rate, daily_rate, password_hash, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}

	_, err := executor.Exec(query,
		user.ID, strings.ToLower(strings.TrimSpace(user.Email)), user.FullName, user.Phone, user.Role, user.Status,
		user.HourlyRate, user.DailyRate, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return wrapWriteError(err, "creating user")
	}
	return nil
}

// GetUserByID retrieves a user by id.
func (r *userRepository) GetUserByID(id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting user by ID %s: %v", ErrDatabaseError, id, err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email, case-insensitively.
func (r *userRepository) GetUserByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(query, strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting user by email: %v", ErrDatabaseError, err)
	}
	return user, nil
}

// GetUsers lists users with filters and pagination.
func (r *userRepository) GetUsers(filter models.UserFilter) ([]models.User, int, error) {
	users := []models.User{}
	totalCount := 0

	var w whereBuilder
	if filter.Role != nil && *filter.Role != "" {
		w.add("role = $%d", *filter.Role)
	}
	if filter.Status != nil && *filter.Status != "" {
		w.add("status = $%d", *filter.Status)
	}
	if filter.Search != nil && *filter.Search != "" {
		w.add("(full_name ILIKE $%[1]d OR email ILIKE $%[1]d OR phone ILIKE $%[1]d)", "%"+*filter.Search+"%")
	}

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + userColumns + `, COUNT(*) OVER() AS total_count FROM users`)
	queryBuilder.WriteString(w.clause())
	queryBuilder.WriteString(" ORDER BY full_name ASC")
	queryBuilder.WriteString(w.paginate(filter.Page, filter.PageSize))

	rows, err := r.db.Query(queryBuilder.String(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		users = append(users, *user)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating user rows: %v", ErrDatabaseError, err)
	}
	return users, totalCount, nil
}

// ListUsers returns every user, optionally restricted to one role.
func (r *userRepository) ListUsers(role *string) ([]models.User, error) {
	users, _, err := r.GetUsers(models.UserFilter{Role: role})
	return users, err
}

// CountUsers counts users by role and status; empty arguments match all.
func (r *userRepository) CountUsers(role, status string) (int, error) {
	var w whereBuilder
	if role != "" {
		w.add("role = $%d", role)
	}
	if status != "" {
		w.add("status = $%d", status)
	}
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users`+w.clause(), w.args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting users: %v", ErrDatabaseError, err)
	}
	return count, nil
}

// UpdateUser updates profile and rate fields. The password hash is left untouched.
func (r *userRepository) UpdateUser(executor SQLExecutor, user *models.User) error {
	query := `UPDATE users SET
	            email = $1, full_name = $2, phone = $3, role = $4, status = $5,
	            hourly_rate = $6, daily_rate = $7, updated_at = $8
	          WHERE id = $9`

	user.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		strings.ToLower(strings.TrimSpace(user.Email)), user.FullName, user.Phone, user.Role, user.Status,
		user.HourlyRate, user.DailyRate, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return wrapWriteError(err, fmt.Sprintf("updating user ID %s", user.ID))
	}
	return checkAffected(result, fmt.Sprintf("updating user ID %s", user.ID))
}

// SetUserStatus activates or deactivates a user.
func (r *userRepository) SetUserStatus(executor SQLExecutor, id uuid.UUID, status string) error {
	result, err := executor.Exec(`UPDATE users SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now(), id)
	if err != nil {
		return wrapWriteError(err, fmt.Sprintf("setting status of user ID %s", id))
	}
	return checkAffected(result, fmt.Sprintf("setting status of user ID %s", id))
}
