package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"dream_build_backend/internal/models"

	"github.com/google/uuid"
)

// FinancialRecordRepository stores manual income and expense entries.
type FinancialRecordRepository interface {
	CreateRecord(executor SQLExecutor, record *models.FinancialRecord) (int64, error)
	GetRecords(filter models.FinancialRecordFilter) ([]models.FinancialRecord, int, error)
	DeleteRecord(executor SQLExecutor, id int64) error
}

type financialRecordRepository struct {
	db *sql.DB
}

// NewFinancialRecordRepository creates a new instance of FinancialRecordRepository.
func NewFinancialRecordRepository(db *sql.DB) FinancialRecordRepository {
	return &financialRecordRepository{db: db}
}

// CreateRecord inserts a record.
func (r *financialRecordRepository) CreateRecord(executor SQLExecutor, record *models.FinancialRecord) (int64, error) {
	query := `INSERT INTO financial_records (type, amount, category, date, school_id, description, created_by, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	record.CreatedAt = time.Now()
	if strings.TrimSpace(record.Category) == "" {
		record.Category = models.DefaultRecordCategory
	}
	err := executor.QueryRow(query,
		record.Type, record.Amount, record.Category, record.Date, record.SchoolID,
		record.Description, record.CreatedBy, record.CreatedAt,
	).Scan(&record.ID)
	if err != nil {
		return 0, wrapWriteError(err, "creating financial record")
	}
	return record.ID, nil
}

// GetRecords lists records newest first.
func (r *financialRecordRepository) GetRecords(filter models.FinancialRecordFilter) ([]models.FinancialRecord, int, error) {
	var w whereBuilder
	if filter.Type != nil && *filter.Type != "" {
		w.add("f.type = $%d", *filter.Type)
	}
	if filter.Category != nil && *filter.Category != "" {
		w.add("f.category = $%d", *filter.Category)
	}
	if filter.DateFrom != nil && *filter.DateFrom != "" {
		w.add("f.date >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil && *filter.DateTo != "" {
		w.add("f.date <= $%d", *filter.DateTo)
	}

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT f.id, f.type, f.amount, f.category, to_char(f.date, 'YYYY-MM-DD'), f.school_id, s.name,
	       f.description, f.created_by, f.created_at, COUNT(*) OVER() AS total_count
	FROM financial_records f
	LEFT JOIN schools s ON s.id = f.school_id`)
	queryBuilder.WriteString(w.clause())
	queryBuilder.WriteString(" ORDER BY f.date DESC, f.id DESC")
	queryBuilder.WriteString(w.paginate(filter.Page, filter.PageSize))

	rows, err := r.db.Query(queryBuilder.String(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying financial records: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	records := []models.FinancialRecord{}
	totalCount := 0
	for rows.Next() {
		var rec models.FinancialRecord
		var schoolID sql.NullInt64
		var schoolName, description sql.NullString
		var createdBy uuid.NullUUID
		if err := rows.Scan(&rec.ID, &rec.Type, &rec.Amount, &rec.Category, &rec.Date, &schoolID, &schoolName,
			&description, &createdBy, &rec.CreatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning financial record: %v", ErrDatabaseError, err)
		}
		if schoolID.Valid {
			id := schoolID.Int64
			rec.SchoolID = &id
		}
		rec.SchoolName = nullStringPtr(schoolName)
		rec.Description = nullStringPtr(description)
		if createdBy.Valid {
			id := createdBy.UUID
			rec.CreatedBy = &id
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating financial record rows: %v", ErrDatabaseError, err)
	}
	return records, totalCount, nil
}

// DeleteRecord removes a record.
func (r *financialRecordRepository) DeleteRecord(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM financial_records WHERE id = $1`, id)
	if err != nil {
		return wrapWriteError(err, fmt.Sprintf("deleting financial record ID %d", id))
	}
	return checkAffected(result, fmt.Sprintf("deleting financial record ID %d", id))
}
