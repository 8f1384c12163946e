package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dream_build_backend/internal/models"
)

// EquipmentRepository defines the interface for inventory database operations.
type EquipmentRepository interface {
	CreateEquipment(executor SQLExecutor, item *models.Equipment) (int64, error)
	GetEquipmentByID(id int64) (*models.Equipment, error)
	GetEquipment(filter models.EquipmentFilter) ([]models.Equipment, error)
	UpdateEquipment(executor SQLExecutor, item *models.Equipment) error
	AdjustStock(executor SQLExecutor, id int64, delta int) (*models.Equipment, error)
	DeleteEquipment(executor SQLExecutor, id int64) error
}

type equipmentRepository struct {
	db *sql.DB
}

// NewEquipmentRepository creates a new instance of EquipmentRepository.
func NewEquipmentRepository(db *sql.DB) EquipmentRepository {
	return &equipmentRepository{db: db}
}

const equipmentColumns = `id, name, category, quantity_total, quantity_available, min_threshold, unit, notes, created_at, updated_at`

func scanEquipment(s scanner) (*models.Equipment, error) {
	e := &models.Equipment{}
	var category, unit, notes sql.NullString
	err := s.Scan(&e.ID, &e.Name, &category, &e.QuantityTotal, &e.QuantityAvailable, &e.MinThreshold,
		&unit, &notes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Category = nullStringPtr(category)
	e.Unit = nullStringPtr(unit)
	e.Notes = nullStringPtr(notes)
	return e, nil
}

// CreateEquipment inserts a new item.
func (r *equipmentRepository) CreateEquipment(executor SQLExecutor, item *models.Equipment) (int64, error) {
	query := `INSERT INTO equipment (name, category, quantity_total, quantity_available, min_threshold, unit, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`

	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	err := executor.QueryRow(query,
		strings.TrimSpace(item.Name), item.Category, item.QuantityTotal, item.QuantityAvailable, item.MinThreshold,
		item.Unit, item.Notes, item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)
	if err != nil {
		return 0, wrapWriteError(err, "creating equipment")
	}
	return item.ID, nil
}

// GetEquipmentByID retrieves one item.
func (r *equipmentRepository) GetEquipmentByID(id int64) (*models.Equipment, error) {
	e, err := scanEquipment(r.db.QueryRow(`SELECT `+equipmentColumns+` FROM equipment WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting equipment by ID %d: %v", ErrDatabaseError, id, err)
	}
	return e, nil
}

// GetEquipment lists items by name, optionally filtered.
func (r *equipmentRepository) GetEquipment(filter models.EquipmentFilter) ([]models.Equipment, error) {
	var w whereBuilder
	if filter.Search != nil && *filter.Search != "" {
		w.add("name ILIKE $%d", "%"+*filter.Search+"%")
	}
	if filter.Category != nil && *filter.Category != "" {
		w.add("category = $%d", *filter.Category)
	}
	if filter.LowOnly {
		w.addRaw("quantity_available <= min_threshold")
	}

	rows, err := r.db.Query(`SELECT `+equipmentColumns+` FROM equipment`+w.clause()+` ORDER BY name ASC`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying equipment: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	items := []models.Equipment{}
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning equipment: %v", ErrDatabaseError, err)
		}
		items = append(items, *e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating equipment rows: %v", ErrDatabaseError, err)
	}
	return items, nil
}

// UpdateEquipment writes all mutable columns.
func (r *equipmentRepository) UpdateEquipment(executor SQLExecutor, item *models.Equipment) error {
	query := `UPDATE equipment SET
	            name = $1, category = $2, quantity_total = $3, quantity_available = $4,
	            min_threshold = $5, unit = $6, notes = $7, updated_at = $8
	          WHERE id = $9`

	item.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		strings.TrimSpace(item.Name), item.Category, item.QuantityTotal, item.QuantityAvailable,
		item.MinThreshold, item.Unit, item.Notes, item.UpdatedAt, item.ID,
	)
	if err != nil {
		return wrapWriteError(err, fmt.Sprintf("updating equipment ID %d", item.ID))
	}
	return checkAffected(result, fmt.Sprintf("updating equipment ID %d", item.ID))
}

// AdjustStock adds delta to the available quantity in one statement.
// Adjustments that would go below zero or above the total match no row and return ErrNotFound.
func (r *equipmentRepository) AdjustStock(executor SQLExecutor, id int64, delta int) (*models.Equipment, error) {
	query := `UPDATE equipment SET quantity_available = quantity_available + $1, updated_at = $2
	          WHERE id = $3 AND quantity_available + $1 >= 0 AND quantity_available + $1 <= quantity_total
	          RETURNING ` + equipmentColumns
	e, err := scanEquipment(executor.QueryRow(query, delta, time.Now(), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrapWriteError(err, fmt.Sprintf("adjusting stock of equipment ID %d", id))
	}
	return e, nil
}

// DeleteEquipment removes an item; items with reports yield ErrForeignKey.
func (r *equipmentRepository) DeleteEquipment(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		return wrapWriteError(err, fmt.Sprintf("deleting equipment ID %d", id))
	}
	return checkAffected(result, fmt.Sprintf("deleting equipment ID %d", id))
}
