package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dream_build_backend/internal/models"
)

// EquipmentReportRepository stores employee shortage and damage reports.
type EquipmentReportRepository interface {
	CreateReport(executor SQLExecutor, report *models.EquipmentReport) (int64, error)
	GetReportByID(id int64) (*models.EquipmentReport, error)
	GetReports(filter models.EquipmentReportFilter) ([]models.EquipmentReport, error)
	ResolveReport(executor SQLExecutor, id int64) error
}

type equipmentReportRepository struct {
	db *sql.DB
}

// NewEquipmentReportRepository creates a new instance of EquipmentReportRepository.
func NewEquipmentReportRepository(db *sql.DB) EquipmentReportRepository {
	return &equipmentReportRepository{db: db}
}

const reportSelect = `SELECT r.id, r.equipment_id, e.name, r.reported_by, u.full_name, r.report_type, r.description,
	       r.quantity_needed, r.urgency, r.status, r.created_at, r.resolved_at
	FROM equipment_reports r
	JOIN equipment e ON e.id = r.equipment_id
	LEFT JOIN users u ON u.id = r.reported_by`

func scanReport(s scanner) (*models.EquipmentReport, error) {
	rep := &models.EquipmentReport{}
	var reporter sql.NullString
	var qty sql.NullInt64
	var resolvedAt sql.NullTime
	err := s.Scan(&rep.ID, &rep.EquipmentID, &rep.EquipmentName, &rep.ReportedBy, &reporter, &rep.ReportType,
		&rep.Description, &qty, &rep.Urgency, &rep.Status, &rep.CreatedAt, &resolvedAt)
	if err != nil {
		return nil, err
	}
	rep.ReporterName = nullStringPtr(reporter)
	if qty.Valid {
		n := int(qty.Int64)
		rep.QuantityNeeded = &n
	}
	if resolvedAt.Valid {
		rep.ResolvedAt = &resolvedAt.Time
	}
	return rep, nil
}

// CreateReport inserts a pending report.
func (r *equipmentReportRepository) CreateReport(executor SQLExecutor, report *models.EquipmentReport) (int64, error) {
	query := `INSERT INTO equipment_reports (equipment_id, reported_by, report_type, description, quantity_needed, urgency, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	report.CreatedAt = time.Now()
	if report.Status == "" {
		report.Status = models.ReportStatusPending
	}
	if report.Urgency == "" {
		report.Urgency = models.UrgencyNormal
	}
	err := executor.QueryRow(query,
		report.EquipmentID, report.ReportedBy, strings.TrimSpace(report.ReportType), strings.TrimSpace(report.Description),
		report.QuantityNeeded, report.Urgency, report.Status, report.CreatedAt,
	).Scan(&report.ID)
	if err != nil {
		return 0, wrapWriteError(err, "creating equipment report")
	}
	return report.ID, nil
}

// GetReportByID retrieves one report.
func (r *equipmentReportRepository) GetReportByID(id int64) (*models.EquipmentReport, error) {
	rep, err := scanReport(r.db.QueryRow(reportSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting equipment report by ID %d: %v", ErrDatabaseError, id, err)
	}
	return rep, nil
}

// GetReports lists reports newest first.
func (r *equipmentReportRepository) GetReports(filter models.EquipmentReportFilter) ([]models.EquipmentReport, error) {
	var w whereBuilder
	if filter.Status != nil && *filter.Status != "" {
		w.add("r.status = $%d", *filter.Status)
	}
	if filter.ReportedBy != nil {
		w.add("r.reported_by = $%d", *filter.ReportedBy)
	}
	query := reportSelect + w.clause() + ` ORDER BY r.created_at DESC`
	if filter.Limit > 0 {
		query += w.paginate(1, filter.Limit)
	}

	rows, err := r.db.Query(query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying equipment reports: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	reports := []models.EquipmentReport{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning equipment report: %v", ErrDatabaseError, err)
		}
		reports = append(reports, *rep)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating equipment report rows: %v", ErrDatabaseError, err)
	}
	return reports, nil
}

// ResolveReport marks a report resolved.
func (r *equipmentReportRepository) ResolveReport(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`UPDATE equipment_reports SET status = $1, resolved_at = $2 WHERE id = $3`,
		models.ReportStatusResolved, time.Now(), id)
	if err != nil {
		return wrapWriteError(err, fmt.Sprintf("resolving equipment report ID %d", id))
	}
	return checkAffected(result, fmt.Sprintf("resolving equipment report ID %d", id))
}
