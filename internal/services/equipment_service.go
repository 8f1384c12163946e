package services

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"dream_build_backend/internal/models"
	"dream_build_backend/internal/repositories"
	"dream_build_backend/pkg/utils"

	"github.com/google/uuid"
)

var (
	ErrEquipmentNotFound   = errors.New("equipment not found")
	ErrEquipmentValidation = errors.New("equipment data validation error")
	ErrEquipmentInUse      = errors.New("equipment cannot be deleted while reports reference it")
	ErrInvalidStockChange  = errors.New("stock change would leave quantity below zero or above total")
	ErrReportNotFound      = errors.New("equipment report not found")
)

const managerReportLimit = 50

// --- Equipment DTOs ---
type CreateEquipmentRequest struct {
	Name              string  `json:"name" binding:"required"`
	Category          *string `json:"category"`
	QuantityTotal     int     `json:"quantity_total" binding:"min=0"`
	QuantityAvailable *int    `json:"quantity_available" binding:"omitempty,min=0"`
	MinThreshold      int     `json:"min_threshold" binding:"min=0"`
	Unit              *string `json:"unit"`
	Notes             *string `json:"notes"`
}

type UpdateEquipmentRequest struct {
	Name              *string `json:"name"`
	Category          *string `json:"category"`
	QuantityTotal     *int    `json:"quantity_total" binding:"omitempty,min=0"`
	QuantityAvailable *int    `json:"quantity_available" binding:"omitempty,min=0"`
	MinThreshold      *int    `json:"min_threshold" binding:"omitempty,min=0"`
	Unit              *string `json:"unit"`
	Notes             *string `json:"notes"`
}

type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

type CreateReportRequest struct {
	EquipmentID    int64  `json:"equipment_id" binding:"required"`
	ReportType     string `json:"report_type" binding:"required"`
	Description    string `json:"description" binding:"required"`
	QuantityNeeded *int   `json:"quantity_needed" binding:"omitempty,min=1"`
	Urgency        string `json:"urgency" binding:"omitempty,oneof=low normal high"`
}

// EquipmentList is an evaluated inventory listing.
type EquipmentList struct {
	Items []models.EquipmentStock `json:"items"`
	Stats models.EquipmentStats   `json:"stats"`
}

// --- EquipmentService Interface ---
type EquipmentService interface {
	CreateEquipment(req CreateEquipmentRequest) (*models.EquipmentStock, error)
	GetEquipmentByID(id int64) (*models.EquipmentStock, error)
	GetEquipment(filter models.EquipmentFilter) (*EquipmentList, error)
	GetLowStockAlerts() ([]models.EquipmentStock, error)
	UpdateEquipment(id int64, req UpdateEquipmentRequest) (*models.EquipmentStock, error)
	AdjustStock(id int64, delta int) (*models.EquipmentStock, error)
	DeleteEquipment(id int64) error

	CreateReport(reporter uuid.UUID, req CreateReportRequest) (*models.EquipmentReport, error)
	GetMyReports(reporter uuid.UUID) ([]models.EquipmentReport, error)
	GetReports(status *string) ([]models.EquipmentReport, error)
	ResolveReport(id int64) (*models.EquipmentReport, error)
}

type equipmentService struct {
	equipmentRepo repositories.EquipmentRepository
	reportRepo    repositories.EquipmentReportRepository
	db            *sql.DB
}

// NewEquipmentService creates a new instance of EquipmentService.
func NewEquipmentService(equipmentRepo repositories.EquipmentRepository, reportRepo repositories.EquipmentReportRepository, db *sql.DB) EquipmentService {
	return &equipmentService{
		equipmentRepo: equipmentRepo,
		reportRepo:    reportRepo,
		db:            db,
	}
}

func validateEquipment(e *models.Equipment) error {
	if utils.IsEmpty(e.Name) {
		return fmt.Errorf("%w: name cannot be empty", ErrEquipmentValidation)
	}
	if e.QuantityTotal < 0 || e.QuantityAvailable < 0 || e.MinThreshold < 0 {
		return fmt.Errorf("%w: quantities cannot be negative", ErrEquipmentValidation)
	}
	if e.QuantityAvailable > e.QuantityTotal {
		return fmt.Errorf("%w: available quantity cannot exceed total", ErrEquipmentValidation)
	}
	return nil
}

// SummarizeStock counts low and empty items and collects categories.
func SummarizeStock(items []models.Equipment) models.EquipmentStats {
	stats := models.EquipmentStats{TotalItems: len(items), Categories: []string{}}
	seen := make(map[string]bool)
	for i := range items {
		if items[i].IsLowStock() {
			stats.LowStock++
		}
		if items[i].IsOutOfStock() {
			stats.OutOfStock++
		}
		if c := items[i].Category; c != nil && *c != "" && !seen[*c] {
			seen[*c] = true
			stats.Categories = append(stats.Categories, *c)
		}
	}
	sort.Strings(stats.Categories)
	return stats
}

func (s *equipmentService) CreateEquipment(req CreateEquipmentRequest) (*models.EquipmentStock, error) {
	item := &models.Equipment{
		Name:              strings.TrimSpace(req.Name),
		Category:          req.Category,
		QuantityTotal:     req.QuantityTotal,
		QuantityAvailable: req.QuantityTotal,
		MinThreshold:      req.MinThreshold,
		Unit:              req.Unit,
		Notes:             req.Notes,
	}
	if req.QuantityAvailable != nil {
		item.QuantityAvailable = *req.QuantityAvailable
	}
	if err := validateEquipment(item); err != nil {
		return nil, err
	}
	id, err := s.equipmentRepo.CreateEquipment(s.db, item)
	if err != nil {
		return nil, fmt.Errorf("failed to create equipment: %w", err)
	}
	return s.GetEquipmentByID(id)
}

func (s *equipmentService) getEquipment(id int64) (*models.Equipment, error) {
	item, err := s.equipmentRepo.GetEquipmentByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEquipmentNotFound
		}
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}
	return item, nil
}

func (s *equipmentService) GetEquipmentByID(id int64) (*models.EquipmentStock, error) {
	item, err := s.getEquipment(id)
	if err != nil {
		return nil, err
	}
	stock := models.NewEquipmentStock(*item)
	return &stock, nil
}

func (s *equipmentService) GetEquipment(filter models.EquipmentFilter) (*EquipmentList, error) {
	items, err := s.equipmentRepo.GetEquipment(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	list := &EquipmentList{Items: make([]models.EquipmentStock, 0, len(items)), Stats: SummarizeStock(items)}
	for _, item := range items {
		list.Items = append(list.Items, models.NewEquipmentStock(item))
	}
	return list, nil
}

// GetLowStockAlerts returns low items, empty ones first, then by largest shortage.
func (s *equipmentService) GetLowStockAlerts() ([]models.EquipmentStock, error) {
	items, err := s.equipmentRepo.GetEquipment(models.EquipmentFilter{LowOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock: %w", err)
	}
	alerts := make([]models.EquipmentStock, 0, len(items))
	for _, item := range items {
		if item.IsLowStock() {
			alerts = append(alerts, models.NewEquipmentStock(item))
		}
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		oi, oj := alerts[i].IsOutOfStock(), alerts[j].IsOutOfStock()
		if oi != oj {
			return oi
		}
		return alerts[i].Shortage > alerts[j].Shortage
	})
	return alerts, nil
}

func (s *equipmentService) UpdateEquipment(id int64, req UpdateEquipmentRequest) (*models.EquipmentStock, error) {
	item, err := s.getEquipment(id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		item.Category = req.Category
	}
	if req.QuantityTotal != nil {
		item.QuantityTotal = *req.QuantityTotal
	}
	if req.QuantityAvailable != nil {
		item.QuantityAvailable = *req.QuantityAvailable
	}
	if req.MinThreshold != nil {
		item.MinThreshold = *req.MinThreshold
	}
	if req.Unit != nil {
		item.Unit = req.Unit
	}
	if req.Notes != nil {
		item.Notes = req.Notes
	}
	if err := validateEquipment(item); err != nil {
		return nil, err
	}
	if err := s.equipmentRepo.UpdateEquipment(s.db, item); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEquipmentNotFound
		}
		return nil, fmt.Errorf("failed to update equipment: %w", err)
	}
	return s.GetEquipmentByID(id)
}

func (s *equipmentService) AdjustStock(id int64, delta int) (*models.EquipmentStock, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: delta cannot be zero", ErrEquipmentValidation)
	}
	if _, err := s.getEquipment(id); err != nil {
		return nil, err
	}
	item, err := s.equipmentRepo.AdjustStock(s.db, id, delta)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidStockChange
		}
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}
	stock := models.NewEquipmentStock(*item)
	if stock.IsLowStock() {
		utils.LogWarn("Equipment low on stock", map[string]interface{}{"equipment_id": id, "available": item.QuantityAvailable, "threshold": item.MinThreshold})
	}
	return &stock, nil
}

func (s *equipmentService) DeleteEquipment(id int64) error {
	if err := s.equipmentRepo.DeleteEquipment(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrEquipmentNotFound
		}
		if errors.Is(err, repositories.ErrForeignKey) {
			return ErrEquipmentInUse
		}
		return fmt.Errorf("failed to delete equipment: %w", err)
	}
	return nil
}

func (s *equipmentService) CreateReport(reporter uuid.UUID, req CreateReportRequest) (*models.EquipmentReport, error) {
	if utils.IsEmpty(req.Description) {
		return nil, fmt.Errorf("%w: description is required", ErrEquipmentValidation)
	}
	if _, err := s.getEquipment(req.EquipmentID); err != nil {
		return nil, err
	}
	urgency := req.Urgency
	if urgency == "" {
		urgency = models.UrgencyNormal
	}
	report := &models.EquipmentReport{
		EquipmentID:    req.EquipmentID,
		ReportedBy:     reporter,
		ReportType:     req.ReportType,
		Description:    req.Description,
		QuantityNeeded: req.QuantityNeeded,
		Urgency:        urgency,
		Status:         models.ReportStatusPending,
	}
	id, err := s.reportRepo.CreateReport(s.db, report)
	if err != nil {
		if errors.Is(err, repositories.ErrForeignKey) {
			return nil, fmt.Errorf("%w: reporter is not a registered user", ErrEquipmentValidation)
		}
		return nil, fmt.Errorf("failed to create equipment report: %w", err)
	}
	return s.reportRepo.GetReportByID(id)
}

func (s *equipmentService) GetMyReports(reporter uuid.UUID) ([]models.EquipmentReport, error) {
	reports, err := s.reportRepo.GetReports(models.EquipmentReportFilter{ReportedBy: &reporter})
	if err != nil {
		return nil, fmt.Errorf("failed to list own reports: %w", err)
	}
	return reports, nil
}

func (s *equipmentService) GetReports(status *string) ([]models.EquipmentReport, error) {
	reports, err := s.reportRepo.GetReports(models.EquipmentReportFilter{Status: status, Limit: managerReportLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

func (s *equipmentService) ResolveReport(id int64) (*models.EquipmentReport, error) {
	if err := s.reportRepo.ResolveReport(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to resolve report: %w", err)
	}
	return s.reportRepo.GetReportByID(id)
}
