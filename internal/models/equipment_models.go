package models

import (
	"time"

	"github.com/google/uuid"
)

// Stock status labels.
const (
	StockStatusOK  = "ok"
	StockStatusLow = "low"
	StockStatusOut = "out"
)

// Equipment is a stocked workshop item.
type Equipment struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Category          *string   `json:"category,omitempty"`
	QuantityTotal     int       `json:"quantity_total"`
	QuantityAvailable int       `json:"quantity_available"`
	MinThreshold      int       `json:"min_threshold"`
	Unit              *string   `json:"unit,omitempty"`
	Notes             *string   `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// IsLowStock reports available <= threshold.
func (e *Equipment) IsLowStock() bool {
	return e.QuantityAvailable <= e.MinThreshold
}

// IsOutOfStock reports available == 0.
func (e *Equipment) IsOutOfStock() bool {
	return e.QuantityAvailable == 0
}

// StockStatus labels the item for display.
func (e *Equipment) StockStatus() string {
	switch {
	case e.IsOutOfStock():
		return StockStatusOut
	case e.IsLowStock():
		return StockStatusLow
	default:
		return StockStatusOK
	}
}

// Shortage is how many units are missing to reach the threshold.
func (e *Equipment) Shortage() int {
	if e.QuantityAvailable >= e.MinThreshold {
		return 0
	}
	return e.MinThreshold - e.QuantityAvailable
}

// EquipmentStock is an item with its evaluated stock state.
type EquipmentStock struct {
	Equipment
	StockStatus string `json:"stock_status"`
	Shortage    int    `json:"shortage"`
}

// NewEquipmentStock evaluates e.
func NewEquipmentStock(e Equipment) EquipmentStock {
	return EquipmentStock{Equipment: e, StockStatus: e.StockStatus(), Shortage: e.Shortage()}
}

// EquipmentFilter narrows equipment listings.
type EquipmentFilter struct {
	Search   *string
	Category *string
	LowOnly  bool
}

// EquipmentStats counts stock states over a list.
type EquipmentStats struct {
	TotalItems int      `json:"total_items"`
	LowStock   int      `json:"low_stock"`
	OutOfStock int      `json:"out_of_stock"`
	Categories []string `json:"categories"`
}

const (
	ReportStatusPending  = "pending"
	ReportStatusResolved = "resolved"
)

const (
	UrgencyLow    = "low"
	UrgencyNormal = "normal"
	UrgencyHigh   = "high"
)

// EquipmentReport is an employee's note about a missing or damaged item.
type EquipmentReport struct {
	ID             int64      `json:"id"`
	EquipmentID    int64      `json:"equipment_id"`
	EquipmentName  string     `json:"equipment_name,omitempty"`
	ReportedBy     uuid.UUID  `json:"reported_by"`
	ReporterName   *string    `json:"reporter_name,omitempty"`
	ReportType     string     `json:"report_type"`
	Description    string     `json:"description"`
	QuantityNeeded *int       `json:"quantity_needed,omitempty"`
	Urgency        string     `json:"urgency"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// EquipmentReportFilter narrows report listings.
type EquipmentReportFilter struct {
	Status     *string
	ReportedBy *uuid.UUID
	Limit      int
}
