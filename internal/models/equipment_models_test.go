package models

import "testing"

func TestEquipmentStockEvaluation(t *testing.T) {
	tests := []struct {
		name      string
		available int
		threshold int
		wantLow   bool
		wantOut   bool
		status    string
		shortage  int
	}{
		{"above threshold", 10, 3, false, false, StockStatusOK, 0},
		{"at threshold", 3, 3, true, false, StockStatusLow, 0},
		{"below threshold", 1, 3, true, false, StockStatusLow, 2},
		{"empty", 0, 3, true, true, StockStatusOut, 3},
		{"empty with zero threshold", 0, 0, true, true, StockStatusOut, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Equipment{QuantityAvailable: tt.available, MinThreshold: tt.threshold}
			if got := e.IsLowStock(); got != tt.wantLow {
				t.Errorf("IsLowStock() = %v, want %v", got, tt.wantLow)
			}
			if got := e.IsOutOfStock(); got != tt.wantOut {
				t.Errorf("IsOutOfStock() = %v, want %v", got, tt.wantOut)
			}
			if got := e.StockStatus(); got != tt.status {
				t.Errorf("StockStatus() = %q, want %q", got, tt.status)
			}
			if got := e.Shortage(); got != tt.shortage {
				t.Errorf("Shortage() = %d, want %d", got, tt.shortage)
			}
		})
	}
}
