package services

import (
	"errors"
	"testing"

	"dream_build_backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestFinanceSummary(t *testing.T) {
	schools := &fakeSchoolRepo{schools: []*models.School{
		{ID: 1, Name: "Herzl School", PricePerDay: decimal.NewFromInt(1000)},
		{ID: 2, Name: "Bialik School", PricePerDay: decimal.NewFromInt(800)},
	}}
	activities := &fakeActivityRepo{schools: schools}
	for _, a := range []models.Activity{
		{SchoolID: 1, Date: "2024-03-04", Status: models.ActivityStatusCompleted},
		{SchoolID: 1, Date: "2024-03-11", Status: models.ActivityStatusConfirmed},
		{SchoolID: 2, Date: "2024-03-12", Status: models.ActivityStatusCompleted},
		{SchoolID: 2, Date: "2024-03-13", Status: models.ActivityStatusCancelled},
		{SchoolID: 2, Date: "2024-04-01", Status: models.ActivityStatusCompleted},
	} {
		a := a
		_, _ = activities.CreateActivity(nil, &a)
	}
	records := &fakeRecordRepo{records: []models.FinancialRecord{
		{ID: 1, Type: models.RecordTypeIncome, Amount: decimal.NewFromInt(500), Category: "grant", Date: "2024-03-02"},
		{ID: 2, Type: models.RecordTypeExpense, Amount: decimal.NewFromInt(300), Category: "materials", Date: "2024-03-05"},
		{ID: 3, Type: models.RecordTypeExpense, Amount: decimal.NewFromInt(200), Category: "materials", Date: "2024-03-06"},
		{ID: 4, Type: models.RecordTypeExpense, Amount: decimal.NewFromInt(100), Category: "fuel", Date: "2024-03-07"},
	}}
	svc := NewFinanceService(activities, records, nil)

	summary, err := svc.GetSummary("2024-03-01", "2024-03-31")
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	checks := []struct {
		name string
		got  decimal.Decimal
		want int64
	}{
		{"activity income", summary.ActivityIncome, 2800},
		{"additional income", summary.AdditionalIncome, 500},
		{"total income", summary.TotalIncome, 3300},
		{"expenses", summary.Expenses, 600},
		{"net profit", summary.NetProfit, 2700},
	}
	for _, c := range checks {
		if !c.got.Equal(decimal.NewFromInt(c.want)) {
			t.Errorf("%s = %s, want %d", c.name, c.got, c.want)
		}
	}
	if summary.BillableActivities != 3 {
		t.Errorf("billable = %d", summary.BillableActivities)
	}
	if len(summary.IncomeBySchool) != 2 || summary.IncomeBySchool[0].SchoolName != "Herzl School" {
		t.Errorf("income by school = %+v", summary.IncomeBySchool)
	}
	if len(summary.ExpensesByCategory) != 2 || summary.ExpensesByCategory[0].Category != "materials" {
		t.Errorf("expenses by category = %+v", summary.ExpensesByCategory)
	}

	if _, err := svc.GetSummary("2024-03-31", "2024-03-01"); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("err = %v, want ErrInvalidDateRange", err)
	}
}

func TestCreateRecordDefaultsCategory(t *testing.T) {
	records := &fakeRecordRepo{}
	svc := NewFinanceService(&fakeActivityRepo{}, records, nil)
	creator := uuid.New()

	record, err := svc.CreateRecord(&creator, CreateRecordRequest{Type: models.RecordTypeExpense, Amount: decimal.NewFromInt(40), Date: "2024-03-04"})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if record.Category != models.DefaultRecordCategory || record.ID == 0 {
		t.Fatalf("record = %+v", record)
	}

	_, err = svc.CreateRecord(&creator, CreateRecordRequest{Type: models.RecordTypeIncome, Amount: decimal.Zero, Date: "2024-03-04"})
	if !errors.Is(err, ErrRecordValidation) {
		t.Fatalf("err = %v, want ErrRecordValidation", err)
	}
}
