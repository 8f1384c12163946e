package services

import (
	"errors"
	"strings"
	"testing"

	"dream_build_backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newImportFixture() (*importService, *fakeActivityRepo, *fakeSchoolRepo, *fakeUserRepo, *fakeRecordRepo) {
	schools := &fakeSchoolRepo{schools: []*models.School{
		{ID: 1, Name: "Herzl School", PricePerDay: decimal.NewFromInt(1000), Status: models.SchoolStatusActive},
	}}
	users := &fakeUserRepo{users: []*models.User{
		{ID: uuid.New(), Email: "dana@example.com", FullName: "Dana Levi", Role: models.RoleEmployee, Status: models.UserStatusActive},
	}}
	activities := &fakeActivityRepo{schools: schools}
	records := &fakeRecordRepo{}
	svc := &importService{
		schoolRepo:   schools,
		userRepo:     users,
		activityRepo: activities,
		recordRepo:   records,
		maxRows:      100,
	}
	return svc, activities, schools, users, records
}

func TestImportActivitiesUnmatchedRowInsertsNothing(t *testing.T) {
	svc, activities, _, _, _ := newImportFixture()
	file := "date,school,employee\n2024-03-04,Unknown School,Ghost\n"

	result, err := svc.Import(ImportActivities, strings.NewReader(file), "history.csv", uuid.New())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.SuccessCount != 0 || len(activities.activities) != 0 {
		t.Fatalf("expected no inserts, got %d", len(activities.activities))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v", result.Errors)
	}
	want := "row 1: school not found: Unknown School, employee not found: Ghost"
	if result.Errors[0] != want {
		t.Fatalf("error = %q, want %q", result.Errors[0], want)
	}
}

func TestImportActivitiesMatchedRowInsertsCompletedActivity(t *testing.T) {
	svc, activities, _, users, _ := newImportFixture()
	file := "Date, School ,Employee\n2024-03-04,  Herzl School ,Dana Levi\n"

	result, err := svc.Import(ImportActivities, strings.NewReader(file), "history.csv", uuid.New())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.SuccessCount != 1 || len(result.Errors) != 0 {
		t.Fatalf("result = %+v", result)
	}
	if len(activities.activities) != 1 {
		t.Fatalf("expected exactly one insert, got %d", len(activities.activities))
	}
	a := activities.activities[0]
	if a.Status != models.ActivityStatusCompleted || !a.ConfirmedByEmployee {
		t.Fatalf("activity = %+v", a)
	}
	if a.Date != "2024-03-04" || a.TimeStart != "08:00" || a.TimeEnd != "13:00" {
		t.Fatalf("activity window = %s %s-%s", a.Date, a.TimeStart, a.TimeEnd)
	}
	if a.EmployeeID == nil || *a.EmployeeID != users.users[0].ID {
		t.Fatalf("employee not resolved")
	}
	if a.Notes == nil || *a.Notes != "historical import" {
		t.Fatalf("notes = %v", a.Notes)
	}
}

func TestImportActivitiesMatchesNamesCaseSensitively(t *testing.T) {
	svc, activities, _, _, _ := newImportFixture()
	file := "date,school,employee\n2024-03-04,herzl school,Dana Levi\n"

	result, err := svc.Import(ImportActivities, strings.NewReader(file), "history.csv", uuid.New())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.SuccessCount != 0 || len(activities.activities) != 0 {
		t.Fatalf("lower-cased school name should not match")
	}
}

func TestImportActivitiesMissingColumns(t *testing.T) {
	svc, _, _, _, _ := newImportFixture()
	_, err := svc.Import(ImportActivities, strings.NewReader("date,school\n2024-03-04,Herzl School\n"), "a.csv", uuid.New())
	if !errors.Is(err, ErrImportValidation) {
		t.Fatalf("err = %v, want ErrImportValidation", err)
	}
}

func TestImportSchoolsSkipsExistingAndDefaultsPrice(t *testing.T) {
	svc, _, schools, _, _ := newImportFixture()
	file := "name,price\nHerzl School,900\nBialik School,\nRabin School,1200\n"

	result, err := svc.Import(ImportSchools, strings.NewReader(file), "schools.csv", uuid.New())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.SuccessCount != 2 || result.SkippedCount != 1 {
		t.Fatalf("result = %+v", result)
	}
	bialik, err := schools.GetSchoolByName("Bialik School")
	if err != nil {
		t.Fatalf("Bialik not created: %v", err)
	}
	if !bialik.PricePerDay.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("default price = %s", bialik.PricePerDay)
	}
}

func TestImportEmployeesSkipsExistingEmails(t *testing.T) {
	svc, _, _, users, _ := newImportFixture()
	file := "name,email,rate_day,rate_hour\nDana Levi,DANA@example.com,400,0\nNoa Cohen,noa@example.com,,55\n"

	result, err := svc.Import(ImportEmployees, strings.NewReader(file), "staff.csv", uuid.New())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.SuccessCount != 1 || result.SkippedCount != 1 {
		t.Fatalf("result = %+v", result)
	}
	noa, err := users.GetUserByEmail("noa@example.com")
	if err != nil {
		t.Fatalf("noa not created: %v", err)
	}
	if noa.Role != models.RoleEmployee || !noa.HourlyRate.Equal(decimal.NewFromInt(55)) || !noa.DailyRate.IsZero() {
		t.Fatalf("noa = %+v", noa)
	}
}

func TestImportFinancialRecordsDefaults(t *testing.T) {
	svc, _, _, _, records := newImportFixture()
	importer := uuid.New()
	file := "date,type,amount,category,description\n2024-03-04,,320.50,,glue\n2024-03-05,income,1000,grant,\n2024-03-06,refund,10,,\n"

	result, err := svc.Import(ImportFinancialRecords, strings.NewReader(file), "money.csv", importer)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.SuccessCount != 2 || len(result.Errors) != 1 {
		t.Fatalf("result = %+v", result)
	}
	first := records.records[0]
	if first.Type != models.RecordTypeExpense || first.Category != models.DefaultRecordCategory {
		t.Fatalf("defaults not applied: %+v", first)
	}
	if first.CreatedBy == nil || *first.CreatedBy != importer {
		t.Fatalf("created_by not set")
	}
}

func TestImportTemplate(t *testing.T) {
	svc, _, _, _, _ := newImportFixture()
	data, err := svc.Template(ImportActivities)
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	if !strings.HasPrefix(string(data), "date,school,employee\n") {
		t.Fatalf("template = %q", data)
	}
	if _, err := svc.Template("invoices"); !errors.Is(err, ErrUnknownImportType) {
		t.Fatalf("err = %v", err)
	}
}
