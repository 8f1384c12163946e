package services

import (
	"sort"
	"strings"
	"time"

	"dream_build_backend/internal/models"
	"dream_build_backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeUserRepo struct {
	users []*models.User
}

func (r *fakeUserRepo) CreateUser(_ repositories.SQLExecutor, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicateKey
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	r.users = append(r.users, &cp)
	return nil
}

func (r *fakeUserRepo) GetUserByID(id uuid.UUID) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) GetUsers(filter models.UserFilter) ([]models.User, int, error) {
	users, _ := r.ListUsers(filter.Role)
	return users, len(users), nil
}

func (r *fakeUserRepo) ListUsers(role *string) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if role == nil || u.Role == *role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) CountUsers(role, status string) (int, error) {
	n := 0
	for _, u := range r.users {
		if u.Role == role && u.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) UpdateUser(_ repositories.SQLExecutor, user *models.User) error {
	for i, u := range r.users {
		if u.ID == user.ID {
			cp := *user
			r.users[i] = &cp
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeUserRepo) SetUserStatus(_ repositories.SQLExecutor, id uuid.UUID, status string) error {
	for _, u := range r.users {
		if u.ID == id {
			u.Status = status
			return nil
		}
	}
	return repositories.ErrNotFound
}

type fakeSchoolRepo struct {
	schools []*models.School
}

func (r *fakeSchoolRepo) CreateSchool(_ repositories.SQLExecutor, school *models.School) (int64, error) {
	for _, s := range r.schools {
		if s.Name == school.Name {
			return 0, repositories.ErrDuplicateKey
		}
	}
	cp := *school
	cp.ID = int64(len(r.schools) + 1)
	r.schools = append(r.schools, &cp)
	return cp.ID, nil
}

func (r *fakeSchoolRepo) GetSchoolByID(id int64) (*models.School, error) {
	for _, s := range r.schools {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeSchoolRepo) GetSchoolByName(name string) (*models.School, error) {
	for _, s := range r.schools {
		if s.Name == name {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeSchoolRepo) GetSchools(models.SchoolFilter) ([]models.School, int, error) {
	all, _ := r.ListSchools()
	return all, len(all), nil
}

func (r *fakeSchoolRepo) ListSchools() ([]models.School, error) {
	out := make([]models.School, 0, len(r.schools))
	for _, s := range r.schools {
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeSchoolRepo) CountSchools(status string) (int, error) {
	n := 0
	for _, s := range r.schools {
		if s.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeSchoolRepo) UpdateSchool(_ repositories.SQLExecutor, school *models.School) error {
	for i, s := range r.schools {
		if s.ID == school.ID {
			cp := *school
			r.schools[i] = &cp
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeSchoolRepo) DeleteSchool(_ repositories.SQLExecutor, id int64) error {
	for i, s := range r.schools {
		if s.ID == id {
			r.schools = append(r.schools[:i], r.schools[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

// fakeActivityRepo joins school names and prices the way the SQL repository does.
type fakeActivityRepo struct {
	schools    *fakeSchoolRepo
	activities []*models.Activity
	failDates  map[string]bool
}

func (r *fakeActivityRepo) join(a models.Activity) models.Activity {
	if r.schools != nil {
		if s, err := r.schools.GetSchoolByID(a.SchoolID); err == nil {
			a.SchoolName = s.Name
			a.PricePerDay = s.PricePerDay
		}
	}
	return a
}

func (r *fakeActivityRepo) CreateActivity(_ repositories.SQLExecutor, activity *models.Activity) (int64, error) {
	if r.failDates[activity.Date] {
		return 0, repositories.ErrDatabaseError
	}
	cp := *activity
	cp.ID = int64(len(r.activities) + 1)
	r.activities = append(r.activities, &cp)
	return cp.ID, nil
}

func (r *fakeActivityRepo) GetActivityByID(id int64) (*models.Activity, error) {
	for _, a := range r.activities {
		if a.ID == id {
			cp := r.join(*a)
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeActivityRepo) GetActivities(filter models.ActivityFilter) ([]models.Activity, int, error) {
	var out []models.Activity
	for _, a := range r.activities {
		if filter.DateFrom != nil && a.Date < *filter.DateFrom {
			continue
		}
		if filter.DateTo != nil && a.Date > *filter.DateTo {
			continue
		}
		if len(filter.Statuses) > 0 && !containsString(filter.Statuses, a.Status) {
			continue
		}
		if filter.EmployeeID != nil && !a.AssignedTo(*filter.EmployeeID) {
			continue
		}
		if filter.SchoolID != nil && a.SchoolID != *filter.SchoolID {
			continue
		}
		if filter.Unassigned && a.EmployeeID != nil {
			continue
		}
		out = append(out, r.join(*a))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	total := len(out)
	if filter.PageSize > 0 && len(out) > filter.PageSize {
		out = out[:filter.PageSize]
	}
	return out, total, nil
}

func (r *fakeActivityRepo) UpdateActivity(_ repositories.SQLExecutor, activity *models.Activity) error {
	for i, a := range r.activities {
		if a.ID == activity.ID {
			cp := *activity
			r.activities[i] = &cp
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeActivityRepo) ConfirmActivity(_ repositories.SQLExecutor, id int64, employeeID uuid.UUID) error {
	for _, a := range r.activities {
		if a.ID == id && a.AssignedTo(employeeID) {
			a.Status = models.ActivityStatusCompleted
			a.ConfirmedByEmployee = true
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeActivityRepo) DeleteActivity(_ repositories.SQLExecutor, id int64) error {
	for i, a := range r.activities {
		if a.ID == id {
			r.activities = append(r.activities[:i], r.activities[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeActivityRepo) DeleteActivitiesBefore(_ repositories.SQLExecutor, date string) (int64, error) {
	var kept []*models.Activity
	var n int64
	for _, a := range r.activities {
		if a.Date < date {
			n++
			continue
		}
		kept = append(kept, a)
	}
	r.activities = kept
	return n, nil
}

type fakeRecordRepo struct {
	records []models.FinancialRecord
}

func (r *fakeRecordRepo) CreateRecord(_ repositories.SQLExecutor, record *models.FinancialRecord) (int64, error) {
	cp := *record
	cp.ID = int64(len(r.records) + 1)
	r.records = append(r.records, cp)
	return cp.ID, nil
}

func (r *fakeRecordRepo) GetRecords(filter models.FinancialRecordFilter) ([]models.FinancialRecord, int, error) {
	var out []models.FinancialRecord
	for _, rec := range r.records {
		if filter.DateFrom != nil && rec.Date < *filter.DateFrom {
			continue
		}
		if filter.DateTo != nil && rec.Date > *filter.DateTo {
			continue
		}
		if filter.Type != nil && rec.Type != *filter.Type {
			continue
		}
		out = append(out, rec)
	}
	return out, len(out), nil
}

func (r *fakeRecordRepo) DeleteRecord(_ repositories.SQLExecutor, id int64) error {
	for i, rec := range r.records {
		if rec.ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

type fakeEquipmentRepo struct {
	items []*models.Equipment
}

func (r *fakeEquipmentRepo) CreateEquipment(_ repositories.SQLExecutor, item *models.Equipment) (int64, error) {
	cp := *item
	cp.ID = int64(len(r.items) + 1)
	r.items = append(r.items, &cp)
	return cp.ID, nil
}

func (r *fakeEquipmentRepo) GetEquipmentByID(id int64) (*models.Equipment, error) {
	for _, e := range r.items {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeEquipmentRepo) GetEquipment(filter models.EquipmentFilter) ([]models.Equipment, error) {
	var out []models.Equipment
	for _, e := range r.items {
		if filter.LowOnly && !e.IsLowStock() {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakeEquipmentRepo) UpdateEquipment(_ repositories.SQLExecutor, item *models.Equipment) error {
	for i, e := range r.items {
		if e.ID == item.ID {
			cp := *item
			r.items[i] = &cp
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeEquipmentRepo) AdjustStock(_ repositories.SQLExecutor, id int64, delta int) (*models.Equipment, error) {
	for _, e := range r.items {
		if e.ID == id {
			next := e.QuantityAvailable + delta
			if next < 0 || next > e.QuantityTotal {
				return nil, repositories.ErrNotFound
			}
			e.QuantityAvailable = next
			cp := *e
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeEquipmentRepo) DeleteEquipment(_ repositories.SQLExecutor, id int64) error {
	for i, e := range r.items {
		if e.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

type fakeTokenRepo struct {
	revoked map[string]time.Time
}

func (r *fakeTokenRepo) RevokeToken(_ repositories.SQLExecutor, tokenID string, expiresAt time.Time) error {
	if r.revoked == nil {
		r.revoked = make(map[string]time.Time)
	}
	r.revoked[tokenID] = expiresAt
	return nil
}

func (r *fakeTokenRepo) IsRevoked(tokenID string) (bool, error) {
	_, ok := r.revoked[tokenID]
	return ok, nil
}

func (r *fakeTokenRepo) DeleteExpired(now time.Time) (int64, error) {
	var n int64
	for id, exp := range r.revoked {
		if exp.Before(now) {
			delete(r.revoked, id)
			n++
		}
	}
	return n, nil
}

type fakeBudgetRepo struct {
	budgets []*models.SchoolBudget
}

func (r *fakeBudgetRepo) GetBudget(schoolID int64, year int) (*models.SchoolBudget, error) {
	for _, b := range r.budgets {
		if b.SchoolID == schoolID && b.Year == year {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeBudgetRepo) GetBudgets(year int) ([]models.SchoolBudget, error) {
	var out []models.SchoolBudget
	for _, b := range r.budgets {
		if b.Year == year {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBudgetRepo) UpsertBudget(_ repositories.SQLExecutor, budget *models.SchoolBudget) error {
	for _, b := range r.budgets {
		if b.SchoolID == budget.SchoolID && b.Year == budget.Year {
			b.BudgetAmount = budget.BudgetAmount
			b.AlertThreshold = budget.AlertThreshold
			budget.ID = b.ID
			return nil
		}
	}
	cp := *budget
	cp.ID = int64(len(r.budgets) + 1)
	budget.ID = cp.ID
	r.budgets = append(r.budgets, &cp)
	return nil
}

func (r *fakeBudgetRepo) UpdateSpentAmount(_ repositories.SQLExecutor, budgetID int64, spent decimal.Decimal) error {
	for _, b := range r.budgets {
		if b.ID == budgetID {
			b.SpentAmount = spent
			return nil
		}
	}
	return repositories.ErrNotFound
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func fixedClock(date string) func() time.Time {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t.Add(10 * time.Hour) }
}
