package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dream_build_backend/internal/models"
	"dream_build_backend/internal/repositories"
	"dream_build_backend/pkg/utils"

	"github.com/google/uuid"
)

// --- Custom Service Errors for Activity ---
var (
	ErrActivityNotFound   = errors.New("activity not found")
	ErrActivityValidation = errors.New("activity data validation error")
	ErrActivityForbidden  = errors.New("activity belongs to another employee")
	ErrActivityNotDue     = errors.New("only past or current activities can be confirmed")
)

const (
	RangeWeek  = "week"
	RangeMonth = "month"
	RangeAll   = "all"

	allRangeDays  = 90
	maxSeriesSize = 52
)

// --- Activity DTOs ---
type CreateActivityRequest struct {
	SchoolID   int64      `json:"school_id" binding:"required"`
	EmployeeID *uuid.UUID `json:"employee_id"`
	Date       string     `json:"date" binding:"required"`
	TimeStart  string     `json:"time_start" binding:"required,hhmm"`
	TimeEnd    string     `json:"time_end" binding:"required,hhmm"`
	Status     string     `json:"status" binding:"omitempty,activity_status"`
	Notes      *string    `json:"notes"`
}

type UpdateActivityRequest struct {
	SchoolID            *int64     `json:"school_id"`
	EmployeeID          *uuid.UUID `json:"employee_id"`
	ClearEmployee       bool       `json:"clear_employee"`
	Date                *string    `json:"date"`
	TimeStart           *string    `json:"time_start" binding:"omitempty,hhmm"`
	TimeEnd             *string    `json:"time_end" binding:"omitempty,hhmm"`
	Status              *string    `json:"status" binding:"omitempty,activity_status"`
	ConfirmedByEmployee *bool      `json:"confirmed_by_employee"`
	Notes               *string    `json:"notes"`
}

// CreateSeriesRequest describes a weekly repeating batch.
// Weekday follows time.Weekday: 0 is Sunday.
type CreateSeriesRequest struct {
	SchoolID   int64      `json:"school_id" binding:"required"`
	EmployeeID *uuid.UUID `json:"employee_id"`
	StartDate  string     `json:"start_date" binding:"required"`
	Weekday    *int       `json:"weekday" binding:"required,min=0,max=6"`
	Count      int        `json:"count" binding:"required,min=1,max=52"`
	TimeStart  string     `json:"time_start" binding:"required,hhmm"`
	TimeEnd    string     `json:"time_end" binding:"required,hhmm"`
	Notes      *string    `json:"notes"`
}

// ScheduleQuery selects activities. Range presets win over DateFrom/DateTo.
type ScheduleQuery struct {
	Range      string
	DateFrom   string
	DateTo     string
	Status     string
	EmployeeID *uuid.UUID
	SchoolID   *int64
	Unassigned bool
	Page       int
	PageSize   int
}

// ScheduleResponse is a page of activities plus stats over the same selection.
type ScheduleResponse struct {
	Activities []models.Activity    `json:"activities"`
	Stats      models.ScheduleStats `json:"stats"`
	Total      int                  `json:"total"`
	DateFrom   string               `json:"date_from,omitempty"`
	DateTo     string               `json:"date_to,omitempty"`
}

// --- ActivityService Interface ---
type ActivityService interface {
	CreateActivity(req CreateActivityRequest) (*models.Activity, error)
	CreateSeries(req CreateSeriesRequest) (*models.SeriesResult, error)
	GetActivityByID(session models.Session, id int64) (*models.Activity, error)
	GetSchedule(session models.Session, query ScheduleQuery) (*ScheduleResponse, error)
	GetMonthlySummary(year int, month time.Month) ([]models.EmployeeMonthSummary, error)
	GetPendingConfirmations(employeeID uuid.UUID) ([]models.Activity, error)
	UpdateActivity(id int64, req UpdateActivityRequest) (*models.Activity, error)
	CancelActivity(id int64) (*models.Activity, error)
	ConfirmActivity(session models.Session, id int64) (*models.Activity, error)
	DeleteActivity(id int64) error
	PurgeActivitiesBefore(date string) (int64, error)
}

type activityService struct {
	activityRepo repositories.ActivityRepository
	schoolRepo   repositories.SchoolRepository
	userRepo     repositories.UserRepository
	db           *sql.DB
	now          func() time.Time
}

// NewActivityService creates a new instance of ActivityService.
func NewActivityService(activityRepo repositories.ActivityRepository, schoolRepo repositories.SchoolRepository, userRepo repositories.UserRepository, db *sql.DB) ActivityService {
	return &activityService{
		activityRepo: activityRepo,
		schoolRepo:   schoolRepo,
		userRepo:     userRepo,
		db:           db,
		now:          time.Now,
	}
}

func parseClock(s string) (time.Time, error) {
	return time.Parse("15:04", strings.TrimSpace(s))
}

func (s *activityService) validate(a *models.Activity) error {
	if _, err := utils.ParseDate(a.Date); err != nil {
		return fmt.Errorf("%w: %v", ErrActivityValidation, err)
	}
	start, err := parseClock(a.TimeStart)
	if err != nil {
		return fmt.Errorf("%w: time_start must be HH:MM", ErrActivityValidation)
	}
	end, err := parseClock(a.TimeEnd)
	if err != nil {
		return fmt.Errorf("%w: time_end must be HH:MM", ErrActivityValidation)
	}
	if !end.After(start) {
		return fmt.Errorf("%w: time_end must be after time_start", ErrActivityValidation)
	}
	if !models.IsValidActivityStatus(a.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrActivityValidation, a.Status)
	}
	if _, err := s.schoolRepo.GetSchoolByID(a.SchoolID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSchoolNotFound
		}
		return fmt.Errorf("failed to check school: %w", err)
	}
	if a.EmployeeID != nil {
		if _, err := s.userRepo.GetUserByID(*a.EmployeeID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrEmployeeNotFound
			}
			return fmt.Errorf("failed to check employee: %w", err)
		}
	}
	return nil
}

func (s *activityService) CreateActivity(req CreateActivityRequest) (*models.Activity, error) {
	activity := &models.Activity{
		SchoolID:   req.SchoolID,
		EmployeeID: req.EmployeeID,
		Date:       strings.TrimSpace(req.Date),
		TimeStart:  strings.TrimSpace(req.TimeStart),
		TimeEnd:    strings.TrimSpace(req.TimeEnd),
		Status:     req.Status,
		Notes:      req.Notes,
	}
	if activity.Status == "" {
		activity.Status = models.ActivityStatusPlanned
	}
	if err := s.validate(activity); err != nil {
		return nil, err
	}
	id, err := s.activityRepo.CreateActivity(s.db, activity)
	if err != nil {
		return nil, fmt.Errorf("failed to create activity in repository: %w", err)
	}
	return s.activityRepo.GetActivityByID(id)
}

// CreateSeries inserts one planned activity per generated date. Each insert stands alone:
// failures are collected and the remaining dates are still attempted.
func (s *activityService) CreateSeries(req CreateSeriesRequest) (*models.SeriesResult, error) {
	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrActivityValidation, err)
	}
	if req.Weekday == nil || *req.Weekday < 0 || *req.Weekday > 6 {
		return nil, fmt.Errorf("%w: weekday must be 0 (Sunday) to 6 (Saturday)", ErrActivityValidation)
	}
	if req.Count < 1 || req.Count > maxSeriesSize {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", ErrActivityValidation, maxSeriesSize)
	}
	notes := req.Notes
	if notes == nil || utils.IsEmpty(*notes) {
		n := fmt.Sprintf("series of %d sessions", req.Count)
		notes = &n
	}

	template := models.Activity{
		SchoolID:   req.SchoolID,
		EmployeeID: req.EmployeeID,
		Date:       utils.FormatDate(start),
		TimeStart:  strings.TrimSpace(req.TimeStart),
		TimeEnd:    strings.TrimSpace(req.TimeEnd),
		Status:     models.ActivityStatusPlanned,
		Notes:      notes,
	}
	if err := s.validate(&template); err != nil {
		return nil, err
	}

	dates := GenerateSeriesDates(start, time.Weekday(*req.Weekday), req.Count)
	result := &models.SeriesResult{Requested: len(dates), Created: []models.Activity{}, Errors: []string{}}
	for _, d := range dates {
		activity := template
		activity.Date = utils.FormatDate(d)
		id, err := s.activityRepo.CreateActivity(s.db, &activity)
		if err != nil {
			utils.LogError(err, "CreateSeries: insert failed", map[string]interface{}{"date": activity.Date, "school_id": activity.SchoolID})
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", activity.Date, err))
			continue
		}
		activity.ID = id
		result.Created = append(result.Created, activity)
	}
	utils.LogInfo("Activity series created", map[string]interface{}{"requested": result.Requested, "created": len(result.Created)})
	return result, nil
}

func (s *activityService) getActivity(id int64) (*models.Activity, error) {
	activity, err := s.activityRepo.GetActivityByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to get activity by ID: %w", err)
	}
	return activity, nil
}

// GetActivityByID hides other employees' activities from employees.
func (s *activityService) GetActivityByID(session models.Session, id int64) (*models.Activity, error) {
	activity, err := s.getActivity(id)
	if err != nil {
		return nil, err
	}
	if !session.User.IsManager() && !activity.AssignedTo(session.User.ID) {
		return nil, ErrActivityNotFound
	}
	return activity, nil
}

// resolveRange turns a preset or explicit bounds into dates.
func (s *activityService) resolveRange(q ScheduleQuery) (string, string, error) {
	today := s.now()
	switch q.Range {
	case RangeWeek:
		// Weeks run Monday to Sunday.
		start := today.AddDate(0, 0, -(int(today.Weekday())+6)%7)
		return utils.FormatDate(start), utils.FormatDate(start.AddDate(0, 0, 6)), nil
	case RangeMonth:
		return utils.FormatDate(utils.StartOfMonth(today)), utils.FormatDate(utils.EndOfMonth(today)), nil
	case RangeAll:
		return utils.FormatDate(today.AddDate(0, 0, -allRangeDays)), utils.FormatDate(today.AddDate(0, 0, allRangeDays)), nil
	case "":
	default:
		return "", "", fmt.Errorf("%w: range must be week, month or all", ErrActivityValidation)
	}
	if q.DateFrom != "" && q.DateTo != "" {
		return parseRange(q.DateFrom, q.DateTo)
	}
	for _, d := range []string{q.DateFrom, q.DateTo} {
		if d != "" {
			if _, err := utils.ParseDate(d); err != nil {
				return "", "", ErrInvalidDateRange
			}
		}
	}
	return q.DateFrom, q.DateTo, nil
}

// GetSchedule lists activities; employees only ever see their own.
func (s *activityService) GetSchedule(session models.Session, q ScheduleQuery) (*ScheduleResponse, error) {
	from, to, err := s.resolveRange(q)
	if err != nil {
		return nil, err
	}
	filter := models.ActivityFilter{
		SchoolID:   q.SchoolID,
		EmployeeID: q.EmployeeID,
		Unassigned: q.Unassigned,
	}
	if from != "" {
		filter.DateFrom = &from
	}
	if to != "" {
		filter.DateTo = &to
	}
	if q.Status != "" {
		if !models.IsValidActivityStatus(q.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrActivityValidation, q.Status)
		}
		filter.Statuses = []string{q.Status}
	}
	if !session.User.IsManager() {
		own := session.User.ID
		filter.EmployeeID = &own
		filter.Unassigned = false
	}

	all, total, err := s.activityRepo.GetActivities(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	resp := &ScheduleResponse{Stats: SummarizeSchedule(all), Total: total, DateFrom: from, DateTo: to}
	resp.Activities = paginateActivities(all, q.Page, q.PageSize)
	return resp, nil
}

func paginateActivities(all []models.Activity, page, pageSize int) []models.Activity {
	if pageSize <= 0 {
		return all
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(all) {
		return []models.Activity{}
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

func (s *activityService) GetMonthlySummary(year int, month time.Month) ([]models.EmployeeMonthSummary, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month must be 1-12", ErrActivityValidation)
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	from := utils.FormatDate(first)
	to := utils.FormatDate(utils.EndOfMonth(first))
	activities, _, err := s.activityRepo.GetActivities(models.ActivityFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		return nil, fmt.Errorf("failed to get month activities: %w", err)
	}
	return SummarizeByEmployee(activities), nil
}

// GetPendingConfirmations lists an employee's due activities not yet confirmed.
func (s *activityService) GetPendingConfirmations(employeeID uuid.UUID) ([]models.Activity, error) {
	today := utils.FormatDate(s.now())
	activities, _, err := s.activityRepo.GetActivities(models.ActivityFilter{
		DateTo:     &today,
		EmployeeID: &employeeID,
		Statuses:   []string{models.ActivityStatusPlanned, models.ActivityStatusConfirmed},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get pending confirmations: %w", err)
	}
	pending := []models.Activity{}
	for _, a := range activities {
		if !a.ConfirmedByEmployee {
			pending = append(pending, a)
		}
	}
	return pending, nil
}

func (s *activityService) UpdateActivity(id int64, req UpdateActivityRequest) (*models.Activity, error) {
	activity, err := s.getActivity(id)
	if err != nil {
		return nil, err
	}
	if req.SchoolID != nil {
		activity.SchoolID = *req.SchoolID
	}
	if req.ClearEmployee {
		activity.EmployeeID = nil
	} else if req.EmployeeID != nil {
		activity.EmployeeID = req.EmployeeID
	}
	if req.Date != nil {
		activity.Date = strings.TrimSpace(*req.Date)
	}
	if req.TimeStart != nil {
		activity.TimeStart = strings.TrimSpace(*req.TimeStart)
	}
	if req.TimeEnd != nil {
		activity.TimeEnd = strings.TrimSpace(*req.TimeEnd)
	}
	if req.Status != nil {
		activity.Status = *req.Status
	}
	if req.ConfirmedByEmployee != nil {
		activity.ConfirmedByEmployee = *req.ConfirmedByEmployee
	}
	if req.Notes != nil {
		activity.Notes = req.Notes
	}
	if err := s.validate(activity); err != nil {
		return nil, err
	}
	if err := s.activityRepo.UpdateActivity(s.db, activity); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}
	return s.activityRepo.GetActivityByID(id)
}

func (s *activityService) CancelActivity(id int64) (*models.Activity, error) {
	status := models.ActivityStatusCancelled
	return s.UpdateActivity(id, UpdateActivityRequest{Status: &status})
}

// ConfirmActivity lets an employee mark an own, due activity as completed.
func (s *activityService) ConfirmActivity(session models.Session, id int64) (*models.Activity, error) {
	activity, err := s.getActivity(id)
	if err != nil {
		return nil, err
	}
	if !activity.AssignedTo(session.User.ID) {
		return nil, ErrActivityForbidden
	}
	if activity.Status == models.ActivityStatusCancelled {
		return nil, fmt.Errorf("%w: cancelled activities cannot be confirmed", ErrActivityValidation)
	}
	if activity.Date > utils.FormatDate(s.now()) {
		return nil, ErrActivityNotDue
	}
	if err := s.activityRepo.ConfirmActivity(s.db, id, session.User.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to confirm activity: %w", err)
	}
	return s.activityRepo.GetActivityByID(id)
}

func (s *activityService) DeleteActivity(id int64) error {
	if err := s.activityRepo.DeleteActivity(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrActivityNotFound
		}
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	return nil
}

func (s *activityService) PurgeActivitiesBefore(date string) (int64, error) {
	d, err := utils.ParseDate(date)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrActivityValidation, err)
	}
	n, err := s.activityRepo.DeleteActivitiesBefore(s.db, utils.FormatDate(d))
	if err != nil {
		return 0, fmt.Errorf("failed to purge activities: %w", err)
	}
	utils.LogInfo("Activities purged", map[string]interface{}{"before": utils.FormatDate(d), "deleted": n})
	return n, nil
}
