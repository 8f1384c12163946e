package services

import (
	"errors"
	"testing"
	"time"

	"dream_build_backend/internal/models"
	"dream_build_backend/internal/repositories"
	"dream_build_backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func newPasswordAuthFixture(t *testing.T) (AuthService, *fakeUserRepo, *fakeTokenRepo) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	hash := string(hashed)
	users := &fakeUserRepo{users: []*models.User{
		{ID: uuid.New(), Email: "manager@example.com", FullName: "Maya", Role: models.RoleManager, Status: models.UserStatusActive, PasswordHash: &hash},
		{ID: uuid.New(), Email: "gone@example.com", FullName: "Gil", Role: models.RoleEmployee, Status: models.UserStatusInactive, PasswordHash: &hash},
	}}
	tokens := &fakeTokenRepo{}
	svc := NewAuthService(NewPasswordAuthenticator(users), users, tokens, utils.NewTokenManager("test-secret", time.Hour), nil)
	return svc, users, tokens
}

func TestPasswordLoginIssuesTokenForSession(t *testing.T) {
	svc, users, _ := newPasswordAuthFixture(t)

	resp, err := svc.LoginUser(LoginRequest{Email: "manager@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if resp.AuthMode != AuthModePassword || resp.User.PasswordHash != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}

	session, claims, err := svc.ResolveSession(resp.AccessToken)
	if err != nil {
		t.Fatalf("ResolveSession: %v", err)
	}
	if !session.Authenticated || session.User.ID != users.users[0].ID || !session.User.IsManager() {
		t.Fatalf("session = %+v", session)
	}
	if claims.ID == "" {
		t.Fatalf("expected token id")
	}
}

func TestPasswordLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newPasswordAuthFixture(t)
	tests := []LoginRequest{
		{Email: "manager@example.com", Password: "wrong-pass"},
		{Email: "nobody@example.com", Password: "secret123"},
		{Email: "gone@example.com", Password: "secret123"},
		{Email: "", Password: ""},
	}
	for _, req := range tests {
		if _, err := svc.LoginUser(req); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("login %q: err = %v, want ErrInvalidCredentials", req.Email, err)
		}
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, _ := newPasswordAuthFixture(t)
	resp, err := svc.LoginUser(LoginRequest{Email: "manager@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	_, claims, err := svc.ResolveSession(resp.AccessToken)
	if err != nil {
		t.Fatalf("ResolveSession: %v", err)
	}
	if err := svc.LogoutUser(claims.ID, claims.ExpiresAt.Time); err != nil {
		t.Fatalf("LogoutUser: %v", err)
	}
	session, _, err := svc.ResolveSession(resp.AccessToken)
	if !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("err = %v, want ErrTokenRevoked", err)
	}
	if session.Authenticated {
		t.Fatalf("revoked token must give an anonymous session")
	}
}

func TestRegisterUserHashesPassword(t *testing.T) {
	svc, users, _ := newPasswordAuthFixture(t)
	user, err := svc.RegisterUser(RegisterUserRequest{
		Email:           "New@Example.com",
		Password:        "hunter22",
		PasswordConfirm: "hunter22",
		FullName:        " Noa ",
	})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if user.Role != models.RoleEmployee || user.Email != "new@example.com" || user.FullName != "Noa" {
		t.Fatalf("user = %+v", user)
	}
	stored, err := users.GetUserByEmail("new@example.com")
	if err != nil {
		t.Fatalf("stored user: %v", err)
	}
	if stored.PasswordHash == nil || bcrypt.CompareHashAndPassword([]byte(*stored.PasswordHash), []byte("hunter22")) != nil {
		t.Fatalf("password not hashed with bcrypt")
	}

	_, err = svc.RegisterUser(RegisterUserRequest{Email: "new@example.com", Password: "hunter22", PasswordConfirm: "hunter22", FullName: "Noa"})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("err = %v, want ErrEmailExists", err)
	}
}

func TestDevAuthenticatorIsDeterministic(t *testing.T) {
	users := &fakeUserRepo{}
	auth := NewDevAuthenticator(users, nil)
	first, err := auth.Authenticate(LoginRequest{FullName: "Dana", Email: "Dana@Example.com", Role: models.RoleManager})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	second, err := auth.Authenticate(LoginRequest{FullName: "Dana L", Email: "dana@example.com", Role: models.RoleManager})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("same email should keep one identity")
	}
	if len(users.users) != 1 || users.users[0].ID != first.ID || users.users[0].Email != "dana@example.com" {
		t.Fatalf("stored users = %+v", users.users)
	}
	if _, err := auth.Authenticate(LoginRequest{FullName: "Dana", Role: "owner"}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("err = %v, want ErrInvalidRole", err)
	}
	if _, err := auth.Authenticate(LoginRequest{Role: models.RoleEmployee}); !errors.Is(err, ErrUserValidation) {
		t.Fatalf("err = %v, want ErrUserValidation", err)
	}
}

func TestDevAuthenticatorReusesRegisteredEmail(t *testing.T) {
	existing := &models.User{ID: uuid.New(), Email: "noa@example.com", FullName: "Noa", Role: models.RoleEmployee, Status: models.UserStatusActive}
	users := &fakeUserRepo{users: []*models.User{existing}}
	user, err := NewDevAuthenticator(users, nil).Authenticate(LoginRequest{FullName: "Noa", Email: "noa@example.com"})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.ID != existing.ID || len(users.users) != 1 {
		t.Fatalf("user = %+v, stored = %d", user, len(users.users))
	}
}

func TestDevModeClosesRegistration(t *testing.T) {
	users := &fakeUserRepo{}
	svc := NewAuthService(NewDevAuthenticator(users, nil), users, &fakeTokenRepo{}, utils.NewTokenManager("s", time.Hour), nil)
	_, err := svc.RegisterUser(RegisterUserRequest{Email: "a@b.co", Password: "123456", PasswordConfirm: "123456", FullName: "A"})
	if !errors.Is(err, ErrRegistrationClosed) {
		t.Fatalf("err = %v, want ErrRegistrationClosed", err)
	}
	resp, err := svc.LoginUser(LoginRequest{FullName: "A", Role: models.RoleEmployee})
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if resp.AuthMode != AuthModeDev || resp.User.Role != models.RoleEmployee {
		t.Fatalf("resp = %+v", resp)
	}
}

// creatorCheckingRecordRepo rejects records whose creator is not a stored user,
// like the created_by foreign key does.
type creatorCheckingRecordRepo struct {
	*fakeRecordRepo
	users *fakeUserRepo
}

func (r *creatorCheckingRecordRepo) CreateRecord(executor repositories.SQLExecutor, record *models.FinancialRecord) (int64, error) {
	if record.CreatedBy != nil {
		if _, err := r.users.GetUserByID(*record.CreatedBy); err != nil {
			return 0, repositories.ErrForeignKey
		}
	}
	return r.fakeRecordRepo.CreateRecord(executor, record)
}

func TestDevSessionCanCreateRecords(t *testing.T) {
	users := &fakeUserRepo{}
	svc := NewAuthService(NewDevAuthenticator(users, nil), users, &fakeTokenRepo{}, utils.NewTokenManager("s", time.Hour), nil)
	resp, err := svc.LoginUser(LoginRequest{FullName: "Maya", Email: "maya@example.com", Role: models.RoleManager})
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	session, _, err := svc.ResolveSession(resp.AccessToken)
	if err != nil {
		t.Fatalf("ResolveSession: %v", err)
	}

	records := &creatorCheckingRecordRepo{fakeRecordRepo: &fakeRecordRepo{}, users: users}
	finance := NewFinanceService(&fakeActivityRepo{}, records, nil)
	creator := session.User.ID
	if _, err := finance.CreateRecord(&creator, CreateRecordRequest{Type: models.RecordTypeExpense, Amount: decimal.NewFromInt(250), Date: "2024-03-04"}); err != nil {
		t.Fatalf("CreateRecord by dev user: %v", err)
	}
	stranger := uuid.New()
	if _, err := finance.CreateRecord(&stranger, CreateRecordRequest{Type: models.RecordTypeExpense, Amount: decimal.NewFromInt(250), Date: "2024-03-04"}); !errors.Is(err, ErrRecordValidation) {
		t.Fatalf("unknown creator: err = %v", err)
	}
}

func TestDeactivatedUserLosesSession(t *testing.T) {
	svc, users, _ := newPasswordAuthFixture(t)
	resp, err := svc.LoginUser(LoginRequest{Email: "manager@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if err := users.SetUserStatus(nil, users.users[0].ID, models.UserStatusInactive); err != nil {
		t.Fatalf("SetUserStatus: %v", err)
	}
	session, _, err := svc.ResolveSession(resp.AccessToken)
	if !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("err = %v, want ErrAccountInactive", err)
	}
	if session.Authenticated {
		t.Fatalf("inactive account must give an anonymous session")
	}

	users.users = users.users[1:]
	if _, _, err := svc.ResolveSession(resp.AccessToken); !errors.Is(err, utils.ErrInvalidToken) {
		t.Fatalf("deleted user: err = %v, want ErrInvalidToken", err)
	}
}
