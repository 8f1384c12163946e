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
	"golang.org/x/crypto/bcrypt"
)

// --- Custom Service Errors ---
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidRole        = errors.New("role must be manager or employee")
	ErrUserValidation     = errors.New("user data validation error")
	ErrTokenGeneration    = errors.New("failed to generate token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrRegistrationClosed = errors.New("registration is not available in dev login mode")
	ErrAccountInactive    = errors.New("account is inactive")
)

// Authentication strategies.
const (
	AuthModePassword = "password"
	AuthModeDev      = "dev"
)

// devNamespace seeds deterministic ids for dev identities.
var devNamespace = uuid.MustParse("6f1c2a3e-4b5d-4e6f-8a7b-9c0d1e2f3a4b")

// --- DTOs ---

// LoginRequest carries the fields of both strategies.
// Password login uses Email and Password; dev login uses FullName, Email and Role.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// RegisterUserRequest DTO
type RegisterUserRequest struct {
	Email           string  `json:"email" binding:"required,email"`
	Password        string  `json:"password" binding:"required,min=6"`
	PasswordConfirm string  `json:"password_confirm" binding:"required,eqfield=Password"`
	FullName        string  `json:"full_name" binding:"required"`
	Phone           *string `json:"phone"`
	Role            string  `json:"role" binding:"omitempty,user_role"`
}

// AuthResponse DTO
type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	AuthMode    string       `json:"auth_mode"`
}

// Authenticator turns login input into a user. Implementations must not issue tokens.
type Authenticator interface {
	Name() string
	Authenticate(req LoginRequest) (*models.User, error)
}

type passwordAuthenticator struct {
	userRepo repositories.UserRepository
}

// NewPasswordAuthenticator checks bcrypt hashes stored on users.
func NewPasswordAuthenticator(userRepo repositories.UserRepository) Authenticator {
	return &passwordAuthenticator{userRepo: userRepo}
}

func (a *passwordAuthenticator) Name() string { return AuthModePassword }

func (a *passwordAuthenticator) Authenticate(req LoginRequest) (*models.User, error) {
	if utils.IsEmpty(req.Email) || req.Password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := a.userRepo.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login attempt failed: %w", err)
	}
	if user.Status != models.UserStatusActive || user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

type devAuthenticator struct {
	userRepo repositories.UserRepository
	db       *sql.DB
}

// NewDevAuthenticator accepts name, email and role without any credential check.
// The identity is stored in users on first login so audit columns can reference it.
// Only wired when AUTH_DEV_MODE is enabled.
func NewDevAuthenticator(userRepo repositories.UserRepository, db *sql.DB) Authenticator {
	return &devAuthenticator{userRepo: userRepo, db: db}
}

func (a *devAuthenticator) Name() string { return AuthModeDev }

func (a *devAuthenticator) Authenticate(req LoginRequest) (*models.User, error) {
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrUserValidation)
	}
	role := req.Role
	if role == "" {
		role = models.RoleEmployee
	}
	if !models.IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	seed := email
	if seed == "" {
		seed = fullName + "|" + role
	}
	id := uuid.NewSHA1(devNamespace, []byte(seed))

	user, err := a.userRepo.GetUserByID(id)
	if err == nil {
		return activeUser(user)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("dev login failed: %w", err)
	}

	if email == "" {
		email = "dev-" + id.String() + "@dev.local"
	} else if existing, err := a.userRepo.GetUserByEmail(email); err == nil {
		return activeUser(existing)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("dev login failed: %w", err)
	}

	user = &models.User{
		ID:       id,
		Email:    email,
		FullName: fullName,
		Role:     role,
		Status:   models.UserStatusActive,
	}
	if err := a.userRepo.CreateUser(a.db, user); err != nil {
		return nil, fmt.Errorf("dev login failed to store user: %w", err)
	}
	utils.LogInfo("Dev user created", map[string]interface{}{"user_id": id.String(), "role": role})
	return user, nil
}

func activeUser(user *models.User) (*models.User, error) {
	if user.Status != models.UserStatusActive {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// --- AuthService Interface ---
type AuthService interface {
	RegisterUser(req RegisterUserRequest) (*models.User, error)
	LoginUser(req LoginRequest) (*AuthResponse, error)
	LogoutUser(tokenID string, expiresAt time.Time) error
	ResolveSession(token string) (models.Session, *utils.Claims, error)
	AuthMode() string
}

type authService struct {
	authenticator Authenticator
	userRepo      repositories.UserRepository
	tokenRepo     repositories.TokenRepository
	tokens        *utils.TokenManager
	db            *sql.DB
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(authenticator Authenticator, userRepo repositories.UserRepository, tokenRepo repositories.TokenRepository, tokens *utils.TokenManager, db *sql.DB) AuthService {
	return &authService{
		authenticator: authenticator,
		userRepo:      userRepo,
		tokenRepo:     tokenRepo,
		tokens:        tokens,
		db:            db,
	}
}

func (s *authService) AuthMode() string {
	return s.authenticator.Name()
}

// RegisterUser creates an account with a bcrypt password.
func (s *authService) RegisterUser(req RegisterUserRequest) (*models.User, error) {
	if s.authenticator.Name() == AuthModeDev {
		return nil, ErrRegistrationClosed
	}
	if !utils.IsValidEmail(req.Email) {
		return nil, fmt.Errorf("%w: email format is invalid", ErrUserValidation)
	}
	if !utils.IsValidPasswordLength(req.Password, 6) {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrUserValidation)
	}
	if req.Password != req.PasswordConfirm {
		return nil, fmt.Errorf("%w: passwords do not match", ErrUserValidation)
	}
	role := req.Role
	if role == "" {
		role = models.RoleEmployee
	}
	if !models.IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hash := string(hashed)

	user := &models.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        req.Phone,
		Role:         role,
		Status:       models.UserStatusActive,
		PasswordHash: &hash,
	}
	if err := s.userRepo.CreateUser(s.db, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	user.PasswordHash = nil
	return user, nil
}

// LoginUser authenticates with the configured strategy and issues a token.
func (s *authService) LoginUser(req LoginRequest) (*AuthResponse, error) {
	user, err := s.authenticator.Authenticate(req)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = nil

	token, claims, err := s.tokens.GenerateAccessToken(user.ID.String(), user.Email, user.FullName, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	utils.LogInfo("User logged in", map[string]interface{}{"user_id": user.ID.String(), "role": user.Role, "auth_mode": s.authenticator.Name()})
	return &AuthResponse{
		User:        user,
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt.Time,
		AuthMode:    s.authenticator.Name(),
	}, nil
}

// LogoutUser revokes the token until it would have expired anyway.
func (s *authService) LogoutUser(tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return nil
	}
	if err := s.tokenRepo.RevokeToken(s.db, tokenID, expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// ResolveSession validates a bearer token and loads its user. Revoked tokens and
// deactivated accounts give an anonymous session.
func (s *authService) ResolveSession(token string) (models.Session, *utils.Claims, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return models.AnonymousSession(), nil, err
	}
	revoked, err := s.tokenRepo.IsRevoked(claims.ID)
	if err != nil {
		return models.AnonymousSession(), nil, err
	}
	if revoked {
		return models.AnonymousSession(), nil, ErrTokenRevoked
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return models.AnonymousSession(), nil, fmt.Errorf("%w: bad subject", utils.ErrInvalidToken)
	}
	user, err := s.userRepo.GetUserByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.AnonymousSession(), nil, fmt.Errorf("%w: unknown subject", utils.ErrInvalidToken)
		}
		return models.AnonymousSession(), nil, err
	}
	if user.Status != models.UserStatusActive {
		return models.AnonymousSession(), nil, ErrAccountInactive
	}
	user.PasswordHash = nil
	return models.NewSession(user), claims, nil
}
