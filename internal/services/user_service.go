package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"washnet/internal/models"
	"washnet/internal/redis"
	"washnet/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SessionStore keeps login sessions keyed by bearer token.
type SessionStore interface {
	SetSession(ctx context.Context, token string, data *redis.SessionData, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (*redis.SessionData, error)
	DeleteSession(ctx context.Context, token string) error
}

type RegisterRequest struct {
	Name                 string `json:"name" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
	InvitationCode       string `json:"invitation_code" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

var registerRules = map[string]fieldRule{
	"name":                  {code: CodeNameRequired, message: "Name cannot be empty or only whitespace."},
	"email":                 {code: CodeEmailInvalid, message: "Please enter a valid email address"},
	"password":              {code: CodePasswordInvalid, message: "Password must be at least 8 characters"},
	"password_confirmation": {field: "password", code: CodePasswordMismatch, message: "Password confirmation does not match"},
	"invitation_code":       {code: CodeInvitationInvalid, message: "An invitation code is required"},
}

var loginRules = map[string]fieldRule{
	"email.required": {code: CodeEmailInvalid, message: "The email field is required."},
	"email":          {code: CodeEmailInvalid, message: "Please enter a valid email address"},
	"password":       {code: CodePasswordInvalid, message: "The password field is required."},
}

type UserService interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	Register(ctx context.Context, req RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, req LoginRequest) (*models.User, string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateInvitation(ctx context.Context, creator *models.User, email string, ttl time.Duration) (*models.Invitation, error)
	ValidateUserRole(user *models.User, requiredRole models.UserRole) error
}

type userService struct {
	userRepo   repository.UserRepository
	sessions   SessionStore
	sessionTTL time.Duration
	bcryptCost int
	now        func() time.Time
}

func NewUserService(userRepo repository.UserRepository, sessions SessionStore, sessionTTL time.Duration, bcryptCost int) UserService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		userRepo:   userRepo,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		bcryptCost: bcryptCost,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *userService) CreateUser(ctx context.Context, user *models.User, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hashedPassword)
	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.TrimSpace(user.Email)
	if user.Role == "" {
		user.Role = string(models.Employee)
	}
	user.IsActive = true

	return s.userRepo.Create(ctx, user)
}

// Register creates an employee account from a single-use invitation code and
// opens a session for it.
func (s *userService) Register(ctx context.Context, req RegisterRequest) (*models.User, string, error) {
	verr := &ValidationError{}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.InvitationCode = strings.TrimSpace(req.InvitationCode)
	if err := checkStruct(req, registerRules, verr); err != nil {
		return nil, "", err
	}
	if !verr.Empty() {
		return nil, "", verr
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		verr.Add("email", CodeEmailTaken, "Email already used")
		return nil, "", verr
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}
	if err := s.userRepo.CreateWithInvitation(ctx, user, req.InvitationCode, s.now()); err != nil {
		if errors.Is(err, models.ErrInvitationUnusable) {
			verr.Add("invitation_code", CodeInvitationInvalid, "The invitation code is invalid, expired or already used.")
			return nil, "", verr
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			verr.Add("email", CodeEmailTaken, "Email already used")
			return nil, "", verr
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.openSession(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*models.User, string, error) {
	req.Email = strings.TrimSpace(req.Email)
	verr := &ValidationError{}
	if err := checkStruct(req, loginRules, verr); err != nil {
		return nil, "", err
	}
	if !verr.Empty() {
		return nil, "", verr
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	if !user.IsActive {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.openSession(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *userService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

// Authenticate resolves a bearer token to an active user.
func (s *userService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, redis.ErrSessionNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUnauthorized
	}
	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userRepo.GetByEmail(ctx, email)
}

// CreateInvitation issues a new registration code. A zero ttl means the code
// never expires; a non-empty email restricts who may redeem it.
func (s *userService) CreateInvitation(ctx context.Context, creator *models.User, email string, ttl time.Duration) (*models.Invitation, error) {
	if err := s.ValidateUserRole(creator, models.Admin); err != nil {
		return nil, err
	}

	email = strings.TrimSpace(email)
	if err := validate.Var(email, "omitempty,email"); err != nil {
		verr := &ValidationError{}
		verr.Add("email", CodeEmailInvalid, "Please enter a valid email address")
		return nil, verr
	}

	invitation := &models.Invitation{
		Code:      strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12]),
		Email:     email,
		Role:      string(models.Employee),
		CreatedBy: creator.ID,
	}
	if ttl > 0 {
		expiresAt := s.now().Add(ttl)
		invitation.ExpiresAt = &expiresAt
	}

	if err := s.userRepo.CreateInvitation(ctx, invitation); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	return invitation, nil
}

func (s *userService) ValidateUserRole(user *models.User, requiredRole models.UserRole) error {
	if user == nil {
		return ErrUnauthorized
	}
	// Check if user has required role
	if user.Role != string(requiredRole) {
		return ErrForbidden
	}
	return nil
}

func (s *userService) openSession(ctx context.Context, user *models.User) (string, error) {
	token := uuid.NewString()
	session := &redis.SessionData{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: s.now(),
	}
	if err := s.sessions.SetSession(ctx, token, session, s.sessionTTL); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}
