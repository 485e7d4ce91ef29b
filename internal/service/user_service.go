package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"socks-bot/internal/domain"
	"socks-bot/internal/repository"
	"socks-bot/internal/validation"

	"go.uber.org/zap"
)

// Observed is what the transport reports about a sender on each message
type Observed struct {
	TelegramID int64
	Username   string
	FirstName  string
}

// NewUser carries the fields accepted by the create_user command
type NewUser struct {
	TelegramID int64
	Username   string
	FirstName  string
	Email      string
	Phone      string
	Role       domain.Role
}

// profile mirrors the column widths of the users table
type profile struct {
	Username  string `validate:"max=255"`
	FirstName string `validate:"max=255"`
	Email     string `validate:"max=254"`
	Phone     string `validate:"max=32"`
}

// UserService defines identity resolution, profile completion and the
// user directory
type UserService interface {
	Resolve(ctx context.Context, observed Observed) (*domain.User, error)
	SetEmail(ctx context.Context, user *domain.User, email string) error
	SetPhone(ctx context.Context, user *domain.User, phone string) error
	Promote(ctx context.Context, caller *domain.User, telegramID int64, role string) (*domain.User, error)

	Create(ctx context.Context, input NewUser) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Get(ctx context.Context, telegramID int64) (*domain.User, error)
	UpdateField(ctx context.Context, telegramID int64, field, value string) (*domain.User, error)
	Delete(ctx context.Context, telegramID int64) error
}

// UserMetrics receives counts of identity events
type UserMetrics interface {
	UserCreated()
	RegistrationCompleted()
}

type userService struct {
	userRepo repository.UserRepository
	metrics  UserMetrics
	logger   *zap.Logger
}

// NewUserService creates a new instance of UserService
func NewUserService(userRepo repository.UserRepository, metrics UserMetrics, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		metrics:  metrics,
		logger:   logger,
	}
}

// ParseTelegramID parses a platform identity argument
func ParseTelegramID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, ErrInvalidTelegramID
	}
	return id, nil
}

// Resolve returns the stored user for the sender, creating it on first
// contact and refreshing username and first name when they changed.
// Nothing is written when the stored values already match.
func (s *userService) Resolve(ctx context.Context, observed Observed) (*domain.User, error) {
	user, err := s.userRepo.FindByTelegramID(ctx, observed.TelegramID)
	if errors.Is(err, repository.ErrUserNotFound) {
		user = &domain.User{
			TelegramID: observed.TelegramID,
			Username:   observed.Username,
			FirstName:  observed.FirstName,
			Role:       domain.RoleUser,
		}

		err = s.userRepo.Create(ctx, user)
		if err == nil {
			s.metrics.UserCreated()
			s.logger.Info("User created on first contact", zap.Int64("telegram_id", observed.TelegramID))
			return user, nil
		}
		if !errors.Is(err, repository.ErrUserAlreadyExists) {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		// lost a race with a concurrent first message from the same sender
		user, err = s.userRepo.FindByTelegramID(ctx, observed.TelegramID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	if user.Username == observed.Username && user.FirstName == observed.FirstName {
		return user, nil
	}

	user.Username = observed.Username
	user.FirstName = observed.FirstName
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to refresh user: %w", err)
	}

	return user, nil
}

// SetEmail stores the email verbatim; only its length is checked
func (s *userService) SetEmail(ctx context.Context, user *domain.User, email string) error {
	if err := validateProfile(profile{Email: email}); err != nil {
		return err
	}

	user.Email = email
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to save email: %w", err)
	}
	return nil
}

// SetPhone stores the phone verbatim
func (s *userService) SetPhone(ctx context.Context, user *domain.User, phone string) error {
	if err := validateProfile(profile{Phone: phone}); err != nil {
		return err
	}

	user.Phone = phone
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to save phone: %w", err)
	}
	if user.IsRegistered() {
		s.metrics.RegistrationCompleted()
	}
	return nil
}

// Promote assigns a role to the target user. Only a super admin may call it.
func (s *userService) Promote(ctx context.Context, caller *domain.User, telegramID int64, role string) (*domain.User, error) {
	if !caller.IsSuperAdmin() {
		s.logger.Warn("Role change refused",
			zap.Int64("caller", caller.TelegramID),
			zap.String("caller_role", string(caller.Role)),
		)
		return nil, ErrNotSuperAdmin
	}

	parsed, ok := domain.ParseRole(role)
	if !ok {
		return nil, ErrInvalidRole
	}

	target, err := s.Get(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	target.Role = parsed
	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.logger.Info("Role changed",
		zap.Int64("caller", caller.TelegramID),
		zap.Int64("target", telegramID),
		zap.String("role", string(parsed)),
	)

	return target, nil
}

// Create adds a user record directly. An existing record is never overwritten.
func (s *userService) Create(ctx context.Context, input NewUser) (*domain.User, error) {
	if input.Role == "" {
		input.Role = domain.RoleUser
	}
	if _, ok := domain.ParseRole(string(input.Role)); !ok {
		return nil, ErrInvalidRole
	}
	if err := validateProfile(profile{
		Username:  input.Username,
		FirstName: input.FirstName,
		Email:     input.Email,
		Phone:     input.Phone,
	}); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByTelegramID(ctx, input.TelegramID)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return existing, ErrUserExists
	}

	user := &domain.User{
		TelegramID: input.TelegramID,
		Username:   input.Username,
		FirstName:  input.FirstName,
		Email:      input.Email,
		Phone:      input.Phone,
		Role:       input.Role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.UserCreated()
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) Get(ctx context.Context, telegramID int64) (*domain.User, error) {
	user, err := s.userRepo.FindByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateField sets one allow-listed attribute of a user
func (s *userService) UpdateField(ctx context.Context, telegramID int64, field, value string) (*domain.User, error) {
	f, ok := domain.ParseUserField(field)
	if !ok {
		return nil, ErrInvalidField
	}

	var role domain.Role
	if f == domain.UserFieldRole {
		if role, ok = domain.ParseRole(value); !ok {
			return nil, ErrInvalidRole
		}
	}

	user, err := s.Get(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	switch f {
	case domain.UserFieldUsername:
		user.Username = value
	case domain.UserFieldFirstName:
		user.FirstName = value
	case domain.UserFieldEmail:
		user.Email = value
	case domain.UserFieldPhone:
		user.Phone = value
	case domain.UserFieldRole:
		user.Role = role
	}

	if err := validateProfile(profile{
		Username:  user.Username,
		FirstName: user.FirstName,
		Email:     user.Email,
		Phone:     user.Phone,
	}); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

func (s *userService) Delete(ctx context.Context, telegramID int64) error {
	if err := s.userRepo.Delete(ctx, telegramID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User deleted", zap.Int64("telegram_id", telegramID))
	return nil
}

// validateProfile maps the first field that does not fit its column to a sentinel
func validateProfile(p profile) error {
	err := validation.Struct(p)
	if err == nil {
		return nil
	}

	fields := validation.FormatErrors(err)
	if len(fields) == 0 {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	switch fields[0].Field {
	case "Email":
		return ErrEmailTooLong
	case "Phone":
		return ErrPhoneTooLong
	default:
		return ErrNameTooLong
	}
}
