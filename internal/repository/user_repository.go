package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"socks-bot/internal/domain"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this telegram id already exists")
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, telegramID int64) error
	List(ctx context.Context) ([]*domain.User, error)
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, telegram_id, username, first_name, email, phone, role, registered_at`

func scanUser(row scanner) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.Email,
		&user.Phone,
		&user.Role,
		&user.RegisteredAt,
	)
	return user, err
}

// Create inserts a new user and fills in its generated id and registration time
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.Role == "" {
		user.Role = domain.RoleUser
	}

	query := `
		INSERT INTO users (telegram_id, username, first_name, email, phone, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, registered_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		user.TelegramID,
		user.Username,
		user.FirstName,
		user.Email,
		user.Phone,
		user.Role,
	).Scan(&user.ID, &user.RegisteredAt)

	if err != nil {
		if hasPgCode(err, pgUniqueViolation) {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByTelegramID retrieves a user by platform identity
func (r *userRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, telegramID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by telegram id: %w", err)
	}

	return user, nil
}

// Update overwrites the mutable fields of a user
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET username = $2, first_name = $3, email = $4, phone = $5, role = $6
		WHERE telegram_id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		user.TelegramID,
		user.Username,
		user.FirstName,
		user.Email,
		user.Phone,
		user.Role,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Delete removes a user together with their orders
func (r *userRepository) Delete(ctx context.Context, telegramID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE telegram_id = $1`, telegramID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// List returns every user ordered by id
func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}
