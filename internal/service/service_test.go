package service

import (
	"context"
	"errors"
	"testing"

	"socks-bot/internal/domain"
	"socks-bot/internal/repository"
	"socks-bot/internal/repository/memstore"
)

// countingUserRepository records how many writes reach the store
type countingUserRepository struct {
	repository.UserRepository
	creates int
	updates int
}

func (r *countingUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.creates++
	return r.UserRepository.Create(ctx, user)
}

func (r *countingUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.updates++
	return r.UserRepository.Update(ctx, user)
}

// brokenUserRepository fails every call with a storage error
type brokenUserRepository struct {
	repository.UserRepository
}

var errStorage = errors.New("connection refused")

func (brokenUserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	return nil, errStorage
}

type nopMetrics struct {
	created   int
	completed int
	placed    int
	rejected  map[string]int
}

func newNopMetrics() *nopMetrics {
	return &nopMetrics{rejected: make(map[string]int)}
}

func (m *nopMetrics) UserCreated()                   { m.created++ }
func (m *nopMetrics) RegistrationCompleted()         { m.completed++ }
func (m *nopMetrics) OrderPlaced()                   { m.placed++ }
func (m *nopMetrics) PurchaseRejected(reason string) { m.rejected[reason]++ }

func registeredUser(t testing.TB, repo repository.UserRepository, telegramID int64, role domain.Role) *domain.User {
	user := &domain.User{
		TelegramID: telegramID,
		Username:   "buyer",
		FirstName:  "Buyer",
		Email:      "buyer@example.com",
		Phone:      "+77001234567",
		Role:       role,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func newStore() *memstore.Store {
	return memstore.New()
}
