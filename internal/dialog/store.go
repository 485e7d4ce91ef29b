// Package dialog implements the registration exchange that collects a
// user's email and phone before the shop opens to them.
package dialog

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// State is the pending step of a sender's registration
type State string

const (
	StateNone          State = ""
	StateAwaitingEmail State = "awaiting_email"
	StateAwaitingPhone State = "awaiting_phone"
)

// Store keeps one pending state per platform identity
type Store interface {
	Get(ctx context.Context, telegramID int64) (State, error)
	Set(ctx context.Context, telegramID int64, state State) error
	Clear(ctx context.Context, telegramID int64) error
}

// MemoryStore keeps states in process memory
type MemoryStore struct {
	mu     sync.RWMutex
	states map[int64]State
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[int64]State)}
}

func (s *MemoryStore) Get(ctx context.Context, telegramID int64) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[telegramID], nil
}

func (s *MemoryStore) Set(ctx context.Context, telegramID int64, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state == StateNone {
		delete(s.states, telegramID)
		return nil
	}
	s.states[telegramID] = state
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, telegramID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, telegramID)
	return nil
}

const redisKeyPrefix = "dialog:"

// RedisStore keeps states in Redis so they survive restarts and are
// shared between bot replicas. Abandoned dialogs expire after ttl.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(telegramID int64) string {
	return redisKeyPrefix + strconv.FormatInt(telegramID, 10)
}

func (s *RedisStore) Get(ctx context.Context, telegramID int64) (State, error) {
	val, err := s.client.Get(ctx, redisKey(telegramID)).Result()
	if err == redis.Nil {
		return StateNone, nil
	}
	if err != nil {
		return StateNone, fmt.Errorf("failed to read dialog state: %w", err)
	}
	return State(val), nil
}

func (s *RedisStore) Set(ctx context.Context, telegramID int64, state State) error {
	if state == StateNone {
		return s.Clear(ctx, telegramID)
	}
	if err := s.client.Set(ctx, redisKey(telegramID), string(state), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save dialog state: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, telegramID int64) error {
	if err := s.client.Del(ctx, redisKey(telegramID)).Err(); err != nil {
		return fmt.Errorf("failed to clear dialog state: %w", err)
	}
	return nil
}
