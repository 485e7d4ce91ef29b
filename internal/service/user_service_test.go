package service

import (
	"context"
	"strings"
	"testing"

	"socks-bot/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProperty_ResolveIsIdempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("resolving the same sender twice writes once and returns the same record", prop.ForAll(
		func(telegramID int64, username, firstName string) bool {
			repo := &countingUserRepository{UserRepository: newStore().Users()}
			svc := NewUserService(repo, newNopMetrics(), zap.NewNop())
			ctx := context.Background()
			observed := Observed{TelegramID: telegramID, Username: username, FirstName: firstName}

			first, err := svc.Resolve(ctx, observed)
			if err != nil {
				return false
			}
			second, err := svc.Resolve(ctx, observed)
			if err != nil {
				return false
			}

			return first.ID == second.ID &&
				second.Role == domain.RoleUser &&
				repo.creates == 1 &&
				repo.updates == 0
		},
		gen.Int64Range(1, 1<<40),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ResolveRefreshesChangedNames(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("changed username and first name are stored", prop.ForAll(
		func(oldName, newName string) bool {
			store := newStore()
			svc := NewUserService(store.Users(), newNopMetrics(), zap.NewNop())
			ctx := context.Background()

			if _, err := svc.Resolve(ctx, Observed{TelegramID: 7, Username: oldName, FirstName: oldName}); err != nil {
				return false
			}
			user, err := svc.Resolve(ctx, Observed{TelegramID: 7, Username: newName, FirstName: newName + "x"})
			if err != nil {
				return false
			}

			stored, err := store.Users().FindByTelegramID(ctx, 7)
			if err != nil {
				return false
			}
			return user.Username == newName && stored.Username == newName && stored.FirstName == newName+"x"
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestResolve_PropagatesStorageErrors(t *testing.T) {
	svc := NewUserService(brokenUserRepository{}, newNopMetrics(), zap.NewNop())

	_, err := svc.Resolve(context.Background(), Observed{TelegramID: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, errStorage)
	assert.False(t, IsUserFacing(err))
}

func TestSetPhone_CountsCompletedRegistration(t *testing.T) {
	store := newStore()
	metrics := newNopMetrics()
	svc := NewUserService(store.Users(), metrics, zap.NewNop())
	ctx := context.Background()

	user, err := svc.Resolve(ctx, Observed{TelegramID: 42, Username: "u", FirstName: "U"})
	require.NoError(t, err)
	assert.False(t, user.IsRegistered())

	require.NoError(t, svc.SetEmail(ctx, user, "not-an-email"))
	require.NoError(t, svc.SetPhone(ctx, user, "12345"))

	stored, err := store.Users().FindByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "not-an-email", stored.Email)
	assert.Equal(t, "12345", stored.Phone)
	assert.True(t, stored.IsRegistered())
	assert.Equal(t, 1, metrics.created)
	assert.Equal(t, 1, metrics.completed)
}

func TestProperty_OnlySuperAdminPromotes(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("callers below super admin never change roles", prop.ForAll(
		func(callerRole domain.Role, targetRole domain.Role) bool {
			store := newStore()
			svc := NewUserService(store.Users(), newNopMetrics(), zap.NewNop())
			ctx := context.Background()

			caller := registeredUser(t, store.Users(), 1, callerRole)
			registeredUser(t, store.Users(), 2, domain.RoleUser)

			_, err := svc.Promote(ctx, caller, 2, string(targetRole))
			target, findErr := store.Users().FindByTelegramID(ctx, 2)
			if findErr != nil {
				return false
			}

			if callerRole == domain.RoleSuperAdmin {
				return err == nil && target.Role == targetRole
			}
			return err == ErrNotSuperAdmin && target.Role == domain.RoleUser
		},
		gen.OneConstOf(domain.RoleUser, domain.RoleAdmin, domain.RoleSuperAdmin),
		gen.OneConstOf(domain.RoleUser, domain.RoleAdmin, domain.RoleSuperAdmin),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestPromote_Errors(t *testing.T) {
	store := newStore()
	svc := NewUserService(store.Users(), newNopMetrics(), zap.NewNop())
	ctx := context.Background()
	boss := registeredUser(t, store.Users(), 1, domain.RoleSuperAdmin)

	_, err := svc.Promote(ctx, boss, 2, "ADMIN")
	assert.ErrorIs(t, err, ErrUserNotFound)

	registeredUser(t, store.Users(), 2, domain.RoleUser)
	_, err = svc.Promote(ctx, boss, 2, "OWNER")
	assert.ErrorIs(t, err, ErrInvalidRole)
	assert.ErrorIs(t, err, ErrValidation)

	target, err := svc.Promote(ctx, boss, 2, "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, target.Role)
}

func TestCreate_NeverOverwrites(t *testing.T) {
	store := newStore()
	svc := NewUserService(store.Users(), newNopMetrics(), zap.NewNop())
	ctx := context.Background()

	created, err := svc.Create(ctx, NewUser{TelegramID: 10, Username: "a", FirstName: "A"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, created.Role)

	existing, err := svc.Create(ctx, NewUser{TelegramID: 10, Username: "b", FirstName: "B", Role: domain.RoleAdmin})
	assert.ErrorIs(t, err, ErrUserExists)
	require.NotNil(t, existing)
	assert.Equal(t, created.ID, existing.ID)
	assert.Equal(t, "a", existing.Username)

	_, err = svc.Create(ctx, NewUser{TelegramID: 11, Role: "ROOT"})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUpdateField(t *testing.T) {
	store := newStore()
	svc := NewUserService(store.Users(), newNopMetrics(), zap.NewNop())
	ctx := context.Background()
	registeredUser(t, store.Users(), 5, domain.RoleUser)

	user, err := svc.UpdateField(ctx, 5, "first_name", "Иван Петрович")
	require.NoError(t, err)
	assert.Equal(t, "Иван Петрович", user.FirstName)

	user, err = svc.UpdateField(ctx, 5, "role", "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)

	_, err = svc.UpdateField(ctx, 5, "role", "GOD")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.UpdateField(ctx, 5, "registered_at", "now")
	assert.ErrorIs(t, err, ErrInvalidField)

	_, err = svc.UpdateField(ctx, 6, "email", "x@y")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestProfileLengthLimits(t *testing.T) {
	store := newStore()
	svc := NewUserService(store.Users(), newNopMetrics(), zap.NewNop())
	ctx := context.Background()

	user, err := svc.Resolve(ctx, Observed{TelegramID: 42, Username: "u", FirstName: "U"})
	require.NoError(t, err)

	err = svc.SetEmail(ctx, user, strings.Repeat("e", 255))
	assert.ErrorIs(t, err, ErrEmailTooLong)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, user.Email, "rejected email is not applied")

	err = svc.SetPhone(ctx, user, strings.Repeat("7", 33))
	assert.ErrorIs(t, err, ErrPhoneTooLong)
	assert.Empty(t, user.Phone)

	// limits count characters, not bytes
	require.NoError(t, svc.SetEmail(ctx, user, strings.Repeat("ж", 254)))
	require.NoError(t, svc.SetPhone(ctx, user, strings.Repeat("7", 32)))

	_, err = svc.UpdateField(ctx, 42, "email", strings.Repeat("e", 300))
	assert.ErrorIs(t, err, ErrEmailTooLong)

	_, err = svc.UpdateField(ctx, 42, "username", strings.Repeat("u", 256))
	assert.ErrorIs(t, err, ErrNameTooLong)

	stored, err := store.Users().FindByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "u", stored.Username)
	assert.Equal(t, strings.Repeat("ж", 254), stored.Email)

	_, err = svc.Create(ctx, NewUser{TelegramID: 43, FirstName: strings.Repeat("f", 256)})
	assert.ErrorIs(t, err, ErrNameTooLong)
	_, err = svc.Create(ctx, NewUser{TelegramID: 43, Phone: strings.Repeat("7", 33)})
	assert.ErrorIs(t, err, ErrPhoneTooLong)
}

func TestDelete(t *testing.T) {
	store := newStore()
	svc := NewUserService(store.Users(), newNopMetrics(), zap.NewNop())
	ctx := context.Background()
	registeredUser(t, store.Users(), 5, domain.RoleUser)

	require.NoError(t, svc.Delete(ctx, 5))
	assert.ErrorIs(t, svc.Delete(ctx, 5), ErrUserNotFound)

	_, err := svc.Get(ctx, 5)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestParseTelegramID(t *testing.T) {
	id, err := ParseTelegramID(" 123456789 ")
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), id)

	_, err = ParseTelegramID("abc")
	assert.ErrorIs(t, err, ErrInvalidTelegramID)
}
