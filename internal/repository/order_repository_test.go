package repository

import (
	"context"
	"sync"
	"testing"

	"socks-bot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRepository_PlaceOrderDecrementsStock(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	users := NewUserRepository(testDB)
	products := NewProductRepository(testDB)
	orders := NewOrderRepository(testDB)

	user := &domain.User{TelegramID: 100}
	require.NoError(t, users.Create(ctx, user))
	product := newProduct(domain.Size41to43, domain.MaterialCotton, "black", "2000", 1)
	require.NoError(t, products.Create(ctx, product))

	order, err := orders.PlaceOrder(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), order.TelegramID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 1, order.Items[0].Quantity)

	stored, err := products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Stock)

	_, err = orders.PlaceOrder(ctx, user.ID, product.ID, 1)
	assert.ErrorIs(t, err, ErrOutOfStock)

	_, err = orders.PlaceOrder(ctx, user.ID, product.ID+1000, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)

	listed, err := orders.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	// a referenced product cannot be deleted
	assert.ErrorIs(t, products.Delete(ctx, product.ID), ErrProductInUse)
}

func TestOrderRepository_ConcurrentPurchasesNeverOversell(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	users := NewUserRepository(testDB)
	products := NewProductRepository(testDB)
	orders := NewOrderRepository(testDB)

	user := &domain.User{TelegramID: 200}
	require.NoError(t, users.Create(ctx, user))
	product := newProduct(domain.Size38to40, domain.MaterialWool, "grey", "2500", 3)
	require.NoError(t, products.Create(ctx, product))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := orders.PlaceOrder(ctx, user.ID, product.ID, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)

	stored, err := products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Stock)
}

func TestOrderRepository_ListingIsNewestFirst(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	users := NewUserRepository(testDB)
	products := NewProductRepository(testDB)
	orders := NewOrderRepository(testDB)

	alice := &domain.User{TelegramID: 1}
	bob := &domain.User{TelegramID: 2}
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, users.Create(ctx, bob))
	product := newProduct(domain.Size41to43, domain.MaterialCotton, "black", "2000", 10)
	require.NoError(t, products.Create(ctx, product))

	first, err := orders.PlaceOrder(ctx, alice.ID, product.ID, 1)
	require.NoError(t, err)
	second, err := orders.PlaceOrder(ctx, bob.ID, product.ID, 1)
	require.NoError(t, err)
	third, err := orders.PlaceOrder(ctx, alice.ID, product.ID, 1)
	require.NoError(t, err)

	all, err := orders.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{third.ID, second.ID, first.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, int64(2), all[1].TelegramID)
	require.Len(t, all[0].Items, 1)
	assert.Equal(t, "black", all[0].Items[0].Product.Color)

	mine, err := orders.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, third.ID, mine[0].ID)
}
