package repositories_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"backoffice/internal/models"
	"backoffice/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStoresFunc returns an empty, migrated store for one subtest.
type newStoresFunc func(t *testing.T) *repositories.Stores

func runStoreContract(t *testing.T, newStores newStoresFunc) {
	t.Run("products", func(t *testing.T) { testProductRepository(t, newStores(t).Products) })
	t.Run("stock", func(t *testing.T) { testStockOperations(t, newStores(t).Products) })
	t.Run("update keeps stock", func(t *testing.T) { testUpdateKeepsStock(t, newStores(t).Products) })
	t.Run("orders", func(t *testing.T) { testOrderRepository(t, newStores(t).Orders) })
	t.Run("users", func(t *testing.T) { testUserRepository(t, newStores(t).Users) })
}

func testProductRepository(t *testing.T, repo repositories.ProductRepository) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	older := models.Product{Name: "Older", Price: 1, Stock: 1, SKU: "SKU-A", Status: models.ProductStatusActive, Colors: []string{"Red"}, CreatedAt: base}
	newer := models.Product{Name: "Newer", Price: 2, Stock: 2, SKU: "SKU-B", Status: models.ProductStatusDraft, CreatedAt: base.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, &older))
	require.NoError(t, repo.Create(ctx, &newer))
	assert.NotEmpty(t, older.ID)
	assert.NotEqual(t, older.ID, newer.ID)

	dup := models.Product{Name: "Dup", SKU: "SKU-A"}
	assert.ErrorIs(t, repo.Create(ctx, &dup), repositories.ErrDuplicate)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Newer", all[0].Name)
	assert.Equal(t, "Older", all[1].Name)

	got, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "Older", got.Name)
	assert.Equal(t, []string{"Red"}, got.Colors)

	got, err = repo.GetBySKU(ctx, "SKU-B")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = repo.GetBySKU(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	name, price := "Renamed", 9.5
	updated, err := repo.Update(ctx, newer.ID, models.ProductPatch{Name: &name, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, 9.5, updated.Price)
	assert.Equal(t, "SKU-B", updated.SKU)
	assert.Equal(t, models.ProductStatusDraft, updated.Status)
	again, err := repo.GetByID(ctx, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", again.Name)
	assert.Equal(t, 9.5, again.Price)
	assert.Equal(t, 2, again.Stock)

	taken := "SKU-A"
	_, err = repo.Update(ctx, newer.ID, models.ProductPatch{SKU: &taken})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	_, err = repo.Update(ctx, "missing", models.ProductPatch{Name: &name})
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, older.ID))
	assert.ErrorIs(t, repo.Delete(ctx, older.ID), repositories.ErrNotFound)

	require.NoError(t, repo.DeleteAll(ctx))
	all, err = repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testStockOperations(t *testing.T, repo repositories.ProductRepository) {
	ctx := context.Background()
	p := models.Product{Name: "Stocked", Price: 5, Stock: 3, SKU: "SKU-S"}
	require.NoError(t, repo.Create(ctx, &p))

	stock := func() int {
		got, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		return got.Stock
	}

	require.NoError(t, repo.DecrementStock(ctx, p.ID, 2))
	assert.Equal(t, 1, stock())

	assert.ErrorIs(t, repo.DecrementStock(ctx, p.ID, 2), repositories.ErrInsufficientStock)
	assert.Equal(t, 1, stock())

	require.NoError(t, repo.DecrementStock(ctx, p.ID, 1))
	assert.Equal(t, 0, stock())

	require.NoError(t, repo.IncrementStock(ctx, p.ID, 4))
	assert.Equal(t, 4, stock())

	assert.ErrorIs(t, repo.DecrementStock(ctx, "missing", 1), repositories.ErrNotFound)
	assert.ErrorIs(t, repo.IncrementStock(ctx, "missing", 1), repositories.ErrNotFound)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.DecrementStock(ctx, p.ID, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 4, succeeded)
	assert.Equal(t, 0, stock())
}

func testUpdateKeepsStock(t *testing.T, repo repositories.ProductRepository) {
	ctx := context.Background()
	p := models.Product{Name: "Lamp", Price: 20, Stock: 5, SKU: "SKU-L", Colors: []string{"White"}}
	require.NoError(t, repo.Create(ctx, &p))

	require.NoError(t, repo.DecrementStock(ctx, p.ID, 2))

	price := 25.0
	updated, err := repo.Update(ctx, p.ID, models.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Stock)
	assert.Equal(t, 25.0, updated.Price)
	assert.Equal(t, "Lamp", updated.Name)
	assert.Equal(t, []string{"White"}, updated.Colors)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)

	zero := 0
	updated, err = repo.Update(ctx, p.ID, models.ProductPatch{Stock: &zero})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Stock)
	assert.ErrorIs(t, repo.DecrementStock(ctx, p.ID, 1), repositories.ErrInsufficientStock)
}

func testOrderRepository(t *testing.T, repo repositories.OrderRepository) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	first := models.Order{
		CustomerName: "Jane", Email: "jane@example.com", TotalAmount: 10, Status: models.OrderStatusPending,
		OrderItems: []models.OrderLine{{ProductID: "p1", Quantity: 1, Price: 10, Name: "A"}},
		CreatedAt:  base,
	}
	second := models.Order{
		CustomerName: "John", Email: "john@example.com", TotalAmount: 20, Status: models.OrderStatusPending,
		OrderItems: []models.OrderLine{{ProductID: "p2", Quantity: 2, Price: 10, Name: "B"}},
	}
	require.NoError(t, repo.Create(ctx, &first))
	require.NoError(t, repo.Create(ctx, &second))
	assert.NotEmpty(t, second.ID)
	assert.False(t, second.CreatedAt.IsZero())
	assert.True(t, first.CreatedAt.Equal(base), "a preset creation time is kept")

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "John", all[0].CustomerName)

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.OrderItems, got.OrderItems)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	updated, err := repo.UpdateStatus(ctx, first.ID, models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, updated.Status)
	assert.Equal(t, first.TotalAmount, updated.TotalAmount)

	_, err = repo.UpdateStatus(ctx, "missing", models.OrderStatusShipped)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	require.NoError(t, repo.DeleteAll(ctx))
	all, err = repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testUserRepository(t *testing.T, repo repositories.UserRepository) {
	ctx := context.Background()

	user := models.User{Name: "Ada", Email: "ada@example.com", Password: "hash", Role: models.RoleAdmin}
	require.NoError(t, repo.Create(ctx, &user))
	assert.NotEmpty(t, user.ID)

	dup := models.User{Name: "Ada 2", Email: "ada@example.com", Password: "hash"}
	assert.ErrorIs(t, repo.Create(ctx, &dup), repositories.ErrDuplicate)

	got, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "hash", got.Password)

	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
