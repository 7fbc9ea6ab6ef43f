package order_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaniket/ecom-backend/internal/order"
)

// testPool is nil unless DB_HOST is set; the repository tests then skip.
// The target database must already have the migrations applied.
var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	if host := os.Getenv("DB_HOST"); host != "" {
		connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, envOr("DB_PORT", "5432"), envOr("DB_USER", "postgres"),
			envOr("DB_PASSWORD", "postgres"), envOr("DB_NAME", "ecom_test"), envOr("DB_SSLMODE", "disable"))

		pool, err := pgxpool.New(context.Background(), connStr)
		if err != nil {
			log.Fatalf("Failed to connect to test database: %v", err)
		}
		testPool = pool
	}

	exitCode := m.Run()

	if testPool != nil {
		testPool.Close()
	}

	os.Exit(exitCode)
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func setupRepo(t *testing.T) order.Repository {
	if testPool == nil {
		t.Skip("DB_HOST not set, skipping repository tests")
	}

	truncate := func() {
		_, err := testPool.Exec(context.Background(),
			"TRUNCATE TABLE categories, products, users, orders, order_items")
		if err != nil {
			t.Fatalf("Failed to truncate tables: %v", err)
		}
	}

	truncate()
	t.Cleanup(truncate)

	return order.NewRepository(testPool)
}

func seedCategory(t *testing.T, name string) uuid.UUID {
	t.Helper()
	id := uuid.Must(uuid.NewV4())
	now := time.Now().UTC()
	_, err := testPool.Exec(context.Background(),
		`INSERT INTO categories (id, name, icon, color, created_at, updated_at) VALUES ($1, $2, '', '', $3, $3)`,
		id, name, now)
	require.NoError(t, err, "Failed to seed category")
	return id
}

func seedProduct(t *testing.T, name string, price string, categoryID uuid.UUID) uuid.UUID {
	t.Helper()
	id := uuid.Must(uuid.NewV4())
	now := time.Now().UTC()
	_, err := testPool.Exec(context.Background(),
		`INSERT INTO products (id, name, price, category_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $5)`,
		id, name, decimal.RequireFromString(price), categoryID, now)
	require.NoError(t, err, "Failed to seed product")
	return id
}

func seedUser(t *testing.T, name, email string) uuid.UUID {
	t.Helper()
	id := uuid.Must(uuid.NewV4())
	now := time.Now().UTC()
	_, err := testPool.Exec(context.Background(),
		`INSERT INTO users (id, name, email, password_hash, created_at, updated_at) VALUES ($1, $2, $3, 'hash', $4, $4)`,
		id, name, email, now)
	require.NoError(t, err, "Failed to seed user")
	return id
}

func newStoredOrder(userID uuid.UUID, items []order.OrderItem) *order.Order {
	return &order.Order{
		ID:               uuid.Must(uuid.NewV4()),
		UserID:           userID,
		Items:            items,
		ShippingAddress1: "42 Main St",
		City:             "Kolkata",
		Zip:              "700001",
		Country:          "India",
		Phone:            "+91-900000000",
		Status:           order.StatusPending,
		TotalPrice:       decimal.RequireFromString("25.00"),
	}
}

func TestOrderRepository_GetByID_ExpandsItems(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	categoryID := seedCategory(t, "Electronics")
	productA := seedProduct(t, "Keyboard", "10.00", categoryID)
	productB := seedProduct(t, "Mouse", "5.00", categoryID)
	missingProduct := uuid.Must(uuid.NewV4())
	userID := seedUser(t, "Test User", "mail@example.com")

	stored := newStoredOrder(userID, []order.OrderItem{
		{ProductID: productB, Quantity: 1},
		{ProductID: productA, Quantity: 2},
		{ProductID: missingProduct, Quantity: 3},
	})
	require.NoError(t, repo.Create(ctx, stored))

	got, err := repo.GetByID(ctx, stored.ID)
	require.NoError(t, err)

	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, order.StatusPending, got.Status)
	assert.True(t, stored.TotalPrice.Equal(got.TotalPrice))

	require.NotNil(t, got.User, "user summary should be populated")
	assert.Equal(t, "Test User", got.User.Name)
	assert.Equal(t, "mail@example.com", got.User.Email)

	// Items come back in the order they were placed.
	require.Len(t, got.Items, 3)
	assert.Equal(t, productB, got.Items[0].ProductID)
	assert.Equal(t, productA, got.Items[1].ProductID)
	assert.Equal(t, missingProduct, got.Items[2].ProductID)

	// Each resolvable item carries its product with the category resolved.
	require.NotNil(t, got.Items[0].Product)
	assert.Equal(t, "Mouse", got.Items[0].Product.Name)
	require.NotNil(t, got.Items[0].Product.Category)
	assert.Equal(t, "Electronics", got.Items[0].Product.Category.Name)

	require.NotNil(t, got.Items[1].Product)
	assert.Equal(t, "Keyboard", got.Items[1].Product.Name)
	assert.True(t, decimal.RequireFromString("10.00").Equal(got.Items[1].Product.Price))

	// An item whose product no longer exists stays, product unresolved.
	assert.Nil(t, got.Items[2].Product)
}

func TestOrderRepository_Delete_RemovesOrderAndItems(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	categoryID := seedCategory(t, "Electronics")
	productA := seedProduct(t, "Keyboard", "10.00", categoryID)
	productB := seedProduct(t, "Mouse", "5.00", categoryID)
	userID := seedUser(t, "Test User", "mail@example.com")

	stored := newStoredOrder(userID, []order.OrderItem{
		{ProductID: productA, Quantity: 2},
		{ProductID: productB, Quantity: 1},
	})
	require.NoError(t, repo.Create(ctx, stored))

	result, err := repo.Delete(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, result.OrderID)
	assert.Equal(t, 2, result.DeletedItems)
	assert.Empty(t, result.ItemFailures)

	_, err = repo.GetByID(ctx, stored.ID)
	assert.True(t, errors.Is(err, order.ErrNotFound))

	var remaining int
	err = testPool.QueryRow(ctx, `SELECT COUNT(*) FROM order_items WHERE order_id = $1`, stored.ID).Scan(&remaining)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining, "no items may survive the cascade")
}

func TestOrderRepository_Delete_NotFound(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.Delete(context.Background(), uuid.Must(uuid.NewV4()))
	assert.True(t, errors.Is(err, order.ErrNotFound))
}

func TestOrderRepository_List_ItemsNeverNull(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	userID := seedUser(t, "Test User", "mail@example.com")
	require.NoError(t, repo.Create(ctx, newStoredOrder(userID, nil)))

	orders, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.NotNil(t, orders[0].Items, "items must serialize as a list, not null")
	assert.Empty(t, orders[0].Items)
}

func TestOrderRepository_TotalSales(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	// No orders yet: the sum is a defined zero.
	total, err := repo.TotalSales(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero(), "got %s", total)

	userID := seedUser(t, "Test User", "mail@example.com")
	first := newStoredOrder(userID, nil)
	first.TotalPrice = decimal.RequireFromString("10.50")
	second := newStoredOrder(userID, nil)
	second.TotalPrice = decimal.RequireFromString("4.50")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	total, err = repo.TotalSales(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("15.00").Equal(total), "got %s", total)
}
