package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	d "github.com/joaocamilod/catalogo-online/internal/domain"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "./migrations",
	}

	repo, err := NewRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func newTestOrder(sellerID string) *d.Order {
	return &d.Order{
		ID:         uuid.New(),
		SellerID:   sellerID,
		SellerName: "Ana",
		Lines: []d.OrderLine{
			{ProductID: 1, Name: "Camiseta", UnitPrice: 90, Quantity: 2, ImageURL: "https://cdn/camiseta.png"},
		},
		Total:         180,
		BuyerName:     "João",
		BuyerPhone:    "11912345678",
		PaymentMethod: d.PaymentPix,
		Status:        d.OrderStatusPending,
		Notified:      true,
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestCreateOrder_Success(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	order := newTestOrder("s1")

	err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)

	fetched, err := repo.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, fetched.ID)
	assert.Equal(t, order.SellerID, fetched.SellerID)
	assert.Equal(t, order.Total, fetched.Total)
	assert.Equal(t, order.PaymentMethod, fetched.PaymentMethod)
	assert.Equal(t, order.Status, fetched.Status)
	assert.True(t, fetched.Notified)
	assert.Equal(t, order.Lines, fetched.Lines)
	assert.True(t, order.CreatedAt.Equal(fetched.CreatedAt))
}

func TestCreateOrder_Duplicate(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	order := newTestOrder("s1")
	require.NoError(t, repo.CreateOrder(ctx, order))

	err := repo.CreateOrder(ctx, order)
	assert.ErrorIs(t, err, ErrDuplicateOrder)
}

func TestCreateOrder_ContextCancelled(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	order := newTestOrder("s1")
	require.Error(t, repo.CreateOrder(ctx, order))

	_, err := repo.GetOrderByID(context.Background(), order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestGetOrderByID_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetOrderByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListOrdersBySeller(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	order1 := newTestOrder("s-list")
	require.NoError(t, repo.CreateOrder(ctx, order1))

	order2 := newTestOrder("s-list")
	order2.CreatedAt = order1.CreatedAt.Add(time.Second)
	require.NoError(t, repo.CreateOrder(ctx, order2))

	require.NoError(t, repo.CreateOrder(ctx, newTestOrder("other")))

	orders, err := repo.ListOrdersBySeller(ctx, "s-list")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, order2.ID, orders[0].ID)
	assert.Equal(t, order1.ID, orders[1].ID)
}
