//go:build integration

package postgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/voicecart/internal/domain/order"
	"github.com/xenking/voicecart/internal/domain/product"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

func testMain(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "shop",
				"POSTGRES_PASSWORD": "shop",
				"POSTGRES_DB":       "shop",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("start postgres container: %v", err)
	}
	defer func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			log.Printf("terminate container: %v", err)
		}
	}()

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		log.Fatalf("mapped port: %v", err)
	}

	databaseURL := fmt.Sprintf("postgres://shop:shop@%s:%s/shop?sslmode=disable", host, port.Port())

	testPool, err = NewPool(ctx, databaseURL)
	if err != nil {
		log.Fatalf("create pool: %v", err)
	}
	defer testPool.Close()

	if err := RunMigrations(ctx, testPool); err != nil {
		log.Fatalf("run migrations: %v", err)
	}
	// Applying the schema twice must be a no-op.
	if err := RunMigrations(ctx, testPool); err != nil {
		log.Fatalf("re-run migrations: %v", err)
	}

	return m.Run()
}

func truncate(t *testing.T, tables ...string) {
	t.Helper()
	for _, table := range tables {
		_, err := testPool.Exec(context.Background(), "TRUNCATE "+table)
		require.NoError(t, err)
	}
}

func testProducts() []product.Product {
	return []product.Product{
		{
			ID:          "mug-001",
			Name:        "Ceramic Coffee Mug",
			Category:    product.CategoryMug,
			Price:       decimal.NewFromInt(450),
			Color:       "white",
			Description: "Classic 350ml ceramic mug",
		},
		{
			ID:          "hoodie-01",
			Name:        "Black Pullover Hoodie",
			Category:    product.CategoryHoodie,
			Price:       decimal.NewFromInt(1800),
			Color:       "black",
			Description: "Heavyweight cotton hoodie",
			Attributes:  product.Attributes{Sizes: []string{"S", "M", "L", "XL"}},
		},
	}
}

func TestCatalogRepository(t *testing.T) {
	truncate(t, "products")
	ctx := context.Background()
	repo := NewCatalogRepository(testPool)

	for _, p := range testProducts() {
		require.NoError(t, repo.Upsert(ctx, p))
	}

	t.Run("ListPreservesInsertionOrder", func(t *testing.T) {
		got, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, "mug-001", got[0].ID)
		require.Equal(t, "hoodie-01", got[1].ID)
		require.True(t, got[1].Price.Equal(decimal.NewFromInt(1800)))
		require.Equal(t, []string{"S", "M", "L", "XL"}, got[1].Attributes.Sizes)
	})

	t.Run("GetByName", func(t *testing.T) {
		p, err := repo.GetByName(ctx, "Black Pullover Hoodie")
		require.NoError(t, err)
		require.Equal(t, "hoodie-01", p.ID)
		require.Equal(t, product.CategoryHoodie, p.Category)
	})

	t.Run("GetByNameMissing", func(t *testing.T) {
		_, err := repo.GetByName(ctx, "No Such Product")
		require.ErrorIs(t, err, product.ErrNotFound)

		var notFound *product.NotFoundError
		require.ErrorAs(t, err, &notFound)
		require.Equal(t, "No Such Product", notFound.Name)
	})

	t.Run("UpsertReplacesExisting", func(t *testing.T) {
		updated := testProducts()[0]
		updated.Price = decimal.NewFromInt(500)
		require.NoError(t, repo.Upsert(ctx, updated))

		p, err := repo.GetByName(ctx, "Ceramic Coffee Mug")
		require.NoError(t, err)
		require.True(t, p.Price.Equal(decimal.NewFromInt(500)))
	})
}

func TestLedgerRepository(t *testing.T) {
	truncate(t, "orders")
	ctx := context.Background()
	repo := NewLedgerRepository(testPool)

	created := time.Date(2026, 2, 3, 10, 30, 0, 0, time.UTC)
	first := &order.Order{
		ID: "order-0001",
		Lines: []order.Line{
			{
				ProductID:   "hoodie-01",
				ProductName: "Black Pullover Hoodie",
				Quantity:    2,
				UnitPrice:   decimal.NewFromInt(1800),
				LineTotal:   decimal.NewFromInt(3600),
				Variant:     "M",
			},
		},
		Total:     decimal.NewFromInt(3600),
		Currency:  order.Currency,
		CreatedAt: created,
		Status:    order.StatusConfirmed,
	}
	second := &order.Order{
		ID: "order-0002",
		Lines: []order.Line{
			{
				ProductID:   "mug-001",
				ProductName: "Ceramic Coffee Mug",
				Quantity:    1,
				UnitPrice:   decimal.NewFromInt(450),
				LineTotal:   decimal.NewFromInt(450),
			},
		},
		Total:     decimal.NewFromInt(450),
		Currency:  order.Currency,
		CreatedAt: created.Add(time.Minute),
		Status:    order.StatusConfirmed,
	}

	require.NoError(t, repo.Append(ctx, first))
	require.NoError(t, repo.Append(ctx, second))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, "order-0001", got[0].ID)
	require.Equal(t, "order-0002", got[1].ID)

	require.True(t, got[0].Total.Equal(decimal.NewFromInt(3600)))
	require.Equal(t, order.Currency, got[0].Currency)
	require.Equal(t, order.StatusConfirmed, got[0].Status)
	require.True(t, created.Equal(got[0].CreatedAt))

	require.Len(t, got[0].Lines, 1)
	line := got[0].Lines[0]
	require.Equal(t, "Black Pullover Hoodie", line.ProductName)
	require.Equal(t, 2, line.Quantity)
	require.Equal(t, "M", line.Variant)
	require.True(t, line.LineTotal.Equal(decimal.NewFromInt(3600)))

	t.Run("DuplicateIDRejected", func(t *testing.T) {
		require.Error(t, repo.Append(ctx, first))
	})
}
