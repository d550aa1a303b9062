// Package catalog reads product pricing fields and stock from the local catalog.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"

	d "github.com/joaocamilod/catalogo-online/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

type RepoInterface interface {
	GetProduct(ctx context.Context, id int64) (*d.Product, error)
	GetProducts(ctx context.Context, ids []int64) (map[int64]d.Product, error)
	ListProducts(ctx context.Context) ([]d.Product, error)
}

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// every connection to ":memory:" is a different database
	db.SetMaxOpenConns(1)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

const selectProducts = `
	SELECT id, name, image_url, price, pix_price, pix_discount_percent, card_total, installment_count, stock
	FROM products`

func scanProduct(rows *sql.Rows) (d.Product, error) {
	var p d.Product
	err := rows.Scan(
		&p.ID,
		&p.Name,
		&p.ImageURL,
		&p.Price,
		&p.PixPrice,
		&p.PixDiscountPercent,
		&p.CardTotal,
		&p.InstallmentCount,
		&p.Stock,
	)
	return p, err
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]d.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []d.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

func (r *Repository) ListProducts(ctx context.Context) ([]d.Product, error) {
	return r.query(ctx, selectProducts+` ORDER BY id`)
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (*d.Product, error) {
	products, err := r.query(ctx, selectProducts+` WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrProductNotFound
	}
	return &products[0], nil
}

// GetProducts returns the products found among ids. Missing ids are simply absent
// from the map.
func (r *Repository) GetProducts(ctx context.Context, ids []int64) (map[int64]d.Product, error) {
	result := make(map[int64]d.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	products, err := r.query(ctx, selectProducts+` WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	return r.db.Close()
}
