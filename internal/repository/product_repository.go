package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"socks-bot/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductInUse    = errors.New("product is referenced by existing orders")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	ListAvailable(ctx context.Context, filter domain.CatalogFilter) ([]*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	Upsert(ctx context.Context, product *domain.Product) (bool, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, size, material, color, price, stock`

func scanProduct(row scanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Size,
		&product.Material,
		&product.Color,
		&product.Price,
		&product.Stock,
	)
	return product, err
}

// Create inserts a new product and fills in its generated id
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	if product.Name == "" {
		product.Name = domain.DefaultProductName
	}

	query := `
		INSERT INTO products (name, size, material, color, price, stock)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		product.Name,
		product.Size,
		product.Material,
		product.Color,
		product.Price,
		product.Stock,
	).Scan(&product.ID)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update overwrites every attribute of an existing product
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, size = $3, material = $4, color = $5, price = $6, stock = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Size,
		product.Material,
		product.Color,
		product.Price,
		product.Stock,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product that no order item references
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if hasPgCode(err, pgForeignKeyViolation) {
			return ErrProductInUse
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// ListAvailable returns in-stock products matching the filter, ordered by id
func (r *productRepository) ListAvailable(ctx context.Context, filter domain.CatalogFilter) ([]*domain.Product, error) {
	conditions := []string{"stock > 0"}
	args := []interface{}{}

	if filter.Size != nil {
		args = append(args, *filter.Size)
		conditions = append(conditions, fmt.Sprintf("size = $%d", len(args)))
	}

	if filter.Material != nil {
		args = append(args, *filter.Material)
		conditions = append(conditions, fmt.Sprintf("material = $%d", len(args)))
	}

	query := fmt.Sprintf(
		`SELECT %s FROM products WHERE %s ORDER BY id`,
		productColumns,
		strings.Join(conditions, " AND "),
	)

	return r.query(ctx, query, args...)
}

// List returns every product regardless of stock
func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	return r.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
}

// Upsert matches an existing product by size, material and color, updating
// its name, price and stock, or inserts it. It reports whether a row was created.
func (r *productRepository) Upsert(ctx context.Context, product *domain.Product) (bool, error) {
	if product.Name == "" {
		product.Name = domain.DefaultProductName
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		SELECT id FROM products
		WHERE size = $1 AND material = $2 AND color = $3
		ORDER BY id
		LIMIT 1
		FOR UPDATE
	`, product.Size, product.Material, product.Color).Scan(&product.ID)

	created := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		created = true
		err = tx.QueryRowContext(ctx, `
			INSERT INTO products (name, size, material, color, price, stock)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, product.Name, product.Size, product.Material, product.Color, product.Price, product.Stock).Scan(&product.ID)
		if err != nil {
			return false, fmt.Errorf("failed to insert product: %w", err)
		}
	case err != nil:
		return false, fmt.Errorf("failed to look up product: %w", err)
	default:
		_, err = tx.ExecContext(ctx, `
			UPDATE products SET name = $2, price = $3, stock = $4 WHERE id = $1
		`, product.ID, product.Name, product.Price, product.Stock)
		if err != nil {
			return false, fmt.Errorf("failed to update product: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit product upsert: %w", err)
	}

	return created, nil
}

func (r *productRepository) query(ctx context.Context, query string, args ...interface{}) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
