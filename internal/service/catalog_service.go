package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"socks-bot/internal/domain"
	"socks-bot/internal/repository"
	"socks-bot/internal/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// NewProduct carries the fields accepted by the add_socks command
type NewProduct struct {
	Name     string          `validate:"max=255"`
	Size     domain.Size     `validate:"required,oneof=38-40 41-43 44-46"`
	Material domain.Material `validate:"required,oneof=cotton wool synthetic"`
	Color    string          `validate:"required,max=50"`
	Price    decimal.Decimal `validate:"gte=0,lte=99999999.99"`
	Stock    int             `validate:"gte=0,lte=2147483647"`
}

// SeedResult reports what the bulk seed did with one product
type SeedResult struct {
	Product *domain.Product
	Created bool
}

// CatalogService defines the catalog, purchasing and order history operations
type CatalogService interface {
	ListCatalog(ctx context.Context, filter domain.CatalogFilter) ([]*domain.Product, error)
	Purchase(ctx context.Context, user *domain.User, productID int64) (*domain.Order, error)
	ListOrdersFor(ctx context.Context, user *domain.User) ([]*domain.Order, error)
	ListAllOrders(ctx context.Context, caller *domain.User) ([]*domain.Order, error)

	AddProduct(ctx context.Context, caller *domain.User, input NewProduct) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	UpdateProductField(ctx context.Context, caller *domain.User, id int64, field, value string) (*domain.Product, error)
	DeleteProduct(ctx context.Context, caller *domain.User, id int64) error
	Seed(ctx context.Context, products []*domain.Product) ([]SeedResult, error)
}

// CatalogMetrics receives counts of purchase outcomes
type CatalogMetrics interface {
	OrderPlaced()
	PurchaseRejected(reason string)
}

type catalogService struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	metrics     CatalogMetrics
	logger      *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	metrics CatalogMetrics,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		metrics:     metrics,
		logger:      logger,
	}
}

// DefaultCatalog is the stock restored by the seed command
func DefaultCatalog() []*domain.Product {
	return []*domain.Product{
		{Name: domain.DefaultProductName, Size: domain.Size41to43, Material: domain.MaterialCotton, Color: "black", Price: decimal.RequireFromString("2000.00"), Stock: 49},
		{Name: domain.DefaultProductName, Size: domain.Size38to40, Material: domain.MaterialCotton, Color: "white", Price: decimal.RequireFromString("1500.00"), Stock: 10},
		{Name: domain.DefaultProductName, Size: domain.Size41to43, Material: domain.MaterialWool, Color: "black", Price: decimal.RequireFromString("2500.00"), Stock: 5},
	}
}

// ParseProductID parses a product id argument, which must be a positive integer
func ParseProductID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidProductID
	}
	return id, nil
}

// ParsePrice parses an exact decimal price
func ParsePrice(s string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || price.IsNegative() {
		return decimal.Decimal{}, ErrInvalidPrice
	}
	return price, nil
}

// ParseStock parses a non-negative unit count
func ParseStock(s string) (int, error) {
	stock, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || stock < 0 {
		return 0, ErrInvalidStock
	}
	return stock, nil
}

// ListCatalog returns in-stock products, optionally narrowed by size and material
func (s *catalogService) ListCatalog(ctx context.Context, filter domain.CatalogFilter) ([]*domain.Product, error) {
	products, err := s.productRepo.ListAvailable(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	return products, nil
}

// Purchase checks registration, id, existence and stock in that order, then
// records a one-item order and decrements stock by one.
func (s *catalogService) Purchase(ctx context.Context, user *domain.User, productID int64) (*domain.Order, error) {
	if !user.IsRegistered() {
		s.metrics.PurchaseRejected("not_registered")
		return nil, ErrNotRegistered
	}

	if productID <= 0 {
		s.metrics.PurchaseRejected("invalid_id")
		return nil, ErrInvalidProductID
	}

	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			s.metrics.PurchaseRejected("not_found")
		}
		return nil, err
	}

	if !product.InStock() {
		s.metrics.PurchaseRejected("out_of_stock")
		return nil, ErrOutOfStock
	}

	order, err := s.orderRepo.PlaceOrder(ctx, user.ID, productID, 1)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOutOfStock):
			// another buyer took the last unit between the check and the write
			s.metrics.PurchaseRejected("out_of_stock")
			return nil, ErrOutOfStock
		case errors.Is(err, repository.ErrProductNotFound):
			s.metrics.PurchaseRejected("not_found")
			return nil, ErrProductNotFound
		default:
			return nil, fmt.Errorf("failed to place order: %w", err)
		}
	}

	product.Stock--
	for _, item := range order.Items {
		item.Product = product
	}

	s.metrics.OrderPlaced()
	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("telegram_id", user.TelegramID),
		zap.Int64("product_id", productID),
		zap.Int("stock_left", product.Stock),
	)

	return order, nil
}

// ListOrdersFor returns the user's orders, newest first
func (s *catalogService) ListOrdersFor(ctx context.Context, user *domain.User) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user orders: %w", err)
	}
	return orders, nil
}

// ListAllOrders returns every order, newest first
func (s *catalogService) ListAllOrders(ctx context.Context, caller *domain.User) ([]*domain.Order, error) {
	if !caller.IsAdmin() {
		return nil, ErrNotAdmin
	}

	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// AddProduct creates a catalog entry
func (s *catalogService) AddProduct(ctx context.Context, caller *domain.User, input NewProduct) (*domain.Product, error) {
	if !caller.IsAdmin() {
		return nil, ErrNotAdmin
	}

	if err := validateProduct(input); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:     input.Name,
		Size:     input.Size,
		Material: input.Material,
		Color:    input.Color,
		Price:    input.Price,
		Stock:    input.Stock,
	}
	if product.Name == "" {
		product.Name = domain.DefaultProductName
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.Int64("created_by", caller.TelegramID),
	)

	return product, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// UpdateProductField sets one allow-listed attribute of a product
func (s *catalogService) UpdateProductField(ctx context.Context, caller *domain.User, id int64, field, value string) (*domain.Product, error) {
	if !caller.IsAdmin() {
		return nil, ErrNotAdmin
	}

	f, ok := domain.ParseProductField(field)
	if !ok {
		return nil, ErrInvalidField
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	input := NewProduct{
		Name:     product.Name,
		Size:     product.Size,
		Material: product.Material,
		Color:    product.Color,
		Price:    product.Price,
		Stock:    product.Stock,
	}

	switch f {
	case domain.ProductFieldName:
		if value == "" {
			return nil, ErrEmptyValue
		}
		input.Name = value
	case domain.ProductFieldSize:
		input.Size = domain.Size(value)
	case domain.ProductFieldMaterial:
		input.Material = domain.Material(value)
	case domain.ProductFieldColor:
		input.Color = value
	case domain.ProductFieldPrice:
		if input.Price, err = ParsePrice(value); err != nil {
			return nil, err
		}
	case domain.ProductFieldStock:
		if input.Stock, err = ParseStock(value); err != nil {
			return nil, err
		}
	}

	if err := validateProduct(input); err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Size = input.Size
	product.Material = input.Material
	product.Color = input.Color
	product.Price = input.Price
	product.Stock = input.Stock

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// DeleteProduct removes a product no order refers to
func (s *catalogService) DeleteProduct(ctx context.Context, caller *domain.User, id int64) error {
	if !caller.IsAdmin() {
		return ErrNotAdmin
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return ErrProductNotFound
		case errors.Is(err, repository.ErrProductInUse):
			return ErrProductReferenced
		default:
			return fmt.Errorf("failed to delete product: %w", err)
		}
	}

	s.logger.Info("Product deleted", zap.Int64("product_id", id), zap.Int64("deleted_by", caller.TelegramID))
	return nil
}

// Seed upserts each product keyed by size, material and color
func (s *catalogService) Seed(ctx context.Context, products []*domain.Product) ([]SeedResult, error) {
	results := make([]SeedResult, 0, len(products))

	for _, p := range products {
		if err := validateProduct(NewProduct{
			Name:     p.Name,
			Size:     p.Size,
			Material: p.Material,
			Color:    p.Color,
			Price:    p.Price,
			Stock:    p.Stock,
		}); err != nil {
			return results, fmt.Errorf("invalid seed product %s: %w", p, err)
		}

		created, err := s.productRepo.Upsert(ctx, p)
		if err != nil {
			return results, fmt.Errorf("failed to seed product: %w", err)
		}
		results = append(results, SeedResult{Product: p, Created: created})
	}

	return results, nil
}

// validateProduct maps the first failing field to its sentinel
func validateProduct(input NewProduct) error {
	if err := validation.Struct(input); err != nil {
		fields := validation.FormatErrors(err)
		if len(fields) == 0 {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}

		field := fields[0]
		switch field.Field {
		case "Size":
			return ErrInvalidSize
		case "Material":
			return ErrInvalidMaterial
		case "Price":
			if field.Tag == "lte" {
				return ErrPriceOutOfRange
			}
			return ErrInvalidPrice
		case "Stock":
			if field.Tag == "lte" {
				return ErrStockOutOfRange
			}
			return ErrInvalidStock
		case "Color":
			if field.Tag == "max" {
				return ErrColorTooLong
			}
			return ErrEmptyValue
		case "Name":
			return ErrNameTooLong
		default:
			return fmt.Errorf("%w: %s", ErrValidation, field.Message)
		}
	}

	// prices are stored with two decimal places
	if !input.Price.Equal(input.Price.Round(2)) {
		return ErrPriceOutOfRange
	}

	return nil
}
