package handler

import (
	"context"
	"fmt"
	"strings"

	"socks-bot/internal/chat"
	"socks-bot/internal/domain"
	"socks-bot/internal/middleware"
	"socks-bot/internal/service"

	"go.uber.org/zap"
)

// ShopHandler serves the commands available to every registered user
type ShopHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewShopHandler creates a new ShopHandler
func NewShopHandler(catalog service.CatalogService, logger *zap.Logger) *ShopHandler {
	return &ShopHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers the shop commands
func (h *ShopHandler) RegisterRoutes(d *chat.Dispatcher) {
	registered := middleware.RequireRegistered(h.logger)

	d.Handle("help", h.Help)
	d.Handle("catalog", h.Catalog, registered)
	d.Handle("buy", h.Buy, registered, middleware.ValidateArgs(1, buyUsage))
	d.Handle("my_orders", h.MyOrders, registered)
}

// Help lists commands, adding sections for the caller's role
func (h *ShopHandler) Help(ctx context.Context, req *chat.Request) (chat.Reply, error) {
	lines := []string{
		helpHeader,
		"/start - начать заново",
		"/catalog - каталог носков",
		"/buy <id> - добавить носки в корзину",
		"/my_orders - мои заказы",
		"/help - помощь",
	}

	if req.User.IsAdmin() {
		lines = append(lines,
			"",
			helpAdmin,
			"/add_socks <size> <material> <color> <price> <stock>",
			"/list_orders - список всех заказов",
			"/view_socks <id> - карточка товара",
			"/edit_socks <id> <field> <value> - изменить товар",
			"/delete_socks <id> - удалить товар",
		)
	}

	if req.User.IsSuperAdmin() {
		lines = append(lines,
			"",
			helpSuperAdmin,
			"/promote_user <telegram_id> <role>",
		)
	}

	return chat.Text(strings.Join(lines, "\n")), nil
}

// Catalog lists in-stock socks, optionally filtered by size then material
func (h *ShopHandler) Catalog(ctx context.Context, req *chat.Request) (chat.Reply, error) {
	var filter domain.CatalogFilter
	if len(req.Args) >= 1 {
		size := domain.Size(req.Args[0])
		filter.Size = &size
	}
	if len(req.Args) >= 2 {
		material := domain.Material(req.Args[1])
		filter.Material = &material
	}

	products, err := h.catalog.ListCatalog(ctx, filter)
	if err != nil {
		return chat.Reply{}, err
	}

	return chat.Text(formatCatalog(products)), nil
}

// Buy places a one-item order for the product id in the first argument
func (h *ShopHandler) Buy(ctx context.Context, req *chat.Request) (chat.Reply, error) {
	productID, err := service.ParseProductID(req.Args[0])
	if err != nil {
		return chat.Text(buyInvalidID), nil
	}

	order, err := h.catalog.Purchase(ctx, req.User, productID)
	if err != nil {
		return explain(err,
			explanation{service.ErrNotRegistered, middleware.NotRegistered},
			explanation{service.ErrInvalidProductID, buyInvalidID},
			explanation{service.ErrProductNotFound, buyNotFound},
			explanation{service.ErrOutOfStock, buyOutOfStock},
		)
	}

	return chat.Text(fmt.Sprintf(buyDone, order.ID)), nil
}

// MyOrders lists the caller's orders, newest first
func (h *ShopHandler) MyOrders(ctx context.Context, req *chat.Request) (chat.Reply, error) {
	orders, err := h.catalog.ListOrdersFor(ctx, req.User)
	if err != nil {
		return chat.Reply{}, err
	}

	if len(orders) == 0 {
		return chat.Text(myOrdersEmpty), nil
	}

	return chat.Text(formatOrders(myOrdersHeader, orders, func(o *domain.Order) string {
		return fmt.Sprintf("Заказ #%d:", o.ID)
	})), nil
}
