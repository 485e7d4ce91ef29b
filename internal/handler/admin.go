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

// AdminHandler serves inventory, order overview and role commands
type AdminHandler struct {
	catalog service.CatalogService
	users   service.UserService
	logger  *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(catalog service.CatalogService, users service.UserService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		catalog: catalog,
		users:   users,
		logger:  logger,
	}
}

// RegisterRoutes registers the admin and super admin commands
func (h *AdminHandler) RegisterRoutes(d *chat.Dispatcher) {
	admin := middleware.RequireAdmin(h.logger)

	d.Handle("add_socks", h.AddSocks, admin, middleware.ValidateArgs(5, addSocksUsage))
	d.Handle("list_orders", h.ListOrders, admin)
	d.Handle("view_socks", h.ViewSocks, admin, middleware.ValidateArgs(1, viewSocksUsage))
	d.Handle("edit_socks", h.EditSocks, admin, middleware.ValidateArgs(3, editSocksUsage))
	d.Handle("delete_socks", h.DeleteSocks, admin, middleware.ValidateArgs(1, deleteSocksUsage))

	d.Handle("promote_user", h.PromoteUser,
		middleware.RequireSuperAdmin(middleware.OnlySuperRole, h.logger),
		middleware.ValidateArgs(2, promoteUsage),
	)
}

// AddSocks creates a product from size, material, color, price and stock
func (h *AdminHandler) AddSocks(ctx context.Context, req *chat.Request) (chat.Reply, error) {
	price, err := service.ParsePrice(req.Args[3])
	if err != nil {
		return chat.Text(addSocksNumbers), nil
	}
	stock, err := service.ParseStock(req.Args[4])
	if err != nil {
		return chat.Text(addSocksNumbers), nil
	}

	product, err := h.catalog.AddProduct(ctx, req.User, service.NewProduct{
		Size:     domain.Size(req.Args[0]),
		Material: domain.Material(req.Args[1]),
		Color:    req.Args[2],
		Price:    price,
		Stock:    stock,
	})
	if err != nil {
		return explain(err,
			explanation{service.ErrNotAdmin, middleware.NoPermission},
			explanation{service.ErrInvalidSize, addSocksSize},
			explanation{service.ErrInvalidMaterial, addSocksMaterial},
			explanation{service.ErrInvalidPrice, addSocksNumbers},
			explanation{service.ErrInvalidStock, addSocksNumbers},
			explanation{service.ErrPriceOutOfRange, addSocksPrice},
			explanation{service.ErrStockOutOfRange, addSocksStock},
			explanation{service.ErrColorTooLong, addSocksColorLen},
			explanation{service.ErrEmptyValue, addSocksColor},
		)
	}

	return chat.Text(fmt.Sprintf(addSocksDone, product.ID, product)), nil
}

// ListOrders lists every order with its owner, newest first
func (h *AdminHandler) ListOrders(ctx context.Context, req *chat.Request) (chat.Reply, error) {
	orders, err := h.catalog.ListAllOrders(ctx, req.User)
	if err != nil {
		return explain(err, explanation{service.ErrNotAdmin, middleware.NoPermission})
	}

	if len(orders) == 0 {
		return chat.Text(listOrdersEmpty), nil
	}

	return chat.Text(formatOrders(listOrdersHeader, orders, func(o *domain.Order) string {
		return fmt.Sprintf("Заказ #%d от %d:", o.ID, o.TelegramID)
	})), nil
}

func (h *AdminHandler) ViewSocks(ctx context.Context, req *chat.Request) (chat.Reply, error) {
	id, err := service.ParseProductID(req.Args[0])
	if err != nil {
		return chat.Text(buyInvalidID), nil
	}

	product, err := h.catalog.GetProduct(ctx, id)
	if err != nil {
		return explain(err, explanation{service.ErrProductNotFound, buyNotFound})
	}

	return chat.Text(formatProduct(product)), nil
}

// EditSocks sets one product field; the value is every argument after the field
func (h *AdminHandler) EditSocks(ctx context.Context, req *chat.Request) (chat.Reply, error) {
	id, err := service.ParseProductID(req.Args[0])
	if err != nil {
		return chat.Text(buyInvalidID), nil
	}
	field := req.Args[1]
	value := strings.Join(req.Args[2:], " ")

	if _, err := h.catalog.UpdateProductField(ctx, req.User, id, field, value); err != nil {
		return explain(err,
			explanation{service.ErrNotAdmin, middleware.NoPermission},
			explanation{service.ErrInvalidField, editSocksField},
			explanation{service.ErrProductNotFound, buyNotFound},
			explanation{service.ErrInvalidSize, addSocksSize},
			explanation{service.ErrInvalidMaterial, addSocksMaterial},
			explanation{service.ErrInvalidPrice, addSocksNumbers},
			explanation{service.ErrInvalidStock, addSocksNumbers},
			explanation{service.ErrPriceOutOfRange, addSocksPrice},
			explanation{service.ErrStockOutOfRange, addSocksStock},
			explanation{service.ErrColorTooLong, addSocksColorLen},
			explanation{service.ErrNameTooLong, productNameLen},
			explanation{service.ErrEmptyValue, editSocksEmpty},
		)
	}

	return chat.Text(fmt.Sprintf(editSocksDone, id, field, value)), nil
}

func (h *AdminHandler) DeleteSocks(ctx context.Context, req *chat.Request) (chat.Reply, error) {
	id, err := service.ParseProductID(req.Args[0])
	if err != nil {
		return chat.Text(buyInvalidID), nil
	}

	if err := h.catalog.DeleteProduct(ctx, req.User, id); err != nil {
		return explain(err,
			explanation{service.ErrNotAdmin, middleware.NoPermission},
			explanation{service.ErrProductNotFound, buyNotFound},
			explanation{service.ErrProductReferenced, deleteSocksUsed},
		)
	}

	return chat.Text(fmt.Sprintf(deleteSocksDone, id)), nil
}

// PromoteUser assigns a role to another user
func (h *AdminHandler) PromoteUser(ctx context.Context, req *chat.Request) (chat.Reply, error) {
	telegramID, err := service.ParseTelegramID(req.Args[0])
	if err != nil {
		return chat.Text(invalidTgID), nil
	}
	role := req.Args[1]

	target, err := h.users.Promote(ctx, req.User, telegramID, role)
	if err != nil {
		return explain(err,
			explanation{service.ErrNotSuperAdmin, middleware.OnlySuperRole},
			explanation{service.ErrInvalidRole, invalidRole},
			explanation{service.ErrUserNotFound, promoteNotFound},
		)
	}

	return chat.Text(fmt.Sprintf(promoteDone, target.TelegramID, target.Role)), nil
}
