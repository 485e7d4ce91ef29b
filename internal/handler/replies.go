package handler

import (
	"errors"
	"fmt"
	"strings"

	"socks-bot/internal/chat"
	"socks-bot/internal/domain"
	"socks-bot/internal/middleware"
	"socks-bot/internal/service"
)

// Failed is sent when a handler hit a storage failure
const Failed = "Что-то пошло не так. Попробуй ещё раз позже."

const (
	helpHeader     = "Доступные команды:"
	helpAdmin      = "Команды админа:"
	helpSuperAdmin = "Команды супер-админа:"

	catalogEmpty  = "Подходящих носков не найдено 😢"
	catalogHeader = "Каталог носков:\n"

	buyUsage      = "Использование: /buy <ID_товара>, например: /buy 1"
	buyInvalidID  = "ID товара должен быть числом."
	buyNotFound   = "Товар с таким ID не найден."
	buyOutOfStock = "Эти носки закончились на складе."
	buyDone       = "Носки добавлены в корзину (заказ #%d)."

	myOrdersEmpty  = "У тебя пока нет заказов."
	myOrdersHeader = "Твои заказы:\n"

	addSocksUsage    = "Использование: /add_socks <size> <material> <color> <price> <stock>\nНапример: /add_socks 41-43 cotton black 2000 50"
	addSocksNumbers  = "Цена должна быть числом, количество — целым числом."
	addSocksSize     = "Размер должен быть одним из: 38-40, 41-43, 44-46."
	addSocksMaterial = "Материал должен быть одним из: cotton, wool, synthetic."
	addSocksColor    = "Цвет не может быть пустым."
	addSocksColorLen = "Цвет не может быть длиннее 50 символов."
	addSocksPrice    = "Цена должна быть меньше 100000000 и иметь не больше двух знаков после запятой."
	addSocksStock    = "Количество не может быть больше 2147483647."
	productNameLen   = "Название не может быть длиннее 255 символов."
	addSocksDone     = "Товар создан: ID %d — %s"

	listOrdersEmpty  = "Заказов пока нет."
	listOrdersHeader = "Список заказов:\n"

	editSocksUsage   = "Использование: /edit_socks <id> <field> <value>"
	editSocksField   = "Поле должно быть одним из: name, size, material, color, price, stock"
	editSocksEmpty   = "Значение не может быть пустым."
	editSocksDone    = "Товар %d обновлён: %s=%s"
	deleteSocksUsage = "Использование: /delete_socks <id>"
	deleteSocksUsed  = "Нельзя удалить товар: он есть в заказах."
	deleteSocksDone  = "Товар %d удалён."
	viewSocksUsage   = "Использование: /view_socks <id>"

	promoteUsage    = "Использование: /promote_user <telegram_id> <role>"
	invalidTgID     = "telegram_id должен быть числом."
	invalidRole     = "Роль должна быть одной из: USER, ADMIN, SUPER_ADMIN."
	promoteNotFound = "Пользователь с таким telegram_id не найден."
	promoteDone     = "Роль пользователя %d изменена на %s."

	createUserUsage  = "Использование: /create_user <telegram_id> <username> <first_name> [email] [phone] [role]"
	createUserExists = "Пользователь с telegram_id %d уже существует (id=%d)."
	createUserDone   = "Пользователь создан: id=%d, telegram_id=%d."
	listUsersEmpty   = "Пользователей пока нет."
	viewUserUsage    = "Использование: /view_user <telegram_id>"
	userNotFound     = "Пользователь не найден."
	updateUserUsage  = "Использование: /update_user <telegram_id> <field> <value>"
	updateUserField  = "Поле должно быть одним из: username, first_name, email, phone, role"
	updateUserDone   = "Пользователь %d обновлён: %s=%s"
	deleteUserUsage  = "Использование: /delete_user <telegram_id>"
	deleteUserDone   = "Пользователь с telegram_id %d удалён."
	emailTooLong     = "Email не может быть длиннее 254 символов."
	phoneTooLong     = "Номер телефона не может быть длиннее 32 символов."
	nameTooLong      = "Username и имя не могут быть длиннее 255 символов."

	categoryValidation = "Некорректные аргументы."
	categoryNotFound   = "Не найдено."
	categoryConflict   = "Операция сейчас невозможна."
)

// explanation pairs an error with the reply that explains it
type explanation struct {
	err  error
	text string
}

// explain answers a user-facing error with the first matching text, falling
// back to a reply for its category. Storage errors are returned unchanged.
func explain(err error, explanations ...explanation) (chat.Reply, error) {
	if !service.IsUserFacing(err) {
		return chat.Reply{}, err
	}

	for _, e := range explanations {
		if errors.Is(err, e.err) {
			return chat.Text(e.text), nil
		}
	}

	switch {
	case errors.Is(err, service.ErrPermission):
		return chat.Text(middleware.NoPermission), nil
	case errors.Is(err, service.ErrValidation):
		return chat.Text(categoryValidation), nil
	case errors.Is(err, service.ErrNotFound):
		return chat.Text(categoryNotFound), nil
	default:
		return chat.Text(categoryConflict), nil
	}
}

func formatCatalog(products []*domain.Product) string {
	if len(products) == 0 {
		return catalogEmpty
	}

	lines := []string{catalogHeader}
	for _, p := range products {
		lines = append(lines, fmt.Sprintf(
			"ID: %d\n%s, размер %s, %s, цвет %s\nЦена: %s ₸, на складе: %d\nДобавить в корзину: /buy %d\n",
			p.ID, p.Name, p.Size, p.Material.Label(), p.Color, p.Price.StringFixed(2), p.Stock, p.ID,
		))
	}
	return strings.Join(lines, "\n")
}

func formatProduct(p *domain.Product) string {
	return fmt.Sprintf(
		"ID: %d\nНазвание: %s\nРазмер: %s\nМатериал: %s\nЦвет: %s\nЦена: %s ₸\nНа складе: %d",
		p.ID, p.Name, p.Size.Label(), p.Material.Label(), p.Color, p.Price.StringFixed(2), p.Stock,
	)
}

// formatOrders renders orders with their items; title formats each order heading
func formatOrders(header string, orders []*domain.Order, title func(*domain.Order) string) string {
	lines := []string{header}
	for _, o := range orders {
		lines = append(lines, title(o))
		for _, item := range o.Items {
			lines = append(lines, fmt.Sprintf("  - %s x%d", item.Product, item.Quantity))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func formatUserLine(u *domain.User) string {
	usernamePart := ""
	if u.Username != "" {
		usernamePart = "(@" + u.Username + ")"
	}
	return fmt.Sprintf("id=%d tg=%d %s %s role=%s", u.ID, u.TelegramID, u.FirstName, usernamePart, u.Role)
}

func formatUser(u *domain.User) string {
	return fmt.Sprintf(
		"id=%d\ntelegram_id=%d\nusername=%s\nfirst_name=%s\nemail=%s\nphone=%s\nrole=%s",
		u.ID, u.TelegramID, u.Username, u.FirstName, u.Email, u.Phone, u.Role,
	)
}
