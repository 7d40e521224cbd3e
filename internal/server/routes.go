package server

import (
	"perfumeshop/internal/handler"
	"perfumeshop/internal/middleware"
	"perfumeshop/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	Profile      *handler.ProfileHandler
	AdminProduct *handler.AdminProductHandler
	AdminOrder   *handler.AdminOrderHandler
	AdminUser    *handler.AdminUserHandler
}

// 認可チェーンはここで1回だけ組む
func RegisterRoutes(e *echo.Echo, h Handlers, parser middleware.TokenParser, userRepo repository.UserRepository) {
	auth := []echo.MiddlewareFunc{
		middleware.AuthJWT(parser),
		middleware.ResolvePrincipal(userRepo),
	}

	h.Product.RegisterRoutes(e)
	h.Auth.RegisterRoutes(e, auth...)
	h.Cart.RegisterRoutes(e, auth...)
	h.Order.RegisterRoutes(e, auth...)
	h.Profile.RegisterRoutes(e, auth...)

	// /admin 配下は全部「JWT必須 + principal解決 + ADMIN限定」
	admin := e.Group("/admin", append(auth, middleware.AdminRoleGuard())...)
	h.AdminProduct.RegisterRoutes(admin)
	h.AdminOrder.RegisterRoutes(admin)
	h.AdminUser.RegisterRoutes(admin)
}
