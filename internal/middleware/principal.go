package middleware

import (
	"net/http"

	"perfumeshop/internal/domain/model"
	"perfumeshop/internal/repository"

	"github.com/labstack/echo/v4"
)

// リクエストごとにDBからuserを1回だけ引いてcontextに置く。
// JWTのtvとDBのtoken_versionが違えば強制ログアウト扱い。
func ResolvePrincipal(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//AuthJWTが入れたuser_id を取得する
			userID, ok := c.Get(CtxUserIDKey).(int64)
			if !ok || userID <= 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			tv, ok := c.Get(CtxTokenVersionKey).(int)
			if !ok || tv < 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//DBから最新のuserを取得する
			user, err := userRepo.FindByID(c.Request().Context(), userID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, errorJSON("db error"))
			}
			if user == nil || !user.IsActive {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			if user.TokenVersion != tv {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxPrincipalKey, user)
			return next(c)
		}
	}
}

// ResolvePrincipalが置いたuser。無ければnil
func Principal(c echo.Context) *model.User {
	u, _ := c.Get(CtxPrincipalKey).(*model.User)
	return u
}
