package middleware

import (
	"context"
	"errors"
	"net/http"

	"smart-home-portal/internal/database"
	"smart-home-portal/internal/dto"
	"smart-home-portal/internal/model"
	"smart-home-portal/internal/session"
	"smart-home-portal/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

const (
	ContextIdentityKey = "identity"
	ContextUserKey     = "user"

	// LoginPath 未登入時頁面導向的位置
	LoginPath = "/account/login"
)

var getUserByID = store.GetUserByID

// Resolver 由 session.Manager 實作
type Resolver interface {
	Resolve(ctx context.Context, token string) (session.Identity, error)
}

// LoadIdentity 從 sessionId cookie 解析身分並放入 context
// 沒有 cookie 或 token 無效時為 Anonymous；只有儲存層錯誤才回傳 500
func LoadIdentity(r Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := session.Anonymous
			if ck, err := c.Cookie(session.CookieName); err == nil && ck.Value != "" {
				resolved, err := r.Resolve(c.Request().Context(), ck.Value)
				if err != nil {
					c.Logger().Errorf("resolve session: %v", err)
					return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: "session lookup failed"})
				}
				id = resolved
			}
			c.Set(ContextIdentityKey, id)
			return next(c)
		}
	}
}

// IdentityFrom 取出 LoadIdentity 設定的身分
func IdentityFrom(c echo.Context) session.Identity {
	if id, ok := c.Get(ContextIdentityKey).(session.Identity); ok {
		return id
	}
	return session.Anonymous
}

// RequireSession API 用，未登入回傳 401
func RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if IdentityFrom(c).IsAnonymous() {
			return c.JSON(http.StatusUnauthorized, dto.HTTPError{Message: "not authenticated"})
		}
		return next(c)
	}
}

// RequireSessionPage 頁面用，未登入導向登入頁
func RequireSessionPage(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if IdentityFrom(c).IsAnonymous() {
			return c.Redirect(http.StatusFound, LoginPath)
		}
		return next(c)
	}
}

// RequireAdmin 載入使用者並確認角色為 admin，使用者放入 ContextUserKey
func RequireAdmin(db database.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return RequireSession(func(c echo.Context) error {
			u, err := getUserByID(c.Request().Context(), db, IdentityFrom(c).UserID)
			if errors.Is(err, pgx.ErrNoRows) {
				return c.JSON(http.StatusUnauthorized, dto.HTTPError{Message: "not authenticated"})
			}
			if err != nil {
				return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: "user lookup failed"})
			}
			if !u.IsAdmin() {
				return c.JSON(http.StatusForbidden, dto.HTTPError{Message: "admin privileges required"})
			}
			c.Set(ContextUserKey, u)
			return next(c)
		})
	}
}

// UserFrom RequireAdmin 之後可用
func UserFrom(c echo.Context) *model.User {
	u, _ := c.Get(ContextUserKey).(*model.User)
	return u
}
