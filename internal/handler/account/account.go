// File: internal/handler/account/account.go
package account

import (
	"context"
	"errors"
	"net/http"
	"time"

	"smart-home-portal/internal/apperr"
	"smart-home-portal/internal/database"
	"smart-home-portal/internal/dto"
	"smart-home-portal/internal/middleware"
	"smart-home-portal/internal/model"
	"smart-home-portal/internal/service"
	"smart-home-portal/internal/session"
	"smart-home-portal/internal/store"
	"smart-home-portal/internal/view"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

var getUserByID = store.GetUserByID

// Service 由 service.Accounts 實作
type Service interface {
	Login(ctx context.Context, email, password string) (string, bool, error)
	Signup(ctx context.Context, in service.SignupInput) (string, *model.User, error)
	Logout(ctx context.Context, token string) error
}

// CookieOptions session cookie 設定
type CookieOptions struct {
	Secure bool
	// TTL 0 表示瀏覽器 session cookie
	TTL time.Duration
}

func (o CookieOptions) set(c echo.Context, token string) {
	ck := &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if o.TTL > 0 {
		ck.MaxAge = int(o.TTL / time.Second)
	}
	c.SetCookie(ck)
}

func (o CookieOptions) clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

// PageHandler 渲染不需要資料的頁面 (login、signup、help)
func PageHandler(name, title string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, name, view.Page{Title: title})
	}
}

// AccountPageHandler 顯示目前使用者的個人資料
// 需搭配 middleware.RequireSessionPage
func AccountPageHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, err := getUserByID(c.Request().Context(), db, middleware.IdentityFrom(c).UserID)
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Redirect(http.StatusFound, middleware.LoginPath)
		}
		if err != nil {
			c.Logger().Errorf("account page: %v", err)
			return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: "user lookup failed"})
		}
		return c.Render(http.StatusOK, view.PageAccount, view.AccountPage{Title: "Аккаунт", User: *u})
	}
}

// LoginHandler 使用者登入
// @Summary     Login
// @Description 驗證 Email 與密碼，成功時設定 HTTP-only 的 sessionId cookie
// @Tags        account
// @Accept      json
// @Produce     json
// @Param       body body     dto.LoginRequest true "登入資料"
// @Success     200  {object} dto.LoginResponse
// @Failure     400  {object} dto.HTTPError
// @Failure     500  {object} dto.HTTPError
// @Router      /account/login [post]
func LoginHandler(svc Service, opts CookieOptions) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.LoginRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid request body"})
		}
		// 格式不符與帳密錯誤一樣只回 correct=false
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusOK, dto.LoginResponse{Correct: false})
		}

		token, ok, err := svc.Login(c.Request().Context(), req.Email, req.Password)
		if err != nil {
			c.Logger().Errorf("login: %v", err)
			return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: "login failed"})
		}
		if !ok {
			return c.JSON(http.StatusOK, dto.LoginResponse{Correct: false})
		}
		opts.set(c, token)
		return c.JSON(http.StatusOK, dto.LoginResponse{Correct: true})
	}
}

// SignupHandler 註冊新帳號並直接登入
// @Summary     Signup
// @Description Email 已註冊時回傳 400；成功時回傳 200 並設定 sessionId cookie
// @Tags        account
// @Accept      json
// @Param       body body dto.SignupRequest true "註冊資料"
// @Success     200  "OK"
// @Failure     400  {object} dto.HTTPError
// @Failure     500  {object} dto.HTTPError
// @Router      /account/signup [post]
func SignupHandler(svc Service, opts CookieOptions) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.SignupRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid request body"})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: err.Error()})
		}

		token, _, err := svc.Signup(c.Request().Context(), service.SignupInput{
			Email:    req.UserData.Email,
			Password: req.UserData.Password,
			Name:     req.UserData.Name,
			Surname:  req.UserData.Surname,
		})
		if apperr.Is(err, apperr.KindAlreadyExists) {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "email already registered"})
		}
		if apperr.Is(err, apperr.KindValidation) {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: apperr.MessageOf(err)})
		}
		if err != nil {
			c.Logger().Errorf("signup: %v", err)
			return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: "signup failed"})
		}
		opts.set(c, token)
		return c.NoContent(http.StatusOK)
	}
}

// ExitHandler 登出：刪除 session 並清除 cookie
// @Summary     Logout
// @Tags        account
// @Accept      json
// @Param       body body dto.AccountRequest true "operationType 必須為 exit"
// @Success     200  "OK"
// @Failure     400  {object} dto.HTTPError
// @Failure     500  {object} dto.HTTPError
// @Router      /account [post]
func ExitHandler(svc Service, opts CookieOptions) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.AccountRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid request body"})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: err.Error()})
		}

		if ck, err := c.Cookie(session.CookieName); err == nil && ck.Value != "" {
			if err := svc.Logout(c.Request().Context(), ck.Value); err != nil {
				c.Logger().Errorf("logout: %v", err)
				return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: "logout failed"})
			}
		}
		opts.clear(c)
		return c.NoContent(http.StatusOK)
	}
}
