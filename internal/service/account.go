// File: internal/service/account.go
package service

import (
	"context"
	"errors"
	"strings"

	"smart-home-portal/internal/apperr"
	"smart-home-portal/internal/database"
	"smart-home-portal/internal/model"
	"smart-home-portal/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	getUserByEmail = store.GetUserByEmail
	createUser     = store.CreateUser
)

// SessionIssuer 由 session.Manager 實作
type SessionIssuer interface {
	Issue(ctx context.Context, userID int) (string, error)
	Revoke(ctx context.Context, token string) error
}

// SignupInput 註冊資料
type SignupInput struct {
	Email    string
	Password string
	Name     string
	Surname  string
}

// Accounts 處理登入、註冊與登出
type Accounts struct {
	db       database.DB
	sessions SessionIssuer
}

func NewAccounts(db database.DB, sessions SessionIssuer) *Accounts {
	return &Accounts{db: db, sessions: sessions}
}

// AuthenticateUser 以 bcrypt 驗證密碼
func AuthenticateUser(user model.User, password string) error {
	if user.PasswordHash == "" {
		return errors.New("invalid password")
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return errors.New("invalid password")
	}
	return nil
}

// Login 驗證帳密，成功時發行新的 session token
// 帳號不存在或密碼錯誤回傳 ok=false，只有基礎設施錯誤才回傳 err
func (a *Accounts) Login(ctx context.Context, email, password string) (string, bool, error) {
	user, err := getUserByEmail(ctx, a.db, strings.ToLower(email))
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperr.Wrap(apperr.KindStore, "user lookup failed", err)
	}
	if err := AuthenticateUser(*user, password); err != nil {
		return "", false, nil
	}
	token, err := a.sessions.Issue(ctx, user.ID)
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}

// Signup 先以 email 查詢，已存在時回傳 AlreadyExists，否則建立使用者並發行 session
func (a *Accounts) Signup(ctx context.Context, in SignupInput) (string, *model.User, error) {
	email := strings.ToLower(in.Email)
	_, err := getUserByEmail(ctx, a.db, email)
	if err == nil {
		return "", nil, apperr.New(apperr.KindAlreadyExists, "email already registered")
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", nil, apperr.Wrap(apperr.KindStore, "user lookup failed", err)
	}

	hash, err := HashPassword(in.Password)
	if apperr.Is(err, apperr.KindValidation) {
		return "", nil, err
	}
	if err != nil {
		return "", nil, apperr.Wrap(apperr.KindStore, "failed to hash password", err)
	}

	u := &model.User{Email: email, PasswordHash: hash, Name: in.Name}
	if in.Surname != "" {
		u.Surname = &in.Surname
	}
	created, err := createUser(ctx, a.db, u)
	if err != nil {
		// 兩個請求同時註冊同一 email 時由唯一索引擋下
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", nil, apperr.Wrap(apperr.KindAlreadyExists, "email already registered", err)
		}
		return "", nil, apperr.Wrap(apperr.KindStore, "user create failed", err)
	}

	token, err := a.sessions.Issue(ctx, created.ID)
	if err != nil {
		return "", nil, err
	}
	return token, created, nil
}

// Logout 撤銷 token 對應的 session
func (a *Accounts) Logout(ctx context.Context, token string) error {
	return a.sessions.Revoke(ctx, token)
}
