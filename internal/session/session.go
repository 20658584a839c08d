// Package session 將 cookie 中的不透明 session token 解析為使用者身分
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"smart-home-portal/internal/apperr"
	"smart-home-portal/internal/cache"
	"smart-home-portal/internal/database"
	"smart-home-portal/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
)

// CookieName 與舊版前端相容
const CookieName = "sessionId"

const (
	tokenBytes     = 32
	cacheNamespace = "session"
)

var (
	randRead      = rand.Read
	timeNow       = time.Now
	getSession    = store.GetSession
	sessionExists = store.SessionExists
	createSession = store.CreateSession
	deleteSession = store.DeleteSession
)

// Identity 為解析後的身分，UserID 為 0 代表匿名
type Identity struct {
	UserID int
}

var Anonymous = Identity{}

func (i Identity) IsAnonymous() bool { return i.UserID == 0 }

// Logger 只需要 echo.Logger 的一小部分
type Logger interface {
	Warnf(format string, args ...interface{})
}

type Options struct {
	// TTL 0 表示永不過期
	TTL      time.Duration
	CacheTTL time.Duration
	Logger   Logger
}

// Manager 負責 session 的解析、發行與撤銷
// 資料庫為權威來源，Redis 只作為快取
type Manager struct {
	db    database.DB
	cache cache.Cache
	opts  Options
}

func NewManager(db database.DB, c cache.Cache, opts Options) *Manager {
	return &Manager{db: db, cache: c, opts: opts}
}

// Resolve 查詢 token 對應的使用者；找不到時回傳 Anonymous 而非錯誤
func (m *Manager) Resolve(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Anonymous, nil
	}

	if id, ok := m.fromCache(ctx, token); ok {
		return Identity{UserID: id}, nil
	}

	s, err := getSession(ctx, m.db, token)
	if errors.Is(err, pgx.ErrNoRows) {
		return Anonymous, nil
	}
	if err != nil {
		return Anonymous, apperr.Wrap(apperr.KindStore, "session lookup failed", err)
	}

	ttl := m.opts.CacheTTL
	if m.opts.TTL > 0 {
		remaining := m.opts.TTL - timeNow().Sub(s.CreatedAt)
		if remaining <= 0 {
			if err := deleteSession(ctx, m.db, token); err != nil {
				m.warnf("刪除過期 session 失敗: %v", err)
			}
			return Anonymous, nil
		}
		if ttl <= 0 || remaining < ttl {
			ttl = remaining
		}
	}
	m.toCache(ctx, token, s.UserID, ttl)
	return Identity{UserID: s.UserID}, nil
}

// Issue 為 userID 建立新 session；token 碰撞時重新產生
func (m *Manager) Issue(ctx context.Context, userID int) (string, error) {
	for {
		token, err := newToken()
		if err != nil {
			return "", fmt.Errorf("Issue: %w", err)
		}
		exists, err := sessionExists(ctx, m.db, token)
		if err != nil {
			return "", apperr.Wrap(apperr.KindStore, "session lookup failed", err)
		}
		if exists {
			continue
		}
		if _, err := createSession(ctx, m.db, token, userID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				continue
			}
			return "", apperr.Wrap(apperr.KindStore, "session create failed", err)
		}
		return token, nil
	}
}

// Revoke 刪除 session 並清除快取
func (m *Manager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := deleteSession(ctx, m.db, token); err != nil {
		return apperr.Wrap(apperr.KindStore, "session delete failed", err)
	}
	if m.cache != nil {
		if err := m.cache.Del(ctx, cache.Key(cacheNamespace, token)).Err(); err != nil {
			m.warnf("清除 session 快取失敗: %v", err)
		}
	}
	return nil
}

// Forget 只清除快取；資料列已由呼叫端刪除或修改
func (m *Manager) Forget(ctx context.Context, tokens ...string) {
	if m.cache == nil || len(tokens) == 0 {
		return
	}
	keys := make([]string, len(tokens))
	for i, t := range tokens {
		keys[i] = cache.Key(cacheNamespace, t)
	}
	if err := m.cache.Del(ctx, keys...).Err(); err != nil {
		m.warnf("清除 session 快取失敗: %v", err)
	}
}

func (m *Manager) fromCache(ctx context.Context, token string) (int, bool) {
	if m.cache == nil {
		return 0, false
	}
	v, err := m.cache.Get(ctx, cache.Key(cacheNamespace, token)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			m.warnf("讀取 session 快取失敗: %v", err)
		}
		return 0, false
	}
	id, err := strconv.Atoi(v)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (m *Manager) toCache(ctx context.Context, token string, userID int, ttl time.Duration) {
	if m.cache == nil || ttl <= 0 {
		return
	}
	if err := m.cache.Set(ctx, cache.Key(cacheNamespace, token), userID, ttl).Err(); err != nil {
		m.warnf("寫入 session 快取失敗: %v", err)
	}
}

func (m *Manager) warnf(format string, args ...interface{}) {
	if m.opts.Logger != nil {
		m.opts.Logger.Warnf(format, args...)
	}
}

// newToken 產生 256-bit 隨機 token，以 URL-safe base64 編碼以便放入 cookie
func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := randRead(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
