package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"smart-home-portal/internal/apperr"
	"smart-home-portal/internal/cache"
	"smart-home-portal/internal/database"
	"smart-home-portal/internal/model"
	"smart-home-portal/internal/store"
	"smart-home-portal/internal/tables"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func restore() {
	randRead = rand.Read
	timeNow = time.Now
	getSession = store.GetSession
	sessionExists = store.SessionExists
	createSession = store.CreateSession
	deleteSession = store.DeleteSession
}

type recLogger struct{ msgs []string }

func (l *recLogger) Warnf(format string, args ...interface{}) {
	l.msgs = append(l.msgs, fmt.Sprintf(format, args...))
}

func missCache() *cache.FakeCache {
	return &cache.FakeCache{
		GetFn: func(context.Context, string) *redis.StringCmd { return redis.NewStringResult("", redis.Nil) },
		SetFn: func(context.Context, string, any, time.Duration) *redis.StatusCmd {
			return redis.NewStatusResult("OK", nil)
		},
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("empty token is anonymous", func(t *testing.T) {
		t.Cleanup(restore)
		m := NewManager(nil, nil, Options{})
		id, err := m.Resolve(ctx, "")
		require.NoError(t, err)
		require.True(t, id.IsAnonymous())
	})

	t.Run("cache hit skips store", func(t *testing.T) {
		t.Cleanup(restore)
		getSession = func(context.Context, database.DB, string) (*model.Session, error) {
			t.Fatal("store should not be queried")
			return nil, nil
		}
		c := &cache.FakeCache{GetFn: func(_ context.Context, key string) *redis.StringCmd {
			require.Equal(t, "session:tok", key)
			return redis.NewStringResult("9", nil)
		}}
		id, err := NewManager(nil, c, Options{}).Resolve(ctx, "tok")
		require.NoError(t, err)
		require.Equal(t, 9, id.UserID)
	})

	t.Run("cache miss falls back to store and populates cache", func(t *testing.T) {
		t.Cleanup(restore)
		getSession = func(context.Context, database.DB, string) (*model.Session, error) {
			return &model.Session{ID: "tok", UserID: 4, CreatedAt: time.Now()}, nil
		}
		var stored any
		var storedTTL time.Duration
		c := missCache()
		c.SetFn = func(_ context.Context, _ string, v any, ttl time.Duration) *redis.StatusCmd {
			stored, storedTTL = v, ttl
			return redis.NewStatusResult("OK", nil)
		}
		id, err := NewManager(nil, c, Options{CacheTTL: time.Minute}).Resolve(ctx, "tok")
		require.NoError(t, err)
		require.Equal(t, 4, id.UserID)
		require.Equal(t, 4, stored)
		require.Equal(t, time.Minute, storedTTL)
	})

	t.Run("cache failure is logged and ignored", func(t *testing.T) {
		t.Cleanup(restore)
		getSession = func(context.Context, database.DB, string) (*model.Session, error) {
			return &model.Session{UserID: 2, CreatedAt: time.Now()}, nil
		}
		c := &cache.FakeCache{
			GetFn: func(context.Context, string) *redis.StringCmd { return redis.NewStringResult("", errors.New("down")) },
			SetFn: func(context.Context, string, any, time.Duration) *redis.StatusCmd {
				return redis.NewStatusResult("", errors.New("down"))
			},
		}
		log := &recLogger{}
		id, err := NewManager(nil, c, Options{CacheTTL: time.Minute, Logger: log}).Resolve(ctx, "tok")
		require.NoError(t, err)
		require.Equal(t, 2, id.UserID)
		require.Len(t, log.msgs, 2)
	})

	t.Run("unknown token is anonymous", func(t *testing.T) {
		t.Cleanup(restore)
		getSession = func(context.Context, database.DB, string) (*model.Session, error) {
			return nil, fmt.Errorf("GetSession: %w", pgx.ErrNoRows)
		}
		id, err := NewManager(nil, missCache(), Options{}).Resolve(ctx, "nope")
		require.NoError(t, err)
		require.Equal(t, Anonymous, id)
	})

	t.Run("store failure is distinct from not found", func(t *testing.T) {
		t.Cleanup(restore)
		getSession = func(context.Context, database.DB, string) (*model.Session, error) {
			return nil, errors.New("connection refused")
		}
		_, err := NewManager(nil, missCache(), Options{}).Resolve(ctx, "tok")
		require.Error(t, err)
		require.True(t, apperr.Is(err, apperr.KindStore))
	})

	t.Run("expired session is deleted", func(t *testing.T) {
		t.Cleanup(restore)
		now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
		timeNow = func() time.Time { return now }
		getSession = func(context.Context, database.DB, string) (*model.Session, error) {
			return &model.Session{UserID: 3, CreatedAt: now.Add(-2 * time.Hour)}, nil
		}
		deleted := ""
		deleteSession = func(_ context.Context, _ database.DB, tok string) error { deleted = tok; return nil }
		id, err := NewManager(nil, missCache(), Options{TTL: time.Hour}).Resolve(ctx, "old")
		require.NoError(t, err)
		require.True(t, id.IsAnonymous())
		require.Equal(t, "old", deleted)
	})

	t.Run("cache ttl capped by remaining lifetime", func(t *testing.T) {
		t.Cleanup(restore)
		now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
		timeNow = func() time.Time { return now }
		getSession = func(context.Context, database.DB, string) (*model.Session, error) {
			return &model.Session{UserID: 3, CreatedAt: now.Add(-55 * time.Minute)}, nil
		}
		var gotTTL time.Duration
		c := missCache()
		c.SetFn = func(_ context.Context, _ string, _ any, ttl time.Duration) *redis.StatusCmd {
			gotTTL = ttl
			return redis.NewStatusResult("OK", nil)
		}
		id, err := NewManager(nil, c, Options{TTL: time.Hour, CacheTTL: 10 * time.Minute}).Resolve(ctx, "tok")
		require.NoError(t, err)
		require.Equal(t, 3, id.UserID)
		require.Equal(t, 5*time.Minute, gotTTL)
	})
}

func TestIssue(t *testing.T) {
	ctx := context.Background()

	t.Run("retries on collision", func(t *testing.T) {
		t.Cleanup(restore)
		calls := 0
		sessionExists = func(context.Context, database.DB, string) (bool, error) {
			calls++
			return calls < 3, nil
		}
		var created string
		createSession = func(_ context.Context, _ database.DB, tok string, uid int) (*model.Session, error) {
			require.Equal(t, 8, uid)
			created = tok
			return &model.Session{ID: tok, UserID: uid}, nil
		}
		tok, err := NewManager(nil, nil, Options{}).Issue(ctx, 8)
		require.NoError(t, err)
		require.Equal(t, 3, calls)
		require.Equal(t, created, tok)
		raw, err := base64.RawURLEncoding.DecodeString(tok)
		require.NoError(t, err)
		require.Len(t, raw, 32)
	})

	t.Run("retries on unique violation", func(t *testing.T) {
		t.Cleanup(restore)
		sessionExists = func(context.Context, database.DB, string) (bool, error) { return false, nil }
		attempts := 0
		createSession = func(_ context.Context, _ database.DB, tok string, uid int) (*model.Session, error) {
			attempts++
			if attempts == 1 {
				return nil, fmt.Errorf("CreateSession: %w", &pgconn.PgError{Code: "23505"})
			}
			return &model.Session{ID: tok, UserID: uid}, nil
		}
		_, err := NewManager(nil, nil, Options{}).Issue(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, 2, attempts)
	})

	t.Run("errors", func(t *testing.T) {
		t.Cleanup(restore)
		m := NewManager(nil, nil, Options{})

		randRead = func([]byte) (int, error) { return 0, errors.New("rand") }
		_, err := m.Issue(ctx, 1)
		require.Error(t, err)

		randRead = rand.Read
		sessionExists = func(context.Context, database.DB, string) (bool, error) { return false, errors.New("down") }
		_, err = m.Issue(ctx, 1)
		require.True(t, apperr.Is(err, apperr.KindStore))

		sessionExists = func(context.Context, database.DB, string) (bool, error) { return false, nil }
		createSession = func(context.Context, database.DB, string, int) (*model.Session, error) {
			return nil, errors.New("fk")
		}
		_, err = m.Issue(ctx, 1)
		require.True(t, apperr.Is(err, apperr.KindStore))
	})

	t.Run("concurrent logins get distinct tokens", func(t *testing.T) {
		t.Cleanup(restore)
		var mu sync.Mutex
		sessions := map[string]int{}
		sessionExists = func(_ context.Context, _ database.DB, tok string) (bool, error) {
			mu.Lock()
			defer mu.Unlock()
			_, ok := sessions[tok]
			return ok, nil
		}
		createSession = func(_ context.Context, _ database.DB, tok string, uid int) (*model.Session, error) {
			mu.Lock()
			defer mu.Unlock()
			sessions[tok] = uid
			return &model.Session{ID: tok, UserID: uid, CreatedAt: time.Now()}, nil
		}
		getSession = func(_ context.Context, _ database.DB, tok string) (*model.Session, error) {
			mu.Lock()
			defer mu.Unlock()
			uid, ok := sessions[tok]
			if !ok {
				return nil, pgx.ErrNoRows
			}
			return &model.Session{ID: tok, UserID: uid, CreatedAt: time.Now()}, nil
		}

		m := NewManager(nil, nil, Options{})
		tokens := make([]string, 2)
		var wg sync.WaitGroup
		for i := range tokens {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				tok, err := m.Issue(ctx, 6)
				require.NoError(t, err)
				tokens[i] = tok
			}(i)
		}
		wg.Wait()
		require.NotEqual(t, tokens[0], tokens[1])
		for _, tok := range tokens {
			id, err := m.Resolve(ctx, tok)
			require.NoError(t, err)
			require.Equal(t, 6, id.UserID)
		}
	})
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	t.Cleanup(restore)

	require.NoError(t, NewManager(nil, nil, Options{}).Revoke(ctx, ""))

	deleted := ""
	deleteSession = func(_ context.Context, _ database.DB, tok string) error { deleted = tok; return nil }
	var delKeys []string
	c := &cache.FakeCache{DelFn: func(_ context.Context, keys ...string) *redis.IntCmd {
		delKeys = keys
		return redis.NewIntResult(1, nil)
	}}
	require.NoError(t, NewManager(nil, c, Options{}).Revoke(ctx, "tok"))
	require.Equal(t, "tok", deleted)
	require.Equal(t, []string{"session:tok"}, delKeys)

	deleteSession = func(context.Context, database.DB, string) error { return errors.New("down") }
	err := NewManager(nil, c, Options{}).Revoke(ctx, "tok")
	require.True(t, apperr.Is(err, apperr.KindStore))
}

func TestForget(t *testing.T) {
	ctx := context.Background()

	NewManager(nil, nil, Options{}).Forget(ctx, "tok")
	NewManager(nil, &cache.FakeCache{}, Options{}).Forget(ctx)

	var delKeys []string
	c := &cache.FakeCache{DelFn: func(_ context.Context, keys ...string) *redis.IntCmd {
		delKeys = keys
		return redis.NewIntResult(int64(len(keys)), nil)
	}}
	NewManager(nil, c, Options{}).Forget(ctx, "a", "b")
	require.Equal(t, []string{"session:a", "session:b"}, delKeys)

	log := &recLogger{}
	c.DelFn = func(context.Context, ...string) *redis.IntCmd { return redis.NewIntResult(0, errors.New("down")) }
	NewManager(nil, c, Options{Logger: log}).Forget(ctx, "a")
	require.Len(t, log.msgs, 1)
}

// memCache 以 map 模擬 Redis
func memCache() *cache.FakeCache {
	m := map[string]string{}
	return &cache.FakeCache{
		GetFn: func(_ context.Context, key string) *redis.StringCmd {
			v, ok := m[key]
			if !ok {
				return redis.NewStringResult("", redis.Nil)
			}
			return redis.NewStringResult(v, nil)
		},
		SetFn: func(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
			m[key] = fmt.Sprint(value)
			return redis.NewStatusResult("OK", nil)
		},
		DelFn: func(_ context.Context, keys ...string) *redis.IntCmd {
			for _, k := range keys {
				delete(m, k)
			}
			return redis.NewIntResult(int64(len(keys)), nil)
		},
	}
}

type tokenRows struct {
	tokens []string
	idx    int
}

func (r *tokenRows) Close()                                       {}
func (r *tokenRows) Err() error                                   { return nil }
func (r *tokenRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *tokenRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *tokenRows) Next() bool {
	if r.idx >= len(r.tokens) {
		return false
	}
	r.idx++
	return true
}
func (r *tokenRows) Scan(...any) error      { return errors.New("not supported") }
func (r *tokenRows) Values() ([]any, error) { return []any{r.tokens[r.idx-1]}, nil }
func (r *tokenRows) RawValues() [][]byte    { return nil }
func (r *tokenRows) Conn() *pgx.Conn        { return nil }

// sessionTable 以 token → user 的 map 模擬 sessions 資料表，
// users 的刪除依外鍵連帶刪除 session
func sessionTable(rows map[string]int) *database.FakeDB {
	matching := func(sql string, args []any) []string {
		var out []string
		for tok, uid := range rows {
			switch {
			case strings.Contains(sql, `"user_id" IN (SELECT "id" FROM "users" WHERE "id" = $1)`):
				if int64(uid) == args[0].(int64) {
					out = append(out, tok)
				}
			case strings.HasSuffix(sql, `FROM "sessions" WHERE "id" = $1`):
				if tok == args[0].(string) {
					out = append(out, tok)
				}
			}
		}
		sort.Strings(out)
		return out
	}
	return &database.FakeDB{
		QueryFn: func(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
			return &tokenRows{tokens: matching(sql, args)}, nil
		},
		ExecFn: func(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			var n int
			switch sql {
			case `DELETE FROM "sessions" WHERE "id" = $1`:
				if _, ok := rows[args[0].(string)]; ok {
					delete(rows, args[0].(string))
					n = 1
				}
			case `DELETE FROM "users" WHERE "id" = $1`:
				for tok, uid := range rows {
					if int64(uid) == args[0].(int64) {
						delete(rows, tok)
					}
				}
				n = 1
			default:
				return pgconn.CommandTag{}, fmt.Errorf("unexpected Exec: %s", sql)
			}
			return pgconn.NewCommandTag(fmt.Sprintf("DELETE %d", n)), nil
		},
	}
}

func TestResolveAfterTableDelete(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, rows map[string]int) (*Manager, *tables.Dispatcher) {
		t.Cleanup(restore)
		getSession = func(_ context.Context, _ database.DB, tok string) (*model.Session, error) {
			uid, ok := rows[tok]
			if !ok {
				return nil, fmt.Errorf("GetSession: %w", pgx.ErrNoRows)
			}
			return &model.Session{ID: tok, UserID: uid, CreatedAt: time.Now()}, nil
		}
		db := sessionTable(rows)
		m := NewManager(db, memCache(), Options{CacheTTL: time.Minute})
		d := tables.NewDispatcher(db, tables.NewRegistry(), 0)
		d.SetSessionInvalidator(m)
		return m, d
	}

	t.Run("session row deleted", func(t *testing.T) {
		m, d := setup(t, map[string]int{"tok": 7, "other": 7})

		id, err := m.Resolve(ctx, "tok")
		require.NoError(t, err)
		require.Equal(t, 7, id.UserID)

		res, err := d.Execute(ctx, tables.Request{Table: "Sessions", Op: tables.OpDelete, Filter: map[string]any{"id": "tok"}})
		require.NoError(t, err)
		require.EqualValues(t, 1, res.Count)

		id, err = m.Resolve(ctx, "tok")
		require.NoError(t, err)
		require.True(t, id.IsAnonymous())

		id, err = m.Resolve(ctx, "other")
		require.NoError(t, err)
		require.Equal(t, 7, id.UserID)
	})

	t.Run("user deleted cascades", func(t *testing.T) {
		m, d := setup(t, map[string]int{"a": 7, "b": 7, "c": 8})
		for _, tok := range []string{"a", "b", "c"} {
			_, err := m.Resolve(ctx, tok)
			require.NoError(t, err)
		}

		_, err := d.Execute(ctx, tables.Request{Table: "Users", Op: tables.OpDelete, Filter: map[string]any{"id": 7}})
		require.NoError(t, err)

		for _, tok := range []string{"a", "b"} {
			id, err := m.Resolve(ctx, tok)
			require.NoError(t, err)
			require.True(t, id.IsAnonymous(), tok)
		}
		id, err := m.Resolve(ctx, "c")
		require.NoError(t, err)
		require.Equal(t, 8, id.UserID)
	})
}
