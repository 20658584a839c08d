package tables

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"smart-home-portal/internal/apperr"
	"smart-home-portal/internal/database"
	"smart-home-portal/internal/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var hashPassword = service.HashPassword

// Op 通用 API 的四種操作，每個請求只執行其中一種
type Op int

const (
	OpRead Op = iota
	OpCreate
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "read"
	}
}

// OpFromMethod 將 HTTP 方法對應到操作
func OpFromMethod(method string) (Op, bool) {
	switch method {
	case http.MethodGet:
		return OpRead, true
	case http.MethodPost:
		return OpCreate, true
	case http.MethodPut, http.MethodPatch:
		return OpUpdate, true
	case http.MethodDelete:
		return OpDelete, true
	}
	return OpRead, false
}

// Request 一次通用資料表操作
type Request struct {
	Table   string
	Op      Op
	Filter  map[string]any
	Payload map[string]any
}

// Result 依操作種類只會填入其中一個欄位
type Result struct {
	Op    Op
	Rows  []map[string]any
	Row   map[string]any
	Count int64
}

// Body 轉為回應 JSON：Read 為陣列、Create 為新資料列、Update/Delete 為 {"count": n}
func (r Result) Body() any {
	switch r.Op {
	case OpCreate:
		return r.Row
	case OpUpdate, OpDelete:
		return map[string]int64{"count": r.Count}
	default:
		if r.Rows == nil {
			return []map[string]any{}
		}
		return r.Rows
	}
}

// SessionInvalidator 由 session.Manager 實作，用來清除已刪除 session 的快取
type SessionInvalidator interface {
	Forget(ctx context.Context, tokens ...string)
}

// Dispatcher 依名稱找到資料表並執行操作
type Dispatcher struct {
	db       database.DB
	registry *Registry
	timeout  time.Duration
	sessions SessionInvalidator
}

// NewDispatcher timeout <= 0 表示不另外設定逾時
func NewDispatcher(db database.DB, registry *Registry, timeout time.Duration) *Dispatcher {
	return &Dispatcher{db: db, registry: registry, timeout: timeout}
}

func (d *Dispatcher) Registry() *Registry { return d.registry }

// SetSessionInvalidator 設定後，透過通用 API 刪除或修改 session
// (包含刪除使用者連帶刪除的 session) 會同步清除快取
func (d *Dispatcher) SetSessionInvalidator(inv SessionInvalidator) { d.sessions = inv }

// Execute 執行請求；錯誤皆為 *apperr.Error
func (d *Dispatcher) Execute(ctx context.Context, req Request) (Result, error) {
	t, ok := d.registry.Lookup(req.Table)
	if !ok {
		return Result{}, apperr.ErrTableNotFound
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	tokens, err := d.affectedSessions(ctx, t, req)
	if err != nil {
		return Result{}, classify(err)
	}

	res := Result{Op: req.Op}
	switch req.Op {
	case OpRead:
		res.Rows, err = t.Read(ctx, d.db, req.Filter)
	case OpCreate:
		res.Row, err = t.Create(ctx, d.db, req.Payload)
	case OpUpdate:
		res.Count, err = t.Update(ctx, d.db, req.Filter, req.Payload)
	case OpDelete:
		res.Count, err = t.Delete(ctx, d.db, req.Filter)
	default:
		err = apperr.New(apperr.KindValidation, "unsupported operation")
	}
	if err != nil {
		return Result{}, classify(err)
	}
	if len(tokens) > 0 {
		d.sessions.Forget(ctx, tokens...)
	}
	return res, nil
}

// affectedSessions 在寫入前找出會失效的 session token：
// Sessions 的 Update/Delete 直接命中，Users 的 Delete 經外鍵連帶刪除
func (d *Dispatcher) affectedSessions(ctx context.Context, t *Table, req Request) ([]string, error) {
	if d.sessions == nil {
		return nil, nil
	}
	var sql string
	var args []any
	switch {
	case t.SQLName == "sessions" && (req.Op == OpUpdate || req.Op == OpDelete):
		where, wargs, err := t.where(req.Filter, 1)
		if err != nil {
			return nil, err
		}
		sql, args = `SELECT "id" FROM "sessions"`+where, wargs
	case t.SQLName == "users" && req.Op == OpDelete:
		where, wargs, err := t.where(req.Filter, 1)
		if err != nil {
			return nil, err
		}
		sql, args = `SELECT "id" FROM "sessions" WHERE "user_id" IN (SELECT "id" FROM "users"`+where+`)`, wargs
	default:
		return nil, nil
	}

	rows, err := d.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("affected sessions: %w", err)
	}
	found, err := collect(rows, []string{"id"})
	if err != nil {
		return nil, fmt.Errorf("affected sessions: %w", err)
	}
	tokens := make([]string, 0, len(found))
	for _, r := range found {
		if tok, ok := r["id"].(string); ok {
			tokens = append(tokens, tok)
		}
	}
	return tokens, nil
}

// Read 回傳所有符合 filter 的資料列，空 filter 代表全部
func (t *Table) Read(ctx context.Context, db database.DB, filter map[string]any) ([]map[string]any, error) {
	where, args, err := t.where(filter, 1)
	if err != nil {
		return nil, err
	}
	cols := t.readable()
	sql := "SELECT " + quoteList(cols) + " FROM " + quote(t.SQLName) + where + " ORDER BY " + quote(t.PrimaryKey)

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("Read %s: %w", t.Name, err)
	}
	out, err := collect(rows, cols)
	if err != nil {
		return nil, fmt.Errorf("Read %s: %w", t.Name, err)
	}
	return out, nil
}

// Create 新增一筆資料，回傳含預設值與主鍵的資料列
func (t *Table) Create(ctx context.Context, db database.DB, payload map[string]any) (map[string]any, error) {
	names, args, err := t.values(payload)
	if err != nil {
		return nil, err
	}
	cols := t.readable()

	var sql string
	if len(names) == 0 {
		sql = "INSERT INTO " + quote(t.SQLName) + " DEFAULT VALUES"
	} else {
		ph := make([]string, len(names))
		for i := range names {
			ph[i] = fmt.Sprintf("$%d", i+1)
		}
		sql = "INSERT INTO " + quote(t.SQLName) + " (" + quoteList(names) + ") VALUES (" + strings.Join(ph, ", ") + ")"
	}
	sql += " RETURNING " + quoteList(cols)

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("Create %s: %w", t.Name, err)
	}
	out, err := collect(rows, cols)
	if err != nil {
		return nil, fmt.Errorf("Create %s: %w", t.Name, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("Create %s: expected 1 row, got %d", t.Name, len(out))
	}
	return out[0], nil
}

// Update 將 changes 套用到所有符合 filter 的資料列，回傳受影響筆數
func (t *Table) Update(ctx context.Context, db database.DB, filter, changes map[string]any) (int64, error) {
	names, args, err := t.values(changes)
	if err != nil {
		return 0, err
	}
	if len(names) == 0 {
		return 0, apperr.New(apperr.KindValidation, "no changes supplied")
	}
	set := make([]string, len(names))
	for i, n := range names {
		set[i] = fmt.Sprintf("%s = $%d", quote(n), i+1)
	}
	where, wargs, err := t.where(filter, len(args)+1)
	if err != nil {
		return 0, err
	}

	sql := "UPDATE " + quote(t.SQLName) + " SET " + strings.Join(set, ", ") + where
	tag, err := db.Exec(ctx, sql, append(args, wargs...)...)
	if err != nil {
		return 0, fmt.Errorf("Update %s: %w", t.Name, err)
	}
	return tag.RowsAffected(), nil
}

// Delete 刪除所有符合 filter 的資料列，回傳刪除筆數
func (t *Table) Delete(ctx context.Context, db database.DB, filter map[string]any) (int64, error) {
	where, args, err := t.where(filter, 1)
	if err != nil {
		return 0, err
	}
	tag, err := db.Exec(ctx, "DELETE FROM "+quote(t.SQLName)+where, args...)
	if err != nil {
		return 0, fmt.Errorf("Delete %s: %w", t.Name, err)
	}
	return tag.RowsAffected(), nil
}

// where 產生等值 AND 條件，nil 值轉為 IS NULL
func (t *Table) where(filter map[string]any, start int) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}
	keys := sortedKeys(filter)
	conds := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		c, ok := t.Column(k)
		if !ok || c.WriteOnly {
			return "", nil, apperr.New(apperr.KindValidation, fmt.Sprintf("unknown column %q in filter", k))
		}
		v, err := coerce(c, filter[k])
		if err != nil {
			return "", nil, apperr.Wrap(apperr.KindValidation, fmt.Sprintf("invalid value for %q", k), err)
		}
		if v == nil {
			conds = append(conds, quote(k)+" IS NULL")
			continue
		}
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s = $%d", quote(k), start+len(args)-1))
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// values 檢查並轉換寫入用的欄位值
func (t *Table) values(payload map[string]any) ([]string, []any, error) {
	keys := sortedKeys(payload)
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		c, ok := t.Column(k)
		if !ok {
			return nil, nil, apperr.New(apperr.KindValidation, fmt.Sprintf("unknown column %q", k))
		}
		if c.Generated {
			return nil, nil, apperr.New(apperr.KindValidation, fmt.Sprintf("column %q is read-only", k))
		}
		v, err := coerce(c, payload[k])
		if err != nil {
			return nil, nil, apperr.Wrap(apperr.KindValidation, fmt.Sprintf("invalid value for %q", k), err)
		}
		if c.Hashed && v != nil {
			h, err := hashPassword(v.(string))
			if apperr.Is(err, apperr.KindValidation) {
				return nil, nil, apperr.Wrap(apperr.KindValidation, fmt.Sprintf("invalid value for %q", k), err)
			}
			if err != nil {
				return nil, nil, fmt.Errorf("hash %s: %w", k, err)
			}
			v = h
		}
		args = append(args, v)
	}
	return keys, args, nil
}

func collect(rows pgx.Rows, cols []string) ([]map[string]any, error) {
	defer rows.Close()
	out := []map[string]any{}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		if len(vals) != len(cols) {
			return nil, fmt.Errorf("expected %d columns, got %d", len(cols), len(vals))
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// classify 將資料庫錯誤對應到錯誤分類
func classify(err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return apperr.Wrap(apperr.KindAlreadyExists, pgErr.Message, err)
		case "23502", "23503", "23514", "22P02", "22007", "22003", "22001":
			return apperr.Wrap(apperr.KindValidation, pgErr.Message, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindStore, "store timeout", err)
	}
	return apperr.Wrap(apperr.KindStore, "store error", err)
}

func quote(name string) string { return pgx.Identifier{name}.Sanitize() }

func quoteList(names []string) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = quote(n)
	}
	return strings.Join(q, ", ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
