// Package tables 提供以資料表名稱動態分派 CRUD 的通用存取層
//
// 可存取的資料表為伺服器端固定宣告的集合，名稱與欄位皆由 Registry 決定，
// SQL 識別字只來自宣告，呼叫端的值一律以參數綁定。
package tables

import "sort"

// Kind 欄位型別，決定輸入值如何轉換
type Kind int

const (
	KindInt Kind = iota
	KindText
	KindBool
	KindJSON
	KindTime
)

// Column 欄位宣告
type Column struct {
	Name string
	Kind Kind
	// Generated 由資料庫產生 (serial id、created_at)，不可寫入
	Generated bool
	// WriteOnly 不會出現在查詢結果，也不能作為過濾條件
	WriteOnly bool
	// Hashed 寫入前先做 bcrypt
	Hashed bool
}

// Table 一個可透過通用 API 存取的資料表
type Table struct {
	Name       string
	SQLName    string
	PrimaryKey string
	columns    []Column
	byName     map[string]Column
}

func newTable(name, sqlName, pk string, cols ...Column) *Table {
	t := &Table{Name: name, SQLName: sqlName, PrimaryKey: pk, columns: cols, byName: make(map[string]Column, len(cols))}
	for _, c := range cols {
		t.byName[c.Name] = c
	}
	return t
}

// Column 依名稱取得欄位宣告
func (t *Table) Column(name string) (Column, bool) {
	c, ok := t.byName[name]
	return c, ok
}

// readable 查詢結果會回傳的欄位，依宣告順序
func (t *Table) readable() []string {
	out := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		if !c.WriteOnly {
			out = append(out, c.Name)
		}
	}
	return out
}

// Registry 資料表名稱 → Table 的封閉對照表
type Registry struct {
	tables map[string]*Table
}

func (r *Registry) Lookup(name string) (*Table, bool) {
	t, ok := r.tables[name]
	return t, ok
}

// Names 已註冊的資料表名稱 (排序後)
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tables))
	for n := range r.tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func id() Column        { return Column{Name: "id", Kind: KindInt, Generated: true} }
func createdAt() Column { return Column{Name: "created_at", Kind: KindTime, Generated: true} }

// NewRegistry 宣告 portal 的全部資料表
func NewRegistry() *Registry {
	list := []*Table{
		newTable("Users", "users", "id",
			id(),
			Column{Name: "email", Kind: KindText},
			Column{Name: "password", Kind: KindText, WriteOnly: true, Hashed: true},
			Column{Name: "logo", Kind: KindText},
			Column{Name: "name", Kind: KindText},
			Column{Name: "surname", Kind: KindText},
			Column{Name: "role", Kind: KindText},
		),
		newTable("Sessions", "sessions", "id",
			Column{Name: "id", Kind: KindText},
			Column{Name: "user_id", Kind: KindInt},
			createdAt(),
		),
		newTable("Devices", "devices", "id",
			id(),
			Column{Name: "user_id", Kind: KindInt},
			Column{Name: "logo", Kind: KindText},
			Column{Name: "title", Kind: KindText},
			Column{Name: "room", Kind: KindText},
			Column{Name: "type", Kind: KindText},
			Column{Name: "settings", Kind: KindJSON},
		),
		newTable("Questions", "questions", "id",
			id(),
			Column{Name: "user_id", Kind: KindInt},
			Column{Name: "question", Kind: KindText},
			Column{Name: "description", Kind: KindText},
			createdAt(),
		),
		newTable("Scenarios", "scenarios", "id",
			id(),
			Column{Name: "title", Kind: KindText},
			Column{Name: "description", Kind: KindText},
			Column{Name: "user_id", Kind: KindInt},
			Column{Name: "status", Kind: KindBool},
			Column{Name: "commands", Kind: KindJSON},
		),
		newTable("Logs", "logs", "id",
			id(),
			Column{Name: "raspberry_id", Kind: KindInt},
			Column{Name: "text", Kind: KindText},
			Column{Name: "type", Kind: KindText},
			Column{Name: "error", Kind: KindBool},
			createdAt(),
		),
	}

	r := &Registry{tables: make(map[string]*Table, len(list))}
	for _, t := range list {
		r.tables[t.Name] = t
	}
	return r
}
