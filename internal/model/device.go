package model

import "encoding/json"

type Device struct {
	ID       int             `db:"id" json:"id"`
	UserID   int             `db:"user_id" json:"user_id"`
	Logo     string          `db:"logo" json:"logo"`
	Title    string          `db:"title" json:"title"`
	Room     string          `db:"room" json:"room"`
	Type     string          `db:"type" json:"type"`
	Settings json.RawMessage `db:"settings" json:"settings"`
}

// Status 讀取 settings.status，缺少或非真值時回傳 0
func (d Device) Status() int {
	var s struct {
		Status any `json:"status"`
	}
	if len(d.Settings) == 0 || json.Unmarshal(d.Settings, &s) != nil {
		return 0
	}
	switch v := s.Status.(type) {
	case bool:
		if v {
			return 1
		}
	case float64:
		if v != 0 {
			return 1
		}
	}
	return 0
}
