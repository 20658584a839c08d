package model

import "time"

type Log struct {
	ID          int       `db:"id" json:"id"`
	RaspberryID int       `db:"raspberry_id" json:"raspberry_id"`
	Text        string    `db:"text" json:"text"`
	Type        string    `db:"type" json:"type"`
	Error       bool      `db:"error" json:"error"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
