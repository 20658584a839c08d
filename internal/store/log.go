package store

import (
	"context"
	"fmt"

	"smart-home-portal/internal/database"
	"smart-home-portal/internal/model"
)

func ListLogsByRaspberry(ctx context.Context, db database.DB, raspberryID int) ([]model.Log, error) {
	rows, err := db.Query(ctx,
		`SELECT id, raspberry_id, text, type, error, created_at
		 FROM logs WHERE raspberry_id = $1 ORDER BY created_at, id`,
		raspberryID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListLogsByRaspberry: %w", err)
	}
	defer rows.Close()

	var list []model.Log
	for rows.Next() {
		var l model.Log
		if err := rows.Scan(&l.ID, &l.RaspberryID, &l.Text, &l.Type, &l.Error, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListLogsByRaspberry: %w", err)
		}
		list = append(list, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListLogsByRaspberry: %w", err)
	}
	return list, nil
}

// InsertLog 追加一筆裝置紀錄 (logs 只從 ingestion 端寫入)
func InsertLog(ctx context.Context, db database.DB, l *model.Log) (*model.Log, error) {
	row := db.QueryRow(ctx,
		`INSERT INTO logs (raspberry_id, text, type, error)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		l.RaspberryID,
		l.Text,
		l.Type,
		l.Error,
	)
	if err := row.Scan(&l.ID, &l.CreatedAt); err != nil {
		return nil, fmt.Errorf("InsertLog: %w", err)
	}
	return l, nil
}
