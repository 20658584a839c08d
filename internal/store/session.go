package store

import (
	"context"
	"fmt"

	"smart-home-portal/internal/database"
	"smart-home-portal/internal/model"
)

func CreateSession(ctx context.Context, db database.DB, token string, userID int) (*model.Session, error) {
	s := &model.Session{ID: token, UserID: userID}
	row := db.QueryRow(ctx,
		`INSERT INTO sessions (id, user_id) VALUES ($1, $2) RETURNING created_at`,
		token,
		userID,
	)
	if err := row.Scan(&s.CreatedAt); err != nil {
		return nil, fmt.Errorf("CreateSession: %w", err)
	}
	return s, nil
}

func GetSession(ctx context.Context, db database.DB, token string) (*model.Session, error) {
	row := db.QueryRow(ctx,
		`SELECT id, user_id, created_at FROM sessions WHERE id = $1`,
		token,
	)
	s := &model.Session{}
	if err := row.Scan(&s.ID, &s.UserID, &s.CreatedAt); err != nil {
		return nil, fmt.Errorf("GetSession: %w", err)
	}
	return s, nil
}

// SessionExists 用於產生 token 時檢查碰撞
func SessionExists(ctx context.Context, db database.DB, token string) (bool, error) {
	var exists bool
	row := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)`, token)
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("SessionExists: %w", err)
	}
	return exists, nil
}

func DeleteSession(ctx context.Context, db database.DB, token string) error {
	_, err := db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, token)
	if err != nil {
		return fmt.Errorf("DeleteSession: %w", err)
	}
	return nil
}
