package store

import (
	"context"
	"fmt"

	"smart-home-portal/internal/database"
	"smart-home-portal/internal/model"
)

func CreateQuestion(ctx context.Context, db database.DB, q *model.Question) (*model.Question, error) {
	row := db.QueryRow(ctx,
		`INSERT INTO questions (user_id, question, description)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		q.UserID,
		q.Question,
		q.Description,
	)
	if err := row.Scan(&q.ID, &q.CreatedAt); err != nil {
		return nil, fmt.Errorf("CreateQuestion: %w", err)
	}
	return q, nil
}

// ListQuestions 依建立時間新到舊排列
func ListQuestions(ctx context.Context, db database.DB) ([]model.Question, error) {
	rows, err := db.Query(ctx,
		`SELECT id, user_id, question, description, created_at
		 FROM questions ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("ListQuestions: %w", err)
	}
	defer rows.Close()

	list := []model.Question{}
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.UserID, &q.Question, &q.Description, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListQuestions: %w", err)
		}
		list = append(list, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListQuestions: %w", err)
	}
	return list, nil
}
