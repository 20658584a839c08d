package store

import (
	"context"
	"fmt"

	"smart-home-portal/internal/database"
	"smart-home-portal/internal/model"
)

const userColumns = `id, email, password, logo, name, surname, role`

func scanUser(row interface{ Scan(...any) error }, u *model.User) error {
	return row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Logo,
		&u.Name,
		&u.Surname,
		&u.Role,
	)
}

func GetUserByID(ctx context.Context, db database.DB, userID int) (*model.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		userID,
	)
	u := &model.User{}
	if err := scanUser(row, u); err != nil {
		return nil, fmt.Errorf("GetUserByID: %w", err)
	}
	return u, nil
}

// GetUserByEmail 以 email (不分大小寫) 查詢使用者
func GetUserByEmail(ctx context.Context, db database.DB, email string) (*model.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`,
		email,
	)
	u := &model.User{}
	if err := scanUser(row, u); err != nil {
		return nil, fmt.Errorf("GetUserByEmail: %w", err)
	}
	return u, nil
}

// CreateUser 新增使用者，logo 與 role 由資料庫預設值填入
func CreateUser(ctx context.Context, db database.DB, u *model.User) (*model.User, error) {
	row := db.QueryRow(ctx,
		`INSERT INTO users (email, password, name, surname)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, logo, role`,
		u.Email,
		u.PasswordHash,
		u.Name,
		u.Surname,
	)
	if err := row.Scan(&u.ID, &u.Logo, &u.Role); err != nil {
		return nil, fmt.Errorf("CreateUser: %w", err)
	}
	return u, nil
}
