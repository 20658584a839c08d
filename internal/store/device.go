package store

import (
	"context"
	"encoding/json"
	"fmt"

	"smart-home-portal/internal/database"
	"smart-home-portal/internal/model"
)

// GetUserDevice 只回傳屬於 userID 的裝置
func GetUserDevice(ctx context.Context, db database.DB, userID, deviceID int) (*model.Device, error) {
	row := db.QueryRow(ctx,
		`SELECT id, user_id, logo, title, room, type, settings
		 FROM devices WHERE id = $1 AND user_id = $2`,
		deviceID,
		userID,
	)
	d := &model.Device{}
	if err := row.Scan(&d.ID, &d.UserID, &d.Logo, &d.Title, &d.Room, &d.Type, &d.Settings); err != nil {
		return nil, fmt.Errorf("GetUserDevice: %w", err)
	}
	return d, nil
}

// SetDeviceStatus 更新 settings.status，回傳受影響筆數
func SetDeviceStatus(ctx context.Context, db database.DB, userID, deviceID, status int) (int64, error) {
	value, _ := json.Marshal(status)
	tag, err := db.Exec(ctx,
		`UPDATE devices SET settings = jsonb_set(settings, '{status}', $1::jsonb, true)
		 WHERE id = $2 AND user_id = $3`,
		string(value),
		deviceID,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("SetDeviceStatus: %w", err)
	}
	return tag.RowsAffected(), nil
}
