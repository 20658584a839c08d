package tables

import (
	"crypto/subtle"

	"smart-home-portal/internal/apperr"
)

// CheckKey 比對共享金鑰；伺服器未設定金鑰時一律拒絕
func CheckKey(configured, supplied string) error {
	if configured == "" {
		return apperr.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(configured), []byte(supplied)) != 1 {
		return apperr.ErrUnauthorized
	}
	return nil
}

// CheckUser session 模式下必須是已登入的使用者
func CheckUser(userID int) error {
	if userID <= 0 {
		return apperr.New(apperr.KindUnauthorized, "not authenticated")
	}
	return nil
}

// keyOnly 含憑證或角色欄位的資料表
var keyOnly = map[string]bool{"Users": true, "Sessions": true}

// CheckTable session 模式下 Users 與 Sessions 仍需 API key，
// 否則任何登入者都能列出 token 或把自己改成 admin
func CheckTable(table, configured, supplied string) error {
	if !keyOnly[table] {
		return nil
	}
	return CheckKey(configured, supplied)
}
