// File: internal/service/password.go
package service

import (
	"smart-home-portal/internal/apperr"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt 只接受 72 bytes 以內的輸入
const maxPasswordBytes = 72

var (
	bcryptGenerateFromPassword   = bcrypt.GenerateFromPassword
	bcryptCompareHashAndPassword = bcrypt.CompareHashAndPassword
)

// HashPassword 接收明文密碼，回傳 bcrypt 哈希字串
// 前端送來的可能已是摘要，伺服器端仍一律再做 bcrypt
// 超過 72 bytes 為 ValidationError
func HashPassword(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", apperr.New(apperr.KindValidation, "password must be at most 72 bytes")
	}
	hashBytes, err := bcryptGenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// ComparePassword 比對明文密碼與 bcrypt 哈希，成功回傳 nil，失敗則回傳錯誤
func ComparePassword(hash, password string) error {
	return bcryptCompareHashAndPassword([]byte(hash), []byte(password))
}
