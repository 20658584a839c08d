// File: internal/dto/http_error.go
package dto

// HTTPError 全域錯誤響應模型
// swagger:model dto.HTTPError
type HTTPError struct {
	// message 錯誤描述
	Message string `json:"message"`
}

// TableError 通用資料表 API 的錯誤響應
// swagger:model dto.TableError
type TableError struct {
	Error string `json:"error" example:"table not found"`
}
