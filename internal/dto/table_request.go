// File: internal/dto/table_request.go
package dto

import "encoding/json"

// TableRequest 通用資料表 API 的請求本文
// params 可以是物件，也可以是 JSON 編碼後的字串
// swagger:model dto.TableRequest
type TableRequest struct {
	// 只在 body 模式使用
	Table   string          `json:"table" example:"Devices"`
	Params  json.RawMessage `json:"params" swaggertype:"object"`
	Changes json.RawMessage `json:"changes" swaggertype:"object"`
}

// swagger:model dto.CountResponse
type CountResponse struct {
	Count int64 `json:"count" example:"1"`
}
