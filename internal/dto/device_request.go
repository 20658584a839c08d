// File: internal/dto/device_request.go
package dto

// swagger:model dto.DeviceStatusRequest
type DeviceStatusRequest struct {
	Action string `json:"action" validate:"required,eq=changeStatus" example:"changeStatus"`
	Status *bool  `json:"status" validate:"required" example:"true"`
}

// swagger:model dto.DeviceStatusResponse
type DeviceStatusResponse struct {
	// 0 關閉、1 開啟
	Status int `json:"status" example:"1"`
}
