// File: internal/dto/login_request.go
package dto

// swagger:model dto.LoginRequest
type LoginRequest struct {
	Email         string `json:"email" validate:"required,email" example:"a@b.com"`
	Password      string `json:"password" validate:"required" example:"h1"`
	OperationType string `json:"operationType" example:"login"`
}

// swagger:model dto.LoginResponse
type LoginResponse struct {
	Correct bool `json:"correct" example:"true"`
}
