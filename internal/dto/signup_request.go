// File: internal/dto/signup_request.go
package dto

// swagger:model dto.SignupRequest
type SignupRequest struct {
	OperationType string         `json:"operationType" example:"signup"`
	UserData      SignupUserData `json:"userData"`
}

// swagger:model dto.SignupUserData
type SignupUserData struct {
	Email    string `json:"email" validate:"required,email,max=255" example:"a@b.com"`
	Password string `json:"password" validate:"required,max=72" example:"h1"`
	Name     string `json:"name" validate:"required,max=255" example:"A"`
	Surname  string `json:"surname" validate:"max=255" example:"B"`
}
