// File: internal/dto/account_request.go
package dto

// swagger:model dto.AccountRequest
type AccountRequest struct {
	OperationType string `json:"operationType" validate:"required,oneof=exit" example:"exit"`
}
