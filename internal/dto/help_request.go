// File: internal/dto/help_request.go
package dto

// swagger:model dto.HelpRequest
type HelpRequest struct {
	Theme    string `json:"theme" validate:"required,max=255" example:"Лампа не включается"`
	Question string `json:"question" example:"После обновления лампа в зале не реагирует"`
}
