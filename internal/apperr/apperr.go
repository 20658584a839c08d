// Package apperr 定義 portal 對外回報的錯誤分類
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 錯誤類型
type Kind int

const (
	KindStore Kind = iota
	KindTableNotFound
	KindUnauthorized
	KindValidation
	KindAlreadyExists
)

func (k Kind) String() string {
	switch k {
	case KindTableNotFound:
		return "TableNotFound"
	case KindUnauthorized:
		return "Unauthorized"
	case KindValidation:
		return "ValidationError"
	case KindAlreadyExists:
		return "AlreadyExists"
	default:
		return "StoreError"
	}
}

// Status 對應的 HTTP 狀態碼 (ERROR_STYLE=status 時使用)
func (k Kind) Status() int {
	switch k {
	case KindTableNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error 帶分類的錯誤
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf 取出錯誤分類，未分類的錯誤一律視為 StoreError
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// Is 判斷 err 是否屬於指定分類
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// MessageOf 對外顯示的訊息；未分類的錯誤不透露細節
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "store error"
}

var (
	ErrTableNotFound = New(KindTableNotFound, "table not found")
	ErrUnauthorized  = New(KindUnauthorized, "Error API Key")
)
