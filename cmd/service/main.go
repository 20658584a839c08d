// File: cmd/service/main.go
// @title        Smart Home Portal API
// @version      1.0
// @description  智慧家庭入口網站的後端 API 文件
// @host         localhost:8080
// @BasePath     /
// @securityDefinitions.apikey TableKey
// @in query
// @name key
// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name sessionId
package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps go-playground/validator for Echo
// swagger:ignore
type CustomValidator struct {
	validator *validator.Validate
}

// Validate calls the underlying validator
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Print(err)
		exitFunc(1)
	}
}
