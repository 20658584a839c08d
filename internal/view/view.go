// Package view 以內嵌的 html/template 實作 echo.Renderer
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"smart-home-portal/internal/model"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

// 頁面名稱
const (
	PageIndex   = "index.html"
	PageAccount = "account.html"
	PageLogin   = "login.html"
	PageSignup  = "signup.html"
	PageHelp    = "help.html"
)

// Renderer 實作 echo.Renderer
type Renderer struct {
	templates *template.Template
}

// New 解析所有內嵌樣板，樣板錯誤會在啟動時回報
func New() (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// Page 沒有其他資料的頁面
type Page struct {
	Title string
}

type LogRow struct {
	Time  string
	Type  string
	Text  string
	Error bool
}

type IndexPage struct {
	Title       string
	RaspberryID int
	Logs        []LogRow
}

type AccountPage struct {
	Title string
	User  model.User
}

// NewIndexPage 將時間轉為伺服器時區的 HH:MM:SS
func NewIndexPage(raspberryID int, logs []model.Log) IndexPage {
	rows := make([]LogRow, len(logs))
	for i, l := range logs {
		rows[i] = LogRow{
			Time:  l.CreatedAt.In(time.Local).Format(time.TimeOnly),
			Type:  l.Type,
			Text:  l.Text,
			Error: l.Error,
		}
	}
	return IndexPage{Title: "Главная", RaspberryID: raspberryID, Logs: rows}
}
