// File: internal/router/router.go
package router

import (
	"smart-home-portal/internal/cache"
	"smart-home-portal/internal/config"
	"smart-home-portal/internal/database"
	"smart-home-portal/internal/handler"
	"smart-home-portal/internal/handler/account"
	"smart-home-portal/internal/handler/devices"
	"smart-home-portal/internal/handler/help"
	"smart-home-portal/internal/handler/logs"
	"smart-home-portal/internal/handler/tableapi"
	"smart-home-portal/internal/middleware"
	"smart-home-portal/internal/mqtt"
	"smart-home-portal/internal/view"

	"github.com/labstack/echo/v4"
)

// Deps 路由需要的所有元件，由 cmd/service 組裝
type Deps struct {
	DB        database.DB
	Cache     cache.Cache
	Sessions  middleware.Resolver
	Accounts  account.Service
	Tables    tableapi.Executor
	Publisher mqtt.Publisher
	LiveLogs  logs.Streamer

	TablesConfig config.TablesConfig
	Cookie       account.CookieOptions
}

// Setup 註冊所有路由與中介層
func Setup(e *echo.Echo, d Deps) {
	load := middleware.LoadIdentity(d.Sessions)

	// 頁面
	e.GET("/", logs.IndexHandler(d.DB))
	e.GET("/help", account.PageHandler(view.PageHelp, "Помощь"))
	e.POST("/help", help.CreateQuestionHandler(d.DB), load, middleware.RequireSession)
	e.GET("/ws/logs", logs.LiveHandler(d.LiveLogs), load, middleware.RequireSession)

	// 帳號
	acc := e.Group("/account")
	acc.GET("", account.AccountPageHandler(d.DB), load, middleware.RequireSessionPage)
	acc.POST("", account.ExitHandler(d.Accounts, d.Cookie))
	acc.GET("/login", account.PageHandler(view.PageLogin, "Вход"))
	acc.POST("/login", account.LoginHandler(d.Accounts, d.Cookie))
	acc.GET("/signup", account.PageHandler(view.PageSignup, "Регистрация"))
	acc.POST("/signup", account.SignupHandler(d.Accounts, d.Cookie))

	api := e.Group("/api")

	// 健康檢查
	api.GET("/ping", handler.PingHandler(d.DB, d.Cache))

	// 管理員查看問題
	api.GET("/questions", help.ListQuestionsHandler(d.DB), load, middleware.RequireAdmin(d.DB))

	// 智慧裝置
	api.GET("/smartdevices/:id", devices.GetStatusHandler(d.DB), load, middleware.RequireSession)
	api.PUT("/smartdevices/:id", devices.UpdateStatusHandler(d.DB, d.Publisher), load, middleware.RequireSession)

	// 通用資料表 API，依設定只開放其中一種形式
	opts := tableapi.Options{
		Guard:      d.TablesConfig.Guard,
		ErrorStyle: d.TablesConfig.ErrorStyle,
		APIKey:     d.TablesConfig.APIKey,
	}
	if d.TablesConfig.Layout == config.LayoutBody {
		h := tableapi.BodyHandler(d.Tables, opts)
		api.GET("", h, load)
		api.POST("", h, load)
		api.PUT("", h, load)
		api.DELETE("", h, load)
	} else {
		h := tableapi.PathHandler(d.Tables, opts)
		api.GET("/:table", h, load)
		api.POST("/:table", h, load)
		api.PUT("/:table", h, load)
		api.DELETE("/:table", h, load)
	}
}
