// File: internal/handler/logs/logs.go
package logs

import (
	"net/http"
	"strconv"

	"smart-home-portal/internal/database"
	"smart-home-portal/internal/dto"
	"smart-home-portal/internal/store"
	"smart-home-portal/internal/view"

	"github.com/labstack/echo/v4"
)

const defaultRaspberryID = 1

var listLogs = store.ListLogsByRaspberry

// Streamer 由 livelog.Hub 實作
type Streamer interface {
	Serve(w http.ResponseWriter, r *http.Request) error
}

// IndexHandler 首頁：顯示指定樹莓派的日誌
func IndexHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := defaultRaspberryID
		if v := c.QueryParam("raspberry_id"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid raspberry_id"})
			}
			id = n
		}
		list, err := listLogs(c.Request().Context(), db, id)
		if err != nil {
			c.Logger().Errorf("list logs: %v", err)
			return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: "failed to load logs"})
		}
		return c.Render(http.StatusOK, view.PageIndex, view.NewIndexPage(id, list))
	}
}

// LiveHandler 升級為 websocket，之後每筆新日誌都會推送
func LiveHandler(s Streamer) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := s.Serve(c.Response(), c.Request()); err != nil {
			// upgrader 已寫入錯誤回應
			c.Logger().Warnf("live logs upgrade: %v", err)
		}
		return nil
	}
}
