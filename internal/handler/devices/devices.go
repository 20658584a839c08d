// File: internal/handler/devices/devices.go
package devices

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"smart-home-portal/internal/database"
	"smart-home-portal/internal/dto"
	"smart-home-portal/internal/middleware"
	"smart-home-portal/internal/mqtt"
	"smart-home-portal/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

var (
	getUserDevice   = store.GetUserDevice
	setDeviceStatus = store.SetDeviceStatus
)

func deviceID(c echo.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	return id, err == nil && id > 0
}

// GetStatusHandler 查詢自己的裝置狀態
// @Summary     Get smart device status
// @Tags        devices
// @Produce     json
// @Param       id  path     int true "裝置 ID"
// @Success     200 {object} dto.DeviceStatusResponse
// @Failure     400 {object} dto.HTTPError
// @Failure     401 {object} dto.HTTPError
// @Failure     404 {object} dto.HTTPError
// @Failure     500 {object} dto.HTTPError
// @Router      /api/smartdevices/{id} [get]
func GetStatusHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := deviceID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid device ID"})
		}
		d, err := getUserDevice(c.Request().Context(), db, middleware.IdentityFrom(c).UserID, id)
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, dto.HTTPError{Message: "device not found"})
		}
		if err != nil {
			c.Logger().Errorf("get device %d: %v", id, err)
			return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: "device lookup failed"})
		}
		return c.JSON(http.StatusOK, dto.DeviceStatusResponse{Status: d.Status()})
	}
}

// UpdateStatusHandler 切換裝置狀態並透過 MQTT 下發指令
// 狀態以資料庫為準；指令發佈失敗只記錄，不影響回應
// @Summary     Change smart device status
// @Tags        devices
// @Accept      json
// @Produce     json
// @Param       id   path     int                     true "裝置 ID"
// @Param       body body     dto.DeviceStatusRequest true "action 必須為 changeStatus"
// @Success     200  {object} dto.DeviceStatusResponse
// @Failure     400  {object} dto.HTTPError
// @Failure     401  {object} dto.HTTPError
// @Failure     404  {object} dto.HTTPError
// @Failure     500  {object} dto.HTTPError
// @Router      /api/smartdevices/{id} [put]
func UpdateStatusHandler(db database.DB, pub mqtt.Publisher) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := deviceID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid device ID"})
		}
		var req dto.DeviceStatusRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid request body"})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: err.Error()})
		}

		status := 0
		if *req.Status {
			status = 1
		}
		userID := middleware.IdentityFrom(c).UserID
		n, err := setDeviceStatus(c.Request().Context(), db, userID, id, status)
		if err != nil {
			c.Logger().Errorf("set device %d status: %v", id, err)
			return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: "device update failed"})
		}
		if n == 0 {
			return c.JSON(http.StatusNotFound, dto.HTTPError{Message: "device not found"})
		}

		payload, _ := json.Marshal(dto.DeviceStatusResponse{Status: status})
		if err := pub.Publish(mqtt.DeviceCommandTopic(userID, id), payload); err != nil {
			c.Logger().Warnf("publish device %d command: %v", id, err)
		}
		return c.JSON(http.StatusOK, dto.DeviceStatusResponse{Status: status})
	}
}
