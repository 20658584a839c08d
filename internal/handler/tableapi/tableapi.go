// File: internal/handler/tableapi/tableapi.go
package tableapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"smart-home-portal/internal/apperr"
	"smart-home-portal/internal/config"
	"smart-home-portal/internal/dto"
	"smart-home-portal/internal/middleware"
	"smart-home-portal/internal/tables"

	"github.com/labstack/echo/v4"
)

const keyParam = "key"

// Executor 由 tables.Dispatcher 實作
type Executor interface {
	Execute(ctx context.Context, req tables.Request) (tables.Result, error)
}

// Options 對應 config.Tables
type Options struct {
	Guard      string
	ErrorStyle string
	APIKey     string
}

// PathHandler /api/:table
// @Summary     Generic table access (path layout)
// @Description GET/DELETE 以 query string 作為過濾條件；POST 以 body.params 建立；PUT 以 body.params 過濾、body.changes 更新
// @Tags        tables
// @Accept      json
// @Produce     json
// @Param       table path     string           true  "資料表名稱，例如 Devices"
// @Param       key   query    string           false "API key (TABLE_API_GUARD=key)"
// @Param       body  body     dto.TableRequest false "params / changes"
// @Success     200   {array}  object
// @Failure     400   {object} dto.TableError
// @Failure     401   {object} dto.TableError
// @Failure     404   {object} dto.TableError
// @Failure     409   {object} dto.TableError
// @Failure     500   {object} dto.TableError
// @Router      /api/{table} [get]
// @Router      /api/{table} [post]
// @Router      /api/{table} [put]
// @Router      /api/{table} [delete]
func PathHandler(ex Executor, opts Options) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := guard(c, opts); err != nil {
			return respondError(c, opts, err)
		}
		op, ok := tables.OpFromMethod(c.Request().Method)
		if !ok {
			return c.NoContent(http.StatusMethodNotAllowed)
		}
		req := tables.Request{Table: c.Param("table"), Op: op}
		if err := guardTable(c, opts, req.Table); err != nil {
			return respondError(c, opts, err)
		}

		switch op {
		case tables.OpRead, tables.OpDelete:
			req.Filter = queryFilter(c)
		default:
			body, err := decodeBody(c)
			if err != nil {
				return respondError(c, opts, err)
			}
			if req.Filter, req.Payload, err = split(op, body); err != nil {
				return respondError(c, opts, err)
			}
		}
		return execute(c, ex, opts, req)
	}
}

// BodyHandler /api，資料表名稱放在 body.table
// @Summary     Generic table access (body layout)
// @Description 所有參數都在 JSON body：table、params (物件或 JSON 字串)、changes
// @Tags        tables
// @Accept      json
// @Produce     json
// @Param       key   query    string           false "API key (TABLE_API_GUARD=key)"
// @Param       body  body     dto.TableRequest true  "table / params / changes"
// @Success     200   {array}  object
// @Failure     400   {object} dto.TableError
// @Failure     401   {object} dto.TableError
// @Failure     404   {object} dto.TableError
// @Failure     500   {object} dto.TableError
// @Router      /api [get]
// @Router      /api [post]
// @Router      /api [put]
// @Router      /api [delete]
func BodyHandler(ex Executor, opts Options) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := guard(c, opts); err != nil {
			return respondError(c, opts, err)
		}
		op, ok := tables.OpFromMethod(c.Request().Method)
		if !ok {
			return c.NoContent(http.StatusMethodNotAllowed)
		}
		body, err := decodeBody(c)
		if err != nil {
			return respondError(c, opts, err)
		}
		req := tables.Request{Table: body.Table, Op: op}
		if err := guardTable(c, opts, req.Table); err != nil {
			return respondError(c, opts, err)
		}
		if req.Filter, req.Payload, err = split(op, body); err != nil {
			return respondError(c, opts, err)
		}
		return execute(c, ex, opts, req)
	}
}

func guard(c echo.Context, opts Options) error {
	if opts.Guard == config.GuardSession {
		return tables.CheckUser(middleware.IdentityFrom(c).UserID)
	}
	return tables.CheckKey(opts.APIKey, c.QueryParam(keyParam))
}

// guardTable key 模式已在 guard 檢查過金鑰
func guardTable(c echo.Context, opts Options, table string) error {
	if opts.Guard != config.GuardSession {
		return nil
	}
	return tables.CheckTable(table, opts.APIKey, c.QueryParam(keyParam))
}

func execute(c echo.Context, ex Executor, opts Options, req tables.Request) error {
	res, err := ex.Execute(c.Request().Context(), req)
	if err != nil {
		return respondError(c, opts, err)
	}
	return c.JSON(http.StatusOK, res.Body())
}

// respondError 依 ERROR_STYLE 決定狀態碼；body 一律為 {"error": ...}
func respondError(c echo.Context, opts Options, err error) error {
	kind := apperr.KindOf(err)
	msg := kind.String()
	var ae *apperr.Error
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	if kind == apperr.KindStore {
		c.Logger().Errorf("table api: %v", err)
	}

	status := kind.Status()
	if opts.ErrorStyle == config.ErrorStyleInband {
		status = http.StatusOK
	}
	return c.JSON(status, dto.TableError{Error: msg})
}

// queryFilter query string 轉為過濾條件，key 參數不算在內
func queryFilter(c echo.Context) map[string]any {
	filter := map[string]any{}
	for k, vs := range c.QueryParams() {
		if k == keyParam || len(vs) == 0 {
			continue
		}
		filter[k] = vs[0]
	}
	return filter
}

// decodeBody 空 body 視為沒有參數
func decodeBody(c echo.Context) (dto.TableRequest, error) {
	var body dto.TableRequest
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return body, apperr.Wrap(apperr.KindValidation, "cannot read body", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return body, nil
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return body, apperr.Wrap(apperr.KindValidation, "invalid JSON body", err)
	}
	return body, nil
}

// split 依操作分配 params 與 changes
func split(op tables.Op, body dto.TableRequest) (filter, payload map[string]any, err error) {
	params, err := parseObject(body.Params)
	if err != nil {
		return nil, nil, err
	}
	switch op {
	case tables.OpCreate:
		return nil, params, nil
	case tables.OpUpdate:
		changes, err := parseObject(body.Changes)
		if err != nil {
			return nil, nil, err
		}
		return params, changes, nil
	default:
		return params, nil, nil
	}
}

// parseObject 接受 JSON 物件或內容為 JSON 物件的字串
func parseObject(raw json.RawMessage) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, "invalid params", err)
		}
		raw = bytes.TrimSpace([]byte(s))
		if len(raw) == 0 {
			return nil, nil
		}
	}
	var out map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "params must be a JSON object", err)
	}
	return out, nil
}
