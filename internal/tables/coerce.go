package tables

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// coerce 將 JSON 或 query string 的值轉為欄位型別；nil 代表 NULL
func coerce(c Column, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch c.Kind {
	case KindInt:
		return toInt(v)
	case KindText:
		return toText(v)
	case KindBool:
		return toBool(v)
	case KindJSON:
		return toJSON(v)
	case KindTime:
		return toTime(v)
	}
	return nil, fmt.Errorf("unsupported column kind %d", c.Kind)
}

func toInt(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%v is not an integer", x)
		}
		return int64(x), nil
	case json.Number:
		return x.Int64()
	case string:
		return strconv.ParseInt(x, 10, 64)
	}
	return 0, fmt.Errorf("%v is not an integer", v)
}

func toText(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	}
	return "", fmt.Errorf("%v is not a string", v)
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		return strconv.ParseBool(x)
	case float64:
		if x == 0 || x == 1 {
			return x == 1, nil
		}
	case json.Number:
		if s := x.String(); s == "0" || s == "1" {
			return s == "1", nil
		}
	}
	return false, fmt.Errorf("%v is not a boolean", v)
}

// toJSON 字串若本身是合法 JSON 則原樣送出，否則視為 JSON 字串值
func toJSON(v any) (json.RawMessage, error) {
	if s, ok := v.(string); ok && json.Valid([]byte(s)) {
		return json.RawMessage(s), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

func toTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		return time.Parse(time.RFC3339Nano, x)
	}
	return time.Time{}, fmt.Errorf("%v is not a timestamp", v)
}
