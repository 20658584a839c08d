// Package telemetry 將日誌事件寫入 InfluxDB 作為時間序列
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"smart-home-portal/internal/model"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const (
	defaultPingTimeout = 5 * time.Second
	measurementLog     = "device_log"
)

var ErrConnectionFailed = errors.New("influxdb connection failed")

// Recorder 記錄日誌事件，實作必須是非阻塞的
type Recorder interface {
	RecordLog(l model.Log)
	Close() error
}

// Nop 未設定 INFLUX_URL 時使用
type Nop struct{}

func (Nop) RecordLog(model.Log) {}
func (Nop) Close() error        { return nil }

type Options struct {
	URL    string
	Token  string
	Org    string
	Bucket string
	// OnError 非同步寫入失敗時呼叫
	OnError func(error)
}

// pointWriter 為 api.WriteAPI 中用到的部分
type pointWriter interface {
	WritePoint(point *write.Point)
	Flush()
}

// Influx 透過非阻塞 WriteAPI 批次寫入
type Influx struct {
	writer  pointWriter
	closeFn func()
}

// Connect 建立 client 並以 Ping 確認可連線
func Connect(ctx context.Context, opts Options) (*Influx, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("%w: url is empty", ErrConnectionFailed)
	}
	client := influxdb2.NewClientWithOptions(opts.URL, opts.Token,
		influxdb2.DefaultOptions().SetBatchSize(100).SetFlushInterval(10_000))

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	healthy, err := client.Ping(pingCtx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	w := client.WriteAPI(opts.Org, opts.Bucket)
	if opts.OnError != nil {
		go func(ch <-chan error) {
			for err := range ch {
				opts.OnError(err)
			}
		}(w.Errors())
	}
	return newInflux(w, client.Close), nil
}

func newInflux(w pointWriter, closeFn func()) *Influx {
	return &Influx{writer: w, closeFn: closeFn}
}

// RecordLog 每筆日誌寫一個 device_log point
func (i *Influx) RecordLog(l model.Log) {
	ts := l.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	p := write.NewPoint(measurementLog,
		map[string]string{
			"raspberry_id": strconv.Itoa(l.RaspberryID),
			"type":         l.Type,
		},
		map[string]interface{}{
			"error":  l.Error,
			"length": len(l.Text),
		},
		ts,
	)
	i.writer.WritePoint(p)
}

// Close 先送出尚未寫入的 point 再關閉
func (i *Influx) Close() error {
	i.writer.Flush()
	if i.closeFn != nil {
		i.closeFn()
	}
	return nil
}
