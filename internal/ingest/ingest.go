// Package ingest 接收樹莓派透過 MQTT 上傳的日誌並寫入資料庫
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smart-home-portal/internal/database"
	"smart-home-portal/internal/model"
	"smart-home-portal/internal/mqtt"
	"smart-home-portal/internal/store"
	"smart-home-portal/internal/telemetry"
	"smart-home-portal/internal/worker"

	"github.com/go-playground/validator/v10"
)

var insertLog = store.InsertLog

// Broadcaster 由 livelog.Hub 實作
type Broadcaster interface {
	Broadcast(l model.Log)
}

type Logger interface {
	Errorf(format string, args ...interface{})
}

// Message 樹莓派上傳的日誌內容
type Message struct {
	Text  string `json:"text" validate:"required"`
	Type  string `json:"type" validate:"required,max=32"`
	Error bool   `json:"error"`
}

// Ingestor 解析訊息後交給 worker pool 寫入，寫入成功才推播與記錄
type Ingestor struct {
	db       database.DB
	pool     worker.Pool
	hub      Broadcaster
	recorder telemetry.Recorder
	logger   Logger
	timeout  time.Duration
	validate *validator.Validate
}

func New(db database.DB, pool worker.Pool, hub Broadcaster, rec telemetry.Recorder, logger Logger, timeout time.Duration) *Ingestor {
	return &Ingestor{
		db:       db,
		pool:     pool,
		hub:      hub,
		recorder: rec,
		logger:   logger,
		timeout:  timeout,
		validate: validator.New(),
	}
}

// Start 訂閱 home/+/logs
func (i *Ingestor) Start(sub mqtt.Subscriber) error {
	return sub.Subscribe(mqtt.LogsTopic, i.Handle)
}

// Handle 為 MQTT handler；格式錯誤的訊息直接回傳錯誤，不會進入 pool
func (i *Ingestor) Handle(topic string, payload []byte) error {
	raspberryID, err := mqtt.RaspberryFromLogsTopic(topic)
	if err != nil {
		return err
	}
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("decode log payload: %w", err)
	}
	if err := i.validate.Struct(&msg); err != nil {
		return fmt.Errorf("invalid log payload: %w", err)
	}

	l := model.Log{RaspberryID: raspberryID, Text: msg.Text, Type: msg.Type, Error: msg.Error}
	i.pool.Submit(func() { i.persist(l) })
	return nil
}

func (i *Ingestor) persist(l model.Log) {
	ctx := context.Background()
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}
	saved, err := insertLog(ctx, i.db, &l)
	if err != nil {
		i.logger.Errorf("ingest log from raspberry %d: %v", l.RaspberryID, err)
		return
	}
	i.hub.Broadcast(*saved)
	i.recorder.RecordLog(*saved)
}
