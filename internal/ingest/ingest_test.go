package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"smart-home-portal/internal/database"
	"smart-home-portal/internal/model"
	"smart-home-portal/internal/mqtt"
	"smart-home-portal/internal/worker"

	"github.com/stretchr/testify/require"
)

type fakeHub struct {
	mu   sync.Mutex
	logs []model.Log
}

func (h *fakeHub) Broadcast(l model.Log) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logs = append(h.logs, l)
}

type fakeRecorder struct {
	mu   sync.Mutex
	logs []model.Log
}

func (r *fakeRecorder) RecordLog(l model.Log) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, l)
}
func (r *fakeRecorder) Close() error { return nil }

type fakeLogger struct{ lines []string }

func (l *fakeLogger) Errorf(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

type fakeSub struct{ topic string }

func (s *fakeSub) Subscribe(topic string, _ mqtt.MessageHandler) error {
	s.topic = topic
	return nil
}

func setup(t *testing.T) (*Ingestor, worker.Pool, *fakeHub, *fakeRecorder, *fakeLogger) {
	orig := insertLog
	t.Cleanup(func() { insertLog = orig })

	pool := worker.NewPool(2)
	hub := &fakeHub{}
	rec := &fakeRecorder{}
	logger := &fakeLogger{}
	return New(&database.FakeDB{}, pool, hub, rec, logger, time.Second), pool, hub, rec, logger
}

func TestStart(t *testing.T) {
	in, pool, _, _, _ := setup(t)
	defer pool.Stop()
	sub := &fakeSub{}
	require.NoError(t, in.Start(sub))
	require.Equal(t, "home/+/logs", sub.topic)
}

func TestHandle(t *testing.T) {
	t.Run("persists broadcasts and records", func(t *testing.T) {
		in, pool, hub, rec, _ := setup(t)
		insertLog = func(ctx context.Context, _ database.DB, l *model.Log) (*model.Log, error) {
			_, ok := ctx.Deadline()
			require.True(t, ok)
			l.ID = 11
			return l, nil
		}

		require.NoError(t, in.Handle("home/3/logs", []byte(`{"text":"door open","type":"warn","error":true}`)))
		pool.Stop()

		require.Len(t, hub.logs, 1)
		require.Equal(t, model.Log{ID: 11, RaspberryID: 3, Text: "door open", Type: "warn", Error: true}, hub.logs[0])
		require.Equal(t, hub.logs, rec.logs)
	})

	t.Run("store failure is logged only", func(t *testing.T) {
		in, pool, hub, rec, logger := setup(t)
		insertLog = func(context.Context, database.DB, *model.Log) (*model.Log, error) {
			return nil, errors.New("db down")
		}
		require.NoError(t, in.Handle("home/1/logs", []byte(`{"text":"x","type":"info"}`)))
		pool.Stop()

		require.Empty(t, hub.logs)
		require.Empty(t, rec.logs)
		require.Len(t, logger.lines, 1)
		require.Contains(t, logger.lines[0], "db down")
	})

	t.Run("rejects bad input", func(t *testing.T) {
		in, pool, hub, _, _ := setup(t)
		insertLog = func(context.Context, database.DB, *model.Log) (*model.Log, error) {
			t.Fatal("should not insert")
			return nil, nil
		}
		require.Error(t, in.Handle("home/abc/logs", []byte(`{"text":"x","type":"info"}`)))
		require.Error(t, in.Handle("home/1/logs", []byte(`not json`)))
		require.Error(t, in.Handle("home/1/logs", []byte(`{"type":"info"}`)))
		require.Error(t, in.Handle("home/1/logs", []byte(`{"text":"x"}`)))
		pool.Stop()
		require.Empty(t, hub.logs)
	})
}
