package mqtt

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"
)

/* ---------- 假實作 ---------- */

type fakeToken struct {
	err     error
	timeout bool
}

func (t *fakeToken) Wait() bool                     { return !t.timeout }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 1 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 1 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

type published struct {
	topic   string
	payload []byte
}

type fakePaho struct {
	connected    bool
	connectToken *fakeToken
	pubToken     *fakeToken
	subToken     *fakeToken
	published    []published
	handlers     map[string]pahomqtt.MessageHandler
	disconnected bool
}

func newFakePaho() *fakePaho {
	return &fakePaho{
		connected:    true,
		connectToken: &fakeToken{},
		pubToken:     &fakeToken{},
		subToken:     &fakeToken{},
		handlers:     map[string]pahomqtt.MessageHandler{},
	}
}

func (f *fakePaho) IsConnected() bool      { return f.connected }
func (f *fakePaho) IsConnectionOpen() bool { return f.connected }
func (f *fakePaho) Connect() pahomqtt.Token {
	return f.connectToken
}
func (f *fakePaho) Disconnect(uint) { f.disconnected = true }
func (f *fakePaho) Publish(topic string, _ byte, _ bool, payload interface{}) pahomqtt.Token {
	f.published = append(f.published, published{topic, payload.([]byte)})
	return f.pubToken
}
func (f *fakePaho) Subscribe(topic string, _ byte, cb pahomqtt.MessageHandler) pahomqtt.Token {
	f.handlers[topic] = cb
	return f.subToken
}
func (f *fakePaho) SubscribeMultiple(map[string]byte, pahomqtt.MessageHandler) pahomqtt.Token {
	return f.subToken
}
func (f *fakePaho) Unsubscribe(...string) pahomqtt.Token { return &fakeToken{} }

func (f *fakePaho) AddRoute(string, pahomqtt.MessageHandler) {}

func (f *fakePaho) OptionsReader() pahomqtt.ClientOptionsReader {
	return pahomqtt.ClientOptionsReader{}
}

type recLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recLogger) Warnf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, "WARN "+fmt.Sprintf(format, args...))
}

func (l *recLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, "ERROR "+fmt.Sprintf(format, args...))
}

func useFake(t *testing.T, f *fakePaho) {
	orig := newPahoClient
	t.Cleanup(func() { newPahoClient = orig })
	newPahoClient = func(o *pahomqtt.ClientOptions) pahomqtt.Client {
		require.Equal(t, "portal", o.ClientID)
		return f
	}
}

/* ---------- 測試 ---------- */

func TestConnect(t *testing.T) {
	t.Run("empty broker", func(t *testing.T) {
		_, err := Connect(Options{})
		require.ErrorIs(t, err, ErrConnectionFailed)
	})

	t.Run("ok", func(t *testing.T) {
		f := newFakePaho()
		useFake(t, f)
		c, err := Connect(Options{Broker: "tcp://localhost:1883", ClientID: "portal"})
		require.NoError(t, err)
		require.NoError(t, c.Close())
		require.True(t, f.disconnected)
	})

	t.Run("timeout", func(t *testing.T) {
		f := newFakePaho()
		f.connectToken.timeout = true
		useFake(t, f)
		_, err := Connect(Options{Broker: "tcp://x:1883", ClientID: "portal"})
		require.ErrorIs(t, err, ErrConnectionFailed)
	})

	t.Run("refused", func(t *testing.T) {
		f := newFakePaho()
		f.connectToken.err = errors.New("not authorized")
		useFake(t, f)
		_, err := Connect(Options{Broker: "tcp://x:1883", ClientID: "portal"})
		require.ErrorIs(t, err, ErrConnectionFailed)
		require.Contains(t, err.Error(), "not authorized")
	})
}

func TestPublish(t *testing.T) {
	f := newFakePaho()
	useFake(t, f)
	c, err := Connect(Options{Broker: "tcp://x:1883", ClientID: "portal"})
	require.NoError(t, err)

	require.NoError(t, c.Publish(DeviceCommandTopic(1, 4), []byte(`{"status":1}`)))
	require.Len(t, f.published, 1)
	require.Equal(t, "home/1/devices/4/set", f.published[0].topic)

	require.ErrorIs(t, c.Publish("", nil), ErrInvalidTopic)
	require.ErrorIs(t, c.Publish("t", make([]byte, maxPayloadSize+1)), ErrPublishFailed)

	f.pubToken.err = errors.New("broker gone")
	require.ErrorIs(t, c.Publish("t", []byte("x")), ErrPublishFailed)

	f.connected = false
	require.ErrorIs(t, c.Publish("t", []byte("x")), ErrNotConnected)

	require.NoError(t, Nop{}.Publish("t", []byte("x")))
}

func TestSubscribe(t *testing.T) {
	f := newFakePaho()
	useFake(t, f)
	log := &recLogger{}
	c, err := Connect(Options{Broker: "tcp://x:1883", ClientID: "portal", Logger: log})
	require.NoError(t, err)

	var got []string
	require.NoError(t, c.Subscribe(LogsTopic, func(topic string, payload []byte) error {
		got = append(got, topic+" "+string(payload))
		if string(payload) == "bad" {
			return errors.New("bad payload")
		}
		if string(payload) == "boom" {
			panic("boom")
		}
		return nil
	}))

	h := f.handlers[LogsTopic]
	require.NotNil(t, h)
	h(f, &fakeMessage{topic: "home/1/logs", payload: []byte("ok")})
	h(f, &fakeMessage{topic: "home/1/logs", payload: []byte("bad")})
	require.NotPanics(t, func() { h(f, &fakeMessage{topic: "home/2/logs", payload: []byte("boom")}) })

	require.Equal(t, []string{"home/1/logs ok", "home/1/logs bad", "home/2/logs boom"}, got)
	require.Len(t, log.lines, 2)
	require.Contains(t, log.lines[0], "bad payload")
	require.Contains(t, log.lines[1], "panic")

	// 重連後恢復訂閱
	delete(f.handlers, LogsTopic)
	c.restoreSubscriptions()
	require.NotNil(t, f.handlers[LogsTopic])

	f.subToken.err = errors.New("denied")
	require.ErrorIs(t, c.Subscribe("home/x", func(string, []byte) error { return nil }), ErrSubscribeFailed)
	require.ErrorIs(t, c.Subscribe("", nil), ErrInvalidTopic)
}

func TestTopics(t *testing.T) {
	id, err := RaspberryFromLogsTopic("home/3/logs")
	require.NoError(t, err)
	require.Equal(t, 3, id)

	for _, bad := range []string{"home/x/logs", "home/0/logs", "home/1/state", "a/b", "home/1/logs/extra"} {
		_, err := RaspberryFromLogsTopic(bad)
		require.Error(t, err, bad)
	}
}
