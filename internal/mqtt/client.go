// Package mqtt 包裝 paho.mqtt.golang，提供裝置指令發佈與日誌訂閱
package mqtt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultConnectTimeout  = 10 * time.Second
	defaultPublishTimeout  = 5 * time.Second
	defaultDisconnectQuiet = 250 // ms
	defaultQoS             = byte(1)
	maxPayloadSize         = 1 << 20
)

var (
	ErrConnectionFailed = errors.New("mqtt connection failed")
	ErrNotConnected     = errors.New("mqtt not connected")
	ErrInvalidTopic     = errors.New("mqtt topic is empty")
	ErrPublishFailed    = errors.New("mqtt publish failed")
	ErrSubscribeFailed  = errors.New("mqtt subscribe failed")
)

// newPahoClient 測試時可替換
var newPahoClient = pahomqtt.NewClient

// MessageHandler 收到訊息時呼叫，回傳的錯誤只會被記錄
type MessageHandler func(topic string, payload []byte) error

// Publisher 發佈裝置指令
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Subscriber 訂閱主題
type Subscriber interface {
	Subscribe(topic string, handler MessageHandler) error
}

// Logger 只需要 echo.Logger 的一小部分
type Logger interface {
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type Options struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Logger   Logger
}

// Client 連線中的 broker client，可同時被多個 goroutine 使用
// 斷線重連後會自動恢復訂閱
type Client struct {
	client pahomqtt.Client
	logger Logger

	mu   sync.RWMutex
	subs map[string]MessageHandler
}

// Connect 建立連線並等待初次連線完成
func Connect(opts Options) (*Client, error) {
	if opts.Broker == "" {
		return nil, fmt.Errorf("%w: broker is empty", ErrConnectionFailed)
	}
	c := &Client{logger: opts.Logger, subs: make(map[string]MessageHandler)}

	po := pahomqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetAutoReconnect(true).
		SetCleanSession(true)
	po.SetOnConnectHandler(func(pahomqtt.Client) { c.restoreSubscriptions() })
	po.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		if c.logger != nil {
			c.logger.Warnf("mqtt connection lost: %v", err)
		}
	})

	c.client = newPahoClient(po)
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return c, nil
}

// Publish 以 QoS 1、非 retained 發佈
func (c *Client) Publish(topic string, payload []byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.client.IsConnected() {
		return ErrNotConnected
	}
	token := c.client.Publish(topic, defaultQoS, false, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Subscribe 註冊 handler；主題可含 + 或 # 萬用字元
func (c *Client) Subscribe(topic string, handler MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	c.mu.Lock()
	c.subs[topic] = handler
	c.mu.Unlock()

	token := c.client.Subscribe(topic, defaultQoS, c.wrapHandler(handler))
	if !token.WaitTimeout(defaultConnectTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}
	return nil
}

// Close 斷線；未連線時不做任何事
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	c.client.Disconnect(defaultDisconnectQuiet)
	return nil
}

func (c *Client) restoreSubscriptions() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for topic, h := range c.subs {
		c.client.Subscribe(topic, defaultQoS, c.wrapHandler(h))
	}
}

// wrapHandler 攔截 handler 的 panic 與錯誤，避免拖垮 paho 的 goroutine
func (c *Client) wrapHandler(h MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil && c.logger != nil {
				c.logger.Errorf("mqtt handler panic on %s: %v", msg.Topic(), r)
			}
		}()
		if err := h(msg.Topic(), msg.Payload()); err != nil && c.logger != nil {
			c.logger.Warnf("mqtt handler error on %s: %v", msg.Topic(), err)
		}
	}
}

// Nop 未設定 broker 時使用，發佈直接丟棄
type Nop struct{}

func (Nop) Publish(string, []byte) error { return nil }

/* ---------- 主題 ---------- */

// LogsTopic 所有樹莓派上傳日誌的主題
const LogsTopic = "home/+/logs"

// DeviceCommandTopic 裝置狀態指令主題
func DeviceCommandTopic(userID, deviceID int) string {
	return fmt.Sprintf("home/%d/devices/%d/set", userID, deviceID)
}

// RaspberryFromLogsTopic 取出 home/<id>/logs 中的樹莓派編號
func RaspberryFromLogsTopic(topic string) (int, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "home" || parts[2] != "logs" {
		return 0, fmt.Errorf("unexpected logs topic %q", topic)
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid raspberry id in topic %q", topic)
	}
	return id, nil
}
