package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"dhtsense/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	publishTimeout = 5 * time.Second
	qos            = 1
)

var (
	// ErrStopped is returned by Connect once Disconnect has been called.
	ErrStopped      = errors.New("mqtt client stopped")
	ErrNotConnected = errors.New("mqtt client not connected")
)

// Client publishes one station's telemetry and health.
type Client struct {
	client    mqtt.Client
	stationID string
	logger    *slog.Logger
	connected atomic.Bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewClient(cfg config.Config, logger *slog.Logger) (*Client, error) {
	will, err := willPayload(cfg.DeviceStationID)
	if err != nil {
		return nil, fmt.Errorf("mqtt will: %w", err)
	}

	c := &Client{
		stationID: cfg.DeviceStationID,
		logger:    logger.With("broker", cfg.MQTTBroker, "port", cfg.MQTTPort),
		stopCh:    make(chan struct{}),
	}

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort)).
		SetClientID(cfg.MQTTClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetMaxReconnectInterval(time.Minute).
		SetKeepAlive(30*time.Second).
		SetPingTimeout(10*time.Second).
		// the broker marks the station down if it drops off without saying goodbye
		SetWill(healthTopic(cfg.DeviceStationID), string(will), qos, true).
		SetOnConnectHandler(func(mqtt.Client) {
			c.connected.Store(true)
			c.logger.Info("mqtt connected", "station_id", c.stationID)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			c.connected.Store(false)
			c.logger.Warn("mqtt connection lost", "error", err)
		})

	c.client = mqtt.NewClient(opts)
	return c, nil
}

// willPayload is the retained health left on the broker when the
// connection dies. It carries no last_seen: the broker cannot know it.
func willPayload(stationID string) ([]byte, error) {
	return json.Marshal(StationHealth{StationID: stationID, Healthy: false})
}

// Connect blocks until the first connection is up. paho keeps retrying in the
// background; Connect gives up on ctx or Disconnect.
func (c *Client) Connect(ctx context.Context) error {
	if c.stopped() {
		return ErrStopped
	}
	if c.IsConnected() {
		return nil
	}

	token := c.client.Connect()
	select {
	case <-token.Done():
		if c.stopped() {
			return ErrStopped
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt connect: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.stopCh:
		return ErrStopped
	}
}

// PublishTelemetry publishes a reading to the station telemetry topic.
func (c *Client) PublishTelemetry(ctx context.Context, telemetry Telemetry) error {
	if telemetry.Timestamp.IsZero() {
		telemetry.Timestamp = time.Now()
	}
	topic := telemetryTopic(telemetry.StationID)
	if err := c.publish(ctx, topic, false, telemetry); err != nil {
		return fmt.Errorf("publish telemetry: %w", err)
	}
	c.logger.Debug("published telemetry", "topic", topic)
	return nil
}

// PublishStationHealth replaces the station's retained health state.
func (c *Client) PublishStationHealth(ctx context.Context, health StationHealth) error {
	topic := healthTopic(health.StationID)
	if err := c.publish(ctx, topic, true, health); err != nil {
		return fmt.Errorf("publish health: %w", err)
	}
	c.logger.Debug("published station health", "topic", topic, "healthy", health.Healthy)
	return nil
}

func (c *Client) publish(ctx context.Context, topic string, retained bool, v any) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	timer := time.NewTimer(publishTimeout)
	defer timer.Stop()

	token := c.client.Publish(topic, qos, retained, data)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("publish to %s: no ack after %v", topic, publishTimeout)
	}
}

func (c *Client) IsConnected() bool {
	return c.connected.Load() && c.client.IsConnected()
}

// Disconnect stops the client. Safe to call more than once; Connect fails
// with ErrStopped afterwards.
func (c *Client) Disconnect() {
	first := false
	c.stopOnce.Do(func() {
		close(c.stopCh)
		first = true
	})
	if !first {
		return
	}

	c.client.Disconnect(250)
	c.connected.Store(false)
	c.logger.Info("mqtt disconnected")
}

func (c *Client) stopped() bool {
	select {
	case <-c.stopCh:
		return true
	default:
		return false
	}
}
