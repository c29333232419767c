// mqtt.go - MQTT-backed event publisher

package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"course-management-backend/logger"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type MQTTConfig struct {
	Broker      string // e.g. tcp://localhost:1883
	ClientID    string
	TopicPrefix string
	QoS         byte
	Timeout     time.Duration // Bounds connect and each publish
}

type MQTTPublisher struct {
	client  mqtt.Client
	prefix  string
	qos     byte
	timeout time.Duration
	now     func() time.Time
	log     *logger.Logger
}

// NewMQTTPublisher connects to the broker and returns a publisher. The client
// reconnects automatically after the initial connection succeeds.
func NewMQTTPublisher(cfg MQTTConfig, log *logger.Logger) (*MQTTPublisher, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtt broker address is empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	pubLog := log.With("service", "MQTTPublisher")

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(cfg.Timeout).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			pubLog.Warn("mqtt connection lost", "error", err)
		}).
		SetOnConnectHandler(func(mqtt.Client) {
			pubLog.Info("mqtt connected", "broker", cfg.Broker)
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("mqtt connect to %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}
	return newMQTTPublisher(client, cfg, pubLog), nil
}

func newMQTTPublisher(client mqtt.Client, cfg MQTTConfig, log *logger.Logger) *MQTTPublisher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &MQTTPublisher{
		client:  client,
		prefix:  strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:     cfg.QoS,
		timeout: cfg.Timeout,
		now:     time.Now,
		log:     log,
	}
}

func (p *MQTTPublisher) Topic(event string) string {
	if p.prefix == "" {
		return event
	}
	return p.prefix + "/" + event
}

// Publish sends the event and waits at most the configured timeout for the
// broker acknowledgement.
func (p *MQTTPublisher) Publish(ctx context.Context, event string, data any) {
	payload, err := json.Marshal(Envelope{Event: event, OccurredAt: p.now().UTC(), Data: data})
	if err != nil {
		p.log.Error("encode event", "event", event, "error", err)
		return
	}
	topic := p.Topic(event)
	token := p.client.Publish(topic, p.qos, false, payload)

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			p.log.Warn("publish event failed", "topic", topic, "error", err)
			return
		}
		p.log.Debug("event published", "topic", topic)
	case <-timer.C:
		p.log.Warn("publish event timed out", "topic", topic)
	case <-ctx.Done():
		p.log.Warn("publish event abandoned", "topic", topic, "error", ctx.Err())
	}
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
