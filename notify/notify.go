package notify

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

const (
	TopicRoomFilterCriteria = "hotel/room-filter/criteria"
	TopicGuestSelection     = "hotel/room-filter/selection"
)

// Publisher pushes events to the guest tablets.
type Publisher interface {
	Publish(topic string, payload any) error
	Close()
}

// Noop is used when no broker is configured; tablets fall back to polling.
type Noop struct{}

func (Noop) Publish(string, any) error { return nil }
func (Noop) Close()                    {}

// MQTTConfig is the broker connection.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

// MQTTPublisher wraps a paho client.
type MQTTPublisher struct {
	client mqtt.Client
}

func NewMQTTPublisher(cfg MQTTConfig) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &MQTTPublisher{client: client}, nil
}

// Publish sends payload as JSON, retained so a tablet that reconnects
// gets the current state immediately.
func (p *MQTTPublisher) Publish(topic string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	token := p.client.Publish(topic, 1, true, raw)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish to %s: %w", topic, err)
	}
	log.WithField("topic", topic).Debug("mqtt event published")
	return nil
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
