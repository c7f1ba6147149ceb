// Package mqtt publishes high-severity hazards to the plant alarm topic.
package mqtt

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"mill-data/internal/config"
	"mill-data/internal/domain"
)

// AlarmPublisher pushes newly created high-severity hazards to an MQTT
// topic so the operator alarm panel reacts without polling. Optional:
// ingestion proceeds unchanged when publishing is disabled or fails.
type AlarmPublisher struct {
	client mqtt.Client
	topic  string
	logger *zap.Logger
}

// NewAlarmPublisher connects to the broker. Called only when MQTT is
// enabled in config.
func NewAlarmPublisher(cfg *config.MQTTConfig, logger *zap.Logger) (*AlarmPublisher, error) {
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

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &AlarmPublisher{client: client, topic: cfg.Topic, logger: logger}, nil
}

// PublishHazard sends one hazard as JSON, QoS 1.
func (p *AlarmPublisher) PublishHazard(h *domain.HazardRecord) error {
	payload, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("failed to marshal hazard: %w", err)
	}
	if token := p.client.Publish(p.topic, 1, false, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish hazard: %w", token.Error())
	}
	p.logger.Info("published hazard alarm",
		zap.String("hazard_id", h.HazardID),
		zap.String("severity", h.Severity),
	)
	return nil
}

// Close disconnects from the broker.
func (p *AlarmPublisher) Close() {
	p.client.Disconnect(250)
}
