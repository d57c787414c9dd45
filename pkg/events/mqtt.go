package events

import (
	"fmt"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"time"
)

func NewMqttPublisher(client mqtt.Client, qos byte, retain bool) *MqttPublisher {
	return &MqttPublisher{
		client:  client,
		qos:     qos,
		retain:  retain,
		timeout: 10 * time.Millisecond,
	}
}

type MqttPublisher struct {
	client  mqtt.Client
	qos     byte
	retain  bool
	timeout time.Duration
}

func (m *MqttPublisher) Publish(topic string, payload []byte) error {
	token := m.client.Publish(topic, m.qos, m.retain, payload)
	token.WaitTimeout(m.timeout)
	if err := token.Error(); err != nil {
		return fmt.Errorf("unable to publish to topic %v: %w", topic, err)
	}
	return nil
}

func (m *MqttPublisher) Close() error {
	m.client.Disconnect(10)
	return nil
}
