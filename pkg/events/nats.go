package events

import (
	"fmt"
	"github.com/nats-io/nats.go"
	"strings"
)

func NewNatsPublisher(conn *nats.Conn) *NatsPublisher {
	return &NatsPublisher{conn: conn}
}

type NatsPublisher struct {
	conn *nats.Conn
}

func (n *NatsPublisher) Publish(topic string, payload []byte) error {
	if err := n.conn.Publish(Subject(topic), payload); err != nil {
		return fmt.Errorf("unable to publish to subject %v: %w", Subject(topic), err)
	}
	return nil
}

func (n *NatsPublisher) Close() error {
	if err := n.conn.Drain(); err != nil {
		return fmt.Errorf("unable to drain nats connection: %w", err)
	}
	return nil
}

// Subject maps a ROS style topic to a nats subject: "/exo/airsim/drone/imu" -> "exo.airsim.drone.imu"
func Subject(topic string) string {
	return strings.ReplaceAll(strings.Trim(topic, "/"), "/", ".")
}
