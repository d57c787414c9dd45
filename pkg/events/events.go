package events

import (
	"github.com/cyrilix/airsim-bridge/pkg/rosmsg"
	"go.uber.org/zap"
)

// Publisher sends an encoded payload to one topic of the pub/sub middleware
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// PublishCloser is a Publisher owning its broker connection
type PublishCloser interface {
	Publisher
	Close() error
}

func NewMsgPublisher(p Publisher, codec rosmsg.Codec, topic string) *MsgPublisher {
	return &MsgPublisher{
		p:     p,
		codec: codec,
		topic: topic,
		log:   zap.S().With("topic", topic),
	}
}

/* MsgPublisher encodes messages of one topic. An empty topic disables it. */
type MsgPublisher struct {
	p     Publisher
	codec rosmsg.Codec
	topic string
	log   *zap.SugaredLogger
}

func (m *MsgPublisher) Topic() string {
	return m.topic
}

func (m *MsgPublisher) Publish(msg rosmsg.Message) error {
	if m.topic == "" {
		return nil
	}

	payload, err := m.codec.Marshal(msg)
	if err != nil {
		return err
	}
	m.log.Debugf("publish %v (%d bytes)", msg.TypeName(), len(payload))
	return m.p.Publish(m.topic, payload)
}
