// Package kafka adapts a broker-backed room event feed for deployments where
// the chat service publishes room changes to a topic instead of (or in
// addition to) the socket layer.
package kafka

import (
	"context"
	"log/slog"

	"github.com/IBM/sarama"

	"linkup/internal/domain/chat"
)

// EventHandler receives decoded room events.
type EventHandler interface {
	HandleRoomEvent(ev chat.RoomEvent)
}

// Source consumes room event envelopes from a consumer group.
type Source struct {
	group   sarama.ConsumerGroup
	topic   string
	handler EventHandler
	log     *slog.Logger
}

// NewSource joins groupID on brokers for topic.
func NewSource(brokers []string, groupID, topic string, handler EventHandler, log *slog.Logger) (*Source, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	return &Source{group: group, topic: topic, handler: handler, log: log}, nil
}

// Run consumes until the context is cancelled. Rebalances re-enter Consume,
// which is why it loops.
func (s *Source) Run(ctx context.Context) error {
	for {
		if err := s.group.Consume(ctx, []string{s.topic}, groupHandler{handler: s.handler, log: s.log}); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Close tears down the consumer group.
func (s *Source) Close() error {
	return s.group.Close()
}

type groupHandler struct {
	handler EventHandler
	log     *slog.Logger
}

func (h groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim decodes each record and hands it to the event handler. A
// malformed record is marked and skipped: one corrupt event must not wedge
// the partition.
func (h groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		ev, err := chat.DecodeRoomEvent(message.Value)
		if err != nil {
			if h.log != nil {
				h.log.Debug("undecodable room event record skipped", "offset", message.Offset, "error", err)
			}
			sess.MarkMessage(message, "")
			continue
		}
		h.handler.HandleRoomEvent(ev)
		sess.MarkMessage(message, "")
	}
	return nil
}
