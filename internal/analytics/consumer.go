package analytics

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/paylink/internal/messaging"
	"go.uber.org/zap"
)

// NewConsumers returns one consumer per analytics topic, each persisting
// its events to store.
func NewConsumers(subscriber message.Subscriber, store Store, logger *zap.Logger) []messaging.Runnable {
	return []messaging.Runnable{
		messaging.NewConsumer(subscriber, TopicLinkCreated, store.SaveLinkCreated, logger),
		messaging.NewConsumer(subscriber, TopicViewRecorded, store.SaveViewRecorded, logger),
	}
}
