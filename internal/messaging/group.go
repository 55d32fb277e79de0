package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// ErrDuplicateTopic is returned when a group already consumes a topic.
var ErrDuplicateTopic = errors.New("topic already consumed by group")

// Runnable is a consumer bound to one topic.
type Runnable interface {
	Topic() string
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup runs at most one consumer per topic over a shared
// subscriber. Two consumers on one topic would split its stream between
// them, so they are rejected.
type ConsumerGroup struct {
	consumers  []Runnable
	topics     map[string]struct{}
	subscriber message.Subscriber
	logger     *zap.Logger
}

// NewConsumerGroup creates an empty group over subscriber.
func NewConsumerGroup(subscriber message.Subscriber, logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{
		topics:     make(map[string]struct{}),
		subscriber: subscriber,
		logger:     logger,
	}
}

// Add registers consumers. Nothing is added if any topic is taken.
func (g *ConsumerGroup) Add(consumers ...Runnable) error {
	seen := make(map[string]struct{}, len(consumers))

	for _, c := range consumers {
		topic := c.Topic()

		_, inGroup := g.topics[topic]
		_, inBatch := seen[topic]

		if inGroup || inBatch {
			return fmt.Errorf("%w: %s", ErrDuplicateTopic, topic)
		}

		seen[topic] = struct{}{}
	}

	for _, c := range consumers {
		g.topics[c.Topic()] = struct{}{}
		g.consumers = append(g.consumers, c)
	}

	return nil
}

// Topics lists the consumed topics in registration order.
func (g *ConsumerGroup) Topics() []string {
	topics := make([]string, 0, len(g.consumers))
	for _, c := range g.consumers {
		topics = append(topics, c.Topic())
	}

	return topics
}

// Start starts consumers in registration order. If one fails, the ones
// already running are stopped in reverse order.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	for i, c := range g.consumers {
		if err := c.Start(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				if stopErr := g.consumers[j].Shutdown(); stopErr != nil {
					g.logger.Warn("failed to stop consumer after start failure",
						zap.String("topic", g.consumers[j].Topic()),
						zap.Error(stopErr),
					)
				}
			}

			return fmt.Errorf("start %s consumer: %w", c.Topic(), err)
		}
	}

	g.logger.Info("consumer group started", zap.Strings("topics", g.Topics()))

	return nil
}

// Shutdown stops every consumer and closes the subscriber. All failures are
// returned joined.
func (g *ConsumerGroup) Shutdown() error {
	g.logger.Info("shutting down consumer group")

	var errs []error

	for _, c := range g.consumers {
		if err := c.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("stop %s consumer: %w", c.Topic(), err))
		}
	}

	if err := g.subscriber.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close subscriber: %w", err))
	}

	return errors.Join(errs...)
}
