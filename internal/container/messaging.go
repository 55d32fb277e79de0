package container

import (
	"errors"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/samber/do"
	"github.com/serroba/paylink/internal/analytics"
	analyticsstore "github.com/serroba/paylink/internal/analytics/store"
	"github.com/serroba/paylink/internal/messaging"
	"go.uber.org/zap"
)

var errRedisRequired = errors.New("the analytics consumer requires a redis address")

// ConsumerGroupName is the Redis stream consumer group of the analytics consumer.
const ConsumerGroupName = "paylink-analytics"

// PublisherGroupPackage provides the event publisher. Without Redis events
// stay in process and are dropped when nobody subscribes.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		logger := messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i))

		conn := do.MustInvoke[*RedisConnection](i)
		if conn == nil {
			return messaging.NewPublisherGroup(gochannel.NewGoChannel(gochannel.Config{}, logger)), nil
		}

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client:     conn.UniversalClient,
			Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
		}, logger)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (*analytics.Publisher, error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return analytics.NewPublisher(group.Publisher(), do.MustInvoke[*zap.Logger](i)), nil
	})
}

// ConsumerGroupPackage provides the analytics consumers reading from Redis streams.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (message.Subscriber, error) {
		conn := do.MustInvoke[*RedisConnection](i)
		if conn == nil {
			return nil, errRedisRequired
		}

		return redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        conn.UniversalClient,
			Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
			ConsumerGroup: ConsumerGroupName,
		}, messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i)))
	})

	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		subscriber := do.MustInvoke[message.Subscriber](i)

		group := messaging.NewConsumerGroup(subscriber, logger)
		if err := group.Add(analytics.NewConsumers(subscriber, analyticsstore.NewNoop(logger), logger)...); err != nil {
			return nil, err
		}

		return group, nil
	})
}
