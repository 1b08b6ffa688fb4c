package container

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/samber/do"
	"github.com/serroba/slugly/internal/analytics"
	analyticsstore "github.com/serroba/slugly/internal/analytics/store"
	"github.com/serroba/slugly/internal/messaging"
	"go.uber.org/zap"
)

const analyticsConsumerGroup = "analytics"

// AnalyticsStorePackage provides where consumed events are persisted:
// the visits table, or the log in memory mode.
func AnalyticsStorePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (analytics.Store, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.Store == StoreMemory {
			return analyticsstore.NewNoop(logger), nil
		}

		pg, err := do.Invoke[*Postgres](i)
		if err != nil {
			return nil, err
		}

		return analyticsstore.NewPostgres(pg.Pool, logger), nil
	})
}

// ConsumerGroupPackage provides the analytics consumers reading both event streams.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		client := do.MustInvoke[*Redis](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client.UniversalClient,
			ConsumerGroup: analyticsConsumerGroup,
		}, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("creating subscriber: %w", err)
		}

		h := analytics.NewHandlers(do.MustInvoke[analytics.Store](i), logger)

		group := messaging.NewConsumerGroup(subscriber, logger)
		messaging.Subscribe(group, analytics.TopicURLCreated, h.URLCreated)
		messaging.Subscribe(group, analytics.TopicURLAccessed, h.URLAccessed)

		return group, nil
	})
}
