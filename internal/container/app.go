package container

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jaevor/go-nanoid"
	"github.com/samber/do"
	"github.com/serroba/slugly/internal/analytics"
	"github.com/serroba/slugly/internal/auth"
	"github.com/serroba/slugly/internal/handlers"
	"github.com/serroba/slugly/internal/health"
	"github.com/serroba/slugly/internal/messaging"
	"github.com/serroba/slugly/internal/middleware"
	"github.com/serroba/slugly/internal/ratelimit"
	"github.com/serroba/slugly/internal/shortener"
	"github.com/serroba/slugly/internal/store"
	"go.uber.org/zap"
)

// RepositoryPackage provides the URL repository selected by Options.Store.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (shortener.Repository, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.Store == StoreMemory {
			return store.NewMemoryStore(), nil
		}

		pg, err := do.Invoke[*Postgres](i)
		if err != nil {
			return nil, err
		}

		return store.NewPostgresStore(pg.Pool), nil
	})
}

// ServicePackage provides the shortener service with the configured slug scheme.
func ServicePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (shortener.Strategy, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.SlugScheme != SchemeToken {
			return shortener.NewIdentityStrategy(), nil
		}

		gen, err := nanoid.Standard(opts.TokenLength)
		if err != nil {
			return nil, fmt.Errorf("creating token generator: %w", err)
		}

		return shortener.NewTokenStrategy(gen), nil
	})

	do.Provide(i, func(i *do.Injector) (*shortener.Service, error) {
		opts := do.MustInvoke[*Options](i)

		return shortener.NewService(
			do.MustInvoke[shortener.Repository](i),
			do.MustInvoke[shortener.Strategy](i),
			opts.FallbackURL,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}

// AuthPackage provides owner token signing and verification.
func AuthPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*auth.Tokens, error) {
		return auth.NewTokens(do.MustInvoke[*Options](i).JWTSecret), nil
	})
}

// RateLimitPackage provides the policy limiter. Memory mode keeps counters in process.
func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		opts := do.MustInvoke[*Options](i)

		var s ratelimit.Store = store.NewRateLimitMemoryStore()
		if opts.Store != StoreMemory {
			s = store.NewRateLimitRedisStore(do.MustInvoke[*Redis](i))
		}

		return ratelimit.NewPolicyLimiter(s, ratelimit.DefaultPolicy()), nil
	})
}

// PublisherGroupPackage provides the event publisher: redis streams normally,
// an in-process channel in memory mode.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)
		wmLogger := messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i))

		var (
			publisher message.Publisher
			err       error
		)

		if opts.Store == StoreMemory {
			publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		} else {
			publisher, err = redisstream.NewPublisher(redisstream.PublisherConfig{
				Client: do.MustInvoke[*Redis](i).UniversalClient,
			}, wmLogger)
			if err != nil {
				return nil, fmt.Errorf("creating publisher: %w", err)
			}
		}

		return messaging.NewPublisherGroup(publisher), nil
	})
}

// HTTPPackage provides the router and the huma API with middleware and routes registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		api := humachi.New(router, huma.DefaultConfig("Slugly", "1.0.0"))

		api.UseMiddleware(
			middleware.RequestMeta(api),
			middleware.Authenticate(api, do.MustInvoke[*auth.Tokens](i), logger),
			middleware.PolicyRateLimiter(
				api,
				do.MustInvoke[*ratelimit.PolicyLimiter](i),
				ratelimit.NewOperationScopeResolver(),
				logger,
			),
		)

		urlHandler := handlers.NewURLHandler(
			do.MustInvoke[*shortener.Service](i),
			opts.BaseURL,
			opts.SlugScheme,
			messaging.Publisher[analytics.URLCreatedEvent](group, analytics.TopicURLCreated),
			messaging.Publisher[analytics.URLAccessedEvent](group, analytics.TopicURLAccessed),
			logger,
		)

		handlers.RegisterRoutes(api, urlHandler)
		health.RegisterRoutes(api, healthHandler(i, opts))

		return api, nil
	})
}

func healthHandler(i *do.Injector, opts *Options) *health.Handler {
	if opts.Store == StoreMemory {
		return health.NewHandler(nil, nil)
	}

	return health.NewHandler(
		health.NewPostgresChecker(do.MustInvoke[*Postgres](i).Pool),
		health.NewRedisChecker(do.MustInvoke[*Redis](i).UniversalClient),
	)
}
