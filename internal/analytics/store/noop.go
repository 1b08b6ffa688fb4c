package store

import (
	"context"

	"github.com/serroba/slugly/internal/analytics"
	"go.uber.org/zap"
)

// Noop logs events instead of persisting them. The consumer falls back to it
// when no database is configured.
type Noop struct {
	logger *zap.Logger
}

func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger.Named("analytics")}
}

func (n *Noop) SaveURLCreated(_ context.Context, event *analytics.URLCreatedEvent) error {
	n.logger.Info("short url created",
		zap.Int64("id", event.ID),
		zap.String("slug", event.Slug),
		zap.String("scheme", event.Scheme),
		zap.Bool("owned", event.OwnerID != ""),
		zap.Time("createdAt", event.CreatedAt),
	)

	return nil
}

func (n *Noop) SaveURLAccessed(_ context.Context, event *analytics.URLAccessedEvent) error {
	fields := []zap.Field{
		zap.Int64("id", event.ID),
		zap.String("slug", event.Slug),
		zap.String("visitor", event.VisitorHash),
		zap.Time("visitedAt", event.AccessedAt),
	}
	if event.Referrer != "" {
		fields = append(fields, zap.String("referrer", event.Referrer))
	}

	n.logger.Info("short url visited", fields...)

	return nil
}
