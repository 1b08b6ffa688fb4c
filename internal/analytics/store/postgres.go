package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/slugly/internal/analytics"
	"go.uber.org/zap"
)

// Postgres appends visits to the visits audit table.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres creates a PostgreSQL analytics store.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) *Postgres {
	return &Postgres{pool: pool, logger: logger}
}

// SaveURLCreated only logs: the short_urls row is already the record of creation.
func (p *Postgres) SaveURLCreated(_ context.Context, event *analytics.URLCreatedEvent) error {
	p.logger.Debug("url created",
		zap.Int64("id", event.ID),
		zap.String("slug", event.Slug),
	)

	return nil
}

func (p *Postgres) SaveURLAccessed(ctx context.Context, event *analytics.URLAccessedEvent) error {
	query := `
		INSERT INTO visits (short_url_id, slug, visitor_hash, user_agent, referrer, visited_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := p.pool.Exec(ctx, query,
		event.ID,
		event.Slug,
		event.VisitorHash,
		nullable(event.UserAgent),
		nullable(event.Referrer),
		event.AccessedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting visit for %s: %w", event.Slug, err)
	}

	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// Compile-time check.
var _ analytics.Store = (*Postgres)(nil)
