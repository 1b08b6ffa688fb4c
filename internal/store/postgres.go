package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/slugly/internal/shortener"
)

const (
	uniqueViolation = "23505"

	slugConstraint     = "short_urls_slug_key"
	ownerURLConstraint = "short_urls_owner_url_key"

	shortURLColumns = `id, slug, original_url, owner_id, title, visit_count, created_at, expires_at`
)

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed URL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// NextID draws from the id sequence so the slug can be computed before the row is visible.
func (p *PostgresStore) NextID(ctx context.Context) (shortener.ID, error) {
	var id int64

	err := p.pool.QueryRow(ctx, `SELECT nextval(pg_get_serial_sequence('short_urls', 'id'))`).Scan(&id)
	if err != nil {
		return 0, err
	}

	return shortener.ID(id), nil
}

func (p *PostgresStore) Create(ctx context.Context, shortURL *shortener.ShortURL) error {
	query := `
		INSERT INTO short_urls (id, slug, original_url, owner_id, title, visit_count, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := p.pool.Exec(ctx, query,
		int64(shortURL.ID),
		string(shortURL.Slug),
		shortURL.OriginalURL,
		nullableString(string(shortURL.OwnerID)),
		nullableString(shortURL.Title),
		shortURL.VisitCount,
		shortURL.CreatedAt,
		shortURL.ExpiresAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case slugConstraint:
			return shortener.ErrSlugTaken
		case ownerURLConstraint:
			return shortener.ErrDuplicateURL
		}
	}

	return err
}

func (p *PostgresStore) GetBySlug(ctx context.Context, slug shortener.Slug) (*shortener.ShortURL, error) {
	query := `SELECT ` + shortURLColumns + ` FROM short_urls WHERE slug = $1`

	return scanOne(p.pool.QueryRow(ctx, query, string(slug)))
}

func (p *PostgresStore) GetByID(ctx context.Context, id shortener.ID) (*shortener.ShortURL, error) {
	query := `SELECT ` + shortURLColumns + ` FROM short_urls WHERE id = $1`

	return scanOne(p.pool.QueryRow(ctx, query, int64(id)))
}

func (p *PostgresStore) FindByOwnerURL(
	ctx context.Context, owner shortener.OwnerID, originalURL string,
) (*shortener.ShortURL, error) {
	query := `SELECT ` + shortURLColumns + ` FROM short_urls WHERE owner_id = $1 AND original_url = $2`

	return scanOne(p.pool.QueryRow(ctx, query, string(owner), originalURL))
}

// IncrementVisits looks up and counts in one statement, so concurrent hits never lose updates.
// Expired rows are left untouched and reported as not found.
func (p *PostgresStore) IncrementVisits(ctx context.Context, slug shortener.Slug) (*shortener.ShortURL, error) {
	query := `
		UPDATE short_urls
		SET visit_count = visit_count + 1
		WHERE slug = $1 AND (expires_at IS NULL OR expires_at > now())
		RETURNING ` + shortURLColumns

	return scanOne(p.pool.QueryRow(ctx, query, string(slug)))
}

func (p *PostgresStore) ListByOwner(ctx context.Context, owner shortener.OwnerID) ([]*shortener.ShortURL, error) {
	query := `
		SELECT ` + shortURLColumns + `
		FROM short_urls
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := p.pool.Query(ctx, query, string(owner))
	if err != nil {
		return nil, err
	}

	urls, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*shortener.ShortURL, error) {
		return scanShortURL(row)
	})
	if err != nil {
		return nil, fmt.Errorf("collecting rows: %w", err)
	}

	return urls, nil
}

func scanOne(row pgx.Row) (*shortener.ShortURL, error) {
	url, err := scanShortURL(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return url, nil
}

func scanShortURL(row pgx.Row) (*shortener.ShortURL, error) {
	var (
		url       shortener.ShortURL
		id        int64
		slug      string
		ownerID   *string
		title     *string
		expiresAt *time.Time
	)

	err := row.Scan(
		&id,
		&slug,
		&url.OriginalURL,
		&ownerID,
		&title,
		&url.VisitCount,
		&url.CreatedAt,
		&expiresAt,
	)
	if err != nil {
		return nil, err
	}

	url.ID = shortener.ID(id)
	url.Slug = shortener.Slug(slug)
	url.ExpiresAt = expiresAt

	if ownerID != nil {
		url.OwnerID = shortener.OwnerID(*ownerID)
	}

	if title != nil {
		url.Title = *title
	}

	return &url, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// Compile-time check.
var _ shortener.Repository = (*PostgresStore)(nil)
