package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/serroba/slugly/internal/shortener"
)

type ownerURL struct {
	owner shortener.OwnerID
	url   string
}

// MemoryStore is an in-memory implementation of shortener.Repository.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  shortener.ID
	byID    map[shortener.ID]*shortener.ShortURL
	bySlug  map[shortener.Slug]shortener.ID
	byOwner map[ownerURL]shortener.ID
}

// NewMemoryStore creates a new in-memory URL store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[shortener.ID]*shortener.ShortURL),
		bySlug:  make(map[shortener.Slug]shortener.ID),
		byOwner: make(map[ownerURL]shortener.ID),
	}
}

func (m *MemoryStore) NextID(_ context.Context) (shortener.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++

	return m.nextID, nil
}

func (m *MemoryStore) Create(_ context.Context, shortURL *shortener.ShortURL) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bySlug[shortURL.Slug]; ok {
		return shortener.ErrSlugTaken
	}

	key := ownerURL{owner: shortURL.OwnerID, url: shortURL.OriginalURL}
	if shortURL.OwnerID != "" {
		if _, ok := m.byOwner[key]; ok {
			return shortener.ErrDuplicateURL
		}
	}

	// Records inserted with an explicit id keep the sequence ahead of them.
	if shortURL.ID > m.nextID {
		m.nextID = shortURL.ID
	}

	stored := *shortURL
	m.byID[stored.ID] = &stored
	m.bySlug[stored.Slug] = stored.ID

	if stored.OwnerID != "" {
		m.byOwner[key] = stored.ID
	}

	return nil
}

func (m *MemoryStore) GetBySlug(_ context.Context, slug shortener.Slug) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.bySlug[slug]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return m.copyOf(id), nil
}

func (m *MemoryStore) GetByID(_ context.Context, id shortener.ID) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.byID[id]; !ok {
		return nil, shortener.ErrNotFound
	}

	return m.copyOf(id), nil
}

func (m *MemoryStore) FindByOwnerURL(
	_ context.Context, owner shortener.OwnerID, originalURL string,
) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byOwner[ownerURL{owner: owner, url: originalURL}]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return m.copyOf(id), nil
}

func (m *MemoryStore) IncrementVisits(_ context.Context, slug shortener.Slug) (*shortener.ShortURL, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.bySlug[slug]
	if !ok || m.byID[id].Expired(time.Now()) {
		return nil, shortener.ErrNotFound
	}

	m.byID[id].VisitCount++

	return m.copyOf(id), nil
}

func (m *MemoryStore) ListByOwner(_ context.Context, owner shortener.OwnerID) ([]*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	urls := make([]*shortener.ShortURL, 0)

	for id, u := range m.byID {
		if u.OwnerID == owner {
			urls = append(urls, m.copyOf(id))
		}
	}

	sort.Slice(urls, func(i, j int) bool {
		if !urls[i].CreatedAt.Equal(urls[j].CreatedAt) {
			return urls[i].CreatedAt.After(urls[j].CreatedAt)
		}

		return urls[i].ID > urls[j].ID
	})

	return urls, nil
}

// copyOf must be called with the lock held.
func (m *MemoryStore) copyOf(id shortener.ID) *shortener.ShortURL {
	u := *m.byID[id]

	return &u
}

// Compile-time check.
var _ shortener.Repository = (*MemoryStore)(nil)
