package shortener_test

import (
	"context"
	"errors"

	"github.com/serroba/slugly/internal/shortener"
)

var errMock = errors.New("mock error")

// mockStore is a test double for shortener.Repository that can be configured to return errors.
type mockStore struct {
	shortener.Repository

	nextID         shortener.ID
	nextIDErr      error
	createErrs     []error
	created        []*shortener.ShortURL
	findResult     *shortener.ShortURL
	findErrs       []error
	incrementErr   error
	incrementCalls int
	listErr        error
}

func (m *mockStore) NextID(_ context.Context) (shortener.ID, error) {
	if m.nextIDErr != nil {
		return 0, m.nextIDErr
	}

	m.nextID++

	return m.nextID, nil
}

func (m *mockStore) Create(_ context.Context, shortURL *shortener.ShortURL) error {
	m.created = append(m.created, shortURL)

	if len(m.createErrs) == 0 {
		return nil
	}

	err := m.createErrs[0]
	m.createErrs = m.createErrs[1:]

	return err
}

func (m *mockStore) FindByOwnerURL(_ context.Context, _ shortener.OwnerID, _ string) (*shortener.ShortURL, error) {
	if len(m.findErrs) > 0 {
		err := m.findErrs[0]
		m.findErrs = m.findErrs[1:]

		if err != nil {
			return nil, err
		}
	}

	if m.findResult == nil {
		return nil, shortener.ErrNotFound
	}

	return m.findResult, nil
}

func (m *mockStore) IncrementVisits(_ context.Context, _ shortener.Slug) (*shortener.ShortURL, error) {
	m.incrementCalls++

	if m.incrementErr != nil {
		return nil, m.incrementErr
	}

	return nil, shortener.ErrNotFound
}

func (m *mockStore) ListByOwner(_ context.Context, _ shortener.OwnerID) ([]*shortener.ShortURL, error) {
	return nil, m.listErr
}
