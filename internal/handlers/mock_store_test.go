package handlers_test

import (
	"context"
	"errors"

	"github.com/serroba/slugly/internal/shortener"
)

var errMock = errors.New("mock error")

const testURL = "https://example.com"

// failingStore is a shortener.Repository whose every call fails with err.
type failingStore struct {
	shortener.Repository

	err error
}

func (f *failingStore) NextID(context.Context) (shortener.ID, error) {
	return 0, f.err
}

func (f *failingStore) FindByOwnerURL(context.Context, shortener.OwnerID, string) (*shortener.ShortURL, error) {
	return nil, f.err
}

func (f *failingStore) IncrementVisits(context.Context, shortener.Slug) (*shortener.ShortURL, error) {
	return nil, f.err
}

func (f *failingStore) GetByID(context.Context, shortener.ID) (*shortener.ShortURL, error) {
	return nil, f.err
}

func (f *failingStore) ListByOwner(context.Context, shortener.OwnerID) ([]*shortener.ShortURL, error) {
	return nil, f.err
}
