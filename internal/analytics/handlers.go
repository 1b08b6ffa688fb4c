package analytics

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Handlers persists analytics events. Its methods match messaging.Handler.
type Handlers struct {
	store  Store
	logger *zap.Logger
}

// NewHandlers creates analytics event handlers backed by store.
func NewHandlers(store Store, logger *zap.Logger) *Handlers {
	return &Handlers{store: store, logger: logger}
}

func (h *Handlers) URLCreated(ctx context.Context, event *URLCreatedEvent) error {
	if err := h.store.SaveURLCreated(ctx, event); err != nil {
		return fmt.Errorf("saving url created event %q: %w", event.Slug, err)
	}

	return nil
}

func (h *Handlers) URLAccessed(ctx context.Context, event *URLAccessedEvent) error {
	if event.ID == 0 {
		// Unresolvable without an id; acking avoids redelivering it forever.
		h.logger.Warn("dropping access event without id", zap.String("slug", event.Slug))

		return nil
	}

	if err := h.store.SaveURLAccessed(ctx, event); err != nil {
		return fmt.Errorf("saving url accessed event %q: %w", event.Slug, err)
	}

	return nil
}
