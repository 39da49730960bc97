package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lborres/kalma/core"
)

// clockOrDefault lets tests pin the current time
func clockOrDefault(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}

type CatalogService struct {
	storage core.ContentStorage
}

func NewCatalogService(storage core.ContentStorage) *CatalogService {
	return &CatalogService{storage: storage}
}

// ListContent returns the prompts of a flow ordered by step.
// Only active items are served for onboarding; daily serves the full catalog.
func (s *CatalogService) ListContent(ctx context.Context, flow core.Flow) ([]*core.ContentItem, error) {
	if !flow.Valid() {
		return nil, core.ErrInvalidFlow
	}

	items, err := s.storage.ListContent(ctx, flow, flow == core.FlowOnboarding)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	if items == nil {
		items = []*core.ContentItem{}
	}

	return items, nil
}
