package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/lborres/kalma/core"
	"github.com/lborres/kalma/pkg/metrics"
)

type ErasureService struct {
	storage core.ErasureStorage
}

func NewErasureService(storage core.ErasureStorage) *ErasureService {
	return &ErasureService{storage: storage}
}

// EraseUser removes every answer and summary of a user in one atomic unit.
// The billing record is kept. Erasing a user with no data succeeds with zero counts.
func (s *ErasureService) EraseUser(ctx context.Context, userID string) (*core.ErasureResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, core.ErrUserIDRequired
	}

	result, err := s.storage.EraseUserData(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to erase user data: %w", err)
	}
	if result == nil {
		result = &core.ErasureResult{}
	}

	metrics.RecordErasure()
	return result, nil
}
