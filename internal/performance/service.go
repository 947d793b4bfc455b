package performance

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mpfapps/mpf-price-api/pkg/model"
)

// GrowthStore is the slice of the store used by the performance service.
type GrowthStore interface {
	QueryPerformance(ctx context.Context, fundID string) ([]model.PerformanceRecord, error)
	ScanPerformances(ctx context.Context) ([]model.PerformanceRecord, error)
}

// Service retrieves precomputed growth records. One record per fund; no
// grouping or sorting is needed. Store failures propagate.
type Service struct {
	logger *zap.Logger
	store  GrowthStore
}

func NewService(logger *zap.Logger, st GrowthStore) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, store: st}
}

// Retrieve fans out one point lookup per fund selector and flattens the
// results in selector order. A fund with no growth record contributes
// nothing. Any lookup failure aborts the batch.
func (s *Service) Retrieve(ctx context.Context, funds []model.FundSelector) ([]model.PerformanceRecord, error) {
	results := make([][]model.PerformanceRecord, len(funds))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, fund := range funds {
		i, fund := i, fund
		eg.Go(func() error {
			records, err := s.store.QueryPerformance(egCtx, fund.ID())
			if err != nil {
				return fmt.Errorf("fund %s: %w", fund.ID(), err)
			}
			results[i] = records
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		s.logger.Error("performance.fanout_failed", zap.Error(err))
		return nil, err
	}

	var flat []model.PerformanceRecord
	for _, records := range results {
		flat = append(flat, records...)
	}
	return flat, nil
}

// RetrieveAll returns every growth record in the performance table.
func (s *Service) RetrieveAll(ctx context.Context) ([]model.PerformanceRecord, error) {
	records, err := s.store.ScanPerformances(ctx)
	if err != nil {
		s.logger.Error("performance.scan_failed", zap.Error(err))
		return nil, err
	}
	return records, nil
}
