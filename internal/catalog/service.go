package catalog

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/mpfapps/mpf-price-api/pkg/model"
)

// Lookup is the slice of the store used by the catalog service.
type Lookup interface {
	ScanTrustees(ctx context.Context) ([]string, error)
	ScanCategories(ctx context.Context) ([]string, error)
	ScanCatalog(ctx context.Context) ([]model.CatalogEntry, error)
	QueryCatalog(ctx context.Context, trustee, scheme string) ([]model.CatalogEntry, error)
}

// Service resolves trustees, categories and trustee/scheme/fund
// combinations from the catalog table. All lookups are read-only and
// every store failure propagates to the caller.
type Service struct {
	logger *zap.Logger
	store  Lookup
}

func NewService(logger *zap.Logger, store Lookup) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, store: store}
}

// Trustees returns the distinct trustee names in first-seen order.
func (s *Service) Trustees(ctx context.Context) ([]string, error) {
	names, err := s.store.ScanTrustees(ctx)
	if err != nil {
		s.logger.Error("catalog.scan_trustees_failed", zap.Error(err))
		return nil, err
	}

	seen := make(map[string]struct{}, len(names))
	distinct := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		distinct = append(distinct, name)
	}
	return distinct, nil
}

// Categories returns the distinct category tags across the whole catalog.
// Each row's category field is a comma-delimited list; tokens are trimmed
// and deduped. Empty fields contribute nothing.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	fields, err := s.store.ScanCategories(ctx)
	if err != nil {
		s.logger.Error("catalog.scan_categories_failed", zap.Error(err))
		return nil, err
	}

	seen := make(map[string]struct{})
	tags := make([]string, 0, len(fields))
	for _, field := range fields {
		if field == "" {
			continue
		}
		for _, tag := range strings.Split(field, ",") {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

// Catalog returns every catalog row, unfiltered and unreshaped.
func (s *Service) Catalog(ctx context.Context) ([]model.CatalogEntry, error) {
	entries, err := s.store.ScanCatalog(ctx)
	if err != nil {
		s.logger.Error("catalog.scan_failed", zap.Error(err))
		return nil, err
	}
	return entries, nil
}

// ByTrustee returns the rows for one trustee, optionally narrowed to an
// exact scheme match when scheme is non-empty.
func (s *Service) ByTrustee(ctx context.Context, trustee, scheme string) ([]model.CatalogEntry, error) {
	entries, err := s.store.QueryCatalog(ctx, trustee, scheme)
	if err != nil {
		s.logger.Error("catalog.query_failed",
			zap.String("trustee", trustee),
			zap.String("scheme", scheme),
			zap.Error(err))
		return nil, err
	}
	return entries, nil
}
