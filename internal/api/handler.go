package api

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/mpfapps/mpf-price-api/internal/prices"
	"github.com/mpfapps/mpf-price-api/pkg/model"
)

// CatalogService defines the catalog operations needed by the handler.
type CatalogService interface {
	Trustees(ctx context.Context) ([]string, error)
	Categories(ctx context.Context) ([]string, error)
	Catalog(ctx context.Context) ([]model.CatalogEntry, error)
	ByTrustee(ctx context.Context, trustee, scheme string) ([]model.CatalogEntry, error)
}

// PriceAggregator retrieves per-fund price series.
type PriceAggregator interface {
	Retrieve(ctx context.Context, req prices.Request) ([]model.PriceSeries, error)
}

// PerformanceService retrieves precomputed growth records.
type PerformanceService interface {
	Retrieve(ctx context.Context, funds []model.FundSelector) ([]model.PerformanceRecord, error)
	RetrieveAll(ctx context.Context) ([]model.PerformanceRecord, error)
}

// Handler serves the read-only MPF query endpoints.
type Handler struct {
	logger      *zap.Logger
	catalog     CatalogService
	prices      PriceAggregator
	performance PerformanceService
}

func NewHandler(logger *zap.Logger, catalog CatalogService, prices PriceAggregator, performance PerformanceService) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		logger:      logger,
		catalog:     catalog,
		prices:      prices,
		performance: performance,
	}
}

// ListTrustees handles GET /api/v1/trustees.
func (h *Handler) ListTrustees(c *fiber.Ctx) error {
	names, err := h.catalog.Trustees(c.Context())
	if err != nil {
		h.logger.Error("api.trustees_failed", zap.Error(err))
		return internalError(c, err)
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(names)
}

// ListCategories handles GET /api/v1/categories.
func (h *Handler) ListCategories(c *fiber.Ctx) error {
	tags, err := h.catalog.Categories(c.Context())
	if err != nil {
		h.logger.Error("api.categories_failed", zap.Error(err))
		return internalError(c, err)
	}
	if tags == nil {
		tags = []string{}
	}
	return c.JSON(tags)
}

// ListCatalog handles GET /api/v1/catalog.
func (h *Handler) ListCatalog(c *fiber.Ctx) error {
	entries, err := h.catalog.Catalog(c.Context())
	if err != nil {
		h.logger.Error("api.catalog_failed", zap.Error(err))
		return internalError(c, err)
	}
	if entries == nil {
		entries = []model.CatalogEntry{}
	}
	return c.JSON(entries)
}

// GetCatalog handles GET /api/v1/catalog/:trustee.
func (h *Handler) GetCatalog(c *fiber.Ctx) error {
	return h.catalogByTrustee(c, pathParam(c, "trustee"), "")
}

// GetCatalogByScheme handles GET /api/v1/catalog/:trustee/schemes/:scheme.
func (h *Handler) GetCatalogByScheme(c *fiber.Ctx) error {
	return h.catalogByTrustee(c, pathParam(c, "trustee"), pathParam(c, "scheme"))
}

func (h *Handler) catalogByTrustee(c *fiber.Ctx, trustee, scheme string) error {
	entries, err := h.catalog.ByTrustee(c.Context(), trustee, scheme)
	if err != nil {
		h.logger.Error("api.catalog_by_trustee_failed",
			zap.String("trustee", trustee),
			zap.String("scheme", scheme),
			zap.Error(err))
		return internalError(c, err)
	}
	if entries == nil {
		entries = []model.CatalogEntry{}
	}
	return c.JSON(entries)
}

// GetPrices handles POST /api/v1/prices. A missing or empty funds list
// yields 404, matching the long-standing contract of this endpoint.
func (h *Handler) GetPrices(c *fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return invalidParameter(c)
	}

	var req PriceRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidParameter(c)
	}
	if len(req.Funds) == 0 {
		return invalidParameter(c)
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	granularity, err := model.ParseGranularity(req.TimePeriod)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	series, err := h.prices.Retrieve(c.Context(), prices.Request{
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Granularity: granularity,
		Funds:       req.Funds,
	})
	if err != nil {
		h.logger.Error("api.prices_failed",
			zap.Int("funds", len(req.Funds)),
			zap.Error(err))
		return internalError(c, err)
	}
	if series == nil {
		series = []model.PriceSeries{}
	}
	return c.JSON(series)
}

// GetPerformances handles POST /api/v1/performances. An absent or empty
// body falls back to returning every growth record.
func (h *Handler) GetPerformances(c *fiber.Ctx) error {
	var funds []model.FundSelector
	if body := c.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &funds); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}

	var (
		records []model.PerformanceRecord
		err     error
	)
	if len(funds) > 0 {
		records, err = h.performance.Retrieve(c.Context(), funds)
	} else {
		records, err = h.performance.RetrieveAll(c.Context())
	}
	if err != nil {
		h.logger.Error("api.performances_failed",
			zap.Int("funds", len(funds)),
			zap.Error(err))
		return internalError(c, err)
	}
	if records == nil {
		records = []model.PerformanceRecord{}
	}
	return c.JSON(records)
}

// pathParam returns a URL-decoded path parameter. Trustee and scheme
// names carry spaces and punctuation, so clients percent-encode them.
func pathParam(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func internalError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func invalidParameter(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Invalid parameter"})
}
