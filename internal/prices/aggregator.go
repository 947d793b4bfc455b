package prices

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mpfapps/mpf-price-api/internal/store"
	"github.com/mpfapps/mpf-price-api/pkg/model"
)

const dateLayout = "20060102"

// PriceStore is the slice of the store used by the aggregator.
type PriceStore interface {
	QueryPrices(ctx context.Context, g model.Granularity, fundID string, start, end time.Time) ([]store.PriceRow, error)
}

// Request describes one aggregation: which funds, over which window, at
// which granularity. StartDate and EndDate are optional YYYYMMDD strings;
// Granularity defaults to daily when empty.
type Request struct {
	StartDate   string
	EndDate     string
	Granularity model.Granularity
	Funds       []model.FundSelector
}

// Aggregator retrieves raw price points per fund and reshapes them into
// one chronologically sorted series per fund.
type Aggregator struct {
	logger *zap.Logger
	store  PriceStore
	now    func() time.Time
}

func NewAggregator(logger *zap.Logger, st PriceStore) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{logger: logger, store: st, now: time.Now}
}

// Retrieve fans out one range lookup per fund, waits for all of them, and
// groups the combined rows into per-fund series. Any single lookup failure
// aborts the whole aggregation; there is no partial-success mode.
//
// A fund with no rows in the window contributes no series: grouping is
// driven by returned rows, so empty funds are omitted rather than emitted
// as empty series.
func (a *Aggregator) Retrieve(ctx context.Context, req Request) ([]model.PriceSeries, error) {
	if len(req.Funds) == 0 {
		return nil, fmt.Errorf("at least one fund is required")
	}

	start, end, err := a.window(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	g := req.Granularity
	if g == "" {
		g = model.Daily
	}

	a.logger.Debug("prices.retrieve",
		zap.Int("funds", len(req.Funds)),
		zap.String("granularity", string(g)),
		zap.Time("start", start),
		zap.Time("end", end))

	// Fan out one lookup per fund. Results land in selector order so the
	// output grouping stays deterministic regardless of completion order.
	results := make([][]store.PriceRow, len(req.Funds))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, fund := range req.Funds {
		i, fund := i, fund
		eg.Go(func() error {
			rows, err := a.store.QueryPrices(egCtx, g, fund.ID(), start, end)
			if err != nil {
				return fmt.Errorf("fund %s: %w", fund.ID(), err)
			}
			results[i] = rows
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		a.logger.Error("prices.fanout_failed", zap.Error(err))
		return nil, err
	}

	var flat []store.PriceRow
	for _, rows := range results {
		flat = append(flat, rows...)
	}
	return groupSeries(flat), nil
}

// window resolves the effective date range. A missing start defaults to
// one month before now; a missing end defaults to one month after the
// effective start.
func (a *Aggregator) window(startDate, endDate string) (time.Time, time.Time, error) {
	start := a.now().AddDate(0, -1, 0)
	if startDate != "" {
		parsed, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid startDate %q: %w", startDate, err)
		}
		start = parsed
	}

	end := start.AddDate(0, 1, 0)
	if endDate != "" {
		parsed, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid endDate %q: %w", endDate, err)
		}
		end = parsed
	}

	return start, end, nil
}

// groupSeries groups the flattened rows by canonical fund id, preserving
// first-seen group order, and sorts each group's points ascending by date.
func groupSeries(rows []store.PriceRow) []model.PriceSeries {
	var order []string
	grouped := make(map[string][]store.PriceRow)
	heads := make(map[string]store.PriceRow)

	for _, row := range rows {
		if _, ok := grouped[row.ID]; !ok {
			order = append(order, row.ID)
			heads[row.ID] = row
		}
		grouped[row.ID] = append(grouped[row.ID], row)
	}

	out := make([]model.PriceSeries, 0, len(order))
	for _, id := range order {
		group := grouped[id]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].PriceDate < group[j].PriceDate
		})

		points := make([]model.PricePoint, 0, len(group))
		for _, row := range group {
			points = append(points, model.PricePoint{
				PriceDate: time.UnixMilli(row.PriceDate).UTC().Format(dateLayout),
				Price:     row.Price,
			})
		}

		head := heads[id]
		out = append(out, model.PriceSeries{
			Trustee: head.Trustee,
			Scheme:  head.Scheme,
			Fund:    head.FundName,
			Prices:  points,
		})
	}
	return out
}
