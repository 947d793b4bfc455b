package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/mpfapps/mpf-price-api/internal/metrics"
	"github.com/mpfapps/mpf-price-api/pkg/model"
)

// Store defines the read-only contract against the MPF dataset. All
// methods propagate lookup failures; callers decide how a failure maps
// onto their response.
type Store interface {
	ScanTrustees(ctx context.Context) ([]string, error)
	ScanCategories(ctx context.Context) ([]string, error)
	ScanCatalog(ctx context.Context) ([]model.CatalogEntry, error)
	QueryCatalog(ctx context.Context, trustee, scheme string) ([]model.CatalogEntry, error)
	QueryPrices(ctx context.Context, g model.Granularity, fundID string, start, end time.Time) ([]PriceRow, error)
	QueryPerformance(ctx context.Context, fundID string) ([]model.PerformanceRecord, error)
	ScanPerformances(ctx context.Context) ([]model.PerformanceRecord, error)
	HealthCheck(ctx context.Context) error
}

// DynamoAPI is the subset of the DynamoDB client used by the store.
type DynamoAPI interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Tables names the five backing tables.
type Tables struct {
	Catalog      string
	PriceDaily   string
	PriceWeekly  string
	PriceMonthly string
	Performance  string
}

// DynamoStore reads the MPF dataset from DynamoDB. It is built once at
// startup and shared across requests; it holds no mutable state.
type DynamoStore struct {
	client DynamoAPI
	tables Tables
	logger *zap.Logger
}

// NewClient builds a DynamoDB client for the given region. endpoint, when
// non-empty, overrides the base endpoint (dynamodb-local).
func NewClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if endpoint != "" {
		return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		}), nil
	}
	return dynamodb.NewFromConfig(cfg), nil
}

// New creates a DynamoStore over the given client and table names.
func New(client DynamoAPI, tables Tables, logger *zap.Logger) *DynamoStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DynamoStore{client: client, tables: tables, logger: logger}
}

var catalogProjection = expression.NamesList(
	expression.Name("trustee"),
	expression.Name("scheme"),
	expression.Name("fund"),
	expression.Name("category"),
)

var priceProjection = expression.NamesList(
	expression.Name("trusteeSchemeFundId"),
	expression.Name("trustee"),
	expression.Name("scheme"),
	expression.Name("fundName"),
	expression.Name("priceDate"),
	expression.Name("price"),
)

var performanceProjection = expression.NamesList(
	expression.Name("trusteeSchemeFundId"),
	expression.Name("trustee"),
	expression.Name("scheme"),
	expression.Name("fund"),
	expression.Name("month1Growth"),
	expression.Name("month3Growth"),
	expression.Name("month6Growth"),
	expression.Name("month12Growth"),
)

// ScanTrustees returns the trustee column of every catalog row, duplicates
// included; the catalog service dedupes in first-seen order.
func (s *DynamoStore) ScanTrustees(ctx context.Context) (_ []string, err error) {
	defer metrics.ObserveStoreRequestSince(s.tables.Catalog, "scan", time.Now(), &err)

	rows, err := scanAll[trusteeRow](ctx, s.client, s.tables.Catalog,
		expression.NamesList(expression.Name("trustee")))
	if err != nil {
		return nil, fmt.Errorf("scan trustees: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Trustee)
	}
	return names, nil
}

// ScanCategories returns the raw comma-delimited category field of every
// catalog row. Splitting and deduping happen in the catalog service.
func (s *DynamoStore) ScanCategories(ctx context.Context) (_ []string, err error) {
	defer metrics.ObserveStoreRequestSince(s.tables.Catalog, "scan", time.Now(), &err)

	rows, err := scanAll[categoryRow](ctx, s.client, s.tables.Catalog,
		expression.NamesList(expression.Name("category")))
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}

	fields := make([]string, 0, len(rows))
	for _, r := range rows {
		fields = append(fields, r.Category)
	}
	return fields, nil
}

// ScanCatalog returns every catalog row, unfiltered.
func (s *DynamoStore) ScanCatalog(ctx context.Context) (_ []model.CatalogEntry, err error) {
	defer metrics.ObserveStoreRequestSince(s.tables.Catalog, "scan", time.Now(), &err)

	rows, err := scanAll[catalogRow](ctx, s.client, s.tables.Catalog, catalogProjection)
	if err != nil {
		return nil, fmt.Errorf("scan catalog: %w", err)
	}

	entries := make([]model.CatalogEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.toEntry())
	}
	return entries, nil
}

// QueryCatalog returns the catalog rows for a trustee, optionally filtered
// by exact scheme match when scheme is non-empty.
func (s *DynamoStore) QueryCatalog(ctx context.Context, trustee, scheme string) (_ []model.CatalogEntry, err error) {
	defer metrics.ObserveStoreRequestSince(s.tables.Catalog, "query", time.Now(), &err)

	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key("trustee").Equal(expression.Value(trustee))).
		WithProjection(catalogProjection)
	if scheme != "" {
		builder = builder.WithFilter(expression.Name("scheme").Equal(expression.Value(scheme)))
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build catalog query: %w", err)
	}

	rows, err := queryAll[catalogRow](ctx, s.client, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tables.Catalog),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("query catalog for trustee %q: %w", trustee, err)
	}

	entries := make([]model.CatalogEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.toEntry())
	}
	return entries, nil
}

// QueryPrices returns the raw price rows for one fund within [start, end],
// inclusive on both ends, from the table selected by g.
func (s *DynamoStore) QueryPrices(ctx context.Context, g model.Granularity, fundID string, start, end time.Time) (_ []PriceRow, err error) {
	table, err := s.priceTable(g)
	if err != nil {
		return nil, err
	}
	defer metrics.ObserveStoreRequestSince(table, "query", time.Now(), &err)

	keyCond := expression.Key("trusteeSchemeFundId").Equal(expression.Value(fundID)).
		And(expression.Key("priceDate").Between(
			expression.Value(start.UnixMilli()),
			expression.Value(end.UnixMilli())))

	expr, err := expression.NewBuilder().
		WithKeyCondition(keyCond).
		WithProjection(priceProjection).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build price query: %w", err)
	}

	rows, err := queryAll[PriceRow](ctx, s.client, &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		KeyConditionExpression:    expr.KeyCondition(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("query prices for fund %q: %w", fundID, err)
	}
	return rows, nil
}

// QueryPerformance returns the growth record(s) for one fund.
func (s *DynamoStore) QueryPerformance(ctx context.Context, fundID string) (_ []model.PerformanceRecord, err error) {
	defer metrics.ObserveStoreRequestSince(s.tables.Performance, "query", time.Now(), &err)

	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("trusteeSchemeFundId").Equal(expression.Value(fundID))).
		WithProjection(performanceProjection).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build performance query: %w", err)
	}

	rows, err := queryAll[performanceRow](ctx, s.client, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tables.Performance),
		KeyConditionExpression:    expr.KeyCondition(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("query performance for fund %q: %w", fundID, err)
	}

	records := make([]model.PerformanceRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.toRecord())
	}
	return records, nil
}

// ScanPerformances returns every growth record in the performance table.
func (s *DynamoStore) ScanPerformances(ctx context.Context) (_ []model.PerformanceRecord, err error) {
	defer metrics.ObserveStoreRequestSince(s.tables.Performance, "scan", time.Now(), &err)

	rows, err := scanAll[performanceRow](ctx, s.client, s.tables.Performance, performanceProjection)
	if err != nil {
		return nil, fmt.Errorf("scan performances: %w", err)
	}

	records := make([]model.PerformanceRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.toRecord())
	}
	return records, nil
}

// HealthCheck verifies the catalog table is reachable.
func (s *DynamoStore) HealthCheck(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.tables.Catalog),
	})
	if err != nil {
		return fmt.Errorf("describe table %q: %w", s.tables.Catalog, err)
	}
	return nil
}

func (s *DynamoStore) priceTable(g model.Granularity) (string, error) {
	switch g {
	case model.Daily:
		return s.tables.PriceDaily, nil
	case model.Weekly:
		return s.tables.PriceWeekly, nil
	case model.Monthly:
		return s.tables.PriceMonthly, nil
	default:
		return "", fmt.Errorf("no price table for granularity %q", g)
	}
}

// scanAll pages through a full table scan with the given projection.
func scanAll[T any](ctx context.Context, client DynamoAPI, table string, proj expression.ProjectionBuilder) ([]T, error) {
	expr, err := expression.NewBuilder().WithProjection(proj).Build()
	if err != nil {
		return nil, fmt.Errorf("build scan projection: %w", err)
	}

	input := &dynamodb.ScanInput{
		TableName:                aws.String(table),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	}

	var out []T
	paginator := dynamodb.NewScanPaginator(client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var rows []T
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &rows); err != nil {
			return nil, fmt.Errorf("unmarshal scan page: %w", err)
		}
		out = append(out, rows...)
	}
	return out, nil
}

// queryAll pages through a query until all matching rows are consumed.
func queryAll[T any](ctx context.Context, client DynamoAPI, input *dynamodb.QueryInput) ([]T, error) {
	var out []T
	paginator := dynamodb.NewQueryPaginator(client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var rows []T
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &rows); err != nil {
			return nil, fmt.Errorf("unmarshal query page: %w", err)
		}
		out = append(out, rows...)
	}
	return out, nil
}
