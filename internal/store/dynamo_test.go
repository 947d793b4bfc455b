package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mpfapps/mpf-price-api/pkg/model"
)

// --- Mock DynamoDB API ---

type mockDynamo struct {
	queryFn    func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	scanFn     func(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	describeFn func(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

func (m *mockDynamo) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, params, optFns...)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockDynamo) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, params, optFns...)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockDynamo) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if m.describeFn != nil {
		return m.describeFn(ctx, params, optFns...)
	}
	return nil, fmt.Errorf("not implemented")
}

func testTables() Tables {
	return Tables{
		Catalog:      "MPFCatalog",
		PriceDaily:   "MPFPriceDaily",
		PriceWeekly:  "MPFPriceWeekly",
		PriceMonthly: "MPFPriceMonthly",
		Performance:  "MPFFundPerformance",
	}
}

func stringAttr(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func numberAttr(v string) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: v}
}

// --- Tests ---

func TestQueryPrices_TableByGranularity(t *testing.T) {
	tests := []struct {
		granularity model.Granularity
		wantTable   string
	}{
		{model.Daily, "MPFPriceDaily"},
		{model.Weekly, "MPFPriceWeekly"},
		{model.Monthly, "MPFPriceMonthly"},
	}

	for _, tt := range tests {
		t.Run(string(tt.granularity), func(t *testing.T) {
			var gotTable string
			mock := &mockDynamo{
				queryFn: func(ctx context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
					gotTable = aws.ToString(params.TableName)
					return &dynamodb.QueryOutput{}, nil
				},
			}

			st := New(mock, testTables(), zap.NewNop())
			start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

			_, err := st.QueryPrices(context.Background(), tt.granularity, "T-S-F", start, end)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTable, gotTable)
		})
	}
}

func TestQueryPrices_UnknownGranularity(t *testing.T) {
	st := New(&mockDynamo{}, testTables(), zap.NewNop())
	_, err := st.QueryPrices(context.Background(), model.Granularity("Q"), "T-S-F",
		time.Now(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no price table")
}

func TestQueryPrices_KeyRangeAndUnmarshal(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	var captured *dynamodb.QueryInput
	mock := &mockDynamo{
		queryFn: func(ctx context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
			captured = params
			return &dynamodb.QueryOutput{
				Items: []map[string]types.AttributeValue{
					{
						"trusteeSchemeFundId": stringAttr("HSBC-VC-HSI"),
						"trustee":             stringAttr("HSBC"),
						"scheme":              stringAttr("VC"),
						"fundName":            stringAttr("HSI"),
						"priceDate":           numberAttr(fmt.Sprintf("%d", start.UnixMilli())),
						"price":               numberAttr("12.34"),
					},
				},
			}, nil
		},
	}

	st := New(mock, testTables(), zap.NewNop())
	rows, err := st.QueryPrices(context.Background(), model.Daily, "HSBC-VC-HSI", start, end)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "HSBC-VC-HSI", rows[0].ID)
	assert.Equal(t, "HSI", rows[0].FundName)
	assert.Equal(t, start.UnixMilli(), rows[0].PriceDate)
	assert.Equal(t, 12.34, rows[0].Price)

	require.NotNil(t, captured)
	require.NotNil(t, captured.KeyConditionExpression)

	// The BETWEEN bounds and the partition key travel as expression values.
	var values []string
	for _, v := range captured.ExpressionAttributeValues {
		switch av := v.(type) {
		case *types.AttributeValueMemberS:
			values = append(values, av.Value)
		case *types.AttributeValueMemberN:
			values = append(values, av.Value)
		}
	}
	assert.Contains(t, values, "HSBC-VC-HSI")
	assert.Contains(t, values, fmt.Sprintf("%d", start.UnixMilli()))
	assert.Contains(t, values, fmt.Sprintf("%d", end.UnixMilli()))
}

func TestScanCatalog_Pagination(t *testing.T) {
	page := 0
	mock := &mockDynamo{
		scanFn: func(ctx context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
			page++
			if page == 1 {
				return &dynamodb.ScanOutput{
					Items: []map[string]types.AttributeValue{
						{"trustee": stringAttr("HSBC"), "scheme": stringAttr("VC"), "fund": stringAttr("HSI"), "category": stringAttr("Equity")},
					},
					LastEvaluatedKey: map[string]types.AttributeValue{"trustee": stringAttr("HSBC")},
				}, nil
			}
			return &dynamodb.ScanOutput{
				Items: []map[string]types.AttributeValue{
					{"trustee": stringAttr("Manulife"), "scheme": stringAttr("Global"), "fund": stringAttr("Bond"), "category": stringAttr("Bond")},
				},
			}, nil
		},
	}

	st := New(mock, testTables(), zap.NewNop())
	entries, err := st.ScanCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 2, page, "expected the scan to follow LastEvaluatedKey")
	assert.Equal(t, "HSBC", entries[0].Trustee)
	assert.Equal(t, "Manulife", entries[1].Trustee)
}

func TestQueryCatalog_SchemeFilter(t *testing.T) {
	var captured *dynamodb.QueryInput
	mock := &mockDynamo{
		queryFn: func(ctx context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
			captured = params
			return &dynamodb.QueryOutput{}, nil
		},
	}
	st := New(mock, testTables(), zap.NewNop())

	_, err := st.QueryCatalog(context.Background(), "HSBC", "")
	require.NoError(t, err)
	assert.Nil(t, captured.FilterExpression, "no scheme gives no filter")

	_, err = st.QueryCatalog(context.Background(), "HSBC", "ValueChoice")
	require.NoError(t, err)
	require.NotNil(t, captured.FilterExpression, "scheme filter expected")

	var values []string
	for _, v := range captured.ExpressionAttributeValues {
		if av, ok := v.(*types.AttributeValueMemberS); ok {
			values = append(values, av.Value)
		}
	}
	assert.Contains(t, values, "HSBC")
	assert.Contains(t, values, "ValueChoice")
}

func TestQueryCatalog_Error(t *testing.T) {
	mock := &mockDynamo{
		queryFn: func(ctx context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
			return nil, fmt.Errorf("throughput exceeded")
		},
	}
	st := New(mock, testTables(), zap.NewNop())

	_, err := st.QueryCatalog(context.Background(), "HSBC", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throughput exceeded")
}

func TestScanPerformances_Unmarshal(t *testing.T) {
	mock := &mockDynamo{
		scanFn: func(ctx context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
			return &dynamodb.ScanOutput{
				Items: []map[string]types.AttributeValue{
					{
						"trusteeSchemeFundId": stringAttr("HSBC-VC-HSI"),
						"trustee":             stringAttr("HSBC"),
						"scheme":              stringAttr("VC"),
						"fund":                stringAttr("HSI"),
						"month1Growth":        numberAttr("1.5"),
						"month3Growth":        numberAttr("-0.7"),
						"month6Growth":        numberAttr("3.25"),
						"month12Growth":       numberAttr("10"),
					},
				},
			}, nil
		},
	}

	st := New(mock, testTables(), zap.NewNop())
	records, err := st.ScanPerformances(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "HSBC-VC-HSI", rec.ID)
	assert.Equal(t, 1.5, rec.Growth1Month)
	assert.Equal(t, -0.7, rec.Growth3Month)
	assert.Equal(t, 3.25, rec.Growth6Month)
	assert.Equal(t, 10.0, rec.Growth12Month)
}

func TestHealthCheck(t *testing.T) {
	mock := &mockDynamo{
		describeFn: func(ctx context.Context, params *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
			assert.Equal(t, "MPFCatalog", aws.ToString(params.TableName))
			return &dynamodb.DescribeTableOutput{}, nil
		},
	}
	st := New(mock, testTables(), zap.NewNop())
	require.NoError(t, st.HealthCheck(context.Background()))

	mock.describeFn = func(ctx context.Context, params *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
		return nil, fmt.Errorf("connection refused")
	}
	require.Error(t, st.HealthCheck(context.Background()))
}
