package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// MetricsNamespace groups all POS metrics in CloudWatch.
const MetricsNamespace = "POSCheckout"

// Metrics emits operational counters for completed sales.
type Metrics struct {
	CW      CloudWatchAPI
	nowFunc func() time.Time
}

// NewMetrics returns a Metrics emitter.
func NewMetrics(cw CloudWatchAPI) *Metrics {
	return &Metrics{CW: cw, nowFunc: time.Now}
}

// RecordSale publishes a completed-sale count and the sale amount, tagged by
// payment method.
func (m *Metrics) RecordSale(ctx context.Context, method string, amount float64) error {
	now := m.nowFunc()
	dims := []cwtypes.Dimension{
		{Name: awsString("PaymentMethod"), Value: awsString(method)},
	}

	_, err := m.CW.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: awsString(MetricsNamespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: awsString("SalesCompleted"),
				Timestamp:  &now,
				Unit:       cwtypes.StandardUnitCount,
				Value:      awsFloat(1),
				Dimensions: dims,
			},
			{
				MetricName: awsString("SaleAmount"),
				Timestamp:  &now,
				Unit:       cwtypes.StandardUnitNone,
				Value:      awsFloat(amount),
				Dimensions: dims,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}

func awsFloat(f float64) *float64 { return &f }
