package metrics

import (
	"context"
	"sync"

	"github.com/vavepl/marketplace-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// Event lifecycle counters
	EventsCreated  *telemetry.Counter
	EventsCanceled *telemetry.Counter
	EventsClosed   *telemetry.Counter

	// Refund counters
	RefundsIssued  *telemetry.Counter
	RefundsSkipped *telemetry.Counter
	RefundAmount   *telemetry.Counter

	// Search
	SearchDuration *telemetry.Histogram

	// Close sweep gauge
	SweepBacklog *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
	mu       sync.Mutex
)

// Init initializes all marketplace metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	EventsCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "marketplace_events_created_total",
		Description: "Total number of events published",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	EventsCanceled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "marketplace_events_canceled_total",
		Description: "Total number of events canceled",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	EventsClosed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "marketplace_events_closed_total",
		Description: "Total number of events closed by the sweep",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RefundsIssued, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "marketplace_refunds_issued_total",
		Description: "Total number of refunds credited to companies",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RefundsSkipped, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "marketplace_refunds_skipped_total",
		Description: "Total number of withdrawals below the refund notice window",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RefundAmount, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "marketplace_refund_amount_total",
		Description: "Total refunded amount in the smallest currency unit",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	SearchDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "marketplace_search_duration_seconds",
		Description: "Event search query duration",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5})
	if err != nil {
		return err
	}

	SweepBacklog, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "marketplace_close_sweep_backlog",
		Description: "Events pending closure observed by the last sweep",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordEventCreated records an event creation metric
func RecordEventCreated(ctx context.Context, categoryID string) {
	if EventsCreated != nil {
		EventsCreated.Inc(ctx, attribute.String("category_id", categoryID))
	}
}

// RecordEventCanceled records an event cancellation metric
func RecordEventCanceled(ctx context.Context, categoryID string) {
	if EventsCanceled != nil {
		EventsCanceled.Inc(ctx, attribute.String("category_id", categoryID))
	}
}

// RecordEventClosed records an event closure metric
func RecordEventClosed(ctx context.Context) {
	if EventsClosed != nil {
		EventsClosed.Inc(ctx)
	}
}

// RecordRefund records an issued refund with its amount
func RecordRefund(ctx context.Context, amount int) {
	if RefundsIssued != nil {
		RefundsIssued.Inc(ctx)
	}
	if RefundAmount != nil {
		RefundAmount.Add(ctx, int64(amount))
	}
}

// RecordRefundSkipped records a withdrawal below the notice window
func RecordRefundSkipped(ctx context.Context) {
	if RefundsSkipped != nil {
		RefundsSkipped.Inc(ctx)
	}
}

// RecordSearchDuration records a search query duration
func RecordSearchDuration(ctx context.Context, seconds float64) {
	if SearchDuration != nil {
		SearchDuration.Record(ctx, seconds)
	}
}

var lastBacklog int64

// RecordSweepBacklog records the number of events pending closure seen by
// the latest sweep. The counter is adjusted by the delta from the previous
// observation so it reads as a gauge.
func RecordSweepBacklog(ctx context.Context, count int) {
	if SweepBacklog == nil {
		return
	}
	mu.Lock()
	delta := int64(count) - lastBacklog
	lastBacklog = int64(count)
	mu.Unlock()
	SweepBacklog.Add(ctx, delta)
}
