package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vavepl/marketplace-backend/internal/domain"
	"github.com/vavepl/marketplace-backend/internal/metrics"
	"github.com/vavepl/marketplace-backend/internal/notification"
	"github.com/vavepl/marketplace-backend/internal/repository"
	"github.com/vavepl/marketplace-backend/pkg/logger"
)

// EventCloseWorkerConfig contains configuration for the close worker
type EventCloseWorkerConfig struct {
	// ScanInterval is the interval between scans for expired events
	ScanInterval time.Duration
	// BatchSize is the number of events to close in each scan
	BatchSize int
}

// DefaultEventCloseWorkerConfig returns default configuration
func DefaultEventCloseWorkerConfig() *EventCloseWorkerConfig {
	return &EventCloseWorkerConfig{
		ScanInterval: time.Minute,
		BatchSize:    100,
	}
}

// EventCloseWorker periodically closes active events whose end date has
// passed. Closing is idempotent, so overlapping deployments of the worker
// are safe.
type EventCloseWorker struct {
	events   repository.EventRepository
	notifier notification.Publisher
	config   *EventCloseWorkerConfig
	log      *logger.Logger
	now      func() time.Time
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool

	totalClosed   int64
	lastScanTime  time.Time
	lastScanCount int
}

// NewEventCloseWorker creates a new close worker
func NewEventCloseWorker(
	events repository.EventRepository,
	notifier notification.Publisher,
	config *EventCloseWorkerConfig,
) *EventCloseWorker {
	if config == nil {
		config = DefaultEventCloseWorkerConfig()
	}

	return &EventCloseWorker{
		events:   events,
		notifier: notifier,
		config:   config,
		log:      logger.Get(),
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start starts the close worker
func (w *EventCloseWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("event close worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting event close worker")

	w.wg.Add(1)
	go w.scan(ctx)

	return nil
}

// Stop stops the close worker
func (w *EventCloseWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping event close worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Event close worker stopped")
}

// scan periodically sweeps for expired events
func (w *EventCloseWorker) scan(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.ScanInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep closes one batch of expired events. A failure on one event is
// logged and does not stop the rest of the batch; the event is retried on
// the next scan.
func (w *EventCloseWorker) Sweep(ctx context.Context) {
	w.mu.Lock()
	w.lastScanTime = w.now()
	w.mu.Unlock()

	expired, err := w.events.FindToClose(ctx, w.now(), w.config.BatchSize)
	if err != nil {
		w.log.Error(fmt.Sprintf("Failed to find events to close: %v", err))
		return
	}

	metrics.RecordSweepBacklog(ctx, len(expired))

	if len(expired) == 0 {
		w.mu.Lock()
		w.lastScanCount = 0
		w.mu.Unlock()
		return
	}

	w.log.Info(fmt.Sprintf("Found %d expired events to close", len(expired)))

	closed := 0
	for _, event := range expired {
		if err := w.closeEvent(ctx, event); err != nil {
			w.log.Error(fmt.Sprintf("Failed to close event %s: %v", event.ID, err))
			continue
		}
		closed++
	}

	w.mu.Lock()
	w.totalClosed += int64(closed)
	w.lastScanCount = closed
	w.mu.Unlock()
}

// closeEvent closes a single event and publishes the notification
func (w *EventCloseWorker) closeEvent(ctx context.Context, event *domain.Event) error {
	if err := w.events.MarkClosed(ctx, event.ID); err != nil {
		return err
	}

	event.Status = domain.EventStatusClosed
	metrics.RecordEventClosed(ctx)
	w.notifier.EventClosed(ctx, event)

	w.log.Info(fmt.Sprintf("Closed event %s (company: %s, ended: %s)",
		event.ID, event.CompanyID, event.EndDate.Format(time.RFC3339)))

	return nil
}

// GetStats returns worker statistics
func (w *EventCloseWorker) GetStats() *EventCloseWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &EventCloseWorkerStats{
		IsRunning:     w.running,
		TotalClosed:   w.totalClosed,
		LastScanTime:  w.lastScanTime,
		LastScanCount: w.lastScanCount,
	}
}

// EventCloseWorkerStats contains worker statistics
type EventCloseWorkerStats struct {
	IsRunning     bool      `json:"is_running"`
	TotalClosed   int64     `json:"total_closed"`
	LastScanTime  time.Time `json:"last_scan_time"`
	LastScanCount int       `json:"last_scan_count"`
}
