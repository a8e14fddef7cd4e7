package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vavepl/marketplace-backend/internal/domain"
	"github.com/vavepl/marketplace-backend/internal/dto"
	"github.com/vavepl/marketplace-backend/internal/repository"
)

// closeOnlyEventRepository covers the two calls the worker makes; the rest
// of the interface is unused here.
type closeOnlyEventRepository struct {
	expired    []*domain.Event
	findErr    error
	closeErrs  map[string]error
	closedIDs  []string
	findCalled int
}

func (m *closeOnlyEventRepository) FindToClose(ctx context.Context, now time.Time, limit int) ([]*domain.Event, error) {
	m.findCalled++
	if m.findErr != nil {
		return nil, m.findErr
	}
	if limit < len(m.expired) {
		return m.expired[:limit], nil
	}
	return m.expired, nil
}

func (m *closeOnlyEventRepository) MarkClosed(ctx context.Context, id string) error {
	if err, ok := m.closeErrs[id]; ok {
		return err
	}
	m.closedIDs = append(m.closedIDs, id)
	return nil
}

func (m *closeOnlyEventRepository) Create(ctx context.Context, event *domain.Event) error {
	return nil
}

func (m *closeOnlyEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return nil, nil
}

func (m *closeOnlyEventRepository) Update(ctx context.Context, event *domain.Event, details []domain.EventDetail) (bool, error) {
	return false, nil
}

func (m *closeOnlyEventRepository) MarkCanceled(ctx context.Context, id, comment string, endDate time.Time) error {
	return nil
}

func (m *closeOnlyEventRepository) Search(ctx context.Context, query *dto.EventSearchQuery) ([]*domain.Event, int64, error) {
	return nil, 0, nil
}

func (m *closeOnlyEventRepository) ListByCompany(ctx context.Context, companyID string, limit, page int) ([]*domain.Event, int64, error) {
	return nil, 0, nil
}

func (m *closeOnlyEventRepository) CountBookings(ctx context.Context, eventID string) (int, error) {
	return 0, nil
}

func (m *closeOnlyEventRepository) AddFile(ctx context.Context, file *domain.EventFile) error {
	return nil
}

func (m *closeOnlyEventRepository) RemoveFile(ctx context.Context, eventID, fileID string) error {
	return nil
}

var _ repository.EventRepository = (*closeOnlyEventRepository)(nil)

type closedCapture struct {
	ids []string
}

func (p *closedCapture) EventCanceled(ctx context.Context, event *domain.Event)        {}
func (p *closedCapture) BookingStatusChanged(ctx context.Context, b *domain.UserEvent) {}
func (p *closedCapture) RefundIssued(ctx context.Context, companyID string, amount int) {
}
func (p *closedCapture) Close() error { return nil }

func (p *closedCapture) EventClosed(ctx context.Context, event *domain.Event) {
	p.ids = append(p.ids, event.ID)
}

func expiredEvent(id string) *domain.Event {
	return &domain.Event{
		ID:        id,
		CompanyID: "company-1",
		Status:    domain.EventStatusActive,
		EndDate:   time.Now().Add(-time.Hour),
	}
}

func TestSweepClosesExpiredEvents(t *testing.T) {
	repo := &closeOnlyEventRepository{
		expired: []*domain.Event{expiredEvent("e1"), expiredEvent("e2")},
	}
	pub := &closedCapture{}
	w := NewEventCloseWorker(repo, pub, nil)

	w.Sweep(context.Background())

	if len(repo.closedIDs) != 2 {
		t.Fatalf("closed %v, want both events", repo.closedIDs)
	}
	if len(pub.ids) != 2 {
		t.Errorf("notifications %v, want both events", pub.ids)
	}

	stats := w.GetStats()
	if stats.TotalClosed != 2 || stats.LastScanCount != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSweepContinuesPastFailures(t *testing.T) {
	repo := &closeOnlyEventRepository{
		expired:   []*domain.Event{expiredEvent("e1"), expiredEvent("e2"), expiredEvent("e3")},
		closeErrs: map[string]error{"e2": errors.New("connection reset")},
	}
	pub := &closedCapture{}
	w := NewEventCloseWorker(repo, pub, nil)

	w.Sweep(context.Background())

	if len(repo.closedIDs) != 2 {
		t.Fatalf("closed %v, want e1 and e3", repo.closedIDs)
	}
	for _, id := range repo.closedIDs {
		if id == "e2" {
			t.Error("failed event recorded as closed")
		}
	}
	if w.GetStats().TotalClosed != 2 {
		t.Errorf("total closed = %d, want 2", w.GetStats().TotalClosed)
	}
}

func TestSweepRespectsBatchSize(t *testing.T) {
	repo := &closeOnlyEventRepository{
		expired: []*domain.Event{expiredEvent("e1"), expiredEvent("e2"), expiredEvent("e3")},
	}
	w := NewEventCloseWorker(repo, &closedCapture{}, &EventCloseWorkerConfig{
		ScanInterval: time.Minute,
		BatchSize:    2,
	})

	w.Sweep(context.Background())

	if len(repo.closedIDs) != 2 {
		t.Fatalf("closed %v, want batch of 2", repo.closedIDs)
	}
}

func TestSweepFindErrorLeavesStats(t *testing.T) {
	repo := &closeOnlyEventRepository{findErr: errors.New("db down")}
	w := NewEventCloseWorker(repo, &closedCapture{}, nil)

	w.Sweep(context.Background())

	if w.GetStats().TotalClosed != 0 {
		t.Errorf("total closed = %d, want 0", w.GetStats().TotalClosed)
	}
}

func TestStartStop(t *testing.T) {
	repo := &closeOnlyEventRepository{}
	w := NewEventCloseWorker(repo, &closedCapture{}, &EventCloseWorkerConfig{
		ScanInterval: 10 * time.Millisecond,
		BatchSize:    10,
	})

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := w.Start(context.Background()); err == nil {
		t.Error("second Start() succeeded, want already-running error")
	}

	time.Sleep(35 * time.Millisecond)
	w.Stop()

	if repo.findCalled < 2 {
		t.Errorf("scans = %d, want at least the initial run plus one tick", repo.findCalled)
	}
	if w.GetStats().IsRunning {
		t.Error("stats still report running after Stop")
	}
}
