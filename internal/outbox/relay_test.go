// internal/outbox/relay_test.go
package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu     sync.Mutex
	events []*Event
}

func (r *memRepo) Create(ctx context.Context, event *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *memRepo) FetchPending(ctx context.Context, limit int) ([]*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []*Event
	for _, event := range r.events {
		if event.Status == StatusPending && len(pending) < limit {
			pending = append(pending, event)
		}
	}
	return pending, nil
}

func (r *memRepo) MarkCompleted(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byID := make(map[string]bool, len(ids))
	for _, id := range ids {
		byID[id] = true
	}
	for _, event := range r.events {
		if byID[event.ID] {
			event.Status = StatusCompleted
		}
	}
	return nil
}

func (r *memRepo) PurgeCompleted(ctx context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*Event
	var purged int64
	for _, event := range r.events {
		if event.Status == StatusCompleted && event.CreatedAt.Before(olderThan) {
			purged++
			continue
		}
		kept = append(kept, event)
	}
	r.events = kept
	return purged, nil
}

func (r *memRepo) statuses() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Status, len(r.events))
	for i, event := range r.events {
		out[i] = event.Status
	}
	return out
}

// recordingPublisher 记录投递顺序，failOn 指定的事件投递失败。
type recordingPublisher struct {
	published []string
	failOn    map[string]error
}

func (p *recordingPublisher) Publish(ctx context.Context, event *Event) error {
	if err, ok := p.failOn[event.ID]; ok {
		return err
	}
	p.published = append(p.published, event.ID)
	return nil
}

func seedEvents(t *testing.T, repo *memRepo, n int) []*Event {
	t.Helper()
	events := make([]*Event, 0, n)
	for i := 0; i < n; i++ {
		event, err := NewEvent("tenant-1", "ORDER", "order-1", "ORDER_CREATED", map[string]string{"k": "v"})
		require.NoError(t, err)
		require.NoError(t, repo.Create(context.Background(), event))
		events = append(events, event)
	}
	return events
}

func TestRelayDeliversAndMarksCompleted(t *testing.T) {
	repo := &memRepo{}
	events := seedEvents(t, repo, 3)
	pub := &recordingPublisher{}

	relay := NewRelay(repo, pub)
	relay.deliverBatch(context.Background())

	assert.Equal(t, []string{events[0].ID, events[1].ID, events[2].ID}, pub.published)
	assert.Equal(t, []Status{StatusCompleted, StatusCompleted, StatusCompleted}, repo.statuses())
}

func TestRelayKeepsFailedEventsPending(t *testing.T) {
	repo := &memRepo{}
	events := seedEvents(t, repo, 3)
	pub := &recordingPublisher{failOn: map[string]error{events[1].ID: errors.New("broker unavailable")}}

	relay := NewRelay(repo, pub)
	relay.deliverBatch(context.Background())

	// 第一条成功并被标记，失败中断本轮，其后的保持 PENDING 等待重试
	assert.Equal(t, []string{events[0].ID}, pub.published)
	assert.Equal(t, []Status{StatusCompleted, StatusPending, StatusPending}, repo.statuses())

	// 故障恢复后的下一轮把剩余事件投完
	pub.failOn = nil
	relay.deliverBatch(context.Background())
	assert.Equal(t, []Status{StatusCompleted, StatusCompleted, StatusCompleted}, repo.statuses())
}

func TestRelayRespectsBatchSize(t *testing.T) {
	repo := &memRepo{}
	seedEvents(t, repo, 5)
	pub := &recordingPublisher{}

	relay := NewRelay(repo, pub)
	relay.BatchSize = 2
	relay.deliverBatch(context.Background())

	assert.Len(t, pub.published, 2)
}

func TestPurgeRemovesOnlyOldCompletedEvents(t *testing.T) {
	repo := &memRepo{}
	events := seedEvents(t, repo, 3)

	// 一条旧的已投递、一条旧的未投递、一条新的已投递
	old := time.Now().Add(-8 * 24 * time.Hour)
	events[0].Status = StatusCompleted
	events[0].CreatedAt = old
	events[1].CreatedAt = old
	events[2].Status = StatusCompleted

	purged, err := repo.PurgeCompleted(context.Background(), time.Now().Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	assert.Equal(t, []Status{StatusPending, StatusCompleted}, repo.statuses())
}
