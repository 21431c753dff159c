package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/complyops/backoffice/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedItem(t *testing.T, repo *QueueRepository, id string, priority int, createdAt time.Time) {
	t.Helper()
	err := repo.Create(context.Background(), &models.QueueItem{
		ID:          id,
		Type:        "email_retry",
		Priority:    priority,
		MaxAttempts: 3,
		State:       models.StateWaiting,
		CreatedAt:   createdAt,
	})
	require.NoError(t, err)
}

func TestQueueRepository_AcquireNext_PriorityOrder(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewQueueRepository(db)
	base := time.Now().Add(-time.Hour)

	// Submitted low first, critical last; claim order must follow
	// priority, not submission order.
	seedItem(t, repo, "low", models.PriorityLow, base)
	seedItem(t, repo, "normal", models.PriorityNormal, base.Add(time.Second))
	seedItem(t, repo, "critical", models.PriorityCritical, base.Add(2*time.Second))

	var got []string
	for i := 0; i < 3; i++ {
		item, err := repo.AcquireNext(context.Background(), time.Minute)
		require.NoError(t, err)
		require.NotNil(t, item)
		got = append(got, item.ID)
	}

	assert.Equal(t, []string{"critical", "normal", "low"}, got)

	item, err := repo.AcquireNext(context.Background(), time.Minute)
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestQueueRepository_AcquireNext_FIFOWithinPriority(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewQueueRepository(db)
	base := time.Now().Add(-time.Hour)

	seedItem(t, repo, "first", models.PriorityNormal, base)
	seedItem(t, repo, "second", models.PriorityNormal, base.Add(time.Second))
	seedItem(t, repo, "third", models.PriorityNormal, base.Add(2*time.Second))

	for _, want := range []string{"first", "second", "third"} {
		item, err := repo.AcquireNext(context.Background(), time.Minute)
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, want, item.ID)
	}
}

func TestQueueRepository_AcquireNext_ClaimsSetLock(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewQueueRepository(db)

	seedItem(t, repo, "a", models.PriorityNormal, time.Now())

	item, err := repo.AcquireNext(context.Background(), time.Minute)
	require.NoError(t, err)
	require.NotNil(t, item)

	assert.Equal(t, models.StateActive, item.State)
	require.NotNil(t, item.LockedUntil)
	assert.WithinDuration(t, time.Now().Add(time.Minute), *item.LockedUntil, 5*time.Second)
	require.NotNil(t, item.ProcessedAt)

	// Already active, nothing left to claim.
	next, err := repo.AcquireNext(context.Background(), time.Minute)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestQueueRepository_PendingExists(t *testing.T) {
	tests := []struct {
		name  string
		state string
		want  bool
	}{
		{"waiting is pending", models.StateWaiting, true},
		{"delayed is pending", models.StateDelayed, true},
		{"active is pending", models.StateActive, true},
		{"completed is not pending", models.StateCompleted, false},
		{"failed is not pending", models.StateFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := SetupTestDB(t)
			repo := NewQueueRepository(db)

			require.NoError(t, repo.Create(context.Background(), &models.QueueItem{
				ID:    "item",
				Type:  "email_retry",
				State: tt.state,
			}))

			got, err := repo.PendingExists(context.Background(), "item")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueueRepository_PromoteDelayed(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewQueueRepository(db)

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)
	require.NoError(t, repo.Create(context.Background(), &models.QueueItem{
		ID: "due", Type: "email_retry", State: models.StateDelayed, DelayUntil: &past,
	}))
	require.NoError(t, repo.Create(context.Background(), &models.QueueItem{
		ID: "early", Type: "email_retry", State: models.StateDelayed, DelayUntil: &future,
	}))

	n, err := repo.PromoteDelayed(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	due, err := repo.Get(context.Background(), "due")
	require.NoError(t, err)
	assert.Equal(t, models.StateWaiting, due.State)
	assert.Nil(t, due.DelayUntil)

	early, err := repo.Get(context.Background(), "early")
	require.NoError(t, err)
	assert.Equal(t, models.StateDelayed, early.State)
}

func TestQueueRepository_ListStalledAndRequeue(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewQueueRepository(db)

	expired := time.Now().Add(-time.Minute)
	healthy := time.Now().Add(time.Minute)
	require.NoError(t, repo.Create(context.Background(), &models.QueueItem{
		ID: "stalled", Type: "email_retry", State: models.StateActive, LockedUntil: &expired,
	}))
	require.NoError(t, repo.Create(context.Background(), &models.QueueItem{
		ID: "healthy", Type: "email_retry", State: models.StateActive, LockedUntil: &healthy,
	}))

	stalled, err := repo.ListStalled(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, stalled, 1)
	assert.Equal(t, "stalled", stalled[0].ID)

	require.NoError(t, repo.Requeue(context.Background(), "stalled", 1))

	item, err := repo.Get(context.Background(), "stalled")
	require.NoError(t, err)
	assert.Equal(t, models.StateWaiting, item.State)
	assert.Equal(t, 1, item.StallCount)
	assert.Nil(t, item.LockedUntil)
	assert.Nil(t, item.ProcessedAt)
}

func TestQueueRepository_MetricsAndHistory(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewQueueRepository(db)

	older := time.Now().Add(-2 * time.Hour)
	newer := time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(context.Background(), &models.QueueItem{
		ID: "w", Type: "email_retry", State: models.StateWaiting,
	}))
	require.NoError(t, repo.Create(context.Background(), &models.QueueItem{
		ID: "c", Type: "email_retry", State: models.StateCompleted, FinishedOn: &older,
	}))
	require.NoError(t, repo.Create(context.Background(), &models.QueueItem{
		ID: "f", Type: "email_retry", State: models.StateFailed, FinishedOn: &newer,
	}))

	counts, err := repo.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.StateWaiting])
	assert.Equal(t, int64(1), counts[models.StateCompleted])
	assert.Equal(t, int64(1), counts[models.StateFailed])
	assert.Equal(t, int64(0), counts[models.StateActive])

	history, err := repo.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "f", history[0].ID)
	assert.Equal(t, "c", history[1].ID)
}

func TestQueueRepository_DeleteFinishedBefore(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewQueueRepository(db)

	old := time.Now().AddDate(0, 0, -100)
	recent := time.Now().AddDate(0, 0, -1)
	require.NoError(t, repo.Create(context.Background(), &models.QueueItem{
		ID: "old", Type: "email_retry", State: models.StateCompleted, FinishedOn: &old,
	}))
	require.NoError(t, repo.Create(context.Background(), &models.QueueItem{
		ID: "recent", Type: "email_retry", State: models.StateFailed, FinishedOn: &recent,
	}))
	require.NoError(t, repo.Create(context.Background(), &models.QueueItem{
		ID: "waiting", Type: "email_retry", State: models.StateWaiting,
	}))

	n, err := repo.DeleteFinishedBefore(context.Background(), time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.Get(context.Background(), "old")
	assert.Error(t, err)
	_, err = repo.Get(context.Background(), "recent")
	assert.NoError(t, err)
	_, err = repo.Get(context.Background(), "waiting")
	assert.NoError(t, err)
}

func TestQueueRepository_PruneCompleted_KeepCount(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewQueueRepository(db)

	for i, id := range []string{"c1", "c2", "c3", "c4"} {
		finished := time.Now().Add(-time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(context.Background(), &models.QueueItem{
			ID: id, Type: "email_retry", State: models.StateCompleted, FinishedOn: &finished,
		}))
	}

	// Generous age window, so only the count cap applies.
	require.NoError(t, repo.PruneCompleted(context.Background(), 24*time.Hour, 2))

	counts, err := repo.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[models.StateCompleted])

	// Newest two survive.
	_, err = repo.Get(context.Background(), "c1")
	assert.NoError(t, err)
	_, err = repo.Get(context.Background(), "c2")
	assert.NoError(t, err)
}
