package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/safeflow/internal/database"
)

func openTestDB(t *testing.T) *UsageRepo {
	t.Helper()
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "usage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUsageRepo(db)
}

func TestUsageRepoAddAndRecent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := openTestDB(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Add(ctx, UsageRecord{ID: "a", ConversationID: "c1", Profile: "widget", Outcome: "ok", StatusCode: 200, Tag: "info", Latency: 1200 * time.Millisecond, CreatedAt: base}))
	require.NoError(t, repo.Add(ctx, UsageRecord{ID: "b", ConversationID: "c1", Profile: "widget", Outcome: "failed", StatusCode: 503, Tag: "warning", Latency: 300 * time.Millisecond, CreatedAt: base.Add(time.Minute)}))

	got, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "b", got[0].ID)
	require.Equal(t, 503, got[0].StatusCode)
	require.Equal(t, 300*time.Millisecond, got[0].Latency)
	require.True(t, base.Equal(got[1].CreatedAt))

	one, err := repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
}

func TestUsageRepoSummarizeAndPrune(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := openTestDB(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	records := []UsageRecord{
		{ID: "old", Profile: "widget", Outcome: "ok", Latency: time.Second, CreatedAt: base.Add(-48 * time.Hour)},
		{ID: "1", Profile: "widget", Outcome: "ok", Latency: time.Second, CreatedAt: base},
		{ID: "2", Profile: "widget", Outcome: "ok", Latency: 3 * time.Second, CreatedAt: base.Add(time.Second)},
		{ID: "3", Profile: "fraud-alert", Outcome: "defaulted", Latency: 500 * time.Millisecond, CreatedAt: base.Add(2 * time.Second)},
	}
	for _, r := range records {
		require.NoError(t, repo.Add(ctx, r))
	}

	sum, err := repo.Summarize(ctx, base.Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, []UsageSummary{
		{Profile: "fraud-alert", Outcome: "defaulted", Calls: 1, AvgLatency: 500 * time.Millisecond},
		{Profile: "widget", Outcome: "ok", Calls: 2, AvgLatency: 2 * time.Second},
	}, sum)

	n, err := repo.Prune(ctx, base.Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	left, err := repo.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, left, 3)
}
