package analytics

import (
	"Durian-Scanner/domain"
	"Durian-Scanner/entities"
	"Durian-Scanner/pkg/scan"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepository struct {
	scan.ScanRepository

	stats     domain.ScanStats
	daily     []scan.DailyCount
	dist      map[string]int64
	recent    []*entities.Scan
	statsErr  error
	sinceSeen []time.Time
	limitSeen int
}

func (s *stubRepository) GetUserScanStats(_ context.Context, _ string, since time.Time) (domain.ScanStats, error) {
	s.sinceSeen = append(s.sinceSeen, since)
	return s.stats, s.statsErr
}

func (s *stubRepository) GetDailyScanCounts(context.Context, string, time.Time) ([]scan.DailyCount, error) {
	return s.daily, nil
}

func (s *stubRepository) GetQualityDistribution(context.Context, string, time.Time) (map[string]int64, error) {
	return s.dist, nil
}

func (s *stubRepository) GetUserScans(_ context.Context, _ string, limit, _ int) ([]*entities.Scan, error) {
	s.limitSeen = limit
	return s.recent, nil
}

var fixedNow = time.Date(2025, 6, 11, 15, 0, 0, 0, time.UTC)

func newService(repo *stubRepository) *analyticsService {
	svc := NewAnalyticsService(repo).(*analyticsService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestTimeAgo(t *testing.T) {
	assert.Equal(t, "1 min ago", TimeAgo(fixedNow.Add(-90*time.Second), fixedNow))
	assert.Equal(t, "2 days ago", TimeAgo(fixedNow.Add(-48*time.Hour), fixedNow))
	assert.Equal(t, "Just now", TimeAgo(fixedNow.Add(-30*time.Second), fixedNow))
	assert.Equal(t, "3 hrs ago", TimeAgo(fixedNow.Add(-3*time.Hour-5*time.Minute), fixedNow))
	assert.Equal(t, "1 hrs ago", TimeAgo(fixedNow.Add(-time.Hour), fixedNow))
	assert.Equal(t, "Unknown", TimeAgo(time.Time{}, fixedNow))
}

func TestGetAnalytics(t *testing.T) {
	withTime := &entities.Scan{ID: uuid.New(), Variety: "Musang King", QualityScore: 91, Status: "Ripe", DurianCount: 1}
	withTime.CreatedAt = fixedNow.Add(-2 * time.Hour)
	noTime := &entities.Scan{ID: uuid.New()}

	repo := &stubRepository{
		stats: domain.ScanStats{TotalScans: 4, AverageQuality: 71.26, AverageConfidence: 0.876},
		daily: []scan.DailyCount{
			{Day: time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC), Scans: 3, AvgQuality: 80.04},
			{Day: time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), Scans: 1, AvgQuality: 50},
		},
		dist:   map[string]int64{domain.QualityExcellent: 2, domain.QualityPoor: 1},
		recent: []*entities.Scan{withTime, noTime},
	}

	res, err := newService(repo).GetAnalytics(context.Background(), "user-1", "week")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "week", res.TimeRange)
	assert.Equal(t, 71.3, res.Stats.AverageQuality)
	assert.Equal(t, 0.88, res.Stats.AverageConfidence)
	assert.Equal(t, fixedNow.AddDate(0, 0, -7), repo.sinceSeen[0])
	assert.NotNil(t, res.Stats.StatusBreakdown)

	require.Len(t, res.WeeklyData, 7)
	assert.Equal(t, "2025-06-05", res.WeeklyData[0].Date)
	assert.Equal(t, "Thu", res.WeeklyData[0].Day)
	assert.Equal(t, int64(1), res.WeeklyData[0].Scans)
	assert.Equal(t, int64(0), res.WeeklyData[3].Scans)
	assert.Equal(t, "2025-06-11", res.WeeklyData[6].Date)
	assert.Equal(t, 80.0, res.WeeklyData[6].AvgQuality)

	require.Len(t, res.QualityDistribution, 4)
	assert.Equal(t, int64(2), res.QualityDistribution[0].Count)
	assert.Equal(t, int64(0), res.QualityDistribution[1].Count)
	assert.Equal(t, int64(1), res.QualityDistribution[3].Count)

	assert.Equal(t, domain.RecentScansLimit, repo.limitSeen)
	require.Len(t, res.RecentScans, 2)
	assert.Equal(t, "2 hrs ago", res.RecentScans[0].Time)
	require.NotNil(t, res.RecentScans[0].CreatedAt)
	assert.Equal(t, "Unknown", res.RecentScans[1].Time)
	assert.Equal(t, "Unknown", res.RecentScans[1].Variety)
	assert.Nil(t, res.RecentScans[1].CreatedAt)
}

func TestGetAnalyticsIsRecomputable(t *testing.T) {
	repo := &stubRepository{stats: domain.ScanStats{TotalScans: 2}, dist: map[string]int64{}}
	svc := newService(repo)

	first, err := svc.GetAnalytics(context.Background(), "u", "month")
	require.NoError(t, err)
	second, err := svc.GetAnalytics(context.Background(), "u", "month")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGetStatsDefaultsUnknownRange(t *testing.T) {
	repo := &stubRepository{stats: domain.ScanStats{TotalScans: 9}}

	stats, err := newService(repo).GetStats(context.Background(), "u", "decade")
	require.NoError(t, err)
	assert.Equal(t, int64(9), stats.TotalScans)
	assert.Equal(t, fixedNow.AddDate(0, 0, -30), repo.sinceSeen[0])
}

func TestGetStatsError(t *testing.T) {
	repo := &stubRepository{statsErr: errors.New("db down")}
	_, err := newService(repo).GetAnalytics(context.Background(), "u", "")
	assert.Error(t, err)
}
