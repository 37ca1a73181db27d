package analytics

import (
	"Durian-Scanner/domain"
	"Durian-Scanner/pkg/scan"
	"context"
	"fmt"
	"math"
	"time"
)

const weeklyDays = 7

type (
	AnalyticsService interface {
		GetAnalytics(ctx context.Context, userID string, timeRange string) (domain.AnalyticsResponse, error)
		GetStats(ctx context.Context, userID string, timeRange string) (domain.ScanStats, error)
	}

	analyticsService struct {
		scanRepository scan.ScanRepository
		now            func() time.Time
	}
)

func NewAnalyticsService(scanRepository scan.ScanRepository) AnalyticsService {
	return &analyticsService{
		scanRepository: scanRepository,
		now:            time.Now,
	}
}

func (s *analyticsService) GetAnalytics(ctx context.Context, userID string, timeRange string) (domain.AnalyticsResponse, error) {
	timeRange = domain.NormalizeTimeRange(timeRange)
	now := s.now()

	stats, err := s.stats(ctx, userID, timeRange, now)
	if err != nil {
		return domain.AnalyticsResponse{}, err
	}

	weekly, err := s.weeklyData(ctx, userID, now)
	if err != nil {
		return domain.AnalyticsResponse{}, err
	}

	dist, err := s.scanRepository.GetQualityDistribution(ctx, userID, domain.WindowStart(timeRange, now))
	if err != nil {
		return domain.AnalyticsResponse{}, err
	}

	recent, err := s.scanRepository.GetUserScans(ctx, userID, domain.RecentScansLimit, 0)
	if err != nil {
		return domain.AnalyticsResponse{}, err
	}

	recentScans := make([]domain.RecentScan, 0, len(recent))
	for _, sc := range recent {
		var createdAt *string
		if !sc.CreatedAt.IsZero() {
			ts := domain.FormatTimestamp(sc.CreatedAt)
			createdAt = &ts
		}
		recentScans = append(recentScans, domain.RecentScan{
			ID:           sc.ID.String(),
			Variety:      orUnknown(sc.Variety),
			Quality:      sc.QualityScore,
			Status:       orUnknown(sc.Status),
			Time:         TimeAgo(sc.CreatedAt, now),
			ImageURL:     sc.ImageURL,
			ThumbnailURL: sc.ThumbnailURL,
			CreatedAt:    createdAt,
			DurianCount:  sc.DurianCount,
			Confidence:   sc.Confidence,
		})
	}

	return domain.AnalyticsResponse{
		Success:             true,
		Stats:               stats,
		WeeklyData:          weekly,
		QualityDistribution: qualityBuckets(dist),
		RecentScans:         recentScans,
		TimeRange:           timeRange,
	}, nil
}

func (s *analyticsService) GetStats(ctx context.Context, userID string, timeRange string) (domain.ScanStats, error) {
	return s.stats(ctx, userID, domain.NormalizeTimeRange(timeRange), s.now())
}

func (s *analyticsService) stats(ctx context.Context, userID, timeRange string, now time.Time) (domain.ScanStats, error) {
	since := domain.WindowStart(timeRange, now)
	stats, err := s.scanRepository.GetUserScanStats(ctx, userID, since)
	if err != nil {
		return domain.ScanStats{}, err
	}
	stats.AverageQuality = round1(stats.AverageQuality)
	stats.AverageConfidence = round2(stats.AverageConfidence)
	stats.Since = domain.FormatTimestamp(since)
	if stats.StatusBreakdown == nil {
		stats.StatusBreakdown = map[string]int64{}
	}
	return stats, nil
}

// weeklyData returns one entry per day for the last seven days, oldest
// first, with empty days filled in.
func (s *analyticsService) weeklyData(ctx context.Context, userID string, now time.Time) ([]domain.DailyScanData, error) {
	utc := now.UTC()
	today := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -(weeklyDays - 1))

	rows, err := s.scanRepository.GetDailyScanCounts(ctx, userID, start)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]scan.DailyCount, len(rows))
	for _, row := range rows {
		byDate[row.Day.Format("2006-01-02")] = row
	}

	out := make([]domain.DailyScanData, 0, weeklyDays)
	for i := 0; i < weeklyDays; i++ {
		day := start.AddDate(0, 0, i)
		key := day.Format("2006-01-02")
		row := byDate[key]
		out = append(out, domain.DailyScanData{
			Day:        day.Format("Mon"),
			Date:       key,
			Scans:      row.Scans,
			AvgQuality: round1(row.AvgQuality),
		})
	}
	return out, nil
}

func qualityBuckets(dist map[string]int64) []domain.QualityBucket {
	return []domain.QualityBucket{
		{Label: domain.QualityExcellent, Range: "80-100", Count: dist[domain.QualityExcellent]},
		{Label: domain.QualityGood, Range: "60-79", Count: dist[domain.QualityGood]},
		{Label: domain.QualityFair, Range: "40-59", Count: dist[domain.QualityFair]},
		{Label: domain.QualityPoor, Range: "0-39", Count: dist[domain.QualityPoor]},
	}
}

// TimeAgo renders the age of createdAt relative to now for display.
func TimeAgo(createdAt, now time.Time) string {
	if createdAt.IsZero() {
		return "Unknown"
	}

	diff := now.Sub(createdAt)
	switch {
	case diff >= 24*time.Hour:
		return fmt.Sprintf("%d days ago", int(diff/(24*time.Hour)))
	case diff >= time.Hour:
		return fmt.Sprintf("%d hrs ago", int(diff/time.Hour))
	case diff >= time.Minute:
		return fmt.Sprintf("%d min ago", int(diff/time.Minute))
	default:
		return "Just now"
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
