package domain

import "time"

const (
	TimeRangeWeek    = "week"
	TimeRangeMonth   = "month"
	TimeRangeYear    = "year"
	TimeRangeAll     = "all"
	DefaultTimeRange = TimeRangeMonth

	QualityExcellent = "excellent"
	QualityGood      = "good"
	QualityFair      = "fair"
	QualityPoor      = "poor"
)

var (
	MessageFailedGetAnalytics = "failed to retrieve analytics"
	MessageFailedGetHistory   = "failed to retrieve scan history"
)

type (
	ScanStats struct {
		TotalScans        int64            `json:"total_scans"`
		TotalDurians      int64            `json:"total_durians"`
		AverageQuality    float64          `json:"average_quality"`
		AverageConfidence float64          `json:"average_confidence"`
		TopVariety        string           `json:"top_variety"`
		StatusBreakdown   map[string]int64 `json:"status_breakdown"`
		Since             string           `json:"since,omitempty"`
	}

	DailyScanData struct {
		Day        string  `json:"day"`
		Date       string  `json:"date"`
		Scans      int64   `json:"scans"`
		AvgQuality float64 `json:"avg_quality"`
	}

	QualityBucket struct {
		Label string `json:"label"`
		Range string `json:"range"`
		Count int64  `json:"count"`
	}

	RecentScan struct {
		ID           string  `json:"id"`
		Variety      string  `json:"variety"`
		Quality      float64 `json:"quality"`
		Status       string  `json:"status"`
		Time         string  `json:"time"`
		ImageURL     string  `json:"image_url"`
		ThumbnailURL string  `json:"thumbnail_url"`
		CreatedAt    *string `json:"created_at"`
		DurianCount  int     `json:"durian_count"`
		Confidence   float64 `json:"confidence"`
	}

	AnalyticsResponse struct {
		Success             bool            `json:"success"`
		Stats               ScanStats       `json:"stats"`
		WeeklyData          []DailyScanData `json:"weekly_data"`
		QualityDistribution []QualityBucket `json:"quality_distribution"`
		RecentScans         []RecentScan    `json:"recent_scans"`
		TimeRange           string          `json:"time_range"`
	}

	StatsResponse struct {
		Success bool      `json:"success"`
		Stats   ScanStats `json:"stats"`
	}
)

// NormalizeTimeRange maps unknown tokens to the default window.
func NormalizeTimeRange(token string) string {
	switch token {
	case TimeRangeWeek, TimeRangeMonth, TimeRangeYear, TimeRangeAll:
		return token
	default:
		return DefaultTimeRange
	}
}

// WindowStart returns the lower bound of the window ending at now. The zero
// time means unbounded.
func WindowStart(timeRange string, now time.Time) time.Time {
	switch NormalizeTimeRange(timeRange) {
	case TimeRangeWeek:
		return now.AddDate(0, 0, -7)
	case TimeRangeYear:
		return now.AddDate(0, 0, -365)
	case TimeRangeAll:
		return time.Time{}
	default:
		return now.AddDate(0, 0, -30)
	}
}

// QualityLabel buckets a 0-100 quality score.
func QualityLabel(score float64) string {
	switch {
	case score >= 80:
		return QualityExcellent
	case score >= 60:
		return QualityGood
	case score >= 40:
		return QualityFair
	default:
		return QualityPoor
	}
}
