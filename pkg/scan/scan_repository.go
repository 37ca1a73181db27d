package scan

import (
	"Durian-Scanner/domain"
	"Durian-Scanner/entities"
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	ScanRepository interface {
		SaveScan(ctx context.Context, scan *entities.Scan) error
		GetUserScans(ctx context.Context, userID string, limit, skip int) ([]*entities.Scan, error)
		GetScanByID(ctx context.Context, id string) (*entities.Scan, error)
		DeleteScan(ctx context.Context, id string, userID string) (bool, error)

		// Aggregates; a zero since means no lower bound.
		GetUserScanStats(ctx context.Context, userID string, since time.Time) (domain.ScanStats, error)
		GetDailyScanCounts(ctx context.Context, userID string, since time.Time) ([]DailyCount, error)
		GetQualityDistribution(ctx context.Context, userID string, since time.Time) (map[string]int64, error)
	}

	DailyCount struct {
		Day        time.Time
		Scans      int64
		AvgQuality float64
	}

	scanRepository struct {
		db *gorm.DB
	}
)

func NewScanRepository(db *gorm.DB) ScanRepository {
	return &scanRepository{db: db}
}

func (r *scanRepository) SaveScan(ctx context.Context, scan *entities.Scan) error {
	return r.db.WithContext(ctx).Create(scan).Error
}

func (r *scanRepository) GetUserScans(ctx context.Context, userID string, limit, skip int) ([]*entities.Scan, error) {
	var scans []*entities.Scan
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(skip).
		Limit(limit).
		Find(&scans).Error; err != nil {
		return nil, err
	}
	return scans, nil
}

func (r *scanRepository) GetScanByID(ctx context.Context, id string) (*entities.Scan, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, gorm.ErrRecordNotFound
	}

	var scan entities.Scan
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&scan).Error; err != nil {
		return nil, err
	}
	return &scan, nil
}

func (r *scanRepository) DeleteScan(ctx context.Context, id string, userID string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&entities.Scan{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *scanRepository) userScans(ctx context.Context, userID string, since time.Time) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&entities.Scan{}).Where("user_id = ?", userID)
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}
	return query
}

func (r *scanRepository) GetUserScanStats(ctx context.Context, userID string, since time.Time) (domain.ScanStats, error) {
	var totals struct {
		TotalScans        int64
		TotalDurians      int64
		AverageQuality    float64
		AverageConfidence float64
	}
	if err := r.userScans(ctx, userID, since).
		Select("COUNT(*) AS total_scans, " +
			"COALESCE(SUM(durian_count), 0) AS total_durians, " +
			"COALESCE(AVG(quality_score), 0) AS average_quality, " +
			"COALESCE(AVG(confidence), 0) AS average_confidence").
		Scan(&totals).Error; err != nil {
		return domain.ScanStats{}, err
	}

	var varieties []struct {
		Variety string
		Count   int64
	}
	if err := r.userScans(ctx, userID, since).
		Select("variety, COUNT(*) AS count").
		Where("variety <> ''").
		Group("variety").
		Order("count desc, variety asc").
		Limit(1).
		Scan(&varieties).Error; err != nil {
		return domain.ScanStats{}, err
	}

	var statuses []struct {
		Status string
		Count  int64
	}
	if err := r.userScans(ctx, userID, since).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&statuses).Error; err != nil {
		return domain.ScanStats{}, err
	}

	stats := domain.ScanStats{
		TotalScans:        totals.TotalScans,
		TotalDurians:      totals.TotalDurians,
		AverageQuality:    totals.AverageQuality,
		AverageConfidence: totals.AverageConfidence,
		TopVariety:        "Unknown",
		StatusBreakdown:   make(map[string]int64, len(statuses)),
	}
	if len(varieties) > 0 {
		stats.TopVariety = varieties[0].Variety
	}
	for _, s := range statuses {
		status := s.Status
		if status == "" {
			status = "Unknown"
		}
		stats.StatusBreakdown[status] += s.Count
	}

	return stats, nil
}

func (r *scanRepository) GetDailyScanCounts(ctx context.Context, userID string, since time.Time) ([]DailyCount, error) {
	var rows []DailyCount
	if err := r.userScans(ctx, userID, since).
		Select("DATE(created_at) AS day, COUNT(*) AS scans, COALESCE(AVG(quality_score), 0) AS avg_quality").
		Group("DATE(created_at)").
		Order("day asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *scanRepository) GetQualityDistribution(ctx context.Context, userID string, since time.Time) (map[string]int64, error) {
	var scores []float64
	if err := r.userScans(ctx, userID, since).
		Pluck("quality_score", &scores).Error; err != nil {
		return nil, err
	}

	dist := make(map[string]int64, 4)
	for _, score := range scores {
		dist[domain.QualityLabel(score)]++
	}
	return dist, nil
}
