package scan

import (
	"Durian-Scanner/domain"
	"Durian-Scanner/entities"
	"Durian-Scanner/internal/utils/storage"
	"Durian-Scanner/pkg/detector"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	detectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "durian_detections_total",
		Help: "Detection requests by outcome.",
	}, []string{"outcome"})
	scansSavedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "durian_scans_saved_total",
		Help: "Save-to-history attempts by outcome.",
	}, []string{"outcome"})
	scansDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "durian_scans_deleted_total",
		Help: "Scans removed from history.",
	})
)

type (
	ScanService interface {
		ValidateUpload(filename string, size int64) (string, error)
		Detect(ctx context.Context, image *multipart.FileHeader, userID string, saveToHistory bool) (domain.DetectResponse, error)
		Health(ctx context.Context) domain.HealthResponse
		Test(ctx context.Context) domain.TestResponse

		GetScanHistory(ctx context.Context, userID string, limit, skip int) ([]domain.ScanResponse, error)
		GetScan(ctx context.Context, id string) (domain.ScanResponse, error)
		DeleteScan(ctx context.Context, id string, userID string) error
	}

	scanService struct {
		scanRepository ScanRepository
		detector       detector.DetectorClient
		colors         detector.ColorClassifier
		images         storage.ScanImageStore
		cache          *ScanCache
		now            func() time.Time
	}
)

func NewScanService(
	scanRepository ScanRepository,
	detectorClient detector.DetectorClient,
	colors detector.ColorClassifier,
	images storage.ScanImageStore,
	cache *ScanCache,
) ScanService {
	return &scanService{
		scanRepository: scanRepository,
		detector:       detectorClient,
		colors:         colors,
		images:         images,
		cache:          cache,
		now:            time.Now,
	}
}

// ValidateUpload checks name, extension and size in that order and returns
// the lower-cased extension.
func (s *scanService) ValidateUpload(filename string, size int64) (string, error) {
	if filename == "" {
		return "", domain.NewError(domain.KindInvalidName, domain.ErrNoFileSelected, domain.MessageUploadImage)
	}

	dot := strings.LastIndex(filename, ".")
	if dot < 0 {
		return "", domain.NewError(domain.KindInvalidName, domain.ErrInvalidFileName, domain.MessageFileExtension)
	}

	ext := strings.ToLower(filename[dot+1:])
	if !isAllowedExtension(ext) {
		return "", domain.NewError(domain.KindUnsupportedType, domain.ErrInvalidFileType,
			"Allowed types: "+strings.Join(domain.AllowedExtensions, ", "))
	}

	if size > domain.MaxUploadSize {
		return "", domain.NewError(domain.KindPayloadTooLarge, domain.ErrFileTooLarge,
			fmt.Sprintf("Maximum file size is 10MB. Your file is %.1fMB", float64(size)/1024/1024))
	}

	return ext, nil
}

func (s *scanService) Detect(ctx context.Context, image *multipart.FileHeader, userID string, saveToHistory bool) (domain.DetectResponse, error) {
	if image == nil {
		return domain.DetectResponse{}, domain.NewError(domain.KindMissingInput, domain.ErrNoImageProvided, domain.MessageUploadImage)
	}

	ext, err := s.ValidateUpload(image.Filename, image.Size)
	if err != nil {
		return domain.DetectResponse{}, err
	}

	tempPath, err := writeTempImage(image, ext)
	if err != nil {
		return domain.DetectResponse{}, err
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			log.Warnf("failed to remove temp image %s: %v", tempPath, err)
		}
	}()

	log.Infof("Processing image: %s (%.1f KB)", image.Filename, float64(image.Size)/1024)

	res := s.runDetection(ctx, tempPath)
	color := s.classifyColor(tempPath)
	res.Color = &color

	if !res.Success {
		detectionsTotal.WithLabelValues("failed").Inc()
		return res, nil
	}
	detectionsTotal.WithLabelValues("success").Inc()

	if userID != "" && saveToHistory {
		scan, err := s.saveScan(ctx, tempPath, userID, res)
		saved := err == nil
		res.ScanSaved = &saved
		if err != nil {
			scansSavedTotal.WithLabelValues("failed").Inc()
			log.Warnf("Error saving scan for user %s: %v", userID, err)
			res.SaveError = err.Error()
			res.SaveErrorKind = domain.KindOf(err)
		} else {
			scansSavedTotal.WithLabelValues("success").Inc()
			log.Infof("Scan saved to history: %s", scan.ID)
			res.ScanID = scan.ID.String()
			res.Storage = &domain.StorageLinks{ImageURL: scan.ImageURL, ThumbnailURL: scan.ThumbnailURL}
		}
	}

	res.RequestInfo = &domain.RequestInfo{
		Filename:  image.Filename,
		FileSize:  image.Size,
		FileType:  ext,
		Timestamp: domain.FormatTimestamp(s.now()),
	}

	return res, nil
}

func (s *scanService) runDetection(ctx context.Context, path string) domain.DetectResponse {
	prediction, err := s.detector.Predict(ctx, path)
	if err != nil {
		log.Errorf("detector error: %v", err)
		return domain.DetectResponse{
			Success: false,
			Error:   domain.ErrDetectionFailed.Error(),
			Message: err.Error(),
		}
	}

	res := domain.DetectResponse{
		Success:   prediction.Success,
		Message:   prediction.Message,
		Error:     prediction.Error,
		Detection: prediction.Detection,
		Analysis:  prediction.Analysis,
	}
	if !res.Success && res.Error == "" {
		res.Error = domain.ErrDetectionFailed.Error()
	}
	return res
}

func (s *scanService) classifyColor(path string) domain.ColorResult {
	color, err := s.colors.Classify(path)
	if err != nil {
		log.Warnf("color classification failed: %v", err)
		color.Error = err.Error()
	}
	return color
}

// saveScan uploads the image and records the scan. Its error is reported
// alongside a successful detection, never in place of it.
func (s *scanService) saveScan(ctx context.Context, path, userID string, res domain.DetectResponse) (*entities.Scan, error) {
	scanRef := uuid.New().String()[:domain.ScanRefLength]

	upload, err := s.images.UploadScanImage(ctx, path, userID, scanRef)
	if err != nil {
		return nil, domain.NewError(domain.KindUpstreamFailure, fmt.Errorf("%w: %v", domain.ErrStorageUpload, err), "")
	}

	detection, err := toJSONMap(res.Detection)
	if err != nil {
		return nil, domain.NewError(domain.KindInternal, err, "")
	}
	analysis, err := toJSONMap(res.Analysis)
	if err != nil {
		return nil, domain.NewError(domain.KindInternal, err, "")
	}
	color, err := toJSONMap(res.Color)
	if err != nil {
		return nil, domain.NewError(domain.KindInternal, err, "")
	}

	scan := &entities.Scan{
		ID:              uuid.New(),
		UserID:          userID,
		ScanRef:         scanRef,
		ImageURL:        upload.ImageURL,
		ThumbnailURL:    upload.ThumbnailURL,
		StorageID:       upload.PublicID,
		DetectionResult: detection,
		AnalysisResult:  analysis,
		Color:           color,
	}
	if res.Detection != nil {
		scan.DurianCount = res.Detection.DurianCount
	}
	if res.Analysis != nil {
		scan.Variety = res.Analysis.Variety
		scan.QualityScore = res.Analysis.QualityScore
		scan.Status = res.Analysis.Status
		scan.Confidence = res.Analysis.Confidence
	}

	if err := s.scanRepository.SaveScan(ctx, scan); err != nil {
		if delErr := s.images.DeleteScanImage(ctx, upload.PublicID); delErr != nil {
			log.Warnf("orphaned scan image %s: %v", upload.PublicID, delErr)
		}
		return nil, domain.NewError(domain.KindUpstreamFailure, fmt.Errorf("%w: %v", domain.ErrScanNotSaved, err), "")
	}

	return scan, nil
}

func (s *scanService) Health(ctx context.Context) domain.HealthResponse {
	return domain.HealthResponse{
		Success:        true,
		Service:        domain.ServiceName,
		Model:          s.detector.ModelName(),
		ModelType:      domain.ModelType,
		Available:      s.detector.Available(),
		ConnectionTest: s.detector.TestConnection(ctx),
		Timestamp:      domain.FormatTimestamp(s.now()),
	}
}

func (s *scanService) Test(ctx context.Context) domain.TestResponse {
	return domain.TestResponse{
		Success:    true,
		Message:    domain.MessageScannerWorking,
		ModelType:  domain.ModelType,
		ModelFile:  s.detector.ModelName(),
		Connection: s.detector.TestConnection(ctx),
		Endpoints: map[string]string{
			"detect":           "POST /detect",
			"classify_disease": "POST /classify/disease",
			"health":           "GET /health",
			"history":          "GET /history/:user_id",
			"scan":             "GET|DELETE /scan/:scan_id",
			"analytics":        "GET /analytics/:user_id",
			"checkout":         "POST /checkout",
		},
		Timestamp: domain.FormatTimestamp(s.now()),
	}
}

func (s *scanService) GetScanHistory(ctx context.Context, userID string, limit, skip int) ([]domain.ScanResponse, error) {
	scans, err := s.scanRepository.GetUserScans(ctx, userID, limit, skip)
	if err != nil {
		return nil, err
	}

	response := make([]domain.ScanResponse, 0, len(scans))
	for _, scan := range scans {
		response = append(response, ToScanResponse(scan))
	}
	return response, nil
}

func (s *scanService) GetScan(ctx context.Context, id string) (domain.ScanResponse, error) {
	if cached, ok := s.cache.Get(id); ok {
		return cached, nil
	}

	scan, err := s.scanRepository.GetScanByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ScanResponse{}, domain.NewError(domain.KindNotFound, domain.ErrScanNotFound, "")
		}
		return domain.ScanResponse{}, err
	}

	response := ToScanResponse(scan)
	s.cache.Set(id, response)
	return response, nil
}

func (s *scanService) DeleteScan(ctx context.Context, id string, userID string) error {
	if userID == "" {
		return domain.NewError(domain.KindMissingInput, domain.ErrUserIDRequired, "")
	}

	scan, err := s.scanRepository.GetScanByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewError(domain.KindNotFound, domain.ErrScanNotFound, "")
		}
		return err
	}

	if scan.UserID != userID {
		return domain.NewError(domain.KindUnauthorized, domain.ErrCouldNotDelete, "")
	}

	storageID := scan.StorageID
	if storageID == "" && scan.ImageURL != "" {
		storageID = s.images.StorageIDFromURL(scan.ImageURL)
	}
	if storageID != "" {
		if err := s.images.DeleteScanImage(ctx, storageID); err != nil {
			log.Warnf("failed to delete stored image %s: %v", storageID, err)
		}
	}

	deleted, err := s.scanRepository.DeleteScan(ctx, id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.NewError(domain.KindUnauthorized, domain.ErrCouldNotDelete, "")
	}

	s.cache.Delete(id)
	scansDeletedTotal.Inc()
	return nil
}

// ToScanResponse renders a stored scan with text ids and timestamps.
func ToScanResponse(scan *entities.Scan) domain.ScanResponse {
	return domain.ScanResponse{
		ID:              scan.ID.String(),
		UserID:          scan.UserID,
		ScanRef:         scan.ScanRef,
		ImageURL:        scan.ImageURL,
		ThumbnailURL:    scan.ThumbnailURL,
		StorageID:       scan.StorageID,
		DetectionResult: map[string]any(scan.DetectionResult),
		AnalysisResult:  map[string]any(scan.AnalysisResult),
		Color:           map[string]any(scan.Color),
		Variety:         scan.Variety,
		QualityScore:    scan.QualityScore,
		Status:          scan.Status,
		DurianCount:     scan.DurianCount,
		Confidence:      scan.Confidence,
		CreatedAt:       domain.FormatTimestamp(scan.CreatedAt),
	}
}

func isAllowedExtension(ext string) bool {
	for _, allowed := range domain.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func writeTempImage(image *multipart.FileHeader, ext string) (string, error) {
	src, err := image.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "durian-scan-*."+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return tmp.Name(), nil
}

func toJSONMap(v any) (datatypes.JSONMap, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m datatypes.JSONMap
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
