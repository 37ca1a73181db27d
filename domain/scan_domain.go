package domain

import (
	"errors"
	"fmt"
	"time"
)

const (
	MaxUploadSize         = 10 * 1024 * 1024
	MaxImagePixels        = 40_000_000
	DefaultHistoryLimit   = 50
	DefaultHistorySkip    = 0
	ServiceName           = "Durian Scanner API"
	ModelType             = "Local YOLO (custom trained)"
	ModelNotLoaded        = "Not loaded"
	ScanRefLength         = 8
	RecentScansLimit      = 10
	MessageScanDeleted    = "Scan deleted successfully"
	MessageScannerWorking = "Scanner API is working"
)

// AllowedExtensions is ordered so error messages are stable.
var AllowedExtensions = []string{"jpg", "jpeg", "png", "bmp", "gif", "webp"}

var (
	ErrNoImageProvided    = errors.New("No image provided")
	ErrNoFileSelected     = errors.New("No file selected")
	ErrInvalidFileName    = errors.New("Invalid file name")
	ErrInvalidFileType    = errors.New("Invalid file type")
	ErrFileTooLarge       = errors.New("File too large")
	ErrScanNotFound       = errors.New("Scan not found")
	ErrCouldNotDelete     = errors.New("Could not delete scan")
	ErrDetectionFailed    = errors.New("Detection failed")
	ErrStorageUpload      = errors.New("image upload failed")
	ErrScanNotSaved       = errors.New("scan could not be saved")
	ErrNotImplemented     = errors.New("Not implemented")
	ErrDetectorNotReady   = errors.New("detector service not configured")
	ErrColorUndetermined  = errors.New("could not determine color")
	ErrImageTooLarge      = errors.New("image dimensions too large")
	MessageDiseaseComing  = "Disease classification coming soon. Train a disease model and add it here."
	MessageUploadImage    = "Please upload an image file"
	MessageFileExtension  = "File must have an extension"
	MessageDetectionError = "Detection service returned no result"
)

type (
	BoundingBox struct {
		X1         float64 `json:"x1"`
		Y1         float64 `json:"y1"`
		X2         float64 `json:"x2"`
		Y2         float64 `json:"y2"`
		Confidence float64 `json:"confidence"`
		Label      string  `json:"label"`
	}

	Detection struct {
		DurianCount int           `json:"durian_count"`
		Boxes       []BoundingBox `json:"boxes"`
		Labels      []string      `json:"labels"`
	}

	Analysis struct {
		Variety      string  `json:"variety"`
		QualityScore float64 `json:"quality_score"`
		Status       string  `json:"status"`
		Confidence   float64 `json:"confidence"`
	}

	ColorResult struct {
		Color      string  `json:"color"`
		Ripeness   string  `json:"ripeness"`
		Confidence float64 `json:"confidence"`
		MeanHex    string  `json:"mean_hex,omitempty"`
		Hue        float64 `json:"hue"`
		Saturation float64 `json:"saturation"`
		Value      float64 `json:"value"`
		Error      string  `json:"error,omitempty"`
	}

	// PredictResult is what the detector service reports for one image.
	PredictResult struct {
		Success   bool       `json:"success"`
		Message   string     `json:"message,omitempty"`
		Error     string     `json:"error,omitempty"`
		Detection *Detection `json:"detection,omitempty"`
		Analysis  *Analysis  `json:"analysis,omitempty"`
	}

	UploadResult struct {
		ImageURL     string `json:"image_url"`
		ThumbnailURL string `json:"thumbnail_url"`
		PublicID     string `json:"-"`
	}

	StorageLinks struct {
		ImageURL     string `json:"image_url"`
		ThumbnailURL string `json:"thumbnail_url"`
	}

	RequestInfo struct {
		Filename  string `json:"filename"`
		FileSize  int64  `json:"file_size"`
		FileType  string `json:"file_type"`
		Timestamp string `json:"timestamp"`
	}

	DetectResponse struct {
		Success       bool          `json:"success"`
		Message       string        `json:"message,omitempty"`
		Error         string        `json:"error,omitempty"`
		Detection     *Detection    `json:"detection,omitempty"`
		Analysis      *Analysis     `json:"analysis,omitempty"`
		Color         *ColorResult  `json:"color"`
		ScanSaved     *bool         `json:"scan_saved,omitempty"`
		ScanID        string        `json:"scan_id,omitempty"`
		Storage       *StorageLinks `json:"storage,omitempty"`
		SaveError     string        `json:"save_error,omitempty"`
		SaveErrorKind ErrorKind     `json:"save_error_kind,omitempty"`
		RequestInfo   *RequestInfo  `json:"request_info,omitempty"`
	}

	ConnectionTest struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}

	HealthResponse struct {
		Success        bool           `json:"success"`
		Service        string         `json:"service"`
		Model          string         `json:"model"`
		ModelType      string         `json:"model_type"`
		Available      bool           `json:"available"`
		ConnectionTest ConnectionTest `json:"connection_test"`
		Timestamp      string         `json:"timestamp"`
	}

	TestResponse struct {
		Success    bool              `json:"success"`
		Message    string            `json:"message"`
		ModelType  string            `json:"model_type"`
		ModelFile  string            `json:"model_file"`
		Connection ConnectionTest    `json:"connection"`
		Endpoints  map[string]string `json:"endpoints"`
		Timestamp  string            `json:"timestamp"`
	}

	ScanResponse struct {
		ID              string         `json:"_id"`
		UserID          string         `json:"user_id"`
		ScanRef         string         `json:"scan_ref"`
		ImageURL        string         `json:"image_url"`
		ThumbnailURL    string         `json:"thumbnail_url"`
		StorageID       string         `json:"storage_id,omitempty"`
		DetectionResult map[string]any `json:"detection_result"`
		AnalysisResult  map[string]any `json:"analysis_result"`
		Color           map[string]any `json:"color,omitempty"`
		Variety         string         `json:"variety"`
		QualityScore    float64        `json:"quality_score"`
		Status          string         `json:"status"`
		DurianCount     int            `json:"durian_count"`
		Confidence      float64        `json:"confidence"`
		CreatedAt       string         `json:"created_at,omitempty"`
	}

	ScanHistoryResponse struct {
		Success bool           `json:"success"`
		Scans   []ScanResponse `json:"scans"`
		Count   int            `json:"count"`
		Limit   int            `json:"limit"`
		Skip    int            `json:"skip"`
	}

	SingleScanResponse struct {
		Success bool         `json:"success"`
		Scan    ScanResponse `json:"scan"`
	}

	MessageResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
)

// CheckImageDimensions rejects images whose decoded size would exceed
// MaxImagePixels.
func CheckImageDimensions(width, height int) error {
	if width <= 0 || height <= 0 || int64(width)*int64(height) > MaxImagePixels {
		return fmt.Errorf("%w: %dx%d", ErrImageTooLarge, width, height)
	}
	return nil
}

// FormatTimestamp is the text form used for every timestamp in responses.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
