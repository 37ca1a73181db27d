package detector

import (
	"Durian-Scanner/domain"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

type (
	DetectorClient interface {
		Predict(ctx context.Context, imagePath string) (domain.PredictResult, error)
		TestConnection(ctx context.Context) domain.ConnectionTest
		ModelName() string
		Available() bool
	}

	detectorClient struct {
		baseURL    string
		modelName  string
		httpClient *http.Client
	}
)

// NewDetectorClient talks to the inference service at baseURL. An empty
// baseURL yields a client that reports itself unavailable.
func NewDetectorClient(baseURL, modelName string, httpClient *http.Client) DetectorClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &detectorClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		modelName:  modelName,
		httpClient: httpClient,
	}
}

func (d *detectorClient) Available() bool {
	return d.baseURL != ""
}

func (d *detectorClient) ModelName() string {
	if !d.Available() || d.modelName == "" {
		return domain.ModelNotLoaded
	}
	return d.modelName
}

func (d *detectorClient) Predict(ctx context.Context, imagePath string) (domain.PredictResult, error) {
	if !d.Available() {
		return domain.PredictResult{}, domain.ErrDetectorNotReady
	}

	file, err := os.Open(imagePath)
	if err != nil {
		return domain.PredictResult{}, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filepath.Base(imagePath))
	if err != nil {
		return domain.PredictResult{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return domain.PredictResult{}, fmt.Errorf("copy image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return domain.PredictResult{}, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/predict", body)
	if err != nil {
		return domain.PredictResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return domain.PredictResult{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	var result domain.PredictResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if resp.StatusCode != http.StatusOK {
			return domain.PredictResult{}, fmt.Errorf("inference failed with status: %d", resp.StatusCode)
		}
		return domain.PredictResult{}, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		result.Success = false
		if result.Error == "" {
			result.Error = fmt.Sprintf("inference failed with status: %d", resp.StatusCode)
		}
	}
	if result.Success && result.Detection == nil {
		result.Success = false
		result.Error = domain.MessageDetectionError
	}

	return result, nil
}

func (d *detectorClient) TestConnection(ctx context.Context) domain.ConnectionTest {
	if !d.Available() {
		return domain.ConnectionTest{Status: "error", Message: domain.ErrDetectorNotReady.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/health", nil)
	if err != nil {
		return domain.ConnectionTest{Status: "error", Message: err.Error()}
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return domain.ConnectionTest{Status: "error", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ConnectionTest{
			Status:  "error",
			Message: fmt.Sprintf("ml service unhealthy: %d", resp.StatusCode),
		}
	}

	return domain.ConnectionTest{Status: "ok", Message: fmt.Sprintf("model %s reachable", d.ModelName())}
}
