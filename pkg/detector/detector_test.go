package detector

import (
	"Durian-Scanner/domain"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSolidPNG(t *testing.T, c color.Color) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "durian.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestColorClassifier(t *testing.T) {
	classifier := NewColorClassifier()

	cases := []struct {
		name     string
		fill     color.Color
		color    string
		ripeness string
	}{
		{"green husk", color.NRGBA{R: 60, G: 160, B: 60, A: 255}, "Green", "Unripe"},
		{"golden husk", color.NRGBA{R: 220, G: 170, B: 40, A: 255}, "Golden Yellow", "Ripe"},
		{"brown husk", color.NRGBA{R: 120, G: 70, B: 30, A: 255}, "Brown", "Overripe"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := classifier.Classify(writeSolidPNG(t, tc.fill))
			require.NoError(t, err)
			assert.Equal(t, tc.color, res.Color)
			assert.Equal(t, tc.ripeness, res.Ripeness)
			assert.Equal(t, 1.0, res.Confidence)
		})
	}
}

func TestColorClassifierGrayImage(t *testing.T) {
	res, err := NewColorClassifier().Classify(writeSolidPNG(t, color.NRGBA{R: 128, G: 128, B: 128, A: 255}))
	assert.ErrorIs(t, err, domain.ErrColorUndetermined)
	assert.Equal(t, "Unknown", res.Color)
}

func TestColorClassifierUnreadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o600))

	_, err := NewColorClassifier().Classify(path)
	assert.Error(t, err)
}

// pngWithDeclaredSize encodes a 1x1 PNG and rewrites its header to claim
// width x height, fixing up the header checksum.
func pngWithDeclaredSize(t *testing.T, width, height uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 1, 1))))
	data := buf.Bytes()
	binary.BigEndian.PutUint32(data[16:20], width)
	binary.BigEndian.PutUint32(data[20:24], height)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestColorClassifierRejectsOversizedImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bomb.png")
	require.NoError(t, os.WriteFile(path, pngWithDeclaredSize(t, 100000, 100000), 0o644))

	_, err := NewColorClassifier().Classify(path)
	assert.ErrorIs(t, err, domain.ErrImageTooLarge)
}

func TestDetectorClientPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "durian.png", header.Filename)

		_ = json.NewEncoder(w).Encode(domain.PredictResult{
			Success: true,
			Detection: &domain.Detection{
				DurianCount: 1,
				Boxes:       []domain.BoundingBox{{X1: 1, Y1: 2, X2: 3, Y2: 4, Confidence: 0.9, Label: "durian"}},
				Labels:      []string{"durian"},
			},
			Analysis: &domain.Analysis{Variety: "Musang King", QualityScore: 88, Status: "Ripe", Confidence: 0.9},
		})
	}))
	defer srv.Close()

	client := NewDetectorClient(srv.URL, "durian.pt", srv.Client())
	res, err := client.Predict(context.Background(), writeSolidPNG(t, color.White))

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Detection.DurianCount)
	assert.Equal(t, "Musang King", res.Analysis.Variety)
}

func TestDetectorClientPredictServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success": false, "error": "model crashed"}`))
	}))
	defer srv.Close()

	client := NewDetectorClient(srv.URL, "durian.pt", srv.Client())
	res, err := client.Predict(context.Background(), writeSolidPNG(t, color.White))

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "model crashed", res.Error)
}

func TestDetectorClientNotConfigured(t *testing.T) {
	client := NewDetectorClient("", "durian.pt", nil)

	assert.False(t, client.Available())
	assert.Equal(t, domain.ModelNotLoaded, client.ModelName())

	_, err := client.Predict(context.Background(), "missing.jpg")
	assert.ErrorIs(t, err, domain.ErrDetectorNotReady)
	assert.Equal(t, "error", client.TestConnection(context.Background()).Status)
}

func TestDetectorClientTestConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewDetectorClient(srv.URL+"/", "durian.pt", srv.Client())
	assert.Equal(t, "ok", client.TestConnection(context.Background()).Status)
	assert.Equal(t, "durian.pt", client.ModelName())
}
