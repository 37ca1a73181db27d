package storage

import (
	"Durian-Scanner/domain"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectAPI struct {
	mu         sync.Mutex
	objects    map[string][]byte
	types      map[string]string
	deleted    []string
	failPut    map[string]bool
	failDelete error
}

func newFakeObjectAPI() *fakeObjectAPI {
	return &fakeObjectAPI{
		objects: map[string][]byte{},
		types:   map[string]string{},
		failPut: map[string]bool{},
	}
}

func (f *fakeObjectAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if f.failPut[key] {
		return nil, errors.New("access denied")
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.failDelete != nil {
		return nil, f.failDelete
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := aws.ToString(in.Key)
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return &s3.DeleteObjectOutput{}, nil
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 160, B: 40, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "scan.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestPublicLinkRoundTrip(t *testing.T) {
	s3 := NewAwsS3WithClient(newFakeObjectAPI(), "durian-bucket", "ap-southeast-1")

	link := s3.GetPublicLinkKey("durian-scans/u1/abc.png")
	assert.Equal(t, "https://durian-bucket.s3.ap-southeast-1.amazonaws.com/durian-scans/u1/abc.png", link)
	assert.Equal(t, "durian-scans/u1/abc.png", s3.GetObjectKeyFromLink(link))
	assert.Empty(t, s3.GetObjectKeyFromLink("https://other.example.com/x.png"))
}

func TestStorageIDFromURL(t *testing.T) {
	s3 := NewAwsS3WithClient(newFakeObjectAPI(), "durian-bucket", "ap-southeast-1")
	store := NewScanImageStore(s3)

	assert.Equal(t, "durian-scans/u1/abc.png",
		store.StorageIDFromURL(s3.GetPublicLinkKey("durian-scans/u1/abc.png")))
	assert.Empty(t, store.StorageIDFromURL(s3.GetPublicLinkKey("durian-scans/u1/abc_thumb.jpg")))
	assert.Empty(t, store.StorageIDFromURL(s3.GetPublicLinkKey("other/abc.png")))
	assert.Empty(t, store.StorageIDFromURL("https://other.example.com/durian-scans/u1/abc.png"))
}

func TestDeleteScanImageFromLegacyURL(t *testing.T) {
	api := newFakeObjectAPI()
	s3 := NewAwsS3WithClient(api, "durian-bucket", "ap-southeast-1")
	store := NewScanImageStore(s3)

	id := store.StorageIDFromURL(s3.GetPublicLinkKey("durian-scans/u1/abc.png"))
	require.NoError(t, store.DeleteScanImage(context.Background(), id))
	assert.Equal(t, []string{"durian-scans/u1/abc.png", "durian-scans/u1/abc_thumb.jpg"}, api.deleted)
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

func TestUploadScanImageSkipsThumbnailForOversizedImage(t *testing.T) {
	api := newFakeObjectAPI()
	store := NewScanImageStore(NewAwsS3WithClient(api, "b", "r"))
	path := filepath.Join(t.TempDir(), "bomb.png")
	require.NoError(t, os.WriteFile(path, pngWithDeclaredSize(t, 100000, 100000), 0o644))

	res, err := store.UploadScanImage(context.Background(), path, "u", "ref")
	require.NoError(t, err)
	assert.Equal(t, res.ImageURL, res.ThumbnailURL)
	assert.NotContains(t, api.objects, "durian-scans/u/ref_thumb.jpg")

	_, err = store.(*scanImageStore).renderThumbnail(pngWithDeclaredSize(t, 100000, 100000))
	assert.ErrorIs(t, err, domain.ErrImageTooLarge)
}

func TestUploadObjectRejectsContentType(t *testing.T) {
	s3 := NewAwsS3WithClient(newFakeObjectAPI(), "b", "r")
	_, err := s3.UploadObject(context.Background(), "k", nil, "text/plain")
	assert.Error(t, err)
}

func TestUploadScanImage(t *testing.T) {
	api := newFakeObjectAPI()
	store := NewScanImageStore(NewAwsS3WithClient(api, "durian-bucket", "ap-southeast-1"))

	res, err := store.UploadScanImage(context.Background(), writePNG(t, 600, 400), "user-1", "ab12cd34")
	require.NoError(t, err)

	assert.Equal(t, "durian-scans/user-1/ab12cd34.png", res.PublicID)
	assert.Contains(t, res.ImageURL, "durian-scans/user-1/ab12cd34.png")
	assert.Contains(t, res.ThumbnailURL, "durian-scans/user-1/ab12cd34_thumb.jpg")
	assert.Equal(t, "image/png", api.types["durian-scans/user-1/ab12cd34.png"])

	thumb, _, err := image.Decode(bytes.NewReader(api.objects["durian-scans/user-1/ab12cd34_thumb.jpg"]))
	require.NoError(t, err)
	assert.Equal(t, 300, thumb.Bounds().Dx())
	assert.Equal(t, 200, thumb.Bounds().Dy())
}

func TestUploadScanImageThumbnailFailureFallsBack(t *testing.T) {
	api := newFakeObjectAPI()
	api.failPut["durian-scans/u/ref_thumb.jpg"] = true
	store := NewScanImageStore(NewAwsS3WithClient(api, "b", "r"))

	res, err := store.UploadScanImage(context.Background(), writePNG(t, 10, 10), "u", "ref")
	require.NoError(t, err)
	assert.Equal(t, res.ImageURL, res.ThumbnailURL)
}

func TestUploadScanImageFailure(t *testing.T) {
	api := newFakeObjectAPI()
	api.failPut["durian-scans/u/ref.png"] = true
	store := NewScanImageStore(NewAwsS3WithClient(api, "b", "r"))

	_, err := store.UploadScanImage(context.Background(), writePNG(t, 10, 10), "u", "ref")
	assert.Error(t, err)
}

func TestDeleteScanImage(t *testing.T) {
	api := newFakeObjectAPI()
	store := NewScanImageStore(NewAwsS3WithClient(api, "b", "r"))

	require.NoError(t, store.DeleteScanImage(context.Background(), "durian-scans/u/ref.webp"))
	assert.Equal(t, []string{"durian-scans/u/ref.webp", "durian-scans/u/ref_thumb.jpg"}, api.deleted)

	api.failDelete = errors.New("network down")
	assert.Error(t, store.DeleteScanImage(context.Background(), "durian-scans/u/ref.webp"))
}
