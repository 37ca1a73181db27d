package storage

import (
	"Durian-Scanner/domain"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/gift"
	"github.com/gofiber/fiber/v2/log"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	scanFolder     = "durian-scans"
	thumbnailWidth = 300
	thumbSuffix    = "_thumb.jpg"
)

type (
	// ScanImageStore keeps the original scan image and a JPEG thumbnail
	// side by side; the original's object key is the storage id.
	ScanImageStore interface {
		UploadScanImage(ctx context.Context, imagePath, userID, scanRef string) (domain.UploadResult, error)
		DeleteScanImage(ctx context.Context, storageID string) error
		// StorageIDFromURL recovers the storage id from a public image URL,
		// or "" when the URL is not one of ours.
		StorageIDFromURL(imageURL string) string
	}

	scanImageStore struct {
		s3        AwsS3
		thumbnail *gift.GIFT
	}
)

func NewScanImageStore(s3 AwsS3) ScanImageStore {
	return &scanImageStore{
		s3:        s3,
		thumbnail: gift.New(gift.ResizeToFit(thumbnailWidth, thumbnailWidth, gift.LanczosResampling)),
	}
}

func (s *scanImageStore) UploadScanImage(ctx context.Context, imagePath, userID, scanRef string) (domain.UploadResult, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("read scan image: %w", err)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(imagePath), "."))
	objectKey := fmt.Sprintf("%s/%s/%s.%s", scanFolder, userID, scanRef, ext)

	if _, err := s.s3.UploadObject(ctx, objectKey, bytes.NewReader(data), contentTypeFor(ext)); err != nil {
		return domain.UploadResult{}, err
	}

	result := domain.UploadResult{
		ImageURL:     s.s3.GetPublicLinkKey(objectKey),
		ThumbnailURL: s.s3.GetPublicLinkKey(objectKey),
		PublicID:     objectKey,
	}

	thumb, err := s.renderThumbnail(data)
	if err != nil {
		log.Warnf("thumbnail for %s skipped: %v", objectKey, err)
		return result, nil
	}

	thumbKey := thumbnailKey(objectKey)
	if _, err := s.s3.UploadObject(ctx, thumbKey, bytes.NewReader(thumb), "image/jpeg"); err != nil {
		log.Warnf("thumbnail upload for %s failed: %v", objectKey, err)
		return result, nil
	}
	result.ThumbnailURL = s.s3.GetPublicLinkKey(thumbKey)

	return result, nil
}

func (s *scanImageStore) DeleteScanImage(ctx context.Context, storageID string) error {
	if err := s.s3.DeleteFile(ctx, storageID); err != nil {
		return err
	}
	if err := s.s3.DeleteFile(ctx, thumbnailKey(storageID)); err != nil {
		log.Warnf("thumbnail delete for %s failed: %v", storageID, err)
	}
	return nil
}

func (s *scanImageStore) StorageIDFromURL(imageURL string) string {
	key := s.s3.GetObjectKeyFromLink(imageURL)
	if !strings.HasPrefix(key, scanFolder+"/") || strings.HasSuffix(key, thumbSuffix) {
		return ""
	}
	return key
}

func (s *scanImageStore) renderThumbnail(data []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := domain.CheckImageDimensions(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	dst := image.NewNRGBA(s.thumbnail.Bounds(src.Bounds()))
	s.thumbnail.Draw(dst, src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func thumbnailKey(objectKey string) string {
	return strings.TrimSuffix(objectKey, filepath.Ext(objectKey)) + thumbSuffix
}

func contentTypeFor(ext string) string {
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "bmp":
		return "image/bmp"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
