package storage

import (
	"Durian-Scanner/internal/utils"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2/log"
)

var allowImage = []string{"image/jpeg", "image/png", "image/bmp", "image/gif", "image/webp"}

type (
	// ObjectAPI is the slice of the S3 client the storage layer needs.
	ObjectAPI interface {
		PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
		DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	}

	AwsS3 interface {
		UploadObject(ctx context.Context, objectKey string, body io.Reader, contentType string) (string, error)
		DeleteFile(ctx context.Context, objectKey string) error
		GetPublicLinkKey(objectKey string) string
		GetObjectKeyFromLink(link string) string
	}

	awsS3 struct {
		client ObjectAPI
		bucket string
		region string
	}
)

func NewAwsS3() AwsS3 {
	region := utils.GetConfig("AWS_S3_REGION")
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			utils.GetConfig("AWS_ACCESS_KEY"),
			utils.GetConfig("AWS_SECRET_KEY"),
			"",
		)),
	)
	if err != nil {
		log.Errorf("failed to load aws config: %v", err)
	}

	return NewAwsS3WithClient(s3.NewFromConfig(cfg), utils.GetConfig("AWS_S3_BUCKET"), region)
}

func NewAwsS3WithClient(client ObjectAPI, bucket, region string) AwsS3 {
	return &awsS3{client: client, bucket: bucket, region: region}
}

func (a *awsS3) UploadObject(ctx context.Context, objectKey string, body io.Reader, contentType string) (string, error) {
	if !isAllowed(contentType, allowImage) {
		return "", fmt.Errorf("content type %q not allowed", contentType)
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(objectKey),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", objectKey, err)
	}

	return objectKey, nil
}

func (a *awsS3) DeleteFile(ctx context.Context, objectKey string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", objectKey, err)
	}
	return nil
}

func (a *awsS3) GetPublicLinkKey(objectKey string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", a.bucket, a.region, objectKey)
}

func (a *awsS3) GetObjectKeyFromLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if !strings.HasPrefix(u.Host, a.bucket+".") {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}

func isAllowed(contentType string, allowed []string) bool {
	for _, a := range allowed {
		if a == contentType {
			return true
		}
	}
	return false
}
