package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ImageService stores card images in an S3-compatible Spaces bucket and
// hands back the public URLs that go into the card record.
type ImageService struct {
	client   *s3.Client
	bucket   string
	region   string
	cardRoot string
}

// NewImageService builds a Spaces-backed image service from static
// credentials.
func NewImageService(ctx context.Context, key, secret, region, bucket, cardRoot string) (*ImageService, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load Spaces config: %w", err)
	}

	return &ImageService{
		client:   s3.NewFromConfig(cfg),
		bucket:   bucket,
		region:   region,
		cardRoot: strings.Trim(cardRoot, "/"),
	}, nil
}

// UploadCardImage stores an image under the owning user and card and
// returns its public URL.
func (s *ImageService) UploadCardImage(ctx context.Context, userID, cardID, filename string, data []byte) (string, error) {
	key, err := s.objectKey(userID, cardID, filename)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentTypeFor(filename)),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image %s: %w", key, err)
	}

	return s.PublicURL(key), nil
}

// DeleteCardImages removes every stored image for a card.
func (s *ImageService) DeleteCardImages(ctx context.Context, userID, cardID string) error {
	prefix := s.cardPrefix(userID, cardID)

	list, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return fmt.Errorf("failed to list images under %s: %w", prefix, err)
	}

	var errors []string
	for _, object := range list.Contents {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    object.Key,
		})
		if err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", aws.ToString(object.Key), err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("failed to delete images: %s", strings.Join(errors, "; "))
	}
	return nil
}

// PublicURL returns the CDN-less public URL for an object key.
func (s *ImageService) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s", s.bucket, s.region, key)
}

// Hosts reports whether a URL points into this service's bucket.
func (s *ImageService) Hosts(url string) bool {
	return strings.HasPrefix(url, fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/", s.bucket, s.region))
}

func (s *ImageService) objectKey(userID, cardID, filename string) (string, error) {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("invalid image filename %q", filename)
	}
	return fmt.Sprintf("%s/%s", s.cardPrefix(userID, cardID), name), nil
}

func (s *ImageService) cardPrefix(userID, cardID string) string {
	if s.cardRoot == "" {
		return fmt.Sprintf("%s/%s", userID, cardID)
	}
	return fmt.Sprintf("%s/%s/%s", s.cardRoot, userID, cardID)
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
