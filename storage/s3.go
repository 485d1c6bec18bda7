package storage

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gymdesk_go/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

type StorageService struct {
	s3Client *s3.S3
	bucket   string
}

// NewStorageService creates a new storage service
func NewStorageService() (*StorageService, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AppConfig.AWSRegion),
		Credentials: credentials.NewStaticCredentials(
			config.AppConfig.AWSAccessKeyID,
			config.AppConfig.AWSSecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %v", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		bucket:   config.AppConfig.S3BucketName,
	}, nil
}

// UploadReport stores a generated report under a date-partitioned key and
// returns its public URL
func (s *StorageService) UploadReport(data []byte, fileName, contentType string) (string, error) {
	now := time.Now()
	randomID := uuid.New().String()[:16]
	key := fmt.Sprintf("reports/settlements/%d/%02d/%s_%s",
		now.Year(),
		now.Month(),
		randomID,
		sanitizeFileName(fileName),
	)

	_, err := s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         aws.String("private"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %v", err)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.bucket,
		config.AppConfig.AWSRegion,
		key,
	)
	return url, nil
}

// DeleteFile deletes a file from S3
func (s *StorageService) DeleteFile(fileURL string) error {
	key := s.extractKeyFromURL(fileURL)
	if key == "" {
		return fmt.Errorf("invalid file URL")
	}

	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	return err
}

// sanitizeFileName strips characters that would break an S3 key
func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", "?", "", "#", "")
	name = replacer.Replace(name)
	if name == "" {
		name = "report"
	}
	return name
}

// extractKeyFromURL extracts the S3 key from a full URL
func (s *StorageService) extractKeyFromURL(url string) string {
	// Example URL: https://bucket.s3.region.amazonaws.com/path/to/file.ext
	parts := strings.Split(url, ".amazonaws.com/")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}
