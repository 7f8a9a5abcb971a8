package services

import (
	"bytes"
	"fmt"
	"path"
	"time"

	"prospector/config"
	"prospector/internal/utils"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// ObjectStore stores a blob and returns its public URL.
type ObjectStore interface {
	UploadBytes(data []byte, fileName string, contentType string) (string, error)
}

type S3Service struct {
	s3Client *s3.S3
	config   *config.S3Config
}

func NewS3Service(config *config.S3Config) (*S3Service, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(config.Region),
		Credentials:      credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, ""),
		Endpoint:         aws.String(config.ServiceUrl),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating s3 session: %w", err)
	}

	return &S3Service{
		s3Client: s3.New(sess),
		config:   config,
	}, nil
}

func (s *S3Service) UploadBytes(data []byte, fileName string, contentType string) (string, error) {
	params := &s3.PutObjectInput{
		Bucket:      aws.String(s.config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}

	utils.LogInfo("Uploading to S3: %s", fileName)
	if _, err := s.s3Client.PutObject(params); err != nil {
		return "", fmt.Errorf("error uploading to s3: %w", err)
	}

	fileUrl := fmt.Sprintf("%s/%s", s.config.BucketUrl, fileName)
	utils.LogInfo("Upload finished: %s", fileUrl)
	return fileUrl, nil
}

// ObjectKey builds a unique key under prefix, dated by day.
func ObjectKey(prefix, ext string) string {
	return path.Join(prefix, time.Now().UTC().Format("2006/01/02"), uuid.NewString()+ext)
}
