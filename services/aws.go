package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type S3 interface {
	GetObjectRequest(input *s3.GetObjectInput) (req *request.Request, output *s3.GetObjectOutput)
	PutObjectRequest(input *s3.PutObjectInput) (req *request.Request, output *s3.PutObjectOutput)
}

// S3Issuer presigns GET and PUT requests against S3.
type S3Issuer struct {
	presignExpiration time.Duration
	s3Client          S3
}

func NewS3Issuer(useAccelerate bool, presignExpiration time.Duration) (*S3Issuer, error) {
	if presignExpiration <= 0 {
		return nil, signingError("expiration must be positive")
	}

	session, err := GetAWSSession()
	if err != nil {
		return nil, fmt.Errorf("%w: aws session: %w", ErrSigning, err)
	}

	s3Client := s3.New(session, &aws.Config{
		DisableRestProtocolURICleaning: aws.Bool(true),
		S3UseAccelerate:                aws.Bool(useAccelerate),
	})

	return &S3Issuer{
		presignExpiration: presignExpiration,
		s3Client:          s3Client,
	}, nil
}

func GetAWSSession() (*session.Session, error) {
	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})

	if err != nil {
		return nil, err
	}

	return sess, nil
}

func (a S3Issuer) Sign(ctx context.Context, bucket, objectKey string, method Method) (string, error) {
	if _, err := checkSignArgs(ctx, bucket, objectKey, method); err != nil {
		return "", err
	}

	var req *request.Request

	switch method {
	case MethodRead:
		req, _ = a.s3Client.GetObjectRequest(&s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(objectKey),
		})
	case MethodWrite:
		req, _ = a.s3Client.PutObjectRequest(&s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(objectKey),
		})
	}

	req.SetContext(ctx)

	urlStr, err := req.Presign(a.presignExpiration)
	if err != nil {
		return "", fmt.Errorf("%w: s3: %w", ErrSigning, err)
	}

	if urlStr == "" {
		return "", signingError("s3 returned an empty url for %s", objectKey)
	}

	return urlStr, nil
}
