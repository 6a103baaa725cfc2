package services

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/client/metadata"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEndpoint = "https://test-bucket.s3.eu-west-1.amazonaws.com"

type MockS3Client struct {
	beforePresign func(r *request.Request) error
}

func (m MockS3Client) newRequest(name, method string, input, output interface{}) *request.Request {
	op := &request.Operation{
		Name:       name,
		HTTPMethod: method,
		HTTPPath:   "/{Bucket}/{Key+}",
	}

	op.BeforePresignFn = m.beforePresign

	return request.New(*aws.NewConfig(), metadata.ClientInfo{Endpoint: testEndpoint}, request.Handlers{}, nil, op, input, output)
}

func (m MockS3Client) GetObjectRequest(input *s3.GetObjectInput) (req *request.Request, output *s3.GetObjectOutput) {
	output = &s3.GetObjectOutput{}
	req = m.newRequest("GetObject", "GET", input, output)
	return
}

func (m MockS3Client) PutObjectRequest(input *s3.PutObjectInput) (req *request.Request, output *s3.PutObjectOutput) {
	output = &s3.PutObjectOutput{}
	req = m.newRequest("PutObject", "PUT", input, output)
	return
}

func TestS3IssuerSign(t *testing.T) {
	t.Run("it should presign a GET for reads", func(t *testing.T) {
		var methods []string

		awsService := S3Issuer{
			s3Client:          MockS3Client{beforePresign: recordPresign(&methods)},
			presignExpiration: 1 * time.Hour,
		}

		urlStr, err := awsService.Sign(context.Background(), "test-bucket", "test-oid", MethodRead)
		require.NoError(t, err)
		assert.Contains(t, urlStr, "test-bucket.s3.eu-west-1.amazonaws.com")
		assert.Equal(t, []string{"GET"}, methods)
	})

	t.Run("it should presign a PUT for writes", func(t *testing.T) {
		var methods []string

		awsService := S3Issuer{
			s3Client:          MockS3Client{beforePresign: recordPresign(&methods)},
			presignExpiration: 1 * time.Hour,
		}

		_, err := awsService.Sign(context.Background(), "test-bucket", "test-oid", MethodWrite)
		require.NoError(t, err)
		assert.Equal(t, []string{"PUT"}, methods)
	})

	t.Run("it should surface presign errors", func(t *testing.T) {
		awsService := S3Issuer{
			s3Client:          MockS3Client{},
			presignExpiration: 0,
		}

		urlStr, err := awsService.Sign(context.Background(), "test-bucket", "test-oid", MethodRead)
		assert.ErrorIs(t, err, ErrSigning)
		assert.Empty(t, urlStr)
	})

	t.Run("it should not presign without an object key", func(t *testing.T) {
		awsService := S3Issuer{
			s3Client:          MockS3Client{beforePresign: itShouldNotPresign(t)},
			presignExpiration: 1 * time.Hour,
		}

		_, err := awsService.Sign(context.Background(), "test-bucket", "", MethodRead)
		assert.ErrorIs(t, err, ErrSigning)
	})
}

func TestNewS3Issuer(t *testing.T) {
	_, err := NewS3Issuer(false, 0)
	assert.ErrorIs(t, err, ErrSigning)
}

// Not sure how to mock presign of URLs so we just take advantage of BeforePresignFn to check if
// Sign is being called or not
func itShouldNotPresign(t *testing.T) func(r *request.Request) error {
	return func(r *request.Request) error {
		assert.FailNow(t, "should not presign")
		return nil
	}
}

func recordPresign(methods *[]string) func(r *request.Request) error {
	return func(r *request.Request) error {
		*methods = append(*methods, r.Operation.HTTPMethod)
		return nil
	}
}
