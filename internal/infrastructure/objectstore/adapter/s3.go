package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/objectstore/port"
)

// S3Presigner issues presigned PUT URLs against the audio input bucket.
type S3Presigner struct {
	presigner *s3.PresignClient
	bucket    string
}

// NewS3PresignerFromEnv builds a presigner using the default AWS credential
// chain and the INPUT_BUCKET environment variable. S3_USE_PATH_STYLE=true
// switches to path-style addressing for S3-compatible stores.
func NewS3PresignerFromEnv(ctx context.Context) (*S3Presigner, error) {
	bucket := os.Getenv("INPUT_BUCKET")
	if bucket == "" {
		return nil, errors.New("s3: INPUT_BUCKET environment variable is not set")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3: load AWS config: %w", err)
	}
	usePathStyle := os.Getenv("S3_USE_PATH_STYLE") == "true"
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = usePathStyle
	})
	return &S3Presigner{
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
	}, nil
}

// Ensure interface compliance at compile time
var _ port.Presigner = (*S3Presigner)(nil)

func (p *S3Presigner) PresignPut(ctx context.Context, key string, contentType string, expiry time.Duration) (string, error) {
	resp, err := p.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      &p.bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("s3: presign put: %w", err)
	}
	return resp.URL, nil
}
