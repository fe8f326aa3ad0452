package persistent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/andreyxaxa/Candidate-Verifier/pkg/s3client"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/types/errs"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// PhotoRepo keeps submitted photos and their thumbnails in one bucket.
type PhotoRepo struct {
	*s3client.S3Client
}

func NewPhotoRepo(s3c *s3client.S3Client) *PhotoRepo {
	return &PhotoRepo{s3c}
}

func (r *PhotoRepo) Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) error {
	_, err := r.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.Bucket()),
		Key:           aws.String(key),
		Body:          data,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("PhotoRepo - Upload - r.Client.PutObject: %w", err)
	}

	return nil
}

func (r *PhotoRepo) UploadBytes(ctx context.Context, key string, data []byte, contentType string) error {
	err := r.Upload(ctx, key, bytes.NewReader(data), contentType, int64(len(data)))
	if err != nil {
		return fmt.Errorf("PhotoRepo - UploadBytes: %w", err)
	}

	return nil
}

func (r *PhotoRepo) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	result, err := r.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.Bucket()),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("PhotoRepo - Download: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("PhotoRepo - Download - r.Client.GetObject: %w", err)
	}

	return result.Body, nil
}

func (r *PhotoRepo) DownloadBytes(ctx context.Context, key string) ([]byte, error) {
	body, err := r.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("PhotoRepo - DownloadBytes: %w", err)
	}
	defer body.Close()

	b, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("PhotoRepo - DownloadBytes - io.ReadAll: %w", err)
	}

	return b, nil
}

func (r *PhotoRepo) Delete(ctx context.Context, key string) error {
	_, err := r.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.Bucket()),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("PhotoRepo - Delete - r.Client.DeleteObject: %w", err)
	}

	return nil
}
