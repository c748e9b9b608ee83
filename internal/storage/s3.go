package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

type S3Store struct {
	client *s3.Client
}

func NewS3Store(ctx context.Context, profile string) (*S3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithSharedConfigProfile(profile),
		config.WithRetryMode("adaptive"),
	)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %v", err)
	}
	return &S3Store{client: s3.NewFromConfig(cfg)}, nil
}

func (s *S3Store) Head(ctx context.Context, ref ObjectRef) (int64, error) {
	headObj, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("error getting object metadata for %s: %v", ref, err)
	}
	if headObj.ContentLength == nil {
		return 0, fmt.Errorf("content length not available for %s", ref)
	}
	log.Debug().Str("op", "storage/head").Msgf("object %s is %d bytes", ref, *headObj.ContentLength)
	return *headObj.ContentLength, nil
}

func (s *S3Store) GetRange(ctx context.Context, ref ObjectRef, start, end int64) (io.ReadCloser, error) {
	// HTTP range headers are inclusive on both ends
	rangeHeader := fmt.Sprintf("bytes=%d-%d", start, end-1)
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
		Range:  aws.String(rangeHeader),
	})
	if err != nil {
		return nil, fmt.Errorf("error getting object range %s for %s: %v", rangeHeader, ref, err)
	}
	return result.Body, nil
}
