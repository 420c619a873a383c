// Package s3 provides an object store backed by Amazon S3 or any
// S3-compatible service, using the AWS SDK for Go v2.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sagarc03/filegate"
)

var errNoSuchBucket = errors.New("no such bucket")

// Store implements filegate.ObjectStore on top of an S3 client.
type Store struct {
	client *awss3.Client
	region string
}

// New loads the AWS configuration and creates a Store.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg = cfg.withDefaults()

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		if cfg.ForcePathStyle {
			o.UsePathStyle = true
		}
	})

	return NewFromClient(client, cfg.Region), nil
}

// NewFromClient wraps an existing S3 client.
func NewFromClient(client *awss3.Client, region string) *Store {
	return &Store{client: client, region: region}
}

func (s *Store) HeadObject(ctx context.Context, h filegate.ObjectHandle) (filegate.ObjectMeta, error) {
	out, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(h.Bucket),
		Key:    aws.String(h.Key),
	})
	if err != nil {
		if isNotFound(err) && s.bucketMissing(ctx, h.Bucket) {
			return filegate.ObjectMeta{}, filegate.Upstream("s3 head object", fmt.Errorf("%w: %s", errNoSuchBucket, h.Bucket))
		}
		return filegate.ObjectMeta{}, mapError("s3 head object", err)
	}

	return filegate.ObjectMeta{
		Key:           h.Key,
		ContentType:   aws.ToString(out.ContentType),
		ContentLength: aws.ToInt64(out.ContentLength),
		LastModified:  aws.ToTime(out.LastModified),
		ETag:          aws.ToString(out.ETag),
	}, nil
}

// bucketMissing reports whether HeadBucket answers 404. A HEAD response has no
// body, so a 404 from HeadObject alone does not say which of the two is gone.
// Any other HeadBucket failure leaves the key lookup result standing.
func (s *Store) bucketMissing(ctx context.Context, bucket string) bool {
	_, err := s.client.HeadBucket(ctx, &awss3.HeadBucketInput{Bucket: aws.String(bucket)})
	return err != nil && isNotFound(err)
}

func (s *Store) GetObject(ctx context.Context, h filegate.ObjectHandle) (filegate.ObjectMeta, io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(h.Bucket),
		Key:    aws.String(h.Key),
	})
	if err != nil {
		return filegate.ObjectMeta{}, nil, mapError("s3 get object", err)
	}

	meta := filegate.ObjectMeta{
		Key:           h.Key,
		ContentType:   aws.ToString(out.ContentType),
		ContentLength: aws.ToInt64(out.ContentLength),
		LastModified:  aws.ToTime(out.LastModified),
		ETag:          aws.ToString(out.ETag),
	}
	return meta, out.Body, nil
}

// PutObject uploads body in a single request. Bodies that are not seekable
// need a TLS endpoint for the SDK to stream them.
func (s *Store) PutObject(ctx context.Context, h filegate.ObjectHandle, body io.Reader, size int64, contentType string) error {
	in := &awss3.PutObjectInput{
		Bucket:      aws.String(h.Bucket),
		Key:         aws.String(h.Key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size >= 0 {
		in.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return mapError("s3 put object", err)
	}
	return nil
}

func (s *Store) DeleteObject(ctx context.Context, h filegate.ObjectHandle) error {
	_, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(h.Bucket),
		Key:    aws.String(h.Key),
	})
	if err != nil {
		return mapError("s3 delete object", err)
	}
	return nil
}

func (s *Store) ListObjects(ctx context.Context, bucket, prefix string, maxKeys int) (filegate.ObjectPage, error) {
	return s.list(ctx, bucket, prefix, nil, maxKeys)
}

func (s *Store) ListObjectsContinue(ctx context.Context, bucket, prefix, cursor string, maxKeys int) (filegate.ObjectPage, error) {
	return s.list(ctx, bucket, prefix, aws.String(cursor), maxKeys)
}

func (s *Store) list(ctx context.Context, bucket, prefix string, token *string, maxKeys int) (filegate.ObjectPage, error) {
	in := &awss3.ListObjectsV2Input{
		Bucket:            aws.String(bucket),
		MaxKeys:           aws.Int32(int32(maxKeys)), //nolint:gosec // G115: FileService bounds the page size
		ContinuationToken: token,
	}
	if prefix != "" {
		in.Prefix = aws.String(prefix)
	}

	out, err := s.client.ListObjectsV2(ctx, in)
	if err != nil {
		return filegate.ObjectPage{}, mapError("s3 list objects", err)
	}

	page := filegate.ObjectPage{Entries: make([]filegate.ObjectEntry, 0, len(out.Contents))}
	for _, obj := range out.Contents {
		page.Entries = append(page.Entries, filegate.ObjectEntry{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
		})
	}

	if aws.ToBool(out.IsTruncated) {
		page.NextCursor = aws.ToString(out.NextContinuationToken)
	}

	return page, nil
}

// EnsureBucket creates bucket unless it already exists.
func (s *Store) EnsureBucket(ctx context.Context, bucket string) error {
	_, err := s.client.HeadBucket(ctx, &awss3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return nil
	}
	if httpStatus(err) != http.StatusNotFound {
		return fmt.Errorf("s3 head bucket: %w", err)
	}

	in := &awss3.CreateBucketInput{Bucket: aws.String(bucket)}
	if s.region != "" && s.region != DefaultRegion {
		in.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}

	if _, err := s.client.CreateBucket(ctx, in); err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("s3 create bucket: %w", err)
	}
	return nil
}

var (
	_ filegate.ObjectStore       = (*Store)(nil)
	_ filegate.BucketInitializer = (*Store)(nil)
)
