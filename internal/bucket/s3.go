package bucket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"goesfetch/internal/goes"
)

// S3Options configure access to an S3-compatible object store. The zero
// value targets the public NOAA buckets: us-east-1, anonymous requests,
// default retry policy.
type S3Options struct {
	Region string
	// Endpoint overrides the S3 endpoint for private mirrors.
	Endpoint string
	// AccessKeyID and SecretAccessKey switch from anonymous to static
	// credentials; the public archive needs none.
	AccessKeyID     string
	SecretAccessKey string
	// UsePathStyle addresses buckets by path rather than virtual host,
	// which most private mirrors require.
	UsePathStyle bool
	// MaxAttempts bounds the SDK's built-in retries; 0 keeps the default.
	MaxAttempts int
}

// S3Store reads the archive from S3. Listing pagination and bounded retries
// are handled by the SDK; errors it returns have exhausted those retries.
type S3Store struct {
	client     *s3.Client
	downloader *manager.Downloader
	logger     goes.Logger
}

// NewS3Store builds an S3Store from options. Requests are anonymous unless
// static credentials are given.
func NewS3Store(ctx context.Context, opts S3Options, logger goes.Logger) (*S3Store, error) {
	var optFns []func(*awsconfig.LoadOptions) error

	region := opts.Region
	if region == "" {
		// The NOAA archive buckets live in us-east-1.
		region = "us-east-1"
	}
	optFns = append(optFns, awsconfig.WithRegion(region))

	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	} else {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}))
	}
	if opts.MaxAttempts > 0 {
		optFns = append(optFns, awsconfig.WithRetryMaxAttempts(opts.MaxAttempts))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	return &S3Store{
		client:     client,
		downloader: manager.NewDownloader(client),
		logger:     logger,
	}, nil
}

// List enumerates every object under prefix, walking all result pages.
func (s *S3Store) List(ctx context.Context, bucket, prefix string) ([]goes.ObjectInfo, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var objects []goes.ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing %s/%s: %w", bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, goes.ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	s.logger.Debug("listed objects", "bucket", bucket, "prefix", prefix, "count", len(objects))
	return objects, nil
}

// Fetch downloads one object to dst via a temp file and rename, so readers
// never observe a half-written file.
func (s *S3Store) Fetch(ctx context.Context, bucket, key, dst string) (int64, error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".fetch-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	n, err := s.downloader.Download(ctx, tmpFile, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if cerr := tmpFile.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("object not found: %s/%s", bucket, key)
		}
		return 0, fmt.Errorf("downloading %s/%s: %w", bucket, key, err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	success = true
	return n, nil
}

// Read returns one object's bytes in memory.
func (s *S3Store) Read(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("object not found: %s/%s", bucket, key)
		}
		return nil, fmt.Errorf("getting %s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// Ping probes bucket reachability with a head request.
func (s *S3Store) Ping(ctx context.Context, bucket string) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %s not reachable: %w", bucket, err)
	}
	return nil
}

// isNotFound reports whether err is a per-object 404 rather than a
// transport or bucket-level failure.
func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	var nf *s3types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}

// Compile-time check that S3Store implements goes.ObjectStore.
var _ goes.ObjectStore = (*S3Store)(nil)
