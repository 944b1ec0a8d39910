package s3

//go:generate go run go.uber.org/mock/mockgen -source=./s3.go -destination=./mocks/s3_mock.go -package=mocks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"roombook/config"
	"roombook/infras/otel"
	"roombook/shared/constant"
)

var ErrEmptyFile = errors.New("file is empty")

// S3 stores generated artifacts, such as calendar files, under keys of the configured
// bucket and hands back their public URL.
type S3 interface {
	Put(ctx context.Context, key, contentType string, body []byte) (url string, err error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL reverses a URL returned by Put. It is empty for URLs this bucket
	// did not issue.
	KeyFromURL(url string) string
}

type storage struct {
	client   *s3.Client
	bucket   string
	endpoint string
	public   string
	otel     otel.Otel
}

func New(config *config.Config, otel otel.Otel) S3 {
	settings := config.External.S3

	credentialsProvider := credentials.NewStaticCredentialsProvider(settings.AccessKeyID, settings.SecretAccessKey, "")

	cfg, err := awsConfig.LoadDefaultConfig(context.Background(), awsConfig.WithCredentialsProvider(credentialsProvider))
	if err != nil {
		log.Err(err).Msg("Error loading AWS configuration")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if settings.APIEndpoint != constant.Empty {
			o.BaseEndpoint = aws.String(settings.APIEndpoint)
		}

		o.UsePathStyle = true
		o.Region = settings.Region
	})

	return &storage{
		client:   client,
		bucket:   settings.BucketName,
		endpoint: strings.TrimSuffix(settings.APIEndpoint, "/"),
		public:   strings.TrimSuffix(settings.PublicDomain, "/"),
		otel:     otel,
	}
}

func (s *storage) scope(ctx context.Context, operation, key string) (context.Context, otel.Scope) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+"."+operation)
	scope.SetAttributes(map[string]any{
		"bucket":     s.bucket,
		"object_key": key,
	})

	return ctx, scope
}

func (s *storage) Put(ctx context.Context, key, contentType string, body []byte) (url string, err error) {
	ctx, scope := s.scope(ctx, "Put", key)
	defer scope.End()
	defer scope.TraceIfError(err)

	if len(body) == 0 {
		return constant.Empty, ErrEmptyFile
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to upload object")

		return constant.Empty, fmt.Errorf("failed to upload object: %w", err)
	}

	return s.public + "/" + key, nil
}

func (s *storage) Delete(ctx context.Context, key string) (err error) {
	ctx, scope := s.scope(ctx, "Delete", key)
	defer scope.End()
	defer scope.TraceIfError(err)

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to delete object")

		return fmt.Errorf("failed to delete object: %w", err)
	}

	return nil
}

func (s *storage) KeyFromURL(url string) string {
	prefixes := []string{s.public + "/", s.endpoint + "/" + s.bucket + "/"}

	for _, prefix := range prefixes {
		if strings.HasPrefix(prefix, "/") {
			continue
		}

		if key, found := strings.CutPrefix(url, prefix); found && key != constant.Empty {
			return key
		}
	}

	return constant.Empty
}
