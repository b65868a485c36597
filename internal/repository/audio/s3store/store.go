package s3store

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/campusradio/server/internal/repository/audio"
)

type Config struct {
	Endpoint        string
	Region          string
	AccessKeyId     string
	SecretAccessKey string
	Bucket          string
	Prefix          string
	// PublicBaseURL, when set, is used instead of presigned URLs.
	PublicBaseURL string
	PresignExpiry time.Duration
}

// Store reads podcast audio from an S3 compatible bucket (Cloudflare R2 in production).
type Store struct {
	client        *s3.Client
	presign       *s3.PresignClient
	bucket        string
	prefix        string
	publicBaseURL string
	presignExpiry time.Duration
}

func New(cfg *Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, audio.ErrStorageNotConfigured
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg := aws.Config{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyId, cfg.SecretAccessKey, ""),
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}

	return &Store{
		client:        client,
		presign:       s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		prefix:        cfg.Prefix,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		presignExpiry: expiry,
	}, nil
}

// AudioURL returns a URL the browser can stream key from.
func (s *Store) AudioURL(ctx context.Context, key string) (string, error) {
	funcName := "S3Store:AudioURL"
	slog.DebugContext(ctx, funcName, "key", key)

	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + escapeKey(key), nil
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignExpiry))
	if err != nil {
		slog.ErrorContext(ctx, funcName, "error", err)
		return "", fmt.Errorf("failed to presign object: %w", err)
	}

	return req.URL, nil
}

// ListAudio lists the audio objects under the configured prefix. Folders, covers and other files are skipped.
func (s *Store) ListAudio(ctx context.Context) ([]audio.Object, error) {
	funcName := "S3Store:ListAudio"
	slog.DebugContext(ctx, funcName, "bucket", s.bucket, "prefix", s.prefix)

	input := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)}
	if s.prefix != "" {
		input.Prefix = aws.String(s.prefix)
	}

	var objects []audio.Object
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			slog.ErrorContext(ctx, funcName, "error", err)
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !audio.IsAudioKey(key) {
				continue
			}

			objects = append(objects, audio.Object{
				Key:          key,
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	return objects, nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}

	return strings.Join(parts, "/")
}
