package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/singleflight"
)

const defaultURLExpiry = time.Hour

// Storage hands out presigned GET URLs for showcase videos and thumbnails kept in S3.
type Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	expiry    time.Duration

	presign func(ctx context.Context, key string, expiry time.Duration) (string, error)
	now     func() time.Time
	group   singleflight.Group
	mu      sync.Mutex
	urls    map[string]cachedURL
}

type cachedURL struct {
	url       string
	expiresAt time.Time
}

type Config struct {
	Endpoint       string
	PublicEndpoint string // Used for presigned URLs; falls back to Endpoint if empty
	Bucket         string
	AccessKey      string
	SecretKey      string
	Region         string
	URLExpiry      time.Duration
}

func New(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.Region == "" {
		cfg.Region = "eu-central-1"
	}
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = defaultURLExpiry
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	presignEndpoint := cfg.Endpoint
	if cfg.PublicEndpoint != "" {
		presignEndpoint = cfg.PublicEndpoint
	}
	presignClient := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(presignEndpoint)
		o.UsePathStyle = true
	})

	s := &Storage{
		client:    client,
		presigner: s3.NewPresignClient(presignClient),
		bucket:    cfg.Bucket,
		expiry:    cfg.URLExpiry,
		now:       time.Now,
		urls:      make(map[string]cachedURL),
	}
	s.presign = s.GenerateDownloadURL
	return s, nil
}

// MediaURL returns a presigned GET for key. URLs are reused while more than
// half of their lifetime remains, so repeated mounts hand pages identical URLs
// the browser can cache.
func (s *Storage) MediaURL(ctx context.Context, key string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("storage not initialized")
	}
	now := s.now()
	if u, ok := s.cached(key, now); ok {
		return u, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		if u, ok := s.cached(key, now); ok {
			return u, nil
		}
		u, err := s.presign(ctx, key, s.expiry)
		if err != nil {
			return "", err
		}
		s.mu.Lock()
		s.urls[key] = cachedURL{url: u, expiresAt: now.Add(s.expiry)}
		s.mu.Unlock()
		return u, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Storage) cached(key string, now time.Time) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.urls[key]; ok && c.expiresAt.Sub(now) > s.expiry/2 {
		return c.url, true
	}
	return "", false
}

// PruneURLs drops cached URLs that are past their reuse window.
func (s *Storage) PruneURLs() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, c := range s.urls {
		if c.expiresAt.Sub(now) <= s.expiry/2 {
			delete(s.urls, key)
			n++
		}
	}
	return n
}

func (s *Storage) StartPruneLoop(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.PruneURLs(); n > 0 {
					slog.Debug("storage: pruned presigned URLs", "count", n)
				}
			}
		}
	}()
}

func (s *Storage) GenerateDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if s == nil {
		return "", fmt.Errorf("storage not initialized")
	}
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}

	return req.URL, nil
}

// SetCORS lets the showcase pages stream media straight from the bucket.
func (s *Storage) SetCORS(ctx context.Context, allowedOrigins []string) error {
	_, err := s.client.PutBucketCors(ctx, &s3.PutBucketCorsInput{
		Bucket: aws.String(s.bucket),
		CORSConfiguration: &types.CORSConfiguration{
			CORSRules: []types.CORSRule{
				{
					AllowedOrigins: allowedOrigins,
					AllowedMethods: []string{"GET", "HEAD"},
					AllowedHeaders: []string{"Range"},
					ExposeHeaders:  []string{"Content-Length", "Content-Range", "Accept-Ranges"},
					MaxAgeSeconds:  aws.Int32(3600),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("set bucket CORS: %w", err)
	}
	return nil
}

func (s *Storage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}

	return nil
}
