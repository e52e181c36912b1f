package cdn

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/myinsta/portfolio-backend/config"
	"github.com/myinsta/portfolio-backend/internal/apperr"
	"github.com/myinsta/portfolio-backend/internal/upload/domain"
)

// ObjectPutter is the part of *s3.Client the uploader needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds a client from S3Config. Static keys win over the
// default credential chain; a custom endpoint switches to path-style
// addressing for S3-compatible stores.
func NewS3Client(ctx context.Context, c config.S3Config) (*s3.Client, error) {
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(c.Region)}
	if c.AccessKeyID != "" && c.SecretAccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, ""),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

type S3 struct {
	client ObjectPutter
	cfg    config.S3Config
	folder string
	newKey func() string
}

func NewS3(client ObjectPutter, cfg config.S3Config, upload config.UploadConfig) *S3 {
	return &S3{
		client: client,
		cfg:    cfg,
		folder: upload.Folder,
		newKey: func() string { return uuid.NewString() },
	}
}

func (u *S3) Upload(ctx context.Context, f domain.File) (*domain.Result, error) {
	if u.cfg.Bucket == "" {
		return nil, apperr.Configuration("S3 bucket not configured")
	}

	key := path.Join(u.folder, u.newKey()+domain.Extension(f.ContentType))
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(f.Data),
		ContentType:   aws.String(f.ContentType),
		ContentLength: aws.Int64(int64(len(f.Data))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return nil, apperr.Upstream("Upload failed", err.Error(), err)
	}

	objURL := u.objectURL(key)
	res := &domain.Result{URL: objURL, OriginalURL: objURL, PublicID: key}
	// webp has no stdlib decoder; dimensions stay zero
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(f.Data)); err == nil {
		res.Width, res.Height = cfg.Width, cfg.Height
	}
	return res, nil
}

func (u *S3) objectURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	switch {
	case u.cfg.PublicBaseURL != "":
		return strings.TrimRight(u.cfg.PublicBaseURL, "/") + "/" + escaped
	case u.cfg.Endpoint != "":
		return strings.TrimRight(u.cfg.Endpoint, "/") + "/" + u.cfg.Bucket + "/" + escaped
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, escaped)
	}
}
