package bootstrap

import (
	"context"

	"github.com/myinsta/portfolio-backend/config"
	"github.com/myinsta/portfolio-backend/internal/upload/cdn"
	uploaddomain "github.com/myinsta/portfolio-backend/internal/upload/domain"
)

func NewUploader(ctx context.Context, cfg *config.Config) (uploaddomain.Uploader, error) {
	if cfg.Upload.Backend == config.UploadBackendS3 {
		client, err := cdn.NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return cdn.NewS3(client, cfg.S3, cfg.Upload), nil
	}
	return cdn.NewCloudinary(cfg.Cloudinary, cfg.Upload), nil
}
