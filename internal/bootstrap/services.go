package bootstrap

import (
	"database/sql"

	"github.com/myinsta/portfolio-backend/config"
	authrepo "github.com/myinsta/portfolio-backend/internal/auth/repository"
	authservice "github.com/myinsta/portfolio-backend/internal/auth/service"
	commentsrepo "github.com/myinsta/portfolio-backend/internal/comments/repository"
	commentsservice "github.com/myinsta/portfolio-backend/internal/comments/service"
	projectsrepo "github.com/myinsta/portfolio-backend/internal/projects/repository"
	projectsservice "github.com/myinsta/portfolio-backend/internal/projects/service"
	"github.com/myinsta/portfolio-backend/internal/realtime"
	uploaddomain "github.com/myinsta/portfolio-backend/internal/upload/domain"
	uploadservice "github.com/myinsta/portfolio-backend/internal/upload/service"
)

type Services struct {
	Auth     *authservice.AuthService
	Projects *projectsservice.ProjectService
	Comments *commentsservice.CommentService
	Uploads  *uploadservice.UploadService
}

// NewServices wires repositories over sqlDB into the domain services. The
// admin gate for every privileged operation is the profile-backed
// AuthService.
func NewServices(sqlDB *sql.DB, broker realtime.Broker, uploader uploaddomain.Uploader, cfg *config.Config) *Services {
	authSvc := authservice.NewAuthService(authrepo.NewProfileRepository(sqlDB))
	commentsSvc := commentsservice.NewCommentService(
		commentsrepo.NewCommentRepository(sqlDB),
		authSvc,
		broker,
		commentsservice.Options{PublishWrites: cfg.Realtime.Source == config.RealtimeSourceApp},
	)

	return &Services{
		Auth:     authSvc,
		Projects: projectsservice.NewProjectService(projectsrepo.NewProjectRepository(sqlDB), authSvc, commentsSvc),
		Comments: commentsSvc,
		Uploads:  uploadservice.NewUploadService(authSvc, uploader, cfg.Upload.Backend, cfg.Upload.MaxBytes),
	}
}
