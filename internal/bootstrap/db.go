package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/myinsta/portfolio-backend/config"
	"github.com/myinsta/portfolio-backend/internal/db"
)

type DBOptions struct {
	Config    config.DatabaseConfig
	ConnectTO time.Duration
}

// OpenDB connects the pool within ConnectTO. db.Open pings before returning.
func OpenDB(ctx context.Context, opt DBOptions) (*db.DB, error) {
	if opt.ConnectTO == 0 {
		opt.ConnectTO = 5 * time.Second
	}

	cctx, cancel := context.WithTimeout(ctx, opt.ConnectTO)
	defer cancel()

	d, err := db.Open(cctx, opt.Config)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	return d, nil
}
