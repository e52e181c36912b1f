package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// NotifyChannel is the Postgres channel the project_comments trigger
// notifies on.
const NotifyChannel = "project_comments_changes"

// notification is the trigger payload: the project the row belongs to and
// the change event to forward verbatim.
type notification struct {
	ProjectID string          `json:"project_id"`
	Event     json.RawMessage `json:"event"`
}

// PGRelay forwards trigger notifications into a Broker, so writes made
// outside the API reach stream subscribers too.
type PGRelay struct {
	pool   *pgxpool.Pool
	broker Broker
	log    zerolog.Logger
}

func NewPGRelay(pool *pgxpool.Pool, broker Broker, log zerolog.Logger) *PGRelay {
	return &PGRelay{pool: pool, broker: broker, log: log.With().Str("component", "pg_relay").Logger()}
}

// Run holds one pooled connection in LISTEN until ctx is cancelled or the
// connection fails.
func (r *PGRelay) Run(ctx context.Context) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen conn: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	r.log.Info().Str("channel", NotifyChannel).Msg("listening")

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		if err := r.Forward(ctx, n.Payload); err != nil {
			r.log.Warn().Err(err).Msg("drop notification")
		}
	}
}

// Forward publishes one trigger payload on the project's comments topic.
func (r *PGRelay) Forward(ctx context.Context, payload string) error {
	var n notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}
	if n.ProjectID == "" || len(n.Event) == 0 {
		return fmt.Errorf("notification missing project_id or event")
	}
	return r.broker.Publish(ctx, CommentsTopic(n.ProjectID), n.Event)
}
