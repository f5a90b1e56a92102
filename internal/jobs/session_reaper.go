package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloo-solutions/dreamcourse/internal/telemetry"
)

// SessionEvictor removes sessions idle for longer than ttl.
type SessionEvictor interface {
	EvictIdle(ctx context.Context, ttl time.Duration) (int, error)
}

// SessionReaper evicts idle sessions and the indexes they own.
type SessionReaper struct {
	sessions SessionEvictor
	ttl      time.Duration
}

func NewSessionReaper(sessions SessionEvictor, ttl time.Duration) *SessionReaper {
	return &SessionReaper{sessions: sessions, ttl: ttl}
}

func (r *SessionReaper) Run(ctx context.Context) error {
	n, err := r.sessions.EvictIdle(ctx, r.ttl)
	if err != nil {
		err = fmt.Errorf("evict idle sessions: %w", err)
		telemetry.CaptureError(ctx, err)
		return err
	}
	if n > 0 {
		log.Printf("session-reaper: evicted %d sessions idle over %v", n, r.ttl)
	}
	return nil
}
