package service

import (
	"context"
	"time"

	"ohms_lab/internal/logger"

	"github.com/zoobzio/clockz"
)

const defaultSessionTTL = 30 * time.Minute

// JanitorService ends sessions that have been idle longer than the TTL.
type JanitorService struct {
	sessions *SessionService
	ttl      time.Duration
	clock    clockz.Clock
	log      *logger.Logger
}

func NewJanitorService(sessions *SessionService, ttl time.Duration, clock clockz.Clock, log *logger.Logger) *JanitorService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &JanitorService{sessions: sessions, ttl: ttl, clock: clock, log: log}
}

// Run sweeps every tick until ctx is canceled.
func (j *JanitorService) Run(ctx context.Context, tick time.Duration) {
	for {
		t := j.clock.NewTimer(tick)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C():
			if n := j.Sweep(ctx); n > 0 {
				j.log.Infow("sessions_evicted", "count", n, "remaining", j.sessions.Count())
			}
		}
	}
}

// Sweep ends every idle session and returns how many were ended.
func (j *JanitorService) Sweep(ctx context.Context) int {
	evicted := 0
	for _, sess := range j.sessions.store.all() {
		if sess.IdleFor() < j.ttl {
			continue
		}
		// A concurrent End may have won; that is not an error here.
		if err := j.sessions.end(ctx, sess.ID(), "idle"); err == nil {
			evicted++
		}
	}
	return evicted
}
