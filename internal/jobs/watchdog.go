// Package jobs runs background upkeep for the gateway. The watchdog logs
// upstream connectivity on a schedule so outages show up in the logs before
// a user request trips over them.
package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type upstream interface {
	State() string
}

type Watchdog struct {
	cron    *cron.Cron
	auth    upstream
	enhance upstream
	cache   *redis.Client
	log     zerolog.Logger
}

func NewWatchdog(auth, enhance upstream, cache *redis.Client, log zerolog.Logger) *Watchdog {
	return &Watchdog{
		cron:    cron.New(),
		auth:    auth,
		enhance: enhance,
		cache:   cache,
		log:     log,
	}
}

func (w *Watchdog) Start() error {
	if _, err := w.cron.AddFunc("* * * * *", w.report); err != nil {
		return err
	}
	w.cron.Start()
	return nil
}

func (w *Watchdog) Stop() {
	ctx := w.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		w.log.Warn().Msg("watchdog stop timed out")
	}
}

func (w *Watchdog) report() {
	event := w.log.Debug().
		Str("auth_state", w.auth.State()).
		Str("enhance_state", w.enhance.State())

	if w.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		cacheState := "ok"
		if err := w.cache.Ping(ctx).Err(); err != nil {
			cacheState = "error"
		}
		event = event.Str("cache_state", cacheState)
	}

	event.Msg("upstream connectivity")
}
