// Package janitor drops view instances whose session has gone quiet.
package janitor

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"javinity/internal/repository"
)

// Janitor periodically removes stale view records.
type Janitor interface {
	Start(ctx context.Context) error
	Shutdown()
	// Sweep runs a single pass immediately.
	Sweep(ctx context.Context) (int64, error)
}

type Config struct {
	Interval time.Duration
	// MaxAge is how long a record may go without updates before it is removed.
	MaxAge time.Duration
	Logger *logrus.Logger
}

type janitor struct {
	cfg   Config
	views repository.ViewRepository
	now   func() time.Time

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func New(cfg Config, views repository.ViewRepository) Janitor {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 2 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &janitor{cfg: cfg, views: views, now: time.Now}
}

func (j *janitor) Start(ctx context.Context) error {
	ctx, j.cancel = context.WithCancel(ctx)

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		ticker := time.NewTicker(j.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := j.Sweep(ctx); err != nil {
					j.cfg.Logger.Warnf("sweep views: %v", err)
				}
			}
		}
	}()

	j.cfg.Logger.Infof("view janitor started, interval %s, max age %s", j.cfg.Interval, j.cfg.MaxAge)
	return nil
}

func (j *janitor) Shutdown() {
	if j.cancel != nil {
		j.cancel()
	}
	j.wg.Wait()
	j.cfg.Logger.Info("view janitor stopped")
}

func (j *janitor) Sweep(ctx context.Context) (int64, error) {
	n, err := j.views.DeleteExpired(ctx, j.now().Add(-j.cfg.MaxAge))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		j.cfg.Logger.Debugf("removed %d stale views", n)
	}
	return n, nil
}
