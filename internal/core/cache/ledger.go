package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Ledger remembers which event ids were applied successfully so that
// redelivered events are not applied twice. Redis failures fail open.
type Ledger struct {
	RDB    *redis.Client
	Prefix string
	TTL    time.Duration
	Log    *zap.Logger
	sf     singleflight.Group
}

func New(addr, pass string, db int) *Ledger {
	return &Ledger{
		RDB:    redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
		Prefix: "estate:event:",
		TTL:    24 * time.Hour,
		Log:    zap.NewNop(),
	}
}

func (l *Ledger) key(id string) string { return l.Prefix + id }

func (l *Ledger) Seen(ctx context.Context, id string) bool {
	n, err := l.RDB.Exists(ctx, l.key(id)).Result()
	if err != nil {
		l.Log.Warn("ledger lookup failed", zap.String("event_id", id), zap.Error(err))
		return false
	}
	return n > 0
}

// Do runs apply once per id. skipped is true when the id was already applied,
// either earlier or by a concurrent call in this process.
func (l *Ledger) Do(ctx context.Context, id string, apply func(context.Context) error) (skipped bool, err error) {
	if id == "" {
		return false, apply(ctx)
	}
	if l.Seen(ctx, id) {
		return true, nil
	}
	ran := false
	_, err, _ = l.sf.Do(id, func() (any, error) {
		ran = true
		if e := apply(ctx); e != nil {
			return nil, e
		}
		if e := l.RDB.Set(ctx, l.key(id), time.Now().Unix(), l.TTL).Err(); e != nil {
			l.Log.Warn("ledger mark failed", zap.String("event_id", id), zap.Error(e))
		}
		return nil, nil
	})
	return !ran && err == nil, err
}

func (l *Ledger) Close() error { return l.RDB.Close() }
