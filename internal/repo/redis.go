package repo

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis backs the per-IP rate limiter on the credential endpoints.
type Redis struct{ Client *redis.Client }

func NewRedis(addr string) *Redis {
	return &Redis{Client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *Redis) Ping(ctx context.Context) error { return r.Client.Ping(ctx).Err() }
func (r *Redis) Close() error                   { return r.Client.Close() }

// IncrWindow bumps key and returns the running count. INCR and EXPIRE travel
// in one pipeline so a crash between them cannot strand a key without a TTL;
// the expiry here is garbage collection, not the window boundary (callers put
// the window in the key).
func (r *Redis) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := r.Client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
