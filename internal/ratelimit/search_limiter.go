package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/talentsift/talentsift/internal/config"
	"go.uber.org/zap"
)

const keySearchSubmitOrg = "search:submit:org:%s"

// SearchLimiter throttles search submission per organization. A nil limiter
// (redis not configured) allows everything; redis errors degrade to allow so
// a cache outage cannot take search submission down with it.
type SearchLimiter struct {
	bucket *TokenBucket
	log    *zap.Logger
	rate   float64
	burst  int
}

func NewSearchLimiter(cfg config.Config, log *zap.Logger) *SearchLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})
	return &SearchLimiter{
		bucket: NewTokenBucket(client),
		log:    log.Named("ratelimit"),
		rate:   cfg.RateLimit.SearchRate,
		burst:  cfg.RateLimit.SearchBurst,
	}
}

func (l *SearchLimiter) Allow(ctx context.Context, orgID string) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}
	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keySearchSubmitOrg, strings.TrimSpace(orgID)), l.rate, l.burst)
	if err != nil {
		l.log.Warn("rate limit check failed, allowing", zap.Error(err))
		return true, 0
	}
	return res.Allowed, res.RetryAfter
}
