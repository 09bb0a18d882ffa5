package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/rueidis"
	"github.com/ziadkadry99/deepdoc/internal/answer"
	"go.uber.org/zap"
)

// AnswerCache caches synthesized answers in Redis so repeated questions skip
// retrieval and generation. A nil *AnswerCache is a valid no-op cache, which
// is what callers get when no Redis address is configured.
type AnswerCache struct {
	client rueidis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// New connects to Redis and returns an answer cache.
func New(addr string, ttl time.Duration, log *zap.Logger) (*AnswerCache, error) {
	if log == nil {
		log = zap.NewNop()
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{addr},
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &AnswerCache{client: client, ttl: ttl, log: log}, nil
}

// Key derives the cache key for a question at a given marks level.
func Key(question string, marks int) string {
	sum := sha256.Sum256([]byte(question))
	return fmt.Sprintf("answer:%d:%s", marks, hex.EncodeToString(sum[:]))
}

// Get returns the cached answer for the question, or nil on a miss. Cache
// failures are logged and reported as misses.
func (c *AnswerCache) Get(ctx context.Context, question string, marks int) *answer.Answer {
	if c == nil {
		return nil
	}

	cmd := c.client.B().Get().Key(Key(question, marks)).Build()
	data, err := c.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if !rueidis.IsRedisNil(err) {
			c.log.Warn("answer cache read failed", zap.Error(err))
		}
		return nil
	}

	var ans answer.Answer
	if err := json.Unmarshal(data, &ans); err != nil {
		c.log.Warn("discarding unparseable cache entry", zap.Error(err))
		return nil
	}
	return &ans
}

// Set stores an answer with the configured TTL. Best-effort: failures are
// logged and swallowed.
func (c *AnswerCache) Set(ctx context.Context, question string, marks int, ans *answer.Answer) {
	if c == nil || ans == nil {
		return
	}

	data, err := json.Marshal(ans)
	if err != nil {
		c.log.Warn("answer cache marshal failed", zap.Error(err))
		return
	}

	cmd := c.client.B().Set().Key(Key(question, marks)).Value(string(data)).Ex(c.ttl).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		c.log.Warn("answer cache write failed", zap.Error(err))
	}
}

// Close shuts down the Redis client. Safe on a nil cache.
func (c *AnswerCache) Close() {
	if c != nil {
		c.client.Close()
	}
}
