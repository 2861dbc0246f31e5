package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"intelligence-layer/internal/domain"
)

const (
	callHashWindow  = 1000
	baseCallBackoff = 500 * time.Millisecond
	maxCallJitter   = 500 * time.Millisecond
)

// transientMarkers are error substrings worth retrying: provider overload,
// rate limiting, and timeouts.
var transientMarkers = []string{
	"overloaded",
	"unavailable",
	"rate limit",
	"rate_limit",
	"timeout",
	"503",
	"429",
}

type cacheEntry struct {
	Text   string `json:"text"`
	Parsed any    `json:"parsed,omitempty"`
}

// ModelCaller wraps a ModelClient with response caching, a shared rate
// limiter, and bounded retries with exponential backoff. Invoke never returns
// an error: failures surface as the error variant of ModelResponse so every
// downstream consumer handles exactly one shape.
type ModelCaller struct {
	client      domain.ModelClient
	cache       domain.CacheStore
	limiter     *rate.Limiter
	maxAttempts int
	logger      *slog.Logger

	// injectable for tests
	sleep  func(time.Duration)
	jitter func() time.Duration
}

func NewModelCaller(client domain.ModelClient, cache domain.CacheStore, rpm int, maxAttempts int, logger *slog.Logger) *ModelCaller {
	var limiter *rate.Limiter
	if rpm > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), max(1, rpm/10))
	}
	return &ModelCaller{
		client:      client,
		cache:       cache,
		limiter:     limiter,
		maxAttempts: max(1, maxAttempts),
		logger:      logger,
		sleep:       time.Sleep,
		jitter: func() time.Duration {
			return time.Duration(rand.Int63n(int64(maxCallJitter)))
		},
	}
}

// CacheKey derives a stable key for one model call. Text parts contribute a
// bounded prefix so very large prompts hash cheaply; binary parts contribute
// their full digest.
func (c *ModelCaller) CacheKey(model string, parts []domain.PromptPart, jsonMode bool) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00json=%t\x00", model, jsonMode)
	for _, part := range parts {
		if len(part.Data) > 0 {
			sum := sha256.Sum256(part.Data)
			fmt.Fprintf(h, "bin:%s:%d:%x\x00", part.MIMEType, len(part.Data), sum)
			continue
		}
		text := part.Text
		if len(text) > callHashWindow {
			text = text[:callHashWindow]
		}
		fmt.Fprintf(h, "txt:%s\x00", text)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Invoke performs one cached, rate limited, retried model call.
func (c *ModelCaller) Invoke(ctx context.Context, model string, parts []domain.PromptPart, jsonMode bool) domain.ModelResponse {
	key := c.CacheKey(model, parts, jsonMode)

	if c.cache != nil {
		if raw, ok := c.cache.Get(ctx, key); ok {
			var entry cacheEntry
			if err := json.Unmarshal(raw, &entry); err == nil {
				c.logger.Debug("model cache hit", slog.String("model", model))
				return domain.CachedResponse(entry.Text, entry.Parsed)
			}
			c.logger.Warn("discarding corrupt cache entry", slog.String("key", key))
		}
	}

	backoff := baseCallBackoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return domain.ErrorResponse(err)
			}
		}

		out, err := c.client.GenerateStructured(ctx, model, parts, jsonMode)
		if err == nil {
			c.persist(ctx, key, out)
			return domain.LiveResponse(out)
		}
		lastErr = err

		if !isTransient(err) {
			c.logger.Error("model call failed",
				slog.String("model", model),
				slog.String("error", err.Error()))
			return domain.ErrorResponse(err)
		}
		if attempt < c.maxAttempts {
			wait := backoff + c.jitter()
			c.logger.Warn("transient model error, retrying",
				slog.String("model", model),
				slog.Int("attempt", attempt),
				slog.Duration("wait", wait),
				slog.String("error", err.Error()))
			c.sleep(wait)
			backoff *= 2
		}
	}

	c.logger.Error("model call exhausted retries",
		slog.String("model", model),
		slog.Int("attempts", c.maxAttempts),
		slog.String("error", lastErr.Error()))
	return domain.ErrorResponse(lastErr)
}

func (c *ModelCaller) persist(ctx context.Context, key string, out *domain.ModelOutput) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(cacheEntry{Text: out.Text, Parsed: out.Parsed})
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, raw); err != nil {
		c.logger.Warn("model cache write failed", slog.String("error", err.Error()))
	}
}

func isTransient(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
