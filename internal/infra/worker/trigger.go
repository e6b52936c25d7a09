package worker

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"training-enrichment/internal/domain/ports/adapter"
	"training-enrichment/internal/infra/metrics"
)

// Throttle bounds how often wake-ups actually reach the processor. The
// Redis-backed implementation lives in infra/redis; a nil throttle means
// every wake goes through.
type Throttle interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

const triggerThrottleKey = "enrichment:trigger"

var _ adapter.ProcessorTrigger = (*PoolTrigger)(nil)

// PoolTrigger wakes a co-located processor by submitting one ProcessOne
// invocation to the worker pool. Wake returns immediately.
type PoolTrigger struct {
	pool      *Pool
	processor *EnrichmentProcessor
	throttle  Throttle
	log       *zerolog.Logger
}

func NewPoolTrigger(pool *Pool, processor *EnrichmentProcessor, throttle Throttle, log *zerolog.Logger) *PoolTrigger {
	return &PoolTrigger{pool: pool, processor: processor, throttle: throttle, log: log}
}

func (t *PoolTrigger) Wake(ctx context.Context) {
	if !t.allow(ctx) {
		return
	}
	metrics.IncTriggerWakeup()
	err := t.pool.Submit(func(ctx context.Context) error {
		_, err := t.processor.ProcessOne(ctx)
		return err
	})
	if err != nil {
		t.log.Debug().Err(err).Msg("processor wake dropped")
	}
}

func (t *PoolTrigger) allow(ctx context.Context) bool {
	if t.throttle == nil {
		return true
	}
	ok, err := t.throttle.Allow(ctx, triggerThrottleKey, 1, time.Second)
	if err != nil {
		// Fail open: a throttle outage must not stall the queue.
		return true
	}
	return ok
}

var _ adapter.ProcessorTrigger = (*HTTPTrigger)(nil)

// HTTPTrigger wakes a remote processor deployment with a fire-and-forget
// POST. The request runs in its own goroutine; failures are logged, never
// surfaced to the enqueueing caller.
type HTTPTrigger struct {
	url    string
	client *http.Client
	log    *zerolog.Logger
}

func NewHTTPTrigger(url string, log *zerolog.Logger) *HTTPTrigger {
	return &HTTPTrigger{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log,
	}
}

func (t *HTTPTrigger) Wake(ctx context.Context) {
	metrics.IncTriggerWakeup()
	go func() {
		req, err := http.NewRequest(http.MethodPost, t.url, bytes.NewReader([]byte("{}")))
		if err != nil {
			t.log.Error().Err(err).Msg("could not build trigger request")
			return
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := t.client.Do(req)
		if err != nil {
			t.log.Error().Err(err).Str("url", t.url).Msg("processor trigger failed")
			return
		}
		resp.Body.Close()
	}()
}
