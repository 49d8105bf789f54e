package elements

import (
	"context"
	"time"

	"github.com/kbukum/padflow/dag"
	"github.com/kbukum/padflow/logger"
	"github.com/kbukum/padflow/resilience"
)

// wrapped forwards the element contract and lifecycle hooks to inner.
type wrapped struct {
	inner dag.Transform
}

func (w *wrapped) Name() string         { return w.inner.Name() }
func (w *wrapped) SourcePads() []string { return w.inner.SourcePads() }
func (w *wrapped) SinkPads() []string   { return w.inner.SinkPads() }

func (w *wrapped) Start(ctx context.Context) error {
	if s, ok := w.inner.(dag.Starter); ok {
		return s.Start(ctx)
	}
	return nil
}

func (w *wrapped) Stop(ctx context.Context) error {
	if s, ok := w.inner.(dag.Stopper); ok {
		return s.Stop(ctx)
	}
	return nil
}

func (w *wrapped) Links() map[string]string {
	if d, ok := w.inner.(dag.LinkDeclarer); ok {
		return d.Links()
	}
	return nil
}

// Retrying re-runs a transform that fails. Every attempt writes to a
// scratch output; only the successful attempt is published.
type Retrying struct {
	wrapped
	cfg resilience.RetryConfig
}

// Retry wraps t with retries. A nil OnRetry logs each retry at warn level.
func Retry(t dag.Transform, cfg resilience.RetryConfig) *Retrying {
	if cfg.OnRetry == nil {
		log := logger.Get(logger.ComponentRetry)
		name := t.Name()
		cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
			log.Warn("retrying element", logger.Fields(
				logger.FieldElement, name,
				"attempt", attempt,
				"backoff", backoff.String(),
				logger.FieldError, err.Error(),
			))
		}
	}
	return &Retrying{wrapped: wrapped{inner: t}, cfg: cfg}
}

func (r *Retrying) Transform(ctx context.Context, in *dag.Input, out *dag.Output) error {
	scratch, err := resilience.Retry(ctx, r.cfg, func(ctx context.Context) (*dag.Output, error) {
		attempt := dag.NewOutput(out.Tick(), r.Name(), out.Pads())
		return attempt, r.inner.Transform(ctx, in, attempt)
	})
	if err != nil {
		return err
	}
	for _, pad := range out.Pads() {
		if f, ok := scratch.Frames()[pad]; ok {
			if err := out.Push(pad, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// Timed bounds every invocation of a transform. The inner transform must
// return once its context is done.
type Timed struct {
	wrapped
	d time.Duration
}

// Timeout wraps t with a per-invocation deadline of d.
func Timeout(t dag.Transform, d time.Duration) *Timed {
	return &Timed{wrapped: wrapped{inner: t}, d: d}
}

func (t *Timed) Transform(ctx context.Context, in *dag.Input, out *dag.Output) error {
	return resilience.WithTimeout(ctx, t.d, t.Name(), func(ctx context.Context) error {
		return t.inner.Transform(ctx, in, out)
	})
}
