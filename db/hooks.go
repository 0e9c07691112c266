package db

import (
	"context"
	"log/slog"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Hook interface
// ─────────────────────────────────────────────────────────────────────────────

// Hook is called before and after every statement execution.
//
// BeforeQuery may return a derived context (for example one carrying a
// tracing span); that context is used for the driver call and handed to
// AfterQuery. Implementations MUST be goroutine-safe. Panics inside a hook
// are recovered by the hook chain and logged.
type Hook interface {
	BeforeQuery(ctx context.Context, query string, args []any) context.Context

	// AfterQuery is invoked after the driver returns. err is the already
	// mapped error returned to the caller, nil on success.
	AfterQuery(ctx context.Context, query string, args []any, duration time.Duration, err error)
}

// ─────────────────────────────────────────────────────────────────────────────
// hookChain: internal dispatcher
// ─────────────────────────────────────────────────────────────────────────────

type hookChain struct {
	hooks []Hook
}

func newHookChain(hooks []Hook) hookChain {
	filtered := make([]Hook, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			filtered = append(filtered, h)
		}
	}
	return hookChain{hooks: filtered}
}

func (c hookChain) Before(ctx context.Context, query string, args []any) context.Context {
	for _, h := range c.hooks {
		ctx = safeBeforeQuery(h, ctx, query, args)
	}
	return ctx
}

func (c hookChain) After(ctx context.Context, query string, args []any, d time.Duration, err error) {
	for _, h := range c.hooks {
		safeAfterQuery(h, ctx, query, args, d, err)
	}
}

// afterFunc captures the start time now and reports to After once the
// deferred result (a *Row scan) is known.
func (c hookChain) afterFunc(ctx context.Context, query string, args []any) func(error) {
	if len(c.hooks) == 0 {
		return nil
	}
	start := time.Now()
	return func(err error) {
		c.After(ctx, query, args, time.Since(start), err)
	}
}

func safeBeforeQuery(h Hook, ctx context.Context, query string, args []any) (out context.Context) {
	out = ctx
	defer func() {
		if r := recover(); r != nil {
			slog.Error("db: hook panic in BeforeQuery", "panic", r)
			out = ctx
		}
	}()
	if next := h.BeforeQuery(ctx, query, args); next != nil {
		out = next
	}
	return out
}

func safeAfterQuery(h Hook, ctx context.Context, query string, args []any, d time.Duration, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("db: hook panic in AfterQuery", "panic", r)
		}
	}()
	h.AfterQuery(ctx, query, args, d, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Logging hook
// ─────────────────────────────────────────────────────────────────────────────

// LogHookConfig configures the structured logging hook.
type LogHookConfig struct {
	// Logger defaults to slog.Default() if nil.
	Logger *slog.Logger
	// SlowQueryThreshold logs a warning when duration exceeds this value.
	// Zero disables slow-query logging.
	SlowQueryThreshold time.Duration
	// LogArgs includes bound parameters in log entries.
	LogArgs bool
}

// NewLogHook returns a Hook that emits structured log entries via slog.
func NewLogHook(cfg LogHookConfig) Hook {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &logHook{cfg: cfg, logger: logger}
}

type logHook struct {
	cfg    LogHookConfig
	logger *slog.Logger
}

func (h *logHook) BeforeQuery(ctx context.Context, _ string, _ []any) context.Context { return ctx }

func (h *logHook) AfterQuery(ctx context.Context, query string, args []any, d time.Duration, err error) {
	attrs := []any{
		slog.String("query", trimQuery(query)),
		slog.Duration("duration", d),
	}
	if h.cfg.LogArgs && len(args) > 0 {
		attrs = append(attrs, slog.Any("args", args))
	}

	if err != nil {
		h.logger.ErrorContext(ctx, "db: query error", append(attrs, slog.Any("err", err))...)
		return
	}

	if h.cfg.SlowQueryThreshold > 0 && d > h.cfg.SlowQueryThreshold {
		h.logger.WarnContext(ctx, "db: slow query", attrs...)
		return
	}

	h.logger.DebugContext(ctx, "db: query", attrs...)
}

func trimQuery(q string) string {
	if len(q) > 500 {
		return q[:500] + "…"
	}
	return q
}

// ─────────────────────────────────────────────────────────────────────────────
// Tracing hook
// ─────────────────────────────────────────────────────────────────────────────

// Tracer is the interface a tracing backend must implement.
type Tracer interface {
	// StartSpan is called before the query. The returned context must carry
	// the span so that EndSpan can finish it.
	StartSpan(ctx context.Context, query string) context.Context
	// EndSpan is called after the query completes.
	EndSpan(ctx context.Context, err error)
}

// NewTracingHook returns a Hook wrapping a Tracer.
func NewTracingHook(t Tracer) Hook { return &tracingHook{t: t} }

type tracingHook struct{ t Tracer }

func (h *tracingHook) BeforeQuery(ctx context.Context, query string, _ []any) context.Context {
	return h.t.StartSpan(ctx, query)
}

func (h *tracingHook) AfterQuery(ctx context.Context, _ string, _ []any, _ time.Duration, err error) {
	h.t.EndSpan(ctx, err)
}
