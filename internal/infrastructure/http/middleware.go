package httptransport

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/storefronthq/storefront/internal/pkg/logging"
)

const tracerName = "storefront/http"

// Metrics are the transport-level RED metrics, registered in main and
// injected here.
type Metrics struct {
	Requests  *prometheus.CounterVec   // http_requests_total{route,method,status}
	Durations *prometheus.HistogramVec // http_request_duration_seconds{route,method}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// observe wraps a handler with a per-request span, a request-scoped logger
// carrying trace ids, and RED metrics labeled by the stable route template.
func (h *Handler) observe(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := otel.Tracer(tracerName).Start(r.Context(), r.Method+" "+route,
			trace.WithAttributes(
				attribute.String("http.route", route),
				attribute.String("http.method", r.Method),
			))
		defer span.End()

		logger := h.log
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			logger = logger.With(
				zap.String("trace_id", sc.TraceID().String()),
				zap.String("span_id", sc.SpanID().String()),
			)
		}
		ctx = logging.ContextWithLogger(ctx, logger)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next(rec, r.WithContext(ctx))
		elapsed := time.Since(start).Seconds()

		if h.metrics.Requests != nil {
			h.metrics.Requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		}
		if h.metrics.Durations != nil {
			h.metrics.Durations.WithLabelValues(route, r.Method).Observe(elapsed)
		}

		logger.Info("http_request",
			zap.String("route", route),
			zap.String("method", r.Method),
			zap.Int("status", rec.status),
			zap.Float64("latency_seconds", elapsed),
		)
	}
}

// clientLimiter hands out one token bucket per client address so a single
// noisy client cannot starve mutations for everyone else.
type clientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	return &clientLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
	}
}

func (c *clientLimiter) allow(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	c.mu.Lock()
	limiter, ok := c.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(c.rate, c.burst)
		c.limiters[host] = limiter
	}
	c.mu.Unlock()

	return limiter.Allow()
}

func (h *Handler) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.limiter.allow(r.RemoteAddr) {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
			return
		}
		next(w, r)
	}
}
