// Package solver reaches the external vehicle-routing engines over HTTP.
package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"route-optimization-service/internal/api/dto"
	"route-optimization-service/internal/domain"
	"route-optimization-service/internal/platform/obs"
	"route-optimization-service/internal/ports"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// BreakerSettings trips the breaker after ConsecutiveFailures failed calls and
// keeps it open for OpenTimeout.
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{ConsecutiveFailures: 5, OpenTimeout: 30 * time.Second}
}

// HTTPSolver implements RouteOptimizationService for one engine.
//
// A call posts the route to {baseURL}/routes/optimize and expects the solved
// route back in the same format. Transient failures are retried; repeated
// failures open a circuit breaker that fails calls fast.
//
// The client is safe for concurrent use.
type HTTPSolver struct {
	engine  domain.OptimizationEngine
	baseURL string
	session *http.Client
	breaker *gobreaker.CircuitBreaker
	backoff time.Duration
	logger  *slog.Logger
}

func NewHTTPSolver(
	engine domain.OptimizationEngine,
	baseURL string,
	timeout time.Duration,
	breaker BreakerSettings,
	logger *slog.Logger,
) (*HTTPSolver, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("new %s solver: base url is empty", engine)
	}
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:    "solver-" + strings.ToLower(string(engine)),
		Timeout: breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breaker.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &HTTPSolver{
		engine:  engine,
		baseURL: baseURL,
		session: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
		backoff: initialBackoff,
		logger:  logger,
	}, nil
}

func (c *HTTPSolver) OptimizeSingleRoute(ctx context.Context, route *domain.Route) (_ *domain.Route, err error) {
	defer obs.Time(ctx, c.logger, "solver."+strings.ToLower(string(c.engine)))(&err)

	ctx, span := otel.Tracer("route-optimization-service/solver").Start(ctx, "optimize_single_route",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("optimization.engine", string(c.engine)),
			attribute.Int("route.id", route.ID),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "solver call failed")
		}
		span.End()
	}()

	body, err := json.Marshal(dto.RouteFromDomain(route))
	if err != nil {
		return nil, fmt.Errorf("%s solver: encode route %d: %w", c.engine, route.ID, err)
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, body)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s solver: route %d: %w: %v", c.engine, route.ID, ports.ErrSolverUnavailable, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%s solver: route %d: %w", c.engine, route.ID, err)
	}

	solved, err := out.(dto.Route).ToDomain()
	if err != nil {
		return nil, fmt.Errorf("%s solver: decode route %d: %w", c.engine, route.ID, err)
	}
	return solved, nil
}

func (c *HTTPSolver) post(ctx context.Context, body []byte) (dto.Route, error) {
	url := c.baseURL + "/routes/optimize"

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")
		if id := obs.RequestID(ctx); id != "" {
			req.Header.Set("X-Request-ID", id)
		}
		otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
		return req, nil
	})
	if err != nil {
		return dto.Route{}, err
	}
	defer resp.Body.Close()

	var solved dto.Route
	if err := json.NewDecoder(resp.Body).Decode(&solved); err != nil {
		return dto.Route{}, fmt.Errorf("decode response: %w", err)
	}
	return solved, nil
}
