// Package postoptimization runs the passes applied to a solved optimization
// state before it is handed back: quality-driven reoptimization, trailing
// break cleanup and extra work marking.
package postoptimization

import (
	"context"
	"fmt"
	"log/slog"
	"route-optimization-service/internal/domain"
	"route-optimization-service/internal/platform/obs"
	"route-optimization-service/internal/ports"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "route-optimization-service/postoptimization"

// Handler mutates the whole optimization state in place.
type Handler interface {
	Name() string
	Process(ctx context.Context, state *domain.OptimizationState) error
}

// HandlersRegister is the fixed post-optimization pipeline.
type HandlersRegister struct {
	handlers []Handler
	logger   *slog.Logger
	observer ports.PipelineObserver
}

// NewHandlersRegister orders the handlers as ReoptimizeRoutes, RemoveLastBreak,
// then AddExtraWorkEvents.
func NewHandlersRegister(
	reoptimize *ReoptimizeRoutes,
	extraWork *AddExtraWorkEvents,
	logger *slog.Logger,
	observer ports.PipelineObserver,
) *HandlersRegister {
	if logger == nil {
		logger = slog.Default()
	}
	return &HandlersRegister{
		handlers: []Handler{reoptimize, RemoveLastBreak{}, extraWork},
		logger:   logger,
		observer: observer,
	}
}

func (r *HandlersRegister) Handlers() []Handler { return r.handlers }

// Run passes the state through every handler in order and stops at the first error.
func (r *HandlersRegister) Run(ctx context.Context, state *domain.OptimizationState) (err error) {
	if obs.RequestID(ctx) == "" {
		ctx = obs.WithRequestID(ctx, uuid.NewString())
	}
	defer obs.Time(ctx, r.logger, "post_optimization")(&err)

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "post_optimization", trace.WithAttributes(
		attribute.Int("office.id", state.Office.ID),
		attribute.String("optimization.engine", string(state.Engine)),
		attribute.Int("optimization.routes", len(state.Routes)),
	))
	defer span.End()

	logger := r.logger.With(
		"req_id", obs.RequestID(ctx),
		"office_id", state.Office.ID,
		"date", state.Date.Format("2006-01-02"),
	)
	logger.InfoContext(ctx, "post-optimization started", "routes", len(state.Routes), "engine", state.Engine)

	for _, h := range r.handlers {
		hctx, hspan := tracer.Start(ctx, h.Name())
		start := time.Now()
		err := h.Process(hctx, state)
		if r.observer != nil {
			r.observer.ObserveHandler(h.Name(), time.Since(start), err)
		}
		if err != nil {
			hspan.RecordError(err)
			hspan.SetStatus(codes.Error, err.Error())
			hspan.End()
			span.SetStatus(codes.Error, h.Name())
			return fmt.Errorf("post-optimization: %s: %w", h.Name(), err)
		}
		hspan.End()
	}
	return nil
}
