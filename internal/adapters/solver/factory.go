package solver

import (
	"fmt"
	"log/slog"
	"route-optimization-service/internal/domain"
	"route-optimization-service/internal/ports"
	"time"
)

// Config lists the engine endpoints. An engine with an empty URL is not served.
type Config struct {
	GoogleURL string
	VroomURL  string
	Timeout   time.Duration
	Breaker   BreakerSettings
}

// Factory resolves the solver client for an engine.
type Factory struct {
	services map[domain.OptimizationEngine]ports.RouteOptimizationService
}

func NewFactory(cfg Config, logger *slog.Logger) (*Factory, error) {
	f := &Factory{services: make(map[domain.OptimizationEngine]ports.RouteOptimizationService)}

	endpoints := map[domain.OptimizationEngine]string{
		domain.EngineGoogle: cfg.GoogleURL,
		domain.EngineVroom:  cfg.VroomURL,
	}
	for engine, url := range endpoints {
		if url == "" {
			continue
		}
		client, err := NewHTTPSolver(engine, url, cfg.Timeout, cfg.Breaker, logger)
		if err != nil {
			return nil, fmt.Errorf("new solver factory: %w", err)
		}
		f.services[engine] = client
	}
	return f, nil
}

func (f *Factory) ServiceFor(engine domain.OptimizationEngine) (ports.RouteOptimizationService, error) {
	svc, ok := f.services[engine]
	if !ok {
		return nil, fmt.Errorf("solver for %q: %w", engine, ports.ErrUnknownEngine)
	}
	return svc, nil
}
