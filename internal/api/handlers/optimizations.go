package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"route-optimization-service/internal/api/dto"
	"route-optimization-service/internal/domain"
	"route-optimization-service/internal/ports"
	"route-optimization-service/internal/services/metrics"
)

// Pipeline runs the post-optimization handlers over a solved state.
type Pipeline interface {
	Run(ctx context.Context, state *domain.OptimizationState) error
}

type OptimizationHandler struct {
	Pipeline Pipeline
	Logger   *slog.Logger
}

// PostProcess runs the pipeline over the posted state and returns the
// processed state together with each route's quality score.
func (h *OptimizationHandler) PostProcess(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.OptimizationState
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Engine == "" {
		writeError(w, r, http.StatusBadRequest, "engine is required")
		return
	}

	state, err := req.ToDomain()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Pipeline.Run(r.Context(), state); err != nil {
		switch {
		case errors.Is(err, ports.ErrUnknownEngine):
			writeError(w, r, http.StatusUnprocessableEntity, "unknown optimization engine")
		case errors.Is(err, ports.ErrSolverUnavailable):
			writeError(w, r, http.StatusServiceUnavailable, "solver unavailable")
		default:
			h.Logger.ErrorContext(r.Context(), "post-optimization failed", "state_id", state.ID, "err", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	res := dto.PostProcessResponse{
		State:  dto.OptimizationStateFromDomain(state),
		Scores: make([]dto.RouteScore, 0, len(state.Routes)),
	}
	for _, route := range state.Routes {
		score := metrics.Score(domain.CalculateRouteStats(route))
		res.Scores = append(res.Scores, dto.RouteScoreFromService(route.ID, score))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Score grades a set of route stats with every metric calculator.
func Score(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.RouteStats
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, dto.RouteScoreFromService(0, metrics.Score(req.ToDomain())))
}
