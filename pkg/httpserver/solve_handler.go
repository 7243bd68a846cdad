package httpserver

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/balancer/solver-scripts/internal/auction"
	"github.com/balancer/solver-scripts/internal/solver"
	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// SolveHandler serves the coordinator-facing solve endpoint.
type SolveHandler struct {
	solver       *solver.Solver
	solveTimeout time.Duration
	logger       *zap.Logger
}

// NewSolveHandler creates a new solve handler.
func NewSolveHandler(s *solver.Solver, solveTimeout time.Duration, logger *zap.Logger) *SolveHandler {
	if solveTimeout <= 0 {
		solveTimeout = 20 * time.Second
	}
	return &SolveHandler{
		solver:       s,
		solveTimeout: solveTimeout,
		logger:       logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleSolve decodes an auction, solves it and writes the solution set.
// 400 is reserved for malformed input; "nothing routed" is a 200 with an
// empty solution list.
func (h *SolveHandler) HandleSolve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "read request body")
		return
	}

	var auc auction.Auction
	err = gojson.Unmarshal(body, &auc)
	if err != nil {
		h.logger.Warn("auction-decode-failed", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "malformed auction payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.solveTimeout)
	defer cancel()

	resp, err := h.solver.Solve(ctx, &auc)
	if err != nil {
		// Solve only errors on structural validation failures.
		h.logger.Warn("auction-rejected",
			zap.String("auction-id", auc.ID),
			zap.Error(err))
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	encodeErr := gojson.NewEncoder(w).Encode(resp)
	if encodeErr != nil {
		h.logger.Error("solve-response-encode-failed",
			zap.String("auction-id", auc.ID),
			zap.Error(encodeErr))
	}
}

func (h *SolveHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = gojson.NewEncoder(w).Encode(errorResponse{Error: msg})
}
