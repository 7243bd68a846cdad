// Package app wires the solver's components together and owns their
// lifecycle.
package app

import (
	"context"
	"sync"

	"github.com/balancer/solver-scripts/internal/solver"
	"github.com/balancer/solver-scripts/pkg/cache"
	"github.com/balancer/solver-scripts/pkg/config"
	"github.com/balancer/solver-scripts/pkg/healthprobe"
	"github.com/balancer/solver-scripts/pkg/httpserver"
	"go.uber.org/zap"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	solver        *solver.Solver
	storage       solver.Storage
	cache         cache.Cache
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Solver returns the wired solver, for commands that bypass the HTTP
// surface (offline replays).
func (a *App) Solver() *solver.Solver {
	return a.solver
}
