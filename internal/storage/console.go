// Package storage archives solve results so they can be replayed and
// analyzed offline, mirroring the coordinator's own auction archive.
package storage

import (
	"context"

	"github.com/balancer/solver-scripts/internal/solution"
	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// ConsoleStorage implements the solver Storage interface by logging
// solve results. Default backend for local runs.
type ConsoleStorage struct {
	logger *zap.Logger
}

// NewConsoleStorage creates a new console storage.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	logger.Info("console-storage-initialized")
	return &ConsoleStorage{
		logger: logger,
	}
}

// RecordSolve logs the solve result as a single structured event.
func (c *ConsoleStorage) RecordSolve(ctx context.Context, auctionID string, resp *solution.Response) error {
	payload, err := gojson.Marshal(resp)
	if err != nil {
		return err
	}

	c.logger.Info("solve-recorded",
		zap.String("auction-id", auctionID),
		zap.Int("solution-count", len(resp.Solutions)),
		zap.ByteString("solutions", payload))

	return nil
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}
