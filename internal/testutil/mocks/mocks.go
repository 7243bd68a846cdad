// Package mocks provides in-memory doubles for the solver's external
// collaborators. It lives apart from the fixtures so packages below
// solution can use testutil without an import cycle.
package mocks

import (
	"context"
	"sync"

	"github.com/balancer/solver-scripts/internal/fetcher"
	"github.com/balancer/solver-scripts/internal/solution"
)

// MockFetcher is an in-memory liquidity service client.
type MockFetcher struct {
	mu       sync.Mutex
	Response *fetcher.Response
	Err      error
	Requests []*fetcher.Request
}

// Fetch records the request and returns the canned response or error.
func (m *MockFetcher) Fetch(ctx context.Context, req *fetcher.Request) (*fetcher.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

// FetchCount returns the number of fetches issued so far.
func (m *MockFetcher) FetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// MockStorage records solve archives in memory.
type MockStorage struct {
	mu       sync.Mutex
	Recorded map[string]*solution.Response
	Err      error
	closed   bool
}

// NewMockStorage creates a new mock storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{Recorded: make(map[string]*solution.Response)}
}

// RecordSolve stores the response under the auction id.
func (m *MockStorage) RecordSolve(ctx context.Context, auctionID string, resp *solution.Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Recorded[auctionID] = resp
	return nil
}

// Close marks the storage closed.
func (m *MockStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockStorage) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
