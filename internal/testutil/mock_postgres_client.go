package testutil

import (
	"context"

	"github.com/milkround/milkround/internal/logger"
	"github.com/milkround/milkround/internal/postgres"
)

var _ postgres.IClient = (*MockPostgresClient)(nil)

// MockPostgresClient is a mock implementation of postgres client for
// testing. WithTx runs the function directly; the in-memory stores are
// not transactional. AcquireLock is a no-op since suite tests are
// single-threaded.
type MockPostgresClient struct {
	logger *logger.Logger
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(logger *logger.Logger) postgres.IClient {
	return &MockPostgresClient{logger: logger}
}

// WithTx executes the given function without a real transaction
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// AcquireLock is a no-op in tests
func (c *MockPostgresClient) AcquireLock(ctx context.Context, key string) error {
	return nil
}
