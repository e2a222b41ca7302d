package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/xdamman/stripe-mcp-fridge/internal/domain"
	"github.com/xdamman/stripe-mcp-fridge/internal/domain/entity"
)

// catalogSnapshot is one immutable cache generation: the whole definition
// list plus its fetch time. Refreshes swap the reference, never mutate.
type catalogSnapshot struct {
	tools     []entity.ToolDefinition
	fetchedAt time.Time
}

// ToolCatalog caches the tool list from the tool transport with a TTL.
// Readers load the current snapshot without locking; a refresh that fails
// leaves the previous snapshot in service (availability over freshness).
type ToolCatalog struct {
	transport domain.ToolTransport
	ttl       time.Duration
	logger    *slog.Logger

	snapshot atomic.Pointer[catalogSnapshot]
	now      func() time.Time
}

// NewToolCatalog builds a catalog over transport with the given TTL.
func NewToolCatalog(transport domain.ToolTransport, ttl time.Duration, logger *slog.Logger) *ToolCatalog {
	return &ToolCatalog{
		transport: transport,
		ttl:       ttl,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns the cached definitions when the cache is non-empty and
// younger than the TTL, unless forceRefresh is set. On a failed refresh the
// previous non-empty snapshot is returned unchanged; with no usable
// snapshot the failure propagates to the caller.
func (c *ToolCatalog) List(ctx context.Context, forceRefresh bool) ([]entity.ToolDefinition, error) {
	snap := c.snapshot.Load()
	if !forceRefresh && c.fresh(snap) {
		return snap.tools, nil
	}

	tools, err := c.transport.ListTools(ctx)
	if err != nil {
		if snap != nil && len(snap.tools) > 0 {
			c.logger.Warn("tool list refresh failed, serving stale catalog",
				"error", err,
				"age", c.now().Sub(snap.fetchedAt).String(),
				"tools", len(snap.tools))
			return snap.tools, nil
		}
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	c.snapshot.Store(&catalogSnapshot{tools: tools, fetchedAt: c.now()})
	c.logger.Debug("tool catalog refreshed", "tools", len(tools))
	return tools, nil
}

// Cached reports the current snapshot size and whether a snapshot exists,
// without touching the transport. Readiness reporting uses it so probes
// never trigger a connect.
func (c *ToolCatalog) Cached() (int, bool) {
	snap := c.snapshot.Load()
	if snap == nil {
		return 0, false
	}
	return len(snap.tools), true
}

// fresh reports whether snap can be served without a refresh. An empty
// snapshot is never fresh: it has no availability value, so the next read
// retries the transport.
func (c *ToolCatalog) fresh(snap *catalogSnapshot) bool {
	if snap == nil || len(snap.tools) == 0 {
		return false
	}
	return c.now().Sub(snap.fetchedAt) < c.ttl
}
