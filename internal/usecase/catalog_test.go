package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xdamman/stripe-mcp-fridge/internal/domain/entity"
)

func catalogTools(names ...string) []entity.ToolDefinition {
	tools := make([]entity.ToolDefinition, 0, len(names))
	for _, n := range names {
		tools = append(tools, entity.ToolDefinition{Name: n})
	}
	return tools
}

func TestCatalogCachesWithinTTL(t *testing.T) {
	transport := &fakeTransport{
		listFunc: func(ctx context.Context) ([]entity.ToolDefinition, error) {
			return catalogTools("retrieve_balance", "create_customer"), nil
		},
	}

	current := time.Now()
	catalog := NewToolCatalog(transport, 5*time.Minute, testLogger())
	catalog.now = func() time.Time { return current }

	tools, err := catalog.List(context.Background(), false)
	if err != nil {
		t.Fatalf("cold List failed: %v", err)
	}
	if len(tools) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(tools))
	}

	// Within the TTL the transport must not be touched again.
	current = current.Add(4 * time.Minute)
	if _, err := catalog.List(context.Background(), false); err != nil {
		t.Fatalf("warm List failed: %v", err)
	}
	if transport.listCalls != 1 {
		t.Errorf("transport hit %d times within TTL, want 1", transport.listCalls)
	}

	// Past the TTL it refetches.
	current = current.Add(2 * time.Minute)
	if _, err := catalog.List(context.Background(), false); err != nil {
		t.Fatalf("expired List failed: %v", err)
	}
	if transport.listCalls != 2 {
		t.Errorf("transport hit %d times after expiry, want 2", transport.listCalls)
	}
}

func TestCatalogForceRefreshBypassesCache(t *testing.T) {
	transport := &fakeTransport{
		listFunc: func(ctx context.Context) ([]entity.ToolDefinition, error) {
			return catalogTools("retrieve_balance"), nil
		},
	}
	catalog := NewToolCatalog(transport, time.Hour, testLogger())

	if _, err := catalog.List(context.Background(), false); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if _, err := catalog.List(context.Background(), true); err != nil {
		t.Fatalf("forced List failed: %v", err)
	}
	if transport.listCalls != 2 {
		t.Errorf("transport hit %d times, want 2 (force refresh must bypass)", transport.listCalls)
	}
}

func TestCatalogServesStaleOnRefreshFailure(t *testing.T) {
	failing := false
	transport := &fakeTransport{
		listFunc: func(ctx context.Context) ([]entity.ToolDefinition, error) {
			if failing {
				return nil, errors.New("tool server down")
			}
			return catalogTools("retrieve_balance"), nil
		},
	}

	current := time.Now()
	catalog := NewToolCatalog(transport, time.Minute, testLogger())
	catalog.now = func() time.Time { return current }

	if _, err := catalog.List(context.Background(), false); err != nil {
		t.Fatalf("cold List failed: %v", err)
	}

	// The refresh fails after expiry; the previous list stays in service.
	failing = true
	current = current.Add(2 * time.Minute)
	tools, err := catalog.List(context.Background(), false)
	if err != nil {
		t.Fatalf("expected stale catalog, got error: %v", err)
	}
	if len(tools) != 1 || tools[0].Name != "retrieve_balance" {
		t.Errorf("stale tools = %v, want the previous snapshot", tools)
	}
}

func TestCatalogColdFailurePropagates(t *testing.T) {
	transport := &fakeTransport{
		listFunc: func(ctx context.Context) ([]entity.ToolDefinition, error) {
			return nil, errors.New("connection refused")
		},
	}
	catalog := NewToolCatalog(transport, time.Minute, testLogger())

	if _, err := catalog.List(context.Background(), false); err == nil {
		t.Fatal("expected the cold-cache failure to propagate")
	}
	if _, ok := catalog.Cached(); ok {
		t.Error("no snapshot should be recorded after a failed cold fetch")
	}
}

func TestCatalogEmptySnapshotIsNeverFresh(t *testing.T) {
	transport := &fakeTransport{
		listFunc: func(ctx context.Context) ([]entity.ToolDefinition, error) {
			return nil, nil
		},
	}
	catalog := NewToolCatalog(transport, time.Hour, testLogger())

	if _, err := catalog.List(context.Background(), false); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if _, err := catalog.List(context.Background(), false); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	// An empty list has no availability value, so every read retries.
	if transport.listCalls != 2 {
		t.Errorf("transport hit %d times, want 2", transport.listCalls)
	}
}

func TestCatalogCached(t *testing.T) {
	transport := &fakeTransport{
		listFunc: func(ctx context.Context) ([]entity.ToolDefinition, error) {
			return catalogTools("a", "b", "c"), nil
		},
	}
	catalog := NewToolCatalog(transport, time.Hour, testLogger())

	if n, ok := catalog.Cached(); ok || n != 0 {
		t.Errorf("Cached() before any fetch = (%d, %v), want (0, false)", n, ok)
	}

	if _, err := catalog.List(context.Background(), false); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	n, ok := catalog.Cached()
	if !ok || n != 3 {
		t.Errorf("Cached() = (%d, %v), want (3, true)", n, ok)
	}
	if transport.listCalls != 1 {
		t.Errorf("Cached() must not touch the transport, hits = %d", transport.listCalls)
	}
}
