package provider

import (
	"context"
	"testing"

	"github.com/seenimoa/fredseries/pkg/models"
)

// mockFetcher implements the Fetcher interface for testing.
type mockFetcher struct {
	name string
}

func (m *mockFetcher) Info() Info { return Info{Name: m.name, Description: "mock " + m.name} }

func (m *mockFetcher) Fetch(_ context.Context, seriesID string, _, _ *models.Date) (string, error) {
	return "date,value\n2020-01-01,1\n", nil
}

// --- Registry Tests ---

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(&mockFetcher{name: "test-provider"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := reg.Get("test-provider")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Info().Name != "test-provider" {
		t.Errorf("expected name test-provider, got %s", got.Info().Name)
	}
}

func TestRegistryGetNotFound(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("nonexistent")
	if err == nil {
		t.Fatal("expected error for nonexistent provider")
	}
	if _, ok := err.(*ErrProviderNotFound); !ok {
		t.Errorf("expected ErrProviderNotFound, got %T", err)
	}
}

func TestRegistryRejectsEmptyName(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(&mockFetcher{}); err == nil {
		t.Error("expected error for empty provider name")
	}
}

func TestRegistryDefault(t *testing.T) {
	reg := NewRegistry()
	if reg.Default() != "" {
		t.Errorf("empty registry default: got %q", reg.Default())
	}

	_ = reg.Register(&mockFetcher{name: "fred"})
	_ = reg.Register(&mockFetcher{name: "local"})
	if reg.Default() != "fred" {
		t.Errorf("default: got %q, want fred", reg.Default())
	}

	f, err := reg.Get("")
	if err != nil {
		t.Fatalf("Get(default): %v", err)
	}
	if f.Info().Name != "fred" {
		t.Errorf("Get(\"\") returned %s", f.Info().Name)
	}

	if err := reg.SetDefault("local"); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	if reg.Default() != "local" {
		t.Errorf("default after SetDefault: got %q", reg.Default())
	}
	if err := reg.SetDefault("missing"); err == nil {
		t.Error("SetDefault on unknown provider should fail")
	}

	reg.Unregister("local")
	if reg.Default() != "fred" {
		t.Errorf("default after Unregister: got %q, want fred", reg.Default())
	}
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(&mockFetcher{name: "zeta"})
	_ = reg.Register(&mockFetcher{name: "alpha"})

	infos := reg.List()
	if len(infos) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(infos))
	}
	if infos[0].Name != "alpha" || infos[1].Name != "zeta" {
		t.Errorf("List not sorted: %v", infos)
	}
}

func TestFetcherFunc(t *testing.T) {
	var gotID string
	f := FetcherFunc(func(_ context.Context, id string, _, _ *models.Date) (string, error) {
		gotID = id
		return "payload", nil
	})
	out, err := f.Fetch(context.Background(), "DTB3", nil, nil)
	if err != nil || out != "payload" || gotID != "DTB3" {
		t.Errorf("FetcherFunc.Fetch = %q, %v (id %q)", out, err, gotID)
	}
}
