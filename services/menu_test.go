package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cafe-pos/clients"
	"cafe-pos/config"
	"cafe-pos/models"
)

type fakeMenu struct {
	items []models.MenuItem
	err   error
	calls int
}

func (f *fakeMenu) FetchMenu(ctx context.Context) ([]models.MenuItem, error) {
	f.calls++
	return f.items, f.err
}

func TestMenuCatalog_States(t *testing.T) {
	drink := item("D", 8000)
	drink.Category = models.CategoryDrink
	src := &fakeMenu{items: []models.MenuItem{item("A", 15000), drink}}
	cat := NewMenuCatalog(src)

	if cat.State() != CatalogNotLoaded {
		t.Errorf("initial state = %s", cat.State())
	}

	items, err := cat.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 2 || cat.State() != CatalogReady {
		t.Errorf("items = %d, state = %s", len(items), cat.State())
	}
	if got := cat.ByCategory(models.CategoryDrink); len(got) != 1 || got[0].ID != "D" {
		t.Errorf("ByCategory(drink) = %+v", got)
	}
	if _, ok := cat.Lookup("A"); !ok {
		t.Error("Lookup(A) not found")
	}

	src.err = clients.ErrTransport
	if _, err := cat.Fetch(context.Background()); !errors.Is(err, clients.ErrTransport) {
		t.Errorf("Fetch err = %v", err)
	}
	if cat.State() != CatalogFailed {
		t.Errorf("state after failure = %s, want failed", cat.State())
	}
	if len(cat.Items()) != 2 {
		t.Error("previous items dropped on failure")
	}

	src.err = nil
	src.items = nil
	if _, err := cat.Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}
	if cat.State() != CatalogEmpty || cat.LastError() != nil {
		t.Errorf("state = %s, lastErr = %v; want empty, nil", cat.State(), cat.LastError())
	}
	if src.calls != 3 {
		t.Errorf("calls = %d, want 3", src.calls)
	}
}

func TestMenuCatalog_FailedEnvelopeIsNotEmptyMenu(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"failed","message":"maker not found","data":[]}`))
	}))
	defer srv.Close()
	api := clients.NewClient(config.APIConfig{BaseURL: srv.URL, Timeout: 2 * time.Second}).
		WithTokens(NewSession(staticCredentials{KeyToken: "tok"}, 1))

	cat := NewMenuCatalog(api)
	_, err := cat.Fetch(context.Background())
	if err == nil {
		t.Fatal("Fetch succeeded on a failed envelope")
	}
	if cat.State() != CatalogFailed {
		t.Errorf("state = %s, want failed", cat.State())
	}
	if got := UserMessage(err); got != "maker not found" {
		t.Errorf("UserMessage = %q", got)
	}
}

type staticCredentials map[string]string

func (s staticCredentials) Get(ctx context.Context, owner int64, key string) (string, bool, error) {
	v, ok := s[key]
	return v, ok, nil
}

func (s staticCredentials) Set(ctx context.Context, owner int64, values map[string]string) error {
	return nil
}

func (s staticCredentials) Delete(ctx context.Context, owner int64) error { return nil }
