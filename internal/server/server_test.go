package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/bistro/internal/auth"
	"github.com/mmynk/bistro/internal/pricing"
	"github.com/mmynk/bistro/internal/seed"
	"github.com/mmynk/bistro/internal/storage/memory"
	"github.com/mmynk/bistro/pkg/api"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := seed.Menu(context.Background(), store, logger); err != nil {
		t.Fatalf("failed to seed menu: %v", err)
	}

	srv := New(Options{
		Store:      store,
		Pricing:    pricing.DefaultConfig(),
		JWT:        auth.NewJWTManager("test-secret-0123456789", time.Hour),
		Logger:     logger,
		Registry:   prometheus.NewRegistry(),
		CORSOrigin: "http://localhost:5173",
		BcryptCost: bcrypt.MinCost,
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return ts
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestHealthz(t *testing.T) {
	ts := setupTestServer(t)
	code, body := get(t, ts.URL+"/healthz")
	if code != http.StatusOK || strings.TrimSpace(body) != "ok" {
		t.Errorf("healthz = %d %q", code, body)
	}
}

func TestServicesAndMetrics(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	menu := api.NewMenuServiceClient(http.DefaultClient, ts.URL)
	resp, err := menu.ListMenuItems(ctx, connect.NewRequest(&api.ListMenuItemsRequest{Category: "drinks"}))
	if err != nil {
		t.Fatalf("ListMenuItems failed: %v", err)
	}
	if len(resp.Msg.Items) != 2 {
		t.Errorf("expected 2 drinks, got %d", len(resp.Msg.Items))
	}

	authClient := api.NewAuthServiceClient(http.DefaultClient, ts.URL)
	_, err = authClient.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Errorf("expected unauthenticated, got %v", err)
	}

	code, body := get(t, ts.URL+"/metrics")
	if code != http.StatusOK {
		t.Fatalf("metrics status = %d", code)
	}
	for _, want := range []string{
		`bistro_rpc_requests_total{code="ok",procedure="/bistro.v1.MenuService/ListMenuItems"} 1`,
		`bistro_rpc_requests_total{code="unauthenticated",procedure="/bistro.v1.AuthService/GetCurrentUser"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := setupTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/bistro.v1.CartService/AddItem", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}
	allowed := resp.Header.Get("Access-Control-Allow-Headers")
	for _, h := range []string{api.AuthorizationHeader, api.CartSessionHeader, "Connect-Protocol-Version"} {
		if !strings.Contains(allowed, h) {
			t.Errorf("allow headers %q missing %s", allowed, h)
		}
	}
}

func TestUnknownProcedure(t *testing.T) {
	ts := setupTestServer(t)
	code, _ := get(t, ts.URL+"/bistro.v1.MenuService/Nope")
	if code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", code)
	}
}
