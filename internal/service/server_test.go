package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// testEnv is a running server with one typed client per service.
type testEnv struct {
	store       *sqlite.SQLiteStore
	auth        *apiconnect.AuthServiceClient
	groups      *apiconnect.GroupServiceClient
	expenses    *apiconnect.ExpenseServiceClient
	settlements *apiconnect.SettlementServiceClient
}

// setupTestServer starts all services behind the auth interceptor, backed by
// a fresh SQLite database. cacheTTL of zero disables the summary cache.
func setupTestServer(t *testing.T, cacheTTL time.Duration) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	cache := NewSummaryCache(cacheTTL)

	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager, slices.Concat(apiconnect.PublicProcedures, apiconnect.SessionProcedures)...),
		middleware.OptionalAuth(jwtManager, apiconnect.SessionProcedures...),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(
		NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, store, logger), interceptors))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(store, cache, nil), interceptors))
	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(store, cache), interceptors))
	mux.Handle(apiconnect.NewSettlementServiceHandler(NewSettlementService(store, cache), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{
		store:       store,
		auth:        apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		groups:      apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
		expenses:    apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL),
		settlements: apiconnect.NewSettlementServiceClient(http.DefaultClient, server.URL),
	}
}

// testUser is a registered account with its session token.
type testUser struct {
	ID    string
	Token string
}

func (env *testEnv) register(t *testing.T, name string) testUser {
	t.Helper()
	resp, err := env.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       name + "@example.com",
		DisplayName: name,
		Password:    "password",
	}))
	if err != nil {
		t.Fatalf("Register %s failed: %v", name, err)
	}
	return testUser{ID: resp.Msg.User.ID, Token: resp.Msg.Token}
}

// newGroup creates a group owned by owner and joins the others in order.
func (env *testEnv) newGroup(t *testing.T, owner testUser, others ...testUser) *api.Group {
	t.Helper()
	resp, err := env.groups.CreateGroup(context.Background(), as(owner, &api.CreateGroupRequest{Name: "Trip"}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	group := resp.Msg.Group
	for _, u := range others {
		joined, err := env.groups.JoinGroup(context.Background(), as(u, &api.JoinGroupRequest{InviteCode: group.InviteCode}))
		if err != nil {
			t.Fatalf("JoinGroup failed: %v", err)
		}
		group = joined.Msg.Group
	}
	return group
}

// as builds a request authenticated as u.
func as[T any](u testUser, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+u.Token)
	return req
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("code = %v, want %v (err: %v)", got, want, err)
	}
}
