package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Veraticus/frontdesk/internal/api"
	"github.com/Veraticus/frontdesk/internal/api/fake"
	"github.com/Veraticus/frontdesk/internal/model"
)

// Secret signs the tokens of a TestBackend.
var Secret = []byte("frontdesk-test-secret")

// TestBackend is the demo backend served over a local HTTP server with a
// client authenticated as its owner.
type TestBackend struct {
	Client *api.Client
	Server *fake.Server
	Store  *fake.Store
	URL    string
}

// BackendOption adjusts the store before it is served.
type BackendOption func(*fake.Store)

// WithoutDemoData leaves the store empty.
func WithoutDemoData() BackendOption {
	return func(*fake.Store) {}
}

// SetupBackend serves a store seeded with the demo studio around now. When
// options are given they replace the demo seeding.
func SetupBackend(t *testing.T, now time.Time, opts ...BackendOption) *TestBackend {
	t.Helper()

	store := fake.NewStore(now.Location())
	if len(opts) == 0 {
		fake.SeedDemo(store, now)
	}
	for _, opt := range opts {
		opt(store)
	}

	server := fake.NewServer(store, Secret)
	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)

	token, err := fake.Token(Secret, model.RoleOwner, "owner", fake.DemoDowntown, time.Hour)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	client, err := api.New(api.Options{
		BaseURL:    ts.URL,
		Token:      token,
		Timeout:    5 * time.Second,
		Retries:    1,
		Location:   now.Location(),
		HTTPClient: ts.Client(),
	})
	if err != nil {
		t.Fatalf("failed to create api client: %v", err)
	}

	return &TestBackend{Client: client, Server: server, Store: store, URL: ts.URL}
}
