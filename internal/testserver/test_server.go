package testserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ganot/hrv-ingest/internal/app"
	"github.com/ganot/hrv-ingest/internal/config"
	"github.com/ganot/hrv-ingest/internal/mcp"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// UserID is the participant of the session written by WriteSessionTree.
const UserID = 1013

type TestServer struct {
	Server *httptest.Server
	App    *app.App
	Token  string
	// Root is the ingest root; it starts empty.
	Root string
}

// New starts the HTTP stack over a fresh sqlite file with bearer auth and
// metrics enabled.
func New(t *testing.T, token string) *TestServer {
	t.Helper()

	cfg := config.Default()
	cfg.DB.Path = filepath.Join(t.TempDir(), "hrv.db")
	cfg.Auth.Enabled = true
	cfg.Auth.Tokens = map[string]string{"test": token}
	cfg.Ingest.Root = t.TempDir()
	cfg.Metrics.Enabled = true

	a, err := app.Open(context.Background(), cfg, nil)
	require.NoError(t, err)

	server := httptest.NewServer(a.HTTPHandler(mcp.NewServer(a.MCPConfig())))
	t.Cleanup(func() {
		server.Close()
		_ = a.Close()
	})

	return &TestServer{Server: server, App: a, Token: token, Root: cfg.Ingest.Root}
}

// Connect opens an MCP client session that sends token as bearer token.
// An empty token sends no Authorization header.
func (ts *TestServer) Connect(t *testing.T, token string) *sdkmcp.ClientSession {
	t.Helper()

	httpClient := &http.Client{Transport: bearer{token: token, next: http.DefaultTransport}}
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: httpClient,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

type bearer struct {
	token string
	next  http.RoundTripper
}

func (b bearer) RoundTrip(r *http.Request) (*http.Response, error) {
	if b.token == "" {
		return b.next.RoundTrip(r)
	}
	r = r.Clone(r.Context())
	r.Header.Set("Authorization", "Bearer "+b.token)
	return b.next.RoundTrip(r)
}

// WriteSessionTree lays out one complete session for UserID below root and
// returns the session folder.
func WriteSessionTree(t *testing.T, root string) string {
	t.Helper()
	dir := filepath.Join(root, "1013", "2024-01-01")
	files := map[string]string{
		filepath.Join(dir, "örnek1013_20240101.txt"): "2024-01-01 08:00:00\n800\n820\n790\n810\n805\n795\n830\n780\n800\n815\n",
		filepath.Join(dir, "vitals.txt"): "Vital analysis report\nState of health\nYour score: 7.5 out of 10\n" +
			"You are 12 % below average\nYour current biological age is 41 years\nwhich is 5 % older than your calendar age\n",
		filepath.Join(dir, "vital_overview.txt"):        "Vital analysis overview\nGeneral vitality index 7,8\n",
		filepath.Join(dir, "activity.csv"):              "#,Type,Start,End\n1,Rest,08:00,08:00:05\n",
		filepath.Join(dir, "session.yaml"):              "doctor_comment: follow up\n",
		filepath.Join(root, "1013", "participant.yaml"): "age: \"37\"\ngender: erkek\n",
	}
	for path, content := range files {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}
