package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newController(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/manage/computer/api/json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func runCheck(t *testing.T, args ...string) (string, int) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)

	out := stdout.String()
	require.Equal(t, 1, strings.Count(out, "\n"), "stdout must be exactly one line: %q", out)

	return strings.TrimSuffix(out, "\n"), code
}

func TestRun_Connected(t *testing.T) {
	srv := newController(t, http.StatusOK, `{"computer":[{"displayName":"node1","offline":false}]}`)

	out, code := runCheck(t, "-i", srv.URL, "-h", "node1")

	assert.Equal(t, "OK: node1 is connected to "+srv.URL, out)
	assert.Equal(t, 0, code)
}

func TestRun_TemporarilyOfflineCrit(t *testing.T) {
	srv := newController(t, http.StatusOK,
		`{"computer":[{"displayName":"node1","offline":true,"temporarilyOffline":true,"offlineCauseReason":"maintenance"}]}`)

	out, code := runCheck(t, "-i", srv.URL, "-h", "node1", "-t", "CRIT")

	assert.Contains(t, out, "CRITICAL")
	assert.Contains(t, out, "maintenance")
	assert.Equal(t, 2, code)
}

func TestRun_TemporarilyOfflineDefaultsToWarning(t *testing.T) {
	srv := newController(t, http.StatusOK,
		`{"computer":[{"displayName":"node1","offline":true,"temporarilyOffline":true,"offlineCauseReason":"maintenance"}]}`)

	out, code := runCheck(t, "-i", srv.URL, "-h", "node1", "-t", "sometimes")

	assert.True(t, strings.HasPrefix(out, "WARNING: "), out)
	assert.Equal(t, 1, code)
}

func TestRun_HostNotInCluster(t *testing.T) {
	srv := newController(t, http.StatusOK, `{"computer":[{"displayName":"node1","offline":false}]}`)

	out, code := runCheck(t, "-i", srv.URL, "-h", "node2")

	assert.Equal(t, "UNKNOWN: node2 is not a part of the "+srv.URL+" swarm cluster!", out)
	assert.Equal(t, 3, code)
}

func TestRun_FetchFailuresAreUnknown(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unauthorized", http.StatusUnauthorized, ""},
		{"empty body", http.StatusOK, ""},
		{"malformed json", http.StatusOK, `{"computer":`},
		{"no computer list", http.StatusOK, `{"jobs":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newController(t, tt.status, tt.body)

			out, code := runCheck(t, "-i", srv.URL, "-h", "node1")

			assert.True(t, strings.HasPrefix(out, "UNKNOWN: "), out)
			assert.Contains(t, out, srv.URL)
			assert.Equal(t, 3, code)
		})
	}
}

func TestRun_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	out, code := runCheck(t, "-i", url, "-h", "node1", "--timeout", "2")

	assert.True(t, strings.HasPrefix(out, "UNKNOWN: Unknown error while fetching "+url+" computers"), out)
	assert.Equal(t, 3, code)
}

func TestRun_MissingInstanceIsCritical(t *testing.T) {
	t.Setenv("CHECK_JENKINS_AGENT_INSTANCE", "")

	out, code := runCheck(t, "-h", "node1")

	assert.Equal(t, "CRITICAL: Please provide a valid Jenkins URL!", out)
	assert.Equal(t, 2, code)
}

func TestRun_InvalidFlagIsUnknown(t *testing.T) {
	out, code := runCheck(t, "--no-such-flag")

	assert.True(t, strings.HasPrefix(out, "UNKNOWN: "), out)
	assert.Equal(t, 3, code)
}

func TestRun_VerboseLogsGoToStderr(t *testing.T) {
	srv := newController(t, http.StatusOK, `{"computer":[{"displayName":"node1","offline":false}]}`)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-i", srv.URL, "-h", "node1", "-v", "--env", "dev"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Equal(t, "OK: node1 is connected to "+srv.URL+"\n", stdout.String())
	assert.Contains(t, stderr.String(), `"msg":"fetching agent roster"`)
}

func TestRun_BareInstanceIsCritical(t *testing.T) {
	t.Setenv("CHECK_JENKINS_AGENT_INSTANCE", "")

	out, code := runCheck(t, "-h", "node1", "-i")

	assert.Equal(t, "CRITICAL: Please provide a valid Jenkins URL!", out)
	assert.Equal(t, 2, code)
}

func TestRun_BareTempOfflineStateFallsBackToWarning(t *testing.T) {
	srv := newController(t, http.StatusOK,
		`{"computer":[{"displayName":"node1","offline":true,"temporarilyOffline":true,"offlineCauseReason":"maintenance"}]}`)

	out, code := runCheck(t, "-i", srv.URL, "-h", "node1", "-t")

	assert.Equal(t, "WARNING: node1 has been manually marked offline from "+srv.URL+" with reason: maintenance", out)
	assert.Equal(t, 1, code)
}

func TestRun_QuietWithoutVerbose(t *testing.T) {
	tests := []struct {
		name string
		srv  *httptest.Server
		args []string
	}{
		{
			name: "unauthorized",
			srv:  newController(t, http.StatusUnauthorized, ""),
			args: []string{"-h", "node1"},
		},
		{
			name: "unrecognized policy",
			srv: newController(t, http.StatusOK,
				`{"computer":[{"displayName":"node1","offline":true,"temporarilyOffline":true}]}`),
			args: []string{"-h", "node1", "-t", "sometimes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			args := append([]string{"-i", tt.srv.URL, "--env", "dev"}, tt.args...)

			code := run(context.Background(), args, &stdout, &stderr)

			assert.NotZero(t, code)
			assert.NotEmpty(t, stdout.String())
			assert.Empty(t, stderr.String())
		})
	}
}

func TestRun_HelpPrintsUsageToStderr(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"--help"}, &stdout, &stderr)

	assert.Equal(t, 3, code)
	assert.Equal(t, "UNKNOWN: usage requested\n", stdout.String())
	assert.Contains(t, stderr.String(), "--temp-offline-state")
}
