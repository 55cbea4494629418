package diagnostics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/recon-console/internal/infrastructure/config"
)

func newRunner(t *testing.T, baseURL string) *Runner {
	t.Helper()
	store, err := config.NewStore("")
	require.NoError(t, err)
	timeout := 2000
	_, err = store.UpdateAPI(config.APIPatch{BaseURL: &baseURL, TimeoutMs: &timeout})
	require.NoError(t, err)
	return NewRunner(store, nil)
}

// healthyBackend mimics the processing backend with CORS enabled for the
// console origin.
func healthyBackend() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		switch r.URL.Path {
		case "/data/shops":
			// No upload yet; the backend answers 400 with a hint.
			http.Error(w, `{"detail":"please upload files first"}`, http.StatusBadRequest)
		case "/files/list":
			w.Write([]byte(`{"files":[],"total":0}`))
		default:
			w.Write([]byte(`{"message":"ok"}`))
		}
	})
}

func stepNames(results []Result) []string {
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Step)
	}
	return names
}

func TestRunFull_HealthyBackend(t *testing.T) {
	server := httptest.NewServer(healthyBackend())
	defer server.Close()

	results := newRunner(t, server.URL).RunFull(context.Background())

	assert.Equal(t, []string{
		"reachability",
		"cors_preflight",
		"cors_headers",
		"shops_endpoint",
		"files_endpoint",
		"auth_requirement",
	}, stepNames(results))

	for _, r := range results {
		assert.True(t, r.Success, "step %s: %s", r.Step, r.Message)
		assert.Empty(t, r.Fix)
	}
}

func TestRunFull_UnreachableBackend(t *testing.T) {
	results := newRunner(t, "http://127.0.0.1:1").RunFull(context.Background())

	require.NotEmpty(t, results)
	for _, r := range results {
		assert.False(t, r.Success, "step %s should fail", r.Step)
	}
	assert.Equal(t, "reachability", results[0].Step)
	assert.NotEmpty(t, results[0].Fix)
}

func TestRunFull_NoShortCircuit(t *testing.T) {
	// Backend answers but without any CORS support; later probes must
	// still run and pass.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	results := newRunner(t, server.URL).RunFull(context.Background())
	require.Len(t, results, 6)

	byStep := make(map[string]Result)
	for _, r := range results {
		byStep[r.Step] = r
	}

	assert.True(t, byStep["reachability"].Success)
	assert.False(t, byStep["cors_preflight"].Success)
	assert.Contains(t, byStep["cors_preflight"].Fix, "CORS")
	assert.False(t, byStep["cors_headers"].Success)
	assert.True(t, byStep["shops_endpoint"].Success)
	assert.True(t, byStep["files_endpoint"].Success)
	assert.True(t, byStep["auth_requirement"].Success)
}

func TestRunFull_AuthRequired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/data/shops" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	results := newRunner(t, server.URL).RunFull(context.Background())

	byStep := make(map[string]Result)
	for _, r := range results {
		byStep[r.Step] = r
	}

	auth := byStep["auth_requirement"]
	assert.False(t, auth.Success)
	assert.Contains(t, auth.Fix, "credentials")
}

func TestDetectCORSIssues(t *testing.T) {
	server := httptest.NewServer(healthyBackend())
	defer server.Close()

	results := newRunner(t, server.URL).DetectCORSIssues(context.Background())

	assert.Equal(t, []string{"cors_preflight", "cors_headers"}, stepNames(results))
	for _, r := range results {
		assert.True(t, r.Success)
	}
}

func TestNewRunDiscardsPreviousResults(t *testing.T) {
	server := httptest.NewServer(healthyBackend())
	defer server.Close()

	runner := newRunner(t, server.URL)
	first := runner.RunFull(context.Background())
	second := runner.RunFull(context.Background())

	// Each run builds a fresh report; mutating one must not affect the other.
	first[0].Message = "mutated"
	assert.NotEqual(t, "mutated", second[0].Message)
	assert.Len(t, second, len(first))
}
