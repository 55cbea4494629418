// Package diagnostics probes the connectivity between the console and the
// processing backend.
//
// Each probe is declared once in a fixed-order list with its own hint
// resolver. A diagnostic run executes every probe regardless of earlier
// failures, because the point is to surface all misconfigurations in one
// pass. A failing probe is a normal result, not an error.
package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/orderdesk/recon-console/internal/infrastructure/config"
)

// consoleOrigin is the origin the browser UI is served from, used to
// simulate the preflight requests the browser would issue.
const consoleOrigin = "http://localhost:3000"

// Result is the verdict of a single probe step.
type Result struct {
	Step    string `json:"step"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Fix     string `json:"fix,omitempty"`
}

// probeEnv carries everything a probe needs to run.
type probeEnv struct {
	baseURL string
	client  *http.Client
}

// probe declares one diagnostic step. run returns a human-readable message
// on success and an error on failure; hint maps recognized failures to a
// remediation suggestion and returns "" for everything else.
type probe struct {
	name string
	cors bool
	run  func(ctx context.Context, env *probeEnv) (string, error)
	hint func(err error) string
}

// probes is the fixed declaration order of the full diagnostic.
var probes = []probe{
	{
		name: "reachability",
		run:  probeReachability,
		hint: transportHint,
	},
	{
		name: "cors_preflight",
		cors: true,
		run:  probeCORSPreflight,
		hint: corsHint,
	},
	{
		name: "cors_headers",
		cors: true,
		run:  probeCORSHeaders,
		hint: corsHint,
	},
	{
		name: "shops_endpoint",
		run:  probeShopsEndpoint,
		hint: endpointHint,
	},
	{
		name: "files_endpoint",
		run:  probeFilesEndpoint,
		hint: endpointHint,
	},
	{
		name: "auth_requirement",
		run:  probeAuthRequirement,
		hint: authHint,
	},
}

// Runner executes diagnostic probes against the configured backend.
type Runner struct {
	store  *config.Store
	logger *slog.Logger
}

// NewRunner creates a diagnostics runner reading the backend address from
// the given configuration store.
func NewRunner(store *config.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		store:  store,
		logger: logger.With(slog.String("component", "diagnostics")),
	}
}

// RunFull executes every probe in declaration order and returns the
// ordered report. Probes never short-circuit each other.
func (r *Runner) RunFull(ctx context.Context) []Result {
	return r.run(ctx, false)
}

// DetectCORSIssues executes only the cross-origin probes.
func (r *Runner) DetectCORSIssues(ctx context.Context) []Result {
	return r.run(ctx, true)
}

func (r *Runner) run(ctx context.Context, corsOnly bool) []Result {
	cfg := r.store.Get().API
	env := &probeEnv{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: time.Duration(cfg.TimeoutMs) * time.Millisecond},
	}

	results := make([]Result, 0, len(probes))
	for _, p := range probes {
		if corsOnly && !p.cors {
			continue
		}

		message, err := p.run(ctx, env)
		result := Result{Step: p.name, Success: err == nil, Message: message}
		if err != nil {
			result.Message = err.Error()
			result.Fix = p.hint(err)
		}

		r.logger.Info("diagnostic probe finished",
			slog.String("step", p.name),
			slog.Bool("success", result.Success),
		)
		results = append(results, result)
	}
	return results
}

func probeReachability(ctx context.Context, env *probeEnv) (string, error) {
	resp, err := get(ctx, env, env.baseURL+"/", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	return fmt.Sprintf("backend responded with status %d", resp.StatusCode), nil
}

func probeCORSPreflight(ctx context.Context, env *probeEnv) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodOptions, env.baseURL+"/data/process", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Origin", consoleOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	resp, err := env.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	allowOrigin := resp.Header.Get("Access-Control-Allow-Origin")
	if allowOrigin == "" {
		return "", errMissingCORSHeaders
	}
	if allowOrigin != "*" && allowOrigin != consoleOrigin {
		return "", fmt.Errorf("%w: Access-Control-Allow-Origin is %q, console origin is %q",
			errOriginNotAllowed, allowOrigin, consoleOrigin)
	}
	return fmt.Sprintf("preflight accepted, allowed origin %q", allowOrigin), nil
}

func probeCORSHeaders(ctx context.Context, env *probeEnv) (string, error) {
	resp, err := get(ctx, env, env.baseURL+"/files/list", map[string]string{"Origin": consoleOrigin})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.Header.Get("Access-Control-Allow-Origin") == "" {
		return "", errMissingCORSHeaders
	}
	return "actual responses carry CORS headers", nil
}

func probeShopsEndpoint(ctx context.Context, env *probeEnv) (string, error) {
	return probeEndpoint(ctx, env, "/data/shops")
}

func probeFilesEndpoint(ctx context.Context, env *probeEnv) (string, error) {
	return probeEndpoint(ctx, env, "/files/list")
}

// probeEndpoint verifies an endpoint exists. A 400 is a pass: the shops
// endpoint legitimately rejects calls before an upload has happened.
func probeEndpoint(ctx context.Context, env *probeEnv, path string) (string, error) {
	resp, err := get(ctx, env, env.baseURL+path, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusMethodNotAllowed:
		return "", fmt.Errorf("%w: %s returned status %d", errEndpointMissing, path, resp.StatusCode)
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	default:
		return fmt.Sprintf("%s responded with status %d", path, resp.StatusCode), nil
	}
}

func probeAuthRequirement(ctx context.Context, env *probeEnv) (string, error) {
	resp, err := get(ctx, env, env.baseURL+"/data/shops", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("%w: status %d", errAuthRequired, resp.StatusCode)
	}
	return "no authentication required", nil
}

func get(ctx context.Context, env *probeEnv, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return env.client.Do(req)
}

// Recognized failure patterns. Anything else gets no remediation hint.
var (
	errMissingCORSHeaders = errors.New("response carries no Access-Control-Allow-Origin header")
	errOriginNotAllowed   = errors.New("console origin is not allowed")
	errEndpointMissing    = errors.New("endpoint not found")
	errAuthRequired       = errors.New("backend requires authentication")
)

func transportHint(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "the backend did not answer in time; raise api.timeout_ms or check the service load"
	}
	if strings.Contains(err.Error(), "connection refused") || errors.As(err, &netErr) {
		return "the backend is unreachable; check api.base_url and that the service is running"
	}
	return ""
}

func corsHint(err error) string {
	switch {
	case errors.Is(err, errMissingCORSHeaders):
		return "enable CORS on the backend and allow the console origin " + consoleOrigin
	case errors.Is(err, errOriginNotAllowed):
		return "add " + consoleOrigin + " to the backend's allowed origins"
	default:
		return transportHint(err)
	}
}

func endpointHint(err error) string {
	if errors.Is(err, errEndpointMissing) {
		return "the configured base URL does not point at the processing backend; check api.base_url"
	}
	return transportHint(err)
}

func authHint(err error) string {
	if errors.Is(err, errAuthRequired) {
		return "the backend rejected the anonymous call; enable api.credentials and log in first"
	}
	return transportHint(err)
}
