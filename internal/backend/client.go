// Package backend is the HTTP client for the external processing service.
//
// The service owns all real computation: spreadsheet parsing, shop/product
// matching, cost and margin calculation, export file generation. This
// package only speaks its wire contract and classifies failures into the
// console's error taxonomy.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/orderdesk/recon-console/internal/infrastructure/config"
)

// Client talks to the processing backend. The configuration store is read
// on every call, so base URL, timeout and credential changes take effect
// immediately without rebuilding the client.
type Client struct {
	store  *config.Store
	jar    http.CookieJar
	logger *slog.Logger
}

// serverErrorPayload matches the error body shape of the backend
// ({"detail": "..."} or {"message": "..."}).
type serverErrorPayload struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// NewClient creates a backend client bound to the given configuration store.
func NewClient(store *config.Store, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	jar, _ := cookiejar.New(nil)
	return &Client{
		store:  store,
		jar:    jar,
		logger: logger.With(slog.String("component", "backend")),
	}
}

// UploadFiles sends the product and order spreadsheets as multipart form
// data to POST /upload/files.
func (c *Client) UploadFiles(ctx context.Context, productPath, orderPath string) (*UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for field, path := range map[string]string{
		"product_file": productPath,
		"order_file":   orderPath,
	} {
		if err := attachFile(writer, field, path); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, &UnknownError{Err: err}
	}

	var result UploadResult
	if err := c.do(ctx, http.MethodPost, "/upload/files", writer.FormDataContentType(), &body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListShops returns the shop names discovered in the uploaded order ledger.
func (c *Client) ListShops(ctx context.Context) (*ShopList, error) {
	var result ShopList
	if err := c.do(ctx, http.MethodGet, "/data/shops", "", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ProcessData triggers server-side matching and cost computation for the
// selected shops. An empty selection is sent as null, meaning all shops.
func (c *Client) ProcessData(ctx context.Context, opts ProcessOptions) (*ProcessResult, error) {
	var result ProcessResult
	if err := c.postJSON(ctx, "/data/process", normalizeOptions(opts), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ExportData asks the backend to generate an export file for the given
// selection and returns the download reference.
func (c *Client) ExportData(ctx context.Context, opts ProcessOptions) (*ExportResult, error) {
	var result ExportResult
	if err := c.postJSON(ctx, "/data/export", normalizeOptions(opts), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListFiles returns the files currently stored on the backend.
func (c *Client) ListFiles(ctx context.Context) (*FileList, error) {
	var result FileList
	if err := c.do(ctx, http.MethodGet, "/files/list", "", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ClearFiles asks the backend to release all uploaded and exported files.
func (c *Client) ClearFiles(ctx context.Context) (*ClearResult, error) {
	var result ClearResult
	if err := c.do(ctx, http.MethodDelete, "/files/clear", "", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DownloadExport streams a generated export file into w and returns the
// number of bytes copied.
func (c *Client) DownloadExport(ctx context.Context, filename string, w io.Writer) (int64, error) {
	if filename == "" {
		return 0, NewValidationError("export filename is required")
	}

	resp, err := c.send(ctx, http.MethodGet, "/download/"+url.PathEscape(filename), "", nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, readServerError(resp)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &NetworkError{Op: "download " + filename, Err: err}
	}
	return n, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return &UnknownError{Err: err}
	}
	return c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(data), out)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	resp, err := c.send(ctx, method, path, contentType, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readServerError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &UnknownError{Err: fmt.Errorf("failed to decode %s response: %w", path, err)}
		}
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	cfg := c.store.Get().API
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(cfg.BaseURL, "/")+path, body)
	if err != nil {
		return nil, &UnknownError{Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	// The client is rebuilt per call so configuration changes (timeout,
	// credentials) apply immediately. Cookies survive in the shared jar.
	httpClient := &http.Client{Timeout: timeout}
	if cfg.Credentials {
		httpClient.Jar = c.jar
	}

	op := method + " " + path
	c.logger.Debug("backend request", slog.String("op", op), slog.String("base_url", cfg.BaseURL))

	resp, err := httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			// Keep the original error in the chain so NetworkError.Timeout()
			// and the verbatim transport message both survive.
			return nil, &NetworkError{Op: op, Err: fmt.Errorf("request timed out after %v: %w", timeout, err)}
		}
		return nil, &NetworkError{Op: op, Err: err}
	}
	return resp, nil
}

// isTimeout recognizes both client-side timeouts and context deadlines.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// readServerError consumes an error response body and maps it onto a
// ServerError carrying the server's own message text.
func readServerError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var payload serverErrorPayload
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Detail != "" {
			return &ServerError{StatusCode: resp.StatusCode, Message: payload.Detail}
		}
		if payload.Message != "" {
			return &ServerError{StatusCode: resp.StatusCode, Message: payload.Message}
		}
	}
	return &ServerError{StatusCode: resp.StatusCode}
}

// normalizeOptions encodes an empty selection as null so the backend reads
// it as "all shops". The field must be present in the request body, never
// omitted.
func normalizeOptions(opts ProcessOptions) ProcessOptions {
	if len(opts.SelectedShops) == 0 {
		opts.SelectedShops = nil
	}
	return opts
}

func attachFile(writer *multipart.Writer, field, path string) error {
	if path == "" {
		return NewValidationError("%s is required", field)
	}
	f, err := os.Open(path)
	if err != nil {
		return NewValidationError("cannot open %s: %v", field, err)
	}
	defer f.Close()

	part, err := writer.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return &UnknownError{Err: err}
	}
	if _, err := io.Copy(part, f); err != nil {
		return &UnknownError{Err: err}
	}
	return nil
}
