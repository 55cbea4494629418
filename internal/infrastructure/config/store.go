package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store holds the live configuration and persists changes to a YAML file.
//
// Updates are applied section by section through patch structs whose fields
// are pointers: only non-nil fields are written, so a partial update never
// clears sibling fields. Values are not validated; a negative timeout is
// accepted as-is.
//
// The store is safe for concurrent readers and writers. It is handed
// explicitly to every component that needs configuration; there is no
// package-level global.
type Store struct {
	mu   sync.RWMutex
	path string
	cfg  Config
}

// APIPatch is a partial update for the api section.
type APIPatch struct {
	BaseURL     *string `json:"base_url"`
	TimeoutMs   *int    `json:"timeout_ms"`
	Credentials *bool   `json:"credentials"`
}

// ProcessingPatch is a partial update for the processing section.
type ProcessingPatch struct {
	IncludeClosedOrders  *bool    `json:"include_closed_orders"`
	IncludeOfflineOrders *bool    `json:"include_offline_orders"`
	MaxFileSize          *int64   `json:"max_file_size"`
	SupportedFormats     []string `json:"supported_formats"`
}

// UIPatch is a partial update for the ui section.
type UIPatch struct {
	Theme    *string `json:"theme"`
	Language *string `json:"language"`
	PageSize *int    `json:"page_size"`
}

// ExportPatch is a partial update for the export section.
type ExportPatch struct {
	DefaultFormat  *string `json:"default_format"`
	IncludeHeaders *bool   `json:"include_headers"`
	DateFormat     *string `json:"date_format"`
}

// NewStore creates a store seeded with the defaults merged with any values
// persisted at path. An empty path disables persistence (used by the
// diagnose CLI and tests).
func NewStore(path string) (*Store, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			// Unmarshal over the defaults so absent fields keep them.
			if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// First run, defaults only.
		default:
			return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
		}
	}

	return &Store{path: path, cfg: cfg}, nil
}

// Get returns a snapshot of the current configuration.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// UpdateAPI merges the patch into the api section and persists the result.
func (s *Store) UpdateAPI(p APIPatch) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.BaseURL != nil {
		s.cfg.API.BaseURL = *p.BaseURL
	}
	if p.TimeoutMs != nil {
		s.cfg.API.TimeoutMs = *p.TimeoutMs
	}
	if p.Credentials != nil {
		s.cfg.API.Credentials = *p.Credentials
	}
	return s.snapshotLocked(), s.persistLocked()
}

// UpdateProcessing merges the patch into the processing section and persists the result.
func (s *Store) UpdateProcessing(p ProcessingPatch) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.IncludeClosedOrders != nil {
		s.cfg.Processing.IncludeClosedOrders = *p.IncludeClosedOrders
	}
	if p.IncludeOfflineOrders != nil {
		s.cfg.Processing.IncludeOfflineOrders = *p.IncludeOfflineOrders
	}
	if p.MaxFileSize != nil {
		s.cfg.Processing.MaxFileSize = *p.MaxFileSize
	}
	if p.SupportedFormats != nil {
		s.cfg.Processing.SupportedFormats = append([]string(nil), p.SupportedFormats...)
	}
	return s.snapshotLocked(), s.persistLocked()
}

// UpdateUI merges the patch into the ui section and persists the result.
func (s *Store) UpdateUI(p UIPatch) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Theme != nil {
		s.cfg.UI.Theme = *p.Theme
	}
	if p.Language != nil {
		s.cfg.UI.Language = *p.Language
	}
	if p.PageSize != nil {
		s.cfg.UI.PageSize = *p.PageSize
	}
	return s.snapshotLocked(), s.persistLocked()
}

// UpdateExport merges the patch into the export section and persists the result.
func (s *Store) UpdateExport(p ExportPatch) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.DefaultFormat != nil {
		s.cfg.Export.DefaultFormat = *p.DefaultFormat
	}
	if p.IncludeHeaders != nil {
		s.cfg.Export.IncludeHeaders = *p.IncludeHeaders
	}
	if p.DateFormat != nil {
		s.cfg.Export.DateFormat = *p.DateFormat
	}
	return s.snapshotLocked(), s.persistLocked()
}

// Reset restores all sections to the built-in defaults and persists that.
func (s *Store) Reset() (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = Defaults()
	return s.snapshotLocked(), s.persistLocked()
}

// snapshotLocked copies the configuration so callers cannot mutate shared
// slices. Caller must hold at least a read lock.
func (s *Store) snapshotLocked() Config {
	out := s.cfg
	out.Processing.SupportedFormats = append([]string(nil), s.cfg.Processing.SupportedFormats...)
	return out
}

func (s *Store) persistLocked() error {
	if s.path == "" {
		return nil
	}
	data, err := yaml.Marshal(s.cfg)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings file %s: %w", s.path, err)
	}
	return nil
}
