package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 30000, cfg.API.TimeoutMs)
	assert.False(t, cfg.API.Credentials)
	assert.False(t, cfg.Processing.IncludeClosedOrders)
	assert.Equal(t, []string{".xlsx", ".xls"}, cfg.Processing.SupportedFormats)
	assert.Equal(t, "zh", cfg.UI.Language)
	assert.Equal(t, "xlsx", cfg.Export.DefaultFormat)
	assert.Equal(t, "YYYY-MM-DD", cfg.Export.DateFormat)
}

func TestUpdatePreservesSiblingFields(t *testing.T) {
	store, err := NewStore("")
	require.NoError(t, err)

	before := store.Get()

	url := "http://api.example.com"
	after, err := store.UpdateAPI(APIPatch{BaseURL: &url})
	require.NoError(t, err)

	assert.Equal(t, "http://api.example.com", after.API.BaseURL)
	assert.Equal(t, before.API.TimeoutMs, after.API.TimeoutMs)
	assert.Equal(t, before.API.Credentials, after.API.Credentials)
	assert.Equal(t, before.Processing, after.Processing)
	assert.Equal(t, before.UI, after.UI)
	assert.Equal(t, before.Export, after.Export)
	assert.Equal(t, after, store.Get())
}

func TestUpdateAcceptsUnvalidatedValues(t *testing.T) {
	store, err := NewStore("")
	require.NoError(t, err)

	// No bounds checking, matching the frontend behavior.
	timeout := -5
	cfg, err := store.UpdateAPI(APIPatch{TimeoutMs: &timeout})
	require.NoError(t, err)
	assert.Equal(t, -5, cfg.API.TimeoutMs)
}

func TestUpdateProcessing(t *testing.T) {
	store, err := NewStore("")
	require.NoError(t, err)

	closed := true
	size := int64(1024)
	cfg, err := store.UpdateProcessing(ProcessingPatch{
		IncludeClosedOrders: &closed,
		MaxFileSize:         &size,
		SupportedFormats:    []string{".xlsx"},
	})
	require.NoError(t, err)

	assert.True(t, cfg.Processing.IncludeClosedOrders)
	assert.False(t, cfg.Processing.IncludeOfflineOrders)
	assert.Equal(t, int64(1024), cfg.Processing.MaxFileSize)
	assert.Equal(t, []string{".xlsx"}, cfg.Processing.SupportedFormats)
}

func TestResetRestoresDefaults(t *testing.T) {
	store, err := NewStore("")
	require.NoError(t, err)

	url := "http://somewhere.else"
	lang := "en"
	_, err = store.UpdateAPI(APIPatch{BaseURL: &url})
	require.NoError(t, err)
	_, err = store.UpdateUI(UIPatch{Language: &lang})
	require.NoError(t, err)

	cfg, err := store.Reset()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	store, err := NewStore(path)
	require.NoError(t, err)

	url := "http://persisted.example.com"
	headers := false
	_, err = store.UpdateAPI(APIPatch{BaseURL: &url})
	require.NoError(t, err)
	_, err = store.UpdateExport(ExportPatch{IncludeHeaders: &headers})
	require.NoError(t, err)

	// A fresh store sees the persisted values merged over defaults.
	reloaded, err := NewStore(path)
	require.NoError(t, err)

	cfg := reloaded.Get()
	assert.Equal(t, "http://persisted.example.com", cfg.API.BaseURL)
	assert.False(t, cfg.Export.IncludeHeaders)
	assert.Equal(t, 30000, cfg.API.TimeoutMs)
}

func TestPartialSettingsFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "api:\n  base_url: \"http://only-this.example.com\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	store, err := NewStore(path)
	require.NoError(t, err)

	cfg := store.Get()
	assert.Equal(t, "http://only-this.example.com", cfg.API.BaseURL)
	assert.Equal(t, 30000, cfg.API.TimeoutMs)
	assert.Equal(t, []string{".xlsx", ".xls"}, cfg.Processing.SupportedFormats)
}

func TestMalformedSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: ["), 0o644))

	_, err := NewStore(path)
	assert.Error(t, err)
}
