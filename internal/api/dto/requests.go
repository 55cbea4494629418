package dto

import "github.com/orderdesk/recon-console/internal/infrastructure/config"

// ToggleShopRequest flips the selection of one shop.
type ToggleShopRequest struct {
	Name string `json:"name" binding:"required"`
}

// SelectAllRequest toggles the selection of the filtered subset. An empty
// filter matches every shop; otherwise shops whose name contains the
// filter (case-insensitive) are matched.
type SelectAllRequest struct {
	Filter string `json:"filter"`
}

// SettingsUpdateRequest carries partial updates per configuration section.
// Absent sections and absent fields are left untouched.
type SettingsUpdateRequest struct {
	API        *config.APIPatch        `json:"api"`
	Processing *config.ProcessingPatch `json:"processing"`
	UI         *config.UIPatch         `json:"ui"`
	Export     *config.ExportPatch     `json:"export"`
}
