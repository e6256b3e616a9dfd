// Package config loads process configuration from the environment. The
// variable names match what the original Netlify deployment used, so an
// existing setup keeps working.
package config

import "github.com/kelseyhightower/envconfig"

type Config struct {
	Port    int    `envconfig:"PORT" default:"8080"`
	DataDir string `envconfig:"DATA_DIR" default:"data"`

	// StoreBackend selects where access and usage records live:
	// "file" (JSON blobs under DataDir) or "sqlite" (rows next to the
	// admin tables). Both behave identically through the store contract.
	StoreBackend string `envconfig:"STORE_BACKEND" default:"file"`

	// APISecret signs bot-originated requests. The default is a
	// documented non-production value; deployments must override it.
	APISecret string `envconfig:"CLOUDTOUCH_API_SECRET"`
	JWTSecret string `envconfig:"JWT_SECRET"`

	// WebhookURL receives best-effort event notifications. Empty
	// disables delivery.
	WebhookURL string `envconfig:"MAIN_WEBHOOK"`

	DefaultAccessType string `envconfig:"DEFAULT_ACCESS_TYPE" default:"CloudTouch Tool"`

	SheetSyncEnabled    bool   `envconfig:"SHEET_SYNC_ENABLED"`
	SheetCredentialPath string `envconfig:"SHEET_CREDENTIAL_PATH"`
	SpreadsheetID       string `envconfig:"SPREADSHEET_ID"`
	SheetName           string `envconfig:"SHEET_NAME" default:"AccessRecords"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
