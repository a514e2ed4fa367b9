// storage/resolve.go
package storage

import (
	"context"
	"fmt"

	"github.com/gewnthar/ideatrack/config"
)

// Resolve picks the configured backend. Selection is explicit on
// cfg.Storage.Backend; nothing is sniffed from the environment here.
//
// The returned closer is non-nil for backends holding resources (sqlite)
// and a no-op otherwise.
func Resolve(ctx context.Context, cfg *config.Config) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Backend {
	case "csv":
		return NewCSVStore(cfg.Storage.Path), noop, nil
	case "sqlite":
		s, err := OpenSQLite(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "sheets":
		if cfg.Sheets == nil {
			return nil, nil, fmt.Errorf("sheets backend selected but not configured")
		}
		s, err := NewSheetsStore(ctx,
			cfg.Sheets.CredentialsFile,
			cfg.Sheets.SpreadsheetID,
			cfg.Sheets.TrackingSheet,
			cfg.Sheets.RunsSheet,
		)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
