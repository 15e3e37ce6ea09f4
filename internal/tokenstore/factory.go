package tokenstore

import (
	"fmt"

	"dms-go/internal/config"
	"dms-go/internal/database"
	"dms-go/internal/dms"
)

// NewTokenStoreFromConfig creates a TokenStore based on the session config
// type. serverURL keys sqlite sessions; passphrase is only called for the
// age store. Stores that hold resources implement io.Closer.
func NewTokenStoreFromConfig(cfg config.SessionConfig, serverURL string, passphrase func() (string, error)) (dms.TokenStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "file", "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("file session store requires path to be set")
		}
		return NewFileStore(cfg.Path), nil
	case "age":
		if cfg.Path == "" {
			return nil, fmt.Errorf("age session store requires path to be set")
		}
		return NewAgeStore(cfg.Path, passphrase), nil
	case "sqlite":
		db, err := database.NewSessionDBFromConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("opening session database: %w", err)
		}
		return NewSQLiteStore(db, serverURL, dms.RealClock{}), nil
	default:
		return nil, fmt.Errorf("unknown session store type: %s", cfg.Type)
	}
}
