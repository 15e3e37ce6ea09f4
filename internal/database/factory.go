package database

import (
	"fmt"
	"path/filepath"

	"dms-go/internal/config"
)

// SessionDBFile is the database file name inside the configured data_dir.
const SessionDBFile = "sessions.db"

// NewSessionDBFromConfig opens the session database a sqlite session config points at.
func NewSessionDBFromConfig(cfg config.SessionConfig) (*SessionDB, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("data_dir required for sqlite session store")
	}
	return OpenSessionDB(filepath.Join(cfg.DataDir, SessionDBFile))
}
