package tokenstore

import (
	"dms-go/internal/database"
	"dms-go/internal/dms"
)

// SQLiteStore keeps one token per backend URL in the session database, so
// switching server_url does not log the user out of the other server.
type SQLiteStore struct {
	db        *database.SessionDB
	serverURL string
	clock     dms.Clock
}

var _ dms.TokenStore = (*SQLiteStore)(nil)

func NewSQLiteStore(db *database.SessionDB, serverURL string, clock dms.Clock) *SQLiteStore {
	if clock == nil {
		clock = dms.RealClock{}
	}
	return &SQLiteStore{db: db, serverURL: serverURL, clock: clock}
}

func (s *SQLiteStore) Load() (string, error) {
	sess, err := s.db.Session(s.serverURL)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return "", nil
	}
	return sess.Token, nil
}

func (s *SQLiteStore) Save(token string) error {
	return s.db.SaveSession(database.StoredSession{
		ServerURL: s.serverURL,
		Token:     token,
		SavedAt:   s.clock.Now(),
	})
}

func (s *SQLiteStore) Clear() error {
	return s.db.DeleteSession(s.serverURL)
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
