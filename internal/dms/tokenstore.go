package dms

// TokenStore holds the bearer token between runs.
//
// Load returns "" and a nil error when no token is stored. Clear on an
// empty store is not an error.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}
