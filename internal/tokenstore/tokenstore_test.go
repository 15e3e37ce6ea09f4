package tokenstore_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dms-go/internal/config"
	"dms-go/internal/dms"
	"dms-go/internal/testutil"
	"dms-go/internal/tokenstore"
)

func staticPassphrase(p string) func() (string, error) {
	return func() (string, error) { return p, nil }
}

func TestTokenStores_RoundTrip(t *testing.T) {
	newSQLite := func(t *testing.T) dms.TokenStore {
		db := testutil.NewTestSessionDB(t)
		return tokenstore.NewSQLiteStore(db, "http://localhost:8080/api", testutil.FixedClock())
	}

	tests := []struct {
		name  string
		store func(t *testing.T) dms.TokenStore
	}{
		{name: "memory", store: func(t *testing.T) dms.TokenStore { return tokenstore.NewMemoryStore() }},
		{name: "file", store: func(t *testing.T) dms.TokenStore {
			return tokenstore.NewFileStore(filepath.Join(t.TempDir(), "session", "token"))
		}},
		{name: "age", store: func(t *testing.T) dms.TokenStore {
			return tokenstore.NewAgeStore(filepath.Join(t.TempDir(), "token.age"), staticPassphrase("correct horse"))
		}},
		{name: "sqlite", store: newSQLite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.store(t)

			got, err := s.Load()
			if err != nil || got != "" {
				t.Fatalf("Load() on empty store = %q, %v; want empty, nil", got, err)
			}

			if err := s.Save("tok-1"); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if err := s.Save("tok-2"); err != nil {
				t.Fatalf("second Save() error = %v", err)
			}
			if got, err := s.Load(); err != nil || got != "tok-2" {
				t.Fatalf("Load() = %q, %v; want tok-2", got, err)
			}

			if err := s.Clear(); err != nil {
				t.Fatalf("Clear() error = %v", err)
			}
			if got, err := s.Load(); err != nil || got != "" {
				t.Fatalf("Load() after Clear = %q, %v; want empty", got, err)
			}
			if err := s.Clear(); err != nil {
				t.Errorf("Clear() on empty store error = %v", err)
			}
		})
	}
}

func TestFileStore_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	s := tokenstore.NewFileStore(path)
	if err := s.Save("secret"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file mode = %o, want 600", perm)
	}
}

func TestAgeStore_EncryptsAtRest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.age")
	s := tokenstore.NewAgeStore(path, staticPassphrase("correct horse"))
	if err := s.Save("eyJhbGciOiJIUzI1NiJ9.payload.sig"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if strings.Contains(string(data), "payload") {
		t.Error("token file contains the plaintext token")
	}

	fresh := tokenstore.NewAgeStore(path, staticPassphrase("correct horse"))
	if got, err := fresh.Load(); err != nil || got != "eyJhbGciOiJIUzI1NiJ9.payload.sig" {
		t.Errorf("Load() with same passphrase = %q, %v", got, err)
	}

	wrong := tokenstore.NewAgeStore(path, staticPassphrase("battery staple"))
	if _, err := wrong.Load(); err == nil {
		t.Error("Load() with wrong passphrase expected error")
	}
}

func TestAgeStore_PassphraseOnlyWhenNeeded(t *testing.T) {
	calls := 0
	s := tokenstore.NewAgeStore(filepath.Join(t.TempDir(), "token.age"), func() (string, error) {
		calls++
		return "", errors.New("no terminal")
	})

	if got, err := s.Load(); err != nil || got != "" {
		t.Fatalf("Load() on missing file = %q, %v", got, err)
	}
	if calls != 0 {
		t.Errorf("passphrase asked %d times for a missing file, want 0", calls)
	}
	if err := s.Save("tok"); err == nil {
		t.Error("Save() expected error when passphrase fails")
	}
}

func TestSQLiteStore_ServersAreIsolated(t *testing.T) {
	db := testutil.NewTestSessionDB(t)
	clock := testutil.FixedClock()
	a := tokenstore.NewSQLiteStore(db, "http://a/api", clock)
	b := tokenstore.NewSQLiteStore(db, "http://b/api", clock)

	a.Save("token-a")
	clock.Set(time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC))
	b.Save("token-b")
	if err := a.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	if got, _ := a.Load(); got != "" {
		t.Errorf("a.Load() = %q, want empty", got)
	}
	if got, _ := b.Load(); got != "token-b" {
		t.Errorf("b.Load() = %q, want token-b", got)
	}

	sess, err := db.Session("http://b/api")
	if err != nil || sess == nil {
		t.Fatalf("Session() = %v, %v", sess, err)
	}
	if want := time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC); !sess.SavedAt.Equal(want) {
		t.Errorf("SavedAt = %v, want %v", sess.SavedAt, want)
	}
}

func TestNewTokenStoreFromConfig(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.SessionConfig
		want    string
		wantErr bool
	}{
		{name: "memory", cfg: config.SessionConfig{Type: "memory"}, want: "*tokenstore.MemoryStore"},
		{name: "file", cfg: config.SessionConfig{Type: "file", Path: filepath.Join(dir, "t")}, want: "*tokenstore.FileStore"},
		{name: "file without path", cfg: config.SessionConfig{Type: "file"}, wantErr: true},
		{name: "age", cfg: config.SessionConfig{Type: "age", Path: filepath.Join(dir, "t.age")}, want: "*tokenstore.AgeStore"},
		{name: "sqlite", cfg: config.SessionConfig{Type: "sqlite", DataDir: dir}, want: "*tokenstore.SQLiteStore"},
		{name: "sqlite without data_dir", cfg: config.SessionConfig{Type: "sqlite"}, wantErr: true},
		{name: "unknown", cfg: config.SessionConfig{Type: "keyring"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tokenstore.NewTokenStoreFromConfig(tt.cfg, "http://localhost:8080/api", staticPassphrase("x"))
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewTokenStoreFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if typ := typeName(got); typ != tt.want {
				t.Errorf("NewTokenStoreFromConfig() type = %s, want %s", typ, tt.want)
			}
			if c, ok := got.(interface{ Close() error }); ok {
				c.Close()
			}
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *tokenstore.MemoryStore:
		return "*tokenstore.MemoryStore"
	case *tokenstore.FileStore:
		return "*tokenstore.FileStore"
	case *tokenstore.AgeStore:
		return "*tokenstore.AgeStore"
	case *tokenstore.SQLiteStore:
		return "*tokenstore.SQLiteStore"
	default:
		return "unknown"
	}
}
