package database

import (
	"path/filepath"
	"testing"
	"time"
)

func TestSessionDB_SaveAndLoad(t *testing.T) {
	db, err := OpenSessionDB(":memory:")
	if err != nil {
		t.Fatalf("OpenSessionDB() error = %v", err)
	}
	defer db.Close()

	at := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	if err := db.SaveSession(StoredSession{ServerURL: "http://a/api", Token: "tok-1", SavedAt: at}); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	got, err := db.Session("http://a/api")
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if got == nil || got.Token != "tok-1" {
		t.Fatalf("Session() = %+v, want token tok-1", got)
	}
	if !got.SavedAt.Equal(at) {
		t.Errorf("SavedAt = %v, want %v", got.SavedAt, at)
	}
}

func TestSessionDB_Upsert(t *testing.T) {
	db, err := OpenSessionDB(":memory:")
	if err != nil {
		t.Fatalf("OpenSessionDB() error = %v", err)
	}
	defer db.Close()

	now := time.Now()
	for _, tok := range []string{"old", "new"} {
		if err := db.SaveSession(StoredSession{ServerURL: "http://a/api", Token: tok, SavedAt: now}); err != nil {
			t.Fatalf("SaveSession(%s) error = %v", tok, err)
		}
	}

	got, err := db.Session("http://a/api")
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if got.Token != "new" {
		t.Errorf("Token = %q, want %q", got.Token, "new")
	}
}

func TestSessionDB_ServersAreIsolated(t *testing.T) {
	db, err := OpenSessionDB(":memory:")
	if err != nil {
		t.Fatalf("OpenSessionDB() error = %v", err)
	}
	defer db.Close()

	now := time.Now()
	db.SaveSession(StoredSession{ServerURL: "http://a/api", Token: "a", SavedAt: now})
	db.SaveSession(StoredSession{ServerURL: "http://b/api", Token: "b", SavedAt: now})

	if err := db.DeleteSession("http://a/api"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}

	if got, _ := db.Session("http://a/api"); got != nil {
		t.Errorf("Session(a) = %+v, want nil after delete", got)
	}
	if got, _ := db.Session("http://b/api"); got == nil || got.Token != "b" {
		t.Errorf("Session(b) = %+v, want token b", got)
	}
	if err := db.DeleteSession("http://missing/api"); err != nil {
		t.Errorf("DeleteSession() on missing row error = %v", err)
	}
}

func TestSessionDB_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", SessionDBFile)

	db, err := OpenSessionDB(path)
	if err != nil {
		t.Fatalf("OpenSessionDB() error = %v", err)
	}
	if err := db.SaveSession(StoredSession{ServerURL: "http://a/api", Token: "kept", SavedAt: time.Now()}); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
	db.Close()

	db, err = OpenSessionDB(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()

	got, err := db.Session("http://a/api")
	if err != nil || got == nil || got.Token != "kept" {
		t.Errorf("Session() = %+v, %v; want token kept", got, err)
	}
}
