package testutil

import (
	"bytes"
	"context"
	"testing"

	"dms-go/internal/vault"
)

// NewTestVault creates an empty in-memory export vault.
func NewTestVault() *vault.MemoryVault {
	return vault.NewMemoryVault("test-vault")
}

// VaultObject returns what v holds under key, failing the test when the
// key is missing.
func VaultObject(t testing.TB, v *vault.MemoryVault, key string) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := v.Get(context.Background(), key, &buf); err != nil {
		t.Fatalf("reading %s from vault: %v", key, err)
	}
	return buf.Bytes()
}
