package vault

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestMemoryVault_PutAndGet(t *testing.T) {
	vault := NewMemoryVault("test-vault")
	ctx := context.Background()

	tests := []struct {
		name    string
		key     string
		content string
	}{
		{name: "store and retrieve content", key: "documents/1/10-a.txt", content: "hello world"},
		{name: "store empty content", key: "documents/1/11-empty.txt", content: ""},
		{name: "store large content", key: "documents/2/12-large.bin", content: strings.Repeat("x", 10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := vault.Put(ctx, tt.key, strings.NewReader(tt.content), int64(len(tt.content))); err != nil {
				t.Fatalf("Put() error = %v", err)
			}

			var buf bytes.Buffer
			if err := vault.Get(ctx, tt.key, &buf); err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got := buf.String(); got != tt.content {
				t.Errorf("Get() = %q, want %q", got, tt.content)
			}

			ok, err := vault.Exists(ctx, tt.key)
			if err != nil || !ok {
				t.Errorf("Exists() = %v, %v; want true, nil", ok, err)
			}
		})
	}

	want := []string{"documents/1/10-a.txt", "documents/1/11-empty.txt", "documents/2/12-large.bin"}
	got := vault.Keys()
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMemoryVault_PutOverwrites(t *testing.T) {
	vault := NewMemoryVault("test-vault")
	ctx := context.Background()

	if err := vault.Put(ctx, "k", strings.NewReader("first"), 5); err != nil {
		t.Fatalf("first Put() error = %v", err)
	}
	if err := vault.Put(ctx, "k", strings.NewReader("second"), 6); err != nil {
		t.Fatalf("second Put() error = %v", err)
	}

	var buf bytes.Buffer
	if err := vault.Get(ctx, "k", &buf); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if buf.String() != "second" {
		t.Errorf("Get() = %q, want %q", buf.String(), "second")
	}
}

func TestMemoryVault_GetNotFound(t *testing.T) {
	vault := NewMemoryVault("test-vault")

	var buf bytes.Buffer
	if err := vault.Get(context.Background(), "missing", &buf); err == nil {
		t.Error("Get() expected error for missing key")
	}

	ok, err := vault.Exists(context.Background(), "missing")
	if err != nil || ok {
		t.Errorf("Exists() = %v, %v; want false, nil", ok, err)
	}
}

func TestMemoryVault_PutSizeMismatch(t *testing.T) {
	vault := NewMemoryVault("test-vault")
	ctx := context.Background()

	if err := vault.Put(ctx, "k", strings.NewReader("hello"), 10); err == nil {
		t.Error("Put() expected error for size mismatch")
	}
	if ok, _ := vault.Exists(ctx, "k"); ok {
		t.Error("object stored despite size mismatch")
	}
}

func TestMemoryVault_ValidateSetup(t *testing.T) {
	if err := NewMemoryVault("test-vault").ValidateSetup(context.Background()); err != nil {
		t.Errorf("ValidateSetup() error = %v", err)
	}
}
