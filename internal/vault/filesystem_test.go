package vault

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFileSystemVault(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "vault")

	v, err := NewFileSystemVault("fs", root)
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	if v == nil {
		t.Fatal("NewFileSystemVault() returned nil")
	}

	info, err := os.Stat(root)
	if err != nil {
		t.Fatalf("vault root not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("vault root is not a directory")
	}
}

func TestFileSystemVault_PutAndGet(t *testing.T) {
	root := t.TempDir()
	v, err := NewFileSystemVault("fs", root)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	key := "documents/7/42-report.pdf"
	content := "%PDF-1.4 exported"
	if err := v.Put(ctx, key, strings.NewReader(content), int64(len(content))); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	onDisk, err := os.ReadFile(filepath.Join(root, "documents", "7", "42-report.pdf"))
	if err != nil {
		t.Fatalf("object not written to nested path: %v", err)
	}
	if string(onDisk) != content {
		t.Errorf("file content = %q, want %q", onDisk, content)
	}

	var buf bytes.Buffer
	if err := v.Get(ctx, key, &buf); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if buf.String() != content {
		t.Errorf("Get() = %q, want %q", buf.String(), content)
	}
}

func TestFileSystemVault_Exists(t *testing.T) {
	v, err := NewFileSystemVault("fs", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := v.Put(ctx, "documents/1/1-a.txt", strings.NewReader("a"), 1); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		key  string
		want bool
	}{
		{name: "stored object", key: "documents/1/1-a.txt", want: true},
		{name: "missing object", key: "documents/1/2-b.txt", want: false},
		{name: "directory is not an object", key: "documents/1", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Exists(ctx, tt.key)
			if err != nil {
				t.Fatalf("Exists() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Exists() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFileSystemVault_RejectsEscapingKeys(t *testing.T) {
	v, err := NewFileSystemVault("fs", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for _, key := range []string{"", ".", "..", "../outside", "/etc/passwd", "documents/../../x"} {
		t.Run(key, func(t *testing.T) {
			if err := v.Put(ctx, key, strings.NewReader("x"), 1); err == nil {
				t.Errorf("Put(%q) expected error", key)
			}
		})
	}
}

func TestFileSystemVault_GetNotFound(t *testing.T) {
	v, err := NewFileSystemVault("fs", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := v.Get(context.Background(), "documents/9/9-none", &buf); err == nil {
		t.Error("Get() expected error for missing object")
	}
}

func TestFileSystemVault_AtomicWrite(t *testing.T) {
	root := t.TempDir()
	v, err := NewFileSystemVault("fs", root)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	key := "documents/3/5-notes.txt"

	if err := v.Put(ctx, key, strings.NewReader("original"), 8); err != nil {
		t.Fatal(err)
	}

	// A short write must leave the previous object in place and no temp files behind.
	if err := v.Put(ctx, key, strings.NewReader("short"), 100); err == nil {
		t.Fatal("Put() expected size mismatch error")
	}

	var buf bytes.Buffer
	if err := v.Get(ctx, key, &buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "original" {
		t.Errorf("Get() = %q, want %q", buf.String(), "original")
	}

	entries, err := os.ReadDir(filepath.Join(root, "documents", "3"))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestFileSystemVault_ValidateSetup(t *testing.T) {
	t.Run("writable root", func(t *testing.T) {
		v, err := NewFileSystemVault("fs", t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		if err := v.ValidateSetup(context.Background()); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}
	})

	t.Run("root removed", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "vault")
		v, err := NewFileSystemVault("fs", root)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.RemoveAll(root); err != nil {
			t.Fatal(err)
		}
		if err := v.ValidateSetup(context.Background()); err == nil {
			t.Error("ValidateSetup() expected error for missing root")
		}
	})

	t.Run("root is a file", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "vault")
		v, err := NewFileSystemVault("fs", root)
		if err != nil {
			t.Fatal(err)
		}
		os.RemoveAll(root)
		if err := os.WriteFile(root, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := v.ValidateSetup(context.Background()); err == nil {
			t.Error("ValidateSetup() expected error when root is a file")
		}
	})
}
