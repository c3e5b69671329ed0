package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestStore_SaveLoad(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "playlens"))

	if err := store.Save("  AIzaSyExampleKey123  "); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded != "AIzaSyExampleKey123" {
		t.Errorf("wrong key: %s", loaded)
	}
}

func TestStore_FileIsOwnerOnly(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions only")
	}
	store := NewStore(t.TempDir())
	if err := store.Save("AIzaSyExampleKey123"); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("key file should be 0600, got %o", perm)
	}
}

func TestStore_NotFound(t *testing.T) {
	_, err := NewStore(t.TempDir()).Load()
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestStore_RejectsEmptyKey(t *testing.T) {
	if err := NewStore(t.TempDir()).Save("   "); err == nil {
		t.Error("empty key should be rejected")
	}
}

func TestStore_Clear(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.Save("AIzaSyExampleKey123"); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound after clear, got %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("clearing twice should succeed, got %v", err)
	}
}

func TestStore_CorruptFile(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := store.Load()
	if err == nil || errors.Is(err, ErrKeyNotFound) {
		t.Errorf("corrupt file should be a read error, got %v", err)
	}
}

func TestMask(t *testing.T) {
	tests := map[string]string{
		"AIzaSyExampleKey123": "AIza***********y123",
		"short":               "*****",
		"":                    "",
	}
	for in, want := range tests {
		if got := Mask(in); got != want {
			t.Errorf("Mask(%q) = %q, want %q", in, got, want)
		}
	}
}
