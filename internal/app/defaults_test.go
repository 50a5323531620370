package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultLogDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir() error = %v", err)
	}

	got, err := DefaultLogDir()
	if err != nil {
		t.Fatalf("DefaultLogDir() error = %v", err)
	}
	want := filepath.Join(home, ".local", "share", "goesfetch", "log")
	if got != want {
		t.Errorf("DefaultLogDir() = %q, want %q", got, want)
	}
}

func TestDefaultDataDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir() error = %v", err)
	}

	got, err := DefaultDataDir()
	if err != nil {
		t.Fatalf("DefaultDataDir() error = %v", err)
	}
	want := filepath.Join(home, ".local", "share", "goesfetch")
	if got != want {
		t.Errorf("DefaultDataDir() = %q, want %q", got, want)
	}
}
