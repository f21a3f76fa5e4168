package store_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anshulchahar/gita/internal/store"
)

func TestDefaultDataRoot_UsesHomeDir(t *testing.T) {
	t.Setenv("GITA_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("cannot determine home directory: %v", err)
	}

	root := store.DefaultDataRoot()
	expected := filepath.Join(home, ".gita")

	if root != expected {
		t.Errorf("DefaultDataRoot() = %q, want %q", root, expected)
	}
}

func TestDefaultDataRoot_GITA_HOME_Override(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("GITA_HOME", tmp)

	if got := store.DefaultDataRoot(); got != tmp {
		t.Errorf("DefaultDataRoot() = %q, want %q", got, tmp)
	}
	if got, want := store.LedgerPath(), filepath.Join(tmp, "ledger.db"); got != want {
		t.Errorf("LedgerPath() = %q, want %q", got, want)
	}
}

func TestLedgerPath_EndsWithLedgerDB(t *testing.T) {
	path := store.LedgerPath()
	if !strings.HasSuffix(path, "ledger.db") {
		t.Errorf("LedgerPath() = %q, should end with ledger.db", path)
	}
}

func TestDefaultCredentialsPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("cannot determine home directory: %v", err)
	}
	want := filepath.Join(home, ".config", "configstore", "firebase-tools.json")
	if got := store.DefaultCredentialsPath(); got != want {
		t.Errorf("DefaultCredentialsPath() = %q, want %q", got, want)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("cannot determine home directory: %v", err)
	}

	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"tilde slash", "~/content", filepath.Join(home, "content")},
		{"bare tilde", "~", home},
		{"absolute", "/srv/content", "/srv/content"},
		{"relative", "content", "content"},
		{"tilde user not expanded", "~other/x", "~other/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := store.ExpandHome(tt.in); got != tt.expected {
				t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.expected)
			}
		})
	}
}
