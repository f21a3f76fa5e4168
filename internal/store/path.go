package store

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDataRoot returns the directory holding gita's local state.
// GITA_HOME overrides it. Defaults to ~/.gita, falls back to ./.gita if
// home dir unavailable.
func DefaultDataRoot() string {
	if h := os.Getenv("GITA_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		cwd, _ := os.Getwd()
		return filepath.Join(cwd, ".gita")
	}
	return filepath.Join(home, ".gita")
}

// LedgerPath returns the default path of the run ledger database.
// Example: ~/.gita/ledger.db
func LedgerPath() string {
	return filepath.Join(DefaultDataRoot(), "ledger.db")
}

// DefaultCredentialsPath returns the firebase-tools credential file location.
func DefaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "configstore", "firebase-tools.json")
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
