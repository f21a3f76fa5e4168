// Package auth supplies bearer tokens for document store writes from a
// cached credential snapshot, refreshing them with a refresh-token grant.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/anshulchahar/gita"
)

// Tokens is the token block of a firebase-tools style credential file.
type Tokens struct {
	AccessToken  string    `json:"access_token"`
	ExpiresAt    EpochMsec `json:"expires_at"`
	RefreshToken string    `json:"refresh_token"`
}

// EpochMsec is a Unix timestamp in milliseconds. It decodes from a JSON
// number or numeric string.
type EpochMsec int64

func (e *EpochMsec) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*e = 0
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		var s string
		if err2 := json.Unmarshal(data, &s); err2 != nil {
			return fmt.Errorf("expires_at: %w", err)
		}
		n = json.Number(s)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*e = EpochMsec(i)
		return nil
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return fmt.Errorf("expires_at %q: %w", n, err)
	}
	*e = EpochMsec(int64(f))
	return nil
}

// Time converts e to a time.Time.
func (e EpochMsec) Time() time.Time { return time.UnixMilli(int64(e)) }

type credentialFile struct {
	Tokens *Tokens `json:"tokens"`
	User   *struct {
		Tokens *Tokens `json:"tokens"`
	} `json:"user"`
}

// LoadCredentials reads the token block from path. The block may sit at the
// top level under "tokens" or under "user.tokens". A missing file returns
// gita.ErrCredentialsNotFound.
func LoadCredentials(path string) (Tokens, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Tokens{}, fmt.Errorf("%w: %s", gita.ErrCredentialsNotFound, path)
		}
		return Tokens{}, fmt.Errorf("read credentials: %w", err)
	}
	var cf credentialFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return Tokens{}, fmt.Errorf("parse credentials %s: %w", path, err)
	}

	var t Tokens
	switch {
	case cf.Tokens != nil && *cf.Tokens != (Tokens{}):
		t = *cf.Tokens
	case cf.User != nil && cf.User.Tokens != nil:
		t = *cf.User.Tokens
	}
	return t, nil
}
