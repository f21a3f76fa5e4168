package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/anshulchahar/gita"
)

// ExpiryMargin is how long before expiry a cached token stops being used.
const ExpiryMargin = 60 * time.Second

// Options configures a Cache.
type Options struct {
	ClientID      string
	ClientSecret  string
	TokenEndpoint string

	// HTTPClient is used for the refresh request. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	Logger *gita.Logger
}

// Cache hands out a bearer token for the lifetime of one run. It starts from
// the on-disk snapshot and never writes refreshed tokens back.
type Cache struct {
	mu     sync.Mutex
	tokens Tokens
	conf   *oauth2.Config
	client *http.Client
	now    func() time.Time
	log    *gita.Logger

	current   *oauth2.Token
	refreshes int
}

// NewCache creates a token cache seeded with tokens.
func NewCache(tokens Tokens, opts Options) *Cache {
	c := &Cache{
		tokens: tokens,
		conf: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  opts.TokenEndpoint,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		client: opts.HTTPClient,
		now:    opts.Now,
		log:    opts.Logger,
	}
	if c.client == nil {
		c.client = http.DefaultClient
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.log == nil {
		c.log = gita.NopLogger()
	}
	if tokens.AccessToken != "" && tokens.ExpiresAt != 0 {
		c.current = &oauth2.Token{AccessToken: tokens.AccessToken, Expiry: tokens.ExpiresAt.Time()}
	}
	return c
}

// Token returns a bearer token that stays valid for at least ExpiryMargin.
// A failed refresh returns *gita.AuthError.
func (c *Cache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fresh(c.current) {
		return c.current.AccessToken, nil
	}
	if c.tokens.RefreshToken == "" {
		return "", &gita.AuthError{Err: gita.ErrMissingRefreshToken}
	}

	c.log.Info("refreshing access token", "endpoint", c.conf.Endpoint.TokenURL)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client)
	tok, err := c.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: c.tokens.RefreshToken}).Token()
	c.refreshes++
	if err != nil {
		ae := &gita.AuthError{Err: err}
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			ae.StatusCode = re.Response.StatusCode
		}
		return "", ae
	}
	c.current = tok
	return tok.AccessToken, nil
}

// Refreshes reports how many refresh requests have been made.
func (c *Cache) Refreshes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshes
}

// fresh reports whether t can be used. A refreshed token without an expiry
// is kept for the rest of the run.
func (c *Cache) fresh(t *oauth2.Token) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	if t.Expiry.IsZero() {
		return true
	}
	return t.Expiry.UnixMilli() > c.now().Add(ExpiryMargin).UnixMilli()
}
