// SPDX-License-Identifier: MPL-2.0

package odoorpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/osh-cli/osh/internal/dsn"
)

// DefaultTimeout bounds a single RPC round trip.
const DefaultTimeout = 30 * time.Second

var (
	// ErrNotLoggedIn is returned by model calls made before Login.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrAccessDenied is returned when the server refuses the credentials.
	ErrAccessDenied = errors.New("access denied")
)

type (
	// Options configures a Client.
	Options struct {
		// Timeout applies when HTTPClient is nil.
		Timeout time.Duration
		// HTTPClient replaces the default client.
		HTTPClient *http.Client
	}

	// Session is the state kept after a successful login.
	Session struct {
		Database string
		Username string
		UID      int
		password string
	}

	// Client talks to one server.
	Client struct {
		baseURL  string
		endpoint string
		http     *http.Client
		nextID   atomic.Int64
		session  *Session
	}

	// UnreachableError wraps transport failures so callers can tell a
	// server that is down from a server that answered with an error.
	UnreachableError struct {
		URL string
		Err error
	}
)

// Error implements the error interface.
func (e *UnreachableError) Error() string {
	return fmt.Sprintf("server %s unreachable: %v", e.URL, e.Err)
}

// Unwrap returns the transport error.
func (e *UnreachableError) Unwrap() error { return e.Err }

// New creates a client for the server named by d. Credentials in d are not
// used until Login is called.
func New(d dsn.Descriptor, opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	base := d.BaseURL()
	return &Client{
		baseURL:  base,
		endpoint: base + "/jsonrpc",
		http:     hc,
	}
}

// BaseURL is the server address without credentials.
func (c *Client) BaseURL() string { return c.baseURL }

// Session returns the current session, if any.
func (c *Client) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Version calls common.version.
func (c *Client) Version(ctx context.Context) (VersionInfo, error) {
	var v VersionInfo
	if err := c.call(ctx, "common", "version", nil, &v); err != nil {
		return VersionInfo{}, err
	}
	return v, nil
}

// ListDatabases calls db.list.
func (c *Client) ListDatabases(ctx context.Context) ([]string, error) {
	var dbs []string
	if err := c.call(ctx, "db", "list", nil, &dbs); err != nil {
		return nil, err
	}
	return dbs, nil
}

// Login authenticates and stores the session for later model calls.
func (c *Client) Login(ctx context.Context, database, username, password string) (Session, error) {
	var raw json.RawMessage
	if err := c.call(ctx, "common", "login", []any{database, username, password}, &raw); err != nil {
		return Session{}, err
	}

	// The server answers false instead of raising on bad credentials.
	var uid int
	if err := json.Unmarshal(raw, &uid); err != nil || uid == 0 {
		return Session{}, fmt.Errorf("login %s@%s: %w", username, database, ErrAccessDenied)
	}

	c.session = &Session{Database: database, Username: username, UID: uid, password: password}
	return *c.session, nil
}

// ExecuteKw calls object.execute_kw on model.method with positional args
// and keyword args, returning the raw JSON result.
func (c *Client) ExecuteKw(ctx context.Context, model, method string, args []any, kwargs map[string]any) (json.RawMessage, error) {
	if c.session == nil {
		return nil, ErrNotLoggedIn
	}
	if args == nil {
		args = []any{}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}

	var out json.RawMessage
	err := c.call(ctx, "object", "execute_kw", []any{
		c.session.Database, c.session.UID, c.session.password,
		model, method, args, kwargs,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, service, method string, args []any, out any) error {
	if args == nil {
		args = []any{}
	}
	body, err := json.Marshal(request{
		JSONRPC: jsonrpcVersion,
		Method:  "call",
		Params:  params{Service: service, Method: method, Args: args},
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return fmt.Errorf("encode %s.%s: %w", service, method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &UnreachableError{URL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s.%s: HTTP %d: %s", service, method, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return fmt.Errorf("decode %s.%s response: %w", service, method, err)
	}
	if r.Error != nil {
		return r.Error
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(r.Result, out); err != nil {
		return fmt.Errorf("decode %s.%s result: %w", service, method, err)
	}
	return nil
}
