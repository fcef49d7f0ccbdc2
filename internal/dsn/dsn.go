// SPDX-License-Identifier: MPL-2.0

// Package dsn splits server connection strings of the form
//
//	scheme://[username[:password]@]host[:port][/database]
//
// into their parts. Parsing is purely syntactic: scheme and host are not
// validated here; the RPC client decides what it can connect to.
package dsn

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// DefaultPort is used when the DSN does not name one.
const DefaultPort = 8069

// Descriptor is an immutable parsed DSN.
type Descriptor struct {
	url         *url.URL
	database    string
	username    string
	password    string
	hasPassword bool
}

// Parse splits s into a Descriptor. Only URL syntax errors are reported.
func Parse(s string) (Descriptor, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Descriptor{}, fmt.Errorf("parse dsn: %w", err)
	}

	d := Descriptor{
		url:      u,
		database: strings.TrimPrefix(u.Path, "/"),
	}
	if u.User != nil {
		d.username = u.User.Username()
		d.password, d.hasPassword = u.User.Password()
	}
	return d, nil
}

// MustParse is Parse for constants; it panics on error.
func MustParse(s string) Descriptor {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// URL returns a copy of the parsed URL.
func (d Descriptor) URL() *url.URL {
	if d.url == nil {
		return &url.URL{}
	}
	u := *d.url
	if d.url.User != nil {
		user := *d.url.User
		u.User = &user
	}
	return &u
}

// Scheme is the URL scheme, e.g. "http".
func (d Descriptor) Scheme() string { return d.URL().Scheme }

// Host is the host name without port or brackets.
func (d Descriptor) Host() string { return d.URL().Hostname() }

// Port is the port as written, or "" when the DSN has none.
func (d Descriptor) Port() string { return d.URL().Port() }

// Database is the path without its leading slash.
func (d Descriptor) Database() string { return d.database }

// Username is the user name from the userinfo, possibly empty.
func (d Descriptor) Username() string { return d.username }

// Password is the password from the userinfo, possibly empty.
func (d Descriptor) Password() string { return d.password }

// HasPassword reports whether the userinfo carried a password at all.
func (d Descriptor) HasPassword() bool { return d.hasPassword }

// HasCredentials reports whether both a user name and a password are set,
// which is when commands log in.
func (d Descriptor) HasCredentials() bool {
	return d.username != "" && d.password != ""
}

// PortOrDefault returns the numeric port, or DefaultPort when it is
// missing or not a number.
func (d Descriptor) PortOrDefault() int {
	if p, err := strconv.Atoi(d.Port()); err == nil && p > 0 {
		return p
	}
	return DefaultPort
}

// BaseURL is scheme://host:port with the default port filled in and
// without credentials or path.
func (d Descriptor) BaseURL() string {
	scheme := d.Scheme()
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + net.JoinHostPort(d.Host(), strconv.Itoa(d.PortOrDefault()))
}

// Redacted returns the DSN with the password masked.
func (d Descriptor) Redacted() string {
	return d.URL().Redacted()
}

// String returns the DSN with the password masked.
func (d Descriptor) String() string {
	return d.Redacted()
}
