package connector

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// DSNBuilder builds URL-style connection strings.
type DSNBuilder struct {
	scheme   string
	username string
	password string
	host     string
	port     int
	database string
	params   url.Values
}

// NewDSNBuilder creates a builder for scheme ("postgres", "file", ...).
func NewDSNBuilder(scheme string) *DSNBuilder {
	return &DSNBuilder{
		scheme: scheme,
		params: url.Values{},
	}
}

// Auth sets username and password.
func (b *DSNBuilder) Auth(username, password string) *DSNBuilder {
	b.username = username
	b.password = password
	return b
}

// Host sets the host and port. A zero port is omitted.
func (b *DSNBuilder) Host(host string, port int) *DSNBuilder {
	b.host = host
	b.port = port
	return b
}

// Database sets the database name.
func (b *DSNBuilder) Database(name string) *DSNBuilder {
	b.database = name
	return b
}

// Param sets a single parameter. Empty values are skipped.
func (b *DSNBuilder) Param(key, value string) *DSNBuilder {
	if value != "" {
		b.params.Set(key, value)
	}
	return b
}

// Params sets every non-empty entry of params.
func (b *DSNBuilder) Params(params map[string]string) *DSNBuilder {
	for k, v := range params {
		b.Param(k, v)
	}
	return b
}

// Validate reports a missing host or an out-of-range port.
func (b *DSNBuilder) Validate() error {
	if b.host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}
	if b.port < 0 || b.port > 65535 {
		return fmt.Errorf("%w: invalid port: %d", ErrInvalidConfig, b.port)
	}
	return nil
}

// Build constructs the DSN. Parameters are sorted by key.
func (b *DSNBuilder) Build() string {
	u := url.URL{
		Scheme:   b.scheme,
		Host:     b.host,
		RawQuery: b.params.Encode(),
	}
	if b.port > 0 {
		u.Host = net.JoinHostPort(b.host, strconv.Itoa(b.port))
	}
	if b.username != "" {
		if b.password != "" {
			u.User = url.UserPassword(b.username, b.password)
		} else {
			u.User = url.User(b.username)
		}
	}
	if b.database != "" {
		u.Path = "/" + b.database
	}
	return u.String()
}
