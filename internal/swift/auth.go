package swift

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/swiftbrowser/internal/config"
	"github.com/andresuchdata/swiftbrowser/internal/metrics"
	ncw "github.com/ncw/swift"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrInvalidCredentials is returned when the identity service rejects a login
var ErrInvalidCredentials = errors.New("swift: invalid credentials")

// NcwConnector opens ncw/swift connections configured from SwiftConfig
type NcwConnector struct {
	cfg       config.SwiftConfig
	metrics   *metrics.Metrics
	transport http.RoundTripper
	http      *http.Client
}

// Option customises an NcwConnector
type Option func(*NcwConnector)

// WithTransport overrides the HTTP transport of every connection
func WithTransport(rt http.RoundTripper) Option {
	return func(c *NcwConnector) {
		c.transport = rt
		c.http = &http.Client{Transport: rt, Timeout: c.http.Timeout}
	}
}

// WithMetrics records every Swift call on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *NcwConnector) { c.metrics = m }
}

// NewConnector creates a connector for the configured cluster
func NewConnector(cfg config.SwiftConfig, opts ...Option) *NcwConnector {
	c := &NcwConnector{
		cfg:  cfg,
		http: &http.Client{Timeout: orDefault(cfg.Timeout, 60*time.Second)},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func (n *NcwConnector) connection() *ncw.Connection {
	return &ncw.Connection{
		AuthUrl:        n.cfg.AuthURL,
		AuthVersion:    n.cfg.AuthVersion,
		Domain:         n.cfg.UserDomainName,
		TenantDomain:   n.cfg.ProjectDomainName,
		Region:         n.cfg.Region,
		ConnectTimeout: orDefault(n.cfg.ConnectTimeout, 10*time.Second),
		Timeout:        orDefault(n.cfg.Timeout, 60*time.Second),
		Transport:      n.transport,
	}
}

// Authenticate logs in with a username and password.
// A username of the form "project:user" selects the project, otherwise the
// configured project name is used.
func (n *NcwConnector) Authenticate(ctx context.Context, username, password string) (Credentials, error) {
	if err := ctx.Err(); err != nil {
		return Credentials{}, err
	}
	c := n.connection()
	c.UserName = username
	c.ApiKey = password
	c.Tenant = n.cfg.ProjectName
	if project, user, ok := strings.Cut(username, ":"); ok && n.cfg.AuthVersion != 1 {
		c.Tenant = project
		c.UserName = user
	}

	err := c.Authenticate()
	n.metrics.ObserveSwift("authenticate", err)
	if err != nil {
		if err == ncw.AuthorizationFailed || StatusCode(err) == http.StatusUnauthorized {
			return Credentials{}, ErrInvalidCredentials
		}
		return Credentials{}, errors.Wrap(err, "authenticate")
	}

	log.Info().Str("user", username).Str("storage_url", c.StorageUrl).Msg("swift login")

	return Credentials{
		Username:   username,
		StorageURL: c.StorageUrl,
		Token:      c.AuthToken,
	}, nil
}

// Connect builds a client from stored credentials without contacting Swift
func (n *NcwConnector) Connect(creds Credentials) Client {
	c := n.connection()
	c.StorageUrl = creds.StorageURL
	c.AuthToken = creds.Token
	c.Auth = &sessionAuth{storageURL: creds.StorageURL, token: creds.Token}
	return newConn(c, n.metrics)
}

// Public returns an anonymous lister rooted at the configured storage URL
func (n *NcwConnector) Public(account string) Lister {
	base := strings.TrimSuffix(n.cfg.StorageURL, "/") + "/" + account
	return &publicLister{baseURL: base, http: n.http, metrics: n.metrics}
}
