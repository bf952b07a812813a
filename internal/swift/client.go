// Package swift wraps the OpenStack Swift REST API behind the small set of
// calls the browser needs.
package swift

import (
	"context"
	"io"

	"github.com/andresuchdata/swiftbrowser/internal/domain"
)

// Well known headers
const (
	ContainerReadHeader  = "X-Container-Read"
	ContainerWriteHeader = "X-Container-Write"
)

// Credentials identify an authenticated session against one Swift account
type Credentials struct {
	Username   string `json:"username"`
	StorageURL string `json:"storage_url"`
	Token      string `json:"token"`
}

// ListOptions narrows a container listing.
// With a Delimiter set, names sharing a prefix up to the delimiter are folded into subdirs.
type ListOptions struct {
	Prefix    string
	Delimiter rune
}

// Lister can list the objects of a container
type Lister interface {
	Objects(ctx context.Context, container string, opts ListOptions) ([]domain.Object, error)
}

// Client is an authenticated connection to a single Swift account
type Client interface {
	Lister

	StorageURL() string

	Account(ctx context.Context) (domain.AccountStat, error)
	UpdateAccount(ctx context.Context, headers map[string]string) error

	Containers(ctx context.Context) ([]domain.Container, error)
	CreateContainer(ctx context.Context, container string) error
	DeleteContainer(ctx context.Context, container string) error
	ContainerHeaders(ctx context.Context, container string) (map[string]string, error)
	UpdateContainer(ctx context.Context, container string, headers map[string]string) error

	ObjectNames(ctx context.Context, container string) ([]string, error)
	PutObject(ctx context.Context, container, object, contentType string, body io.Reader) error
	DeleteObject(ctx context.Context, container, object string) error
}

// Connector opens clients. Authenticate talks to the identity service,
// Connect reuses credentials stored in a session and Public returns an
// anonymous lister for the given account.
type Connector interface {
	Authenticate(ctx context.Context, username, password string) (Credentials, error)
	Connect(creds Credentials) Client
	Public(account string) Lister
}
