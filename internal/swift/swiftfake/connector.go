package swiftfake

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/andresuchdata/swiftbrowser/internal/domain"
	"github.com/andresuchdata/swiftbrowser/internal/swift"
)

// Connector authenticates users against a fixed password table and hands
// out a shared Account. Revoke invalidates every token issued so far.
type Connector struct {
	Account   *Account
	passwords map[string]string
	tokens    map[string]bool
}

var _ swift.Connector = (*Connector)(nil)

// NewConnector creates a connector for one account with the given users
func NewConnector(account *Account, passwords map[string]string) *Connector {
	return &Connector{Account: account, passwords: passwords, tokens: map[string]bool{}}
}

func (c *Connector) Authenticate(ctx context.Context, username, password string) (swift.Credentials, error) {
	if err := ctx.Err(); err != nil {
		return swift.Credentials{}, err
	}
	c.Account.mu.Lock()
	defer c.Account.mu.Unlock()
	if want, ok := c.passwords[username]; !ok || want != password {
		return swift.Credentials{}, swift.ErrInvalidCredentials
	}
	token := "AUTH_tk" + strings.ReplaceAll(uuid.NewString(), "-", "")
	c.tokens[token] = true
	return swift.Credentials{Username: username, StorageURL: c.Account.storageURL, Token: token}, nil
}

// Revoke expires every issued token
func (c *Connector) Revoke() {
	c.Account.mu.Lock()
	defer c.Account.mu.Unlock()
	c.tokens = map[string]bool{}
}

func (c *Connector) Connect(creds swift.Credentials) swift.Client {
	c.Account.mu.Lock()
	defer c.Account.mu.Unlock()
	if !c.tokens[creds.Token] {
		return &expired{storageURL: creds.StorageURL}
	}
	return c.Account
}

func (c *Connector) Public(account string) swift.Lister {
	return &publicLister{account: c.Account, name: account}
}

type publicLister struct {
	account *Account
	name    string
}

func (p *publicLister) Objects(ctx context.Context, name string, opts swift.ListOptions) ([]domain.Object, error) {
	a := p.account
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.begin(ctx, "PublicObjects"); err != nil {
		return nil, err
	}
	if domain.AccountName(a.storageURL) != p.name {
		return nil, swift.NewStatusError(http.StatusNotFound, "Not Found")
	}
	c, ok := a.containers[name]
	if !ok {
		return nil, swift.NewStatusError(http.StatusNotFound, "Not Found")
	}
	if !domain.ParseACL(c.headers[swift.ContainerReadHeader]).Contains(domain.PublicListingGrant) {
		return nil, swift.NewStatusError(http.StatusUnauthorized, "Unauthorized")
	}
	return list(c, opts), nil
}
