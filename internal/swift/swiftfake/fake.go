// Package swiftfake is an in-memory Swift account for tests
package swiftfake

import (
	"context"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/swiftbrowser/internal/domain"
	"github.com/andresuchdata/swiftbrowser/internal/swift"
)

type object struct {
	data        []byte
	contentType string
	modified    time.Time
}

type container struct {
	headers map[string]string
	objects map[string]object
}

// Account is a single in-memory Swift account implementing swift.Client
type Account struct {
	mu         sync.Mutex
	storageURL string
	headers    map[string]string
	containers map[string]*container
	failures   map[string]error
	calls      map[string]int
	now        func() time.Time
}

var _ swift.Client = (*Account)(nil)

// NewAccount creates an empty account served at storageURL
func NewAccount(storageURL string) *Account {
	return &Account{
		storageURL: storageURL,
		headers:    map[string]string{},
		containers: map[string]*container{},
		failures:   map[string]error{},
		calls:      map[string]int{},
		now:        time.Now,
	}
}

// Fail makes every later call of op return err. A nil err clears it.
func (a *Account) Fail(op string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err == nil {
		delete(a.failures, op)
		return
	}
	a.failures[op] = err
}

// Calls returns how many times op was invoked
func (a *Account) Calls(op string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[op]
}

// AddObject stores an object, creating the container if needed
func (a *Account) AddObject(containerName, name, contentType string, data []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c := a.ensure(containerName)
	c.objects[name] = object{data: append([]byte(nil), data...), contentType: contentType, modified: a.now().UTC()}
}

// Object returns the stored bytes of an object
func (a *Account) Object(containerName, name string) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.containers[containerName]
	if !ok {
		return nil, false
	}
	o, ok := c.objects[name]
	return o.data, ok
}

// HasContainer reports whether the container exists
func (a *Account) HasContainer(name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.containers[name]
	return ok
}

// Headers returns a copy of the account metadata
func (a *Account) Headers() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return copyHeaders(a.headers)
}

func (a *Account) ensure(name string) *container {
	c, ok := a.containers[name]
	if !ok {
		c = &container{headers: map[string]string{}, objects: map[string]object{}}
		a.containers[name] = c
	}
	return c
}

func (a *Account) begin(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.calls[op]++
	return a.failures[op]
}

func (a *Account) StorageURL() string {
	return a.storageURL
}

func (a *Account) Account(ctx context.Context) (domain.AccountStat, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.begin(ctx, "Account"); err != nil {
		return domain.AccountStat{}, err
	}
	stat := domain.AccountStat{ContainerCount: int64(len(a.containers)), Metadata: copyHeaders(a.headers)}
	for _, c := range a.containers {
		for _, o := range c.objects {
			stat.ObjectCount++
			stat.BytesUsed += int64(len(o.data))
		}
	}
	return stat, nil
}

func (a *Account) UpdateAccount(ctx context.Context, headers map[string]string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.begin(ctx, "UpdateAccount"); err != nil {
		return err
	}
	mergeHeaders(a.headers, headers)
	return nil
}

func (a *Account) Containers(ctx context.Context) ([]domain.Container, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.begin(ctx, "Containers"); err != nil {
		return nil, err
	}
	list := make([]domain.Container, 0, len(a.containers))
	for name, c := range a.containers {
		entry := domain.Container{Name: name, Count: int64(len(c.objects))}
		for _, o := range c.objects {
			entry.Bytes += int64(len(o.data))
		}
		list = append(list, entry)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (a *Account) CreateContainer(ctx context.Context, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.begin(ctx, "CreateContainer"); err != nil {
		return err
	}
	a.ensure(name)
	return nil
}

func (a *Account) DeleteContainer(ctx context.Context, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.begin(ctx, "DeleteContainer"); err != nil {
		return err
	}
	c, ok := a.containers[name]
	if !ok {
		return swift.NewStatusError(http.StatusNotFound, "Container Not Found")
	}
	if len(c.objects) > 0 {
		return swift.NewStatusError(http.StatusConflict, "Container Not Empty")
	}
	delete(a.containers, name)
	return nil
}

func (a *Account) ContainerHeaders(ctx context.Context, name string) (map[string]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.begin(ctx, "ContainerHeaders"); err != nil {
		return nil, err
	}
	c, ok := a.containers[name]
	if !ok {
		return nil, swift.NewStatusError(http.StatusNotFound, "Container Not Found")
	}
	return copyHeaders(c.headers), nil
}

func (a *Account) UpdateContainer(ctx context.Context, name string, headers map[string]string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.begin(ctx, "UpdateContainer"); err != nil {
		return err
	}
	c, ok := a.containers[name]
	if !ok {
		return swift.NewStatusError(http.StatusNotFound, "Container Not Found")
	}
	mergeHeaders(c.headers, headers)
	return nil
}

func (a *Account) Objects(ctx context.Context, name string, opts swift.ListOptions) ([]domain.Object, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.begin(ctx, "Objects"); err != nil {
		return nil, err
	}
	c, ok := a.containers[name]
	if !ok {
		return nil, swift.NewStatusError(http.StatusNotFound, "Container Not Found")
	}
	return list(c, opts), nil
}

func (a *Account) ObjectNames(ctx context.Context, name string) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.begin(ctx, "ObjectNames"); err != nil {
		return nil, err
	}
	c, ok := a.containers[name]
	if !ok {
		return nil, swift.NewStatusError(http.StatusNotFound, "Container Not Found")
	}
	names := make([]string, 0, len(c.objects))
	for n := range c.objects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (a *Account) PutObject(ctx context.Context, name, objectName, contentType string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.begin(ctx, "PutObject"); err != nil {
		return err
	}
	c, ok := a.containers[name]
	if !ok {
		return swift.NewStatusError(http.StatusNotFound, "Container Not Found")
	}
	c.objects[objectName] = object{data: data, contentType: contentType, modified: a.now().UTC()}
	return nil
}

func (a *Account) DeleteObject(ctx context.Context, name, objectName string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.begin(ctx, "DeleteObject"); err != nil {
		return err
	}
	c, ok := a.containers[name]
	if !ok {
		return swift.NewStatusError(http.StatusNotFound, "Container Not Found")
	}
	if _, ok := c.objects[objectName]; !ok {
		return swift.NewStatusError(http.StatusNotFound, "Object Not Found")
	}
	delete(c.objects, objectName)
	return nil
}

// list applies prefix and delimiter folding the way a Swift container listing does
func list(c *container, opts swift.ListOptions) []domain.Object {
	names := make([]string, 0, len(c.objects))
	for n := range c.objects {
		if strings.HasPrefix(n, opts.Prefix) {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	out := make([]domain.Object, 0, len(names))
	seen := map[string]bool{}
	for _, n := range names {
		if opts.Delimiter != 0 {
			rest := n[len(opts.Prefix):]
			if i := strings.IndexRune(rest, opts.Delimiter); i >= 0 {
				subdir := opts.Prefix + rest[:i+len(string(opts.Delimiter))]
				if !seen[subdir] {
					seen[subdir] = true
					out = append(out, domain.Object{Name: subdir, Subdir: subdir, ContentType: domain.DirectoryContentType})
				}
				continue
			}
		}
		o := c.objects[n]
		out = append(out, domain.Object{
			Name:         n,
			Bytes:        int64(len(o.data)),
			ContentType:  o.contentType,
			LastModified: o.modified,
		})
	}
	return out
}

func copyHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// mergeHeaders applies a POST; empty values remove the header as Swift does
func mergeHeaders(dst, src map[string]string) {
	for k, v := range src {
		k = http.CanonicalHeaderKey(k)
		if v == "" {
			delete(dst, k)
			continue
		}
		dst[k] = v
	}
}
