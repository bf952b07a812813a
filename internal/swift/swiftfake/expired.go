package swiftfake

import (
	"context"
	"io"

	"github.com/andresuchdata/swiftbrowser/internal/domain"
	"github.com/andresuchdata/swiftbrowser/internal/swift"
)

// expired is handed out for unknown tokens; every call fails like a rejected token
type expired struct {
	storageURL string
}

func (e *expired) StorageURL() string { return e.storageURL }

func (e *expired) Account(context.Context) (domain.AccountStat, error) {
	return domain.AccountStat{}, swift.ErrUnauthorized
}

func (e *expired) UpdateAccount(context.Context, map[string]string) error {
	return swift.ErrUnauthorized
}

func (e *expired) Containers(context.Context) ([]domain.Container, error) {
	return nil, swift.ErrUnauthorized
}

func (e *expired) CreateContainer(context.Context, string) error { return swift.ErrUnauthorized }
func (e *expired) DeleteContainer(context.Context, string) error { return swift.ErrUnauthorized }

func (e *expired) ContainerHeaders(context.Context, string) (map[string]string, error) {
	return nil, swift.ErrUnauthorized
}

func (e *expired) UpdateContainer(context.Context, string, map[string]string) error {
	return swift.ErrUnauthorized
}

func (e *expired) Objects(context.Context, string, swift.ListOptions) ([]domain.Object, error) {
	return nil, swift.ErrUnauthorized
}

func (e *expired) ObjectNames(context.Context, string) ([]string, error) {
	return nil, swift.ErrUnauthorized
}

func (e *expired) PutObject(context.Context, string, string, string, io.Reader) error {
	return swift.ErrUnauthorized
}

func (e *expired) DeleteObject(context.Context, string, string) error { return swift.ErrUnauthorized }
