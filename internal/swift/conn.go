package swift

import (
	"context"
	"io"
	"net/http"
	"sort"

	"github.com/andresuchdata/swiftbrowser/internal/domain"
	"github.com/andresuchdata/swiftbrowser/internal/metrics"
	ncw "github.com/ncw/swift"
	"github.com/pkg/errors"
)

// sessionAuth keeps a token obtained at login. Re-authentication after a 401
// fails with ErrUnauthorized, there is no password to log in again with.
type sessionAuth struct {
	storageURL string
	token      string
}

func (a *sessionAuth) Request(*ncw.Connection) (*http.Request, error) {
	if a.token == "" || a.storageURL == "" {
		return nil, ErrNotAuthenticated
	}
	return nil, ErrUnauthorized
}

func (a *sessionAuth) Response(*http.Response) error { return nil }
func (a *sessionAuth) StorageUrl(bool) string        { return a.storageURL }
func (a *sessionAuth) Token() string                 { return a.token }
func (a *sessionAuth) CdnUrl() string                { return "" }

type conn struct {
	c       *ncw.Connection
	metrics *metrics.Metrics
}

func newConn(c *ncw.Connection, m *metrics.Metrics) *conn {
	return &conn{c: c, metrics: m}
}

func (s *conn) observe(op string, err error) error {
	s.metrics.ObserveSwift(op, err)
	if err == ncw.AuthorizationFailed {
		return ErrUnauthorized
	}
	return err
}

func (s *conn) StorageURL() string {
	return s.c.StorageUrl
}

func (s *conn) Account(ctx context.Context) (domain.AccountStat, error) {
	if err := ctx.Err(); err != nil {
		return domain.AccountStat{}, err
	}
	info, headers, err := s.c.Account()
	if err = s.observe("account_head", err); err != nil {
		return domain.AccountStat{}, errors.Wrap(err, "head account")
	}
	return domain.AccountStat{
		BytesUsed:      info.BytesUsed,
		ContainerCount: info.Containers,
		ObjectCount:    info.Objects,
		Metadata:       headers,
	}, nil
}

func (s *conn) UpdateAccount(ctx context.Context, headers map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.c.AccountUpdate(ncw.Headers(headers))
	return errors.Wrap(s.observe("account_post", err), "update account")
}

func (s *conn) Containers(ctx context.Context) ([]domain.Container, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	list, err := s.c.ContainersAll(nil)
	if err = s.observe("container_list", err); err != nil {
		return nil, errors.Wrap(err, "list containers")
	}
	containers := make([]domain.Container, 0, len(list))
	for _, c := range list {
		containers = append(containers, domain.Container{Name: c.Name, Count: c.Count, Bytes: c.Bytes})
	}
	return containers, nil
}

func (s *conn) CreateContainer(ctx context.Context, container string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.c.ContainerCreate(container, nil)
	return errors.Wrapf(s.observe("container_put", err), "create container %q", container)
}

func (s *conn) DeleteContainer(ctx context.Context, container string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.c.ContainerDelete(container)
	return errors.Wrapf(s.observe("container_delete", err), "delete container %q", container)
}

func (s *conn) ContainerHeaders(ctx context.Context, container string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, headers, err := s.c.Container(container)
	if err = s.observe("container_head", err); err != nil {
		return nil, errors.Wrapf(err, "head container %q", container)
	}
	return headers, nil
}

func (s *conn) UpdateContainer(ctx context.Context, container string, headers map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.c.ContainerUpdate(container, ncw.Headers(headers))
	return errors.Wrapf(s.observe("container_post", err), "update container %q", container)
}

func (s *conn) Objects(ctx context.Context, container string, opts ListOptions) ([]domain.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	list, err := s.c.ObjectsAll(container, &ncw.ObjectsOpts{Prefix: opts.Prefix, Delimiter: opts.Delimiter})
	if err = s.observe("object_list", err); err != nil {
		return nil, errors.Wrapf(err, "list objects in %q", container)
	}
	return convertObjects(list), nil
}

func (s *conn) ObjectNames(ctx context.Context, container string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	names, err := s.c.ObjectNamesAll(container, nil)
	if err = s.observe("object_names", err); err != nil {
		return nil, errors.Wrapf(err, "list object names in %q", container)
	}
	return names, nil
}

func (s *conn) PutObject(ctx context.Context, container, object, contentType string, body io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.c.ObjectPut(container, object, body, false, "", contentType, nil)
	return errors.Wrapf(s.observe("object_put", err), "put object %q/%q", container, object)
}

func (s *conn) DeleteObject(ctx context.Context, container, object string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.c.ObjectDelete(container, object)
	return errors.Wrapf(s.observe("object_delete", err), "delete object %q/%q", container, object)
}

// convertObjects maps ncw listing entries; subdir entries keep their
// name in Subdir so callers can tell them from real objects.
func convertObjects(list []ncw.Object) []domain.Object {
	objects := make([]domain.Object, 0, len(list))
	for _, o := range list {
		obj := domain.Object{
			Name:         o.Name,
			Bytes:        o.Bytes,
			ContentType:  o.ContentType,
			Hash:         o.Hash,
			LastModified: o.LastModified,
		}
		if o.PseudoDirectory || o.SubDir != "" {
			obj.Subdir = o.SubDir
			if obj.Subdir == "" {
				obj.Subdir = o.Name
			}
		}
		objects = append(objects, obj)
	}
	sort.SliceStable(objects, func(i, j int) bool {
		return entryName(objects[i]) < entryName(objects[j])
	})
	return objects
}

func entryName(o domain.Object) string {
	if o.Subdir != "" {
		return o.Subdir
	}
	return o.Name
}
