package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/swiftbrowser/internal/cache"
	"github.com/andresuchdata/swiftbrowser/internal/config"
	"github.com/andresuchdata/swiftbrowser/internal/domain"
	"github.com/andresuchdata/swiftbrowser/internal/swift"
	"github.com/andresuchdata/swiftbrowser/internal/tempurl"
)

const defaultDeleteConcurrency = 8

// ErrInvalidContainerName is returned for empty names or names containing a slash
var ErrInvalidContainerName = errors.New("invalid container name")

// StorageService runs the browser operations against Swift on behalf of a session
type StorageService struct {
	connector         swift.Connector
	cache             cache.ListingCache
	tempURL           config.TempURLConfig
	deleteConcurrency int
	now               func() time.Time
}

func NewStorageService(connector swift.Connector, cacheImpl cache.ListingCache, cfg *config.Config) *StorageService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopListingCache()
	}
	concurrency := cfg.Swift.DeleteConcurrency
	if concurrency <= 0 {
		concurrency = defaultDeleteConcurrency
	}
	return &StorageService{
		connector:         connector,
		cache:             cacheImpl,
		tempURL:           withTempURLDefaults(cfg.TempURL),
		deleteConcurrency: concurrency,
		now:               time.Now,
	}
}

func withTempURLDefaults(cfg config.TempURLConfig) config.TempURLConfig {
	if cfg.DownloadTTL <= 0 {
		cfg.DownloadTTL = tempurl.DownloadTTL
	}
	if cfg.ShareTTL <= 0 {
		cfg.ShareTTL = tempurl.ShareTTL
	}
	if cfg.UploadTTL <= 0 {
		cfg.UploadTTL = tempurl.UploadTTL
	}
	if cfg.UploadMaxFileSize <= 0 {
		cfg.UploadMaxFileSize = tempurl.UploadMaxFileSize
	}
	if cfg.UploadMaxFileCount <= 0 {
		cfg.UploadMaxFileCount = tempurl.UploadMaxFileCount
	}
	return cfg
}

func scopeOf(creds swift.Credentials) cache.Scope {
	return cache.Scope{Account: creds.StorageURL, Token: creds.Token}
}

// Login authenticates against the identity service
func (s *StorageService) Login(ctx context.Context, username, password string) (swift.Credentials, error) {
	return s.connector.Authenticate(ctx, username, password)
}

// Overview returns the account statistics and its containers
func (s *StorageService) Overview(ctx context.Context, creds swift.Credentials) (domain.AccountStat, []domain.Container, error) {
	client := s.connector.Connect(creds)

	stat, err := client.Account(ctx)
	if err != nil {
		return domain.AccountStat{}, nil, err
	}

	containers, err := s.containers(ctx, client, creds)
	if err != nil {
		return domain.AccountStat{}, nil, err
	}
	return stat, containers, nil
}

func (s *StorageService) containers(ctx context.Context, client swift.Client, creds swift.Credentials) ([]domain.Container, error) {
	scope := scopeOf(creds)
	if containers, ok, err := s.cache.GetContainers(ctx, scope); err == nil && ok {
		return containers, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("listing: cache get containers failed")
	}

	containers, err := client.Containers(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetContainers(ctx, scope, containers); err != nil {
		log.Warn().Err(err).Msg("listing: cache set containers failed")
	}
	return containers, nil
}

// CreateContainer creates an empty container
func (s *StorageService) CreateContainer(ctx context.Context, creds swift.Credentials, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "/") {
		return ErrInvalidContainerName
	}
	if err := s.connector.Connect(creds).CreateContainer(ctx, name); err != nil {
		return err
	}
	s.invalidate(ctx, creds, name)
	return nil
}

// DeleteContainer deletes every object of the container, then the container itself.
// Objects already gone are ignored.
func (s *StorageService) DeleteContainer(ctx context.Context, creds swift.Credentials, name string) error {
	client := s.connector.Connect(creds)
	defer s.invalidate(ctx, creds, name)

	names, err := client.ObjectNames(ctx, name)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.deleteConcurrency)
	for _, objectName := range names {
		objectName := objectName
		g.Go(func() error {
			if err := client.DeleteObject(gctx, name, objectName); err != nil && !swift.IsNotFound(err) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Debug().Str("container", name).Int("objects", len(names)).Msg("deleted container objects")
	return client.DeleteContainer(ctx, name)
}

// ObjectView lists one pseudo folder level of a container
func (s *StorageService) ObjectView(ctx context.Context, creds swift.Credentials, container, prefix string) (domain.ObjectView, error) {
	client := s.connector.Connect(creds)

	objects, err := s.objects(ctx, client, creds, container, prefix)
	if err != nil {
		return domain.ObjectView{}, err
	}

	headers, err := client.ContainerHeaders(ctx, container)
	if err != nil {
		return domain.ObjectView{}, err
	}

	view := newObjectView(domain.AccountName(creds.StorageURL), container, prefix, objects)
	view.Public = domain.IsPublic(swift.HeaderValue(headers, swift.ContainerReadHeader))
	return view, nil
}

func (s *StorageService) objects(ctx context.Context, client swift.Client, creds swift.Credentials, container, prefix string) ([]domain.Object, error) {
	scope := scopeOf(creds)
	if objects, ok, err := s.cache.GetObjects(ctx, scope, container, prefix); err == nil && ok {
		return objects, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("listing: cache get objects failed")
	}

	objects, err := client.Objects(ctx, container, swift.ListOptions{Prefix: prefix, Delimiter: '/'})
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetObjects(ctx, scope, container, prefix, objects); err != nil {
		log.Warn().Err(err).Msg("listing: cache set objects failed")
	}
	return objects, nil
}

// PublicView lists a container readable without a token
func (s *StorageService) PublicView(ctx context.Context, account, container, prefix string) (domain.ObjectView, error) {
	objects, err := s.connector.Public(account).Objects(ctx, container, swift.ListOptions{Prefix: prefix, Delimiter: '/'})
	if err != nil {
		return domain.ObjectView{}, err
	}
	view := newObjectView(account, container, prefix, objects)
	view.Public = true
	return view, nil
}

func newObjectView(account, container, prefix string, objects []domain.Object) domain.ObjectView {
	folders, plain := domain.SplitListing(objects, prefix)
	return domain.ObjectView{
		Account:   account,
		Container: container,
		Prefix:    prefix,
		Prefixes:  domain.PrefixList(prefix),
		Folders:   folders,
		Objects:   plain,
	}
}

// CreatePseudoFolder stores a zero byte directory marker and returns its name
func (s *StorageService) CreatePseudoFolder(ctx context.Context, creds swift.Credentials, container, prefix, foldername string) (string, error) {
	objectName, err := domain.FolderObjectName(strings.TrimSuffix(prefix, "/"), foldername)
	if err != nil {
		return "", err
	}
	client := s.connector.Connect(creds)
	if err := client.PutObject(ctx, container, objectName, domain.DirectoryContentType, bytes.NewReader(nil)); err != nil {
		return "", err
	}
	s.invalidate(ctx, creds, container)
	return objectName, nil
}

// DeleteObject removes an object and returns the prefix to show next.
// The prefix is returned even when the delete fails.
func (s *StorageService) DeleteObject(ctx context.Context, creds swift.Credentials, container, objectName string) (string, error) {
	parent := domain.ParentPrefix(objectName)
	if err := s.connector.Connect(creds).DeleteObject(ctx, container, objectName); err != nil {
		return parent, err
	}
	s.invalidate(ctx, creds, container)
	return parent, nil
}

// TogglePublic flips the public read ACL and reports the new state
func (s *StorageService) TogglePublic(ctx context.Context, creds swift.Credentials, container string) (bool, error) {
	client := s.connector.Connect(creds)
	headers, err := client.ContainerHeaders(ctx, container)
	if err != nil {
		return false, err
	}

	readACL := domain.TogglePublic(swift.HeaderValue(headers, swift.ContainerReadHeader))
	if err := client.UpdateContainer(ctx, container, map[string]string{swift.ContainerReadHeader: readACL}); err != nil {
		return false, err
	}
	s.invalidate(ctx, creds, container)
	return domain.IsPublic(readACL), nil
}

// ACLs returns the merged read/write ACL table of a container
func (s *StorageService) ACLs(ctx context.Context, creds swift.Credentials, container string) ([]domain.ACLEntry, error) {
	read, write, err := s.acls(ctx, s.connector.Connect(creds), container)
	if err != nil {
		return nil, err
	}
	return domain.ACLTable(read, write), nil
}

func (s *StorageService) acls(ctx context.Context, client swift.Client, container string) (string, string, error) {
	headers, err := client.ContainerHeaders(ctx, container)
	if err != nil {
		return "", "", err
	}
	return swift.HeaderValue(headers, swift.ContainerReadHeader), swift.HeaderValue(headers, swift.ContainerWriteHeader), nil
}

// GrantACL adds a user or project grant to the container ACLs
func (s *StorageService) GrantACL(ctx context.Context, creds swift.Credentials, container string, req domain.GrantRequest) error {
	if strings.TrimSpace(req.Username) == "" {
		return fmt.Errorf("grant: username is required")
	}
	client := s.connector.Connect(creds)
	read, write, err := s.acls(ctx, client, container)
	if err != nil {
		return err
	}
	read, write = domain.Grant(read, write, req)
	return s.updateACLs(ctx, client, creds, container, read, write)
}

// RevokeACL removes a grant from both container ACLs
func (s *StorageService) RevokeACL(ctx context.Context, creds swift.Credentials, container, grant string) error {
	client := s.connector.Connect(creds)
	read, write, err := s.acls(ctx, client, container)
	if err != nil {
		return err
	}
	read, write = domain.Revoke(read, write, grant)
	return s.updateACLs(ctx, client, creds, container, read, write)
}

func (s *StorageService) updateACLs(ctx context.Context, client swift.Client, creds swift.Credentials, container, read, write string) error {
	err := client.UpdateContainer(ctx, container, map[string]string{
		swift.ContainerReadHeader:  read,
		swift.ContainerWriteHeader: write,
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, creds, container)
	return nil
}

// DownloadURL returns a short lived GET temp URL for an object
func (s *StorageService) DownloadURL(ctx context.Context, creds swift.Credentials, container, objectName string) (string, error) {
	return s.signedURL(ctx, creds, container, objectName, s.tempURL.DownloadTTL)
}

// ShareURL returns a long lived GET temp URL meant to be handed out
func (s *StorageService) ShareURL(ctx context.Context, creds swift.Credentials, container, objectName string) (string, error) {
	return s.signedURL(ctx, creds, container, objectName, s.tempURL.ShareTTL)
}

// ShareExpiry returns when a share URL created now stops working
func (s *StorageService) ShareExpiry() time.Time {
	return s.now().Add(s.tempURL.ShareTTL)
}

func (s *StorageService) signedURL(ctx context.Context, creds swift.Credentials, container, objectName string, ttl time.Duration) (string, error) {
	key, err := swift.TempKey(ctx, s.connector.Connect(creds))
	if err != nil {
		return "", err
	}
	return tempurl.Sign(creds.StorageURL, container, objectName, key, "GET", s.now().Add(ttl))
}

// UploadForm prepares the fields of a formpost upload into container/prefix.
// baseURL is where the browser is sent back to after the upload.
func (s *StorageService) UploadForm(ctx context.Context, creds swift.Credentials, container, prefix, baseURL string) (domain.UploadForm, error) {
	client := s.connector.Connect(creds)
	if _, err := client.ContainerHeaders(ctx, container); err != nil {
		return domain.UploadForm{}, err
	}

	key, err := swift.TempKey(ctx, client)
	if err != nil {
		return domain.UploadForm{}, err
	}

	u, err := url.Parse(creds.StorageURL)
	if err != nil {
		return domain.UploadForm{}, fmt.Errorf("parse storage url: %w", err)
	}
	// formpost signs the decoded path, the browser posts to the escaped one
	uploadPath := strings.TrimRight(u.Path, "/") + "/" + container + "/" + prefix
	action := url.URL{Scheme: u.Scheme, Host: u.Host, Path: uploadPath}
	back := (&url.URL{Path: "/objects/" + container + "/" + prefix}).EscapedPath()

	form := domain.UploadForm{
		SwiftURL:     action.String(),
		RedirectURL:  strings.TrimRight(baseURL, "/") + back,
		MaxFileSize:  s.tempURL.UploadMaxFileSize,
		MaxFileCount: s.tempURL.UploadMaxFileCount,
		Expires:      s.now().Add(s.tempURL.UploadTTL).Unix(),
	}
	form.Signature = tempurl.FormPost(uploadPath, form.RedirectURL, form.MaxFileSize, form.MaxFileCount, form.Expires, key)
	return form, nil
}

// Logout drops the listings cached for the session's token
func (s *StorageService) Logout(ctx context.Context, creds swift.Credentials) {
	if creds.Token == "" {
		return
	}
	if err := s.cache.InvalidateScope(ctx, scopeOf(creds)); err != nil {
		log.Warn().Err(err).Msg("listing: cache invalidate session failed")
	}
}

// ForgetListings drops cached listings of a container, e.g. after a
// formpost upload that went straight to Swift
func (s *StorageService) ForgetListings(ctx context.Context, creds swift.Credentials, container string) {
	s.invalidate(ctx, creds, container)
}

func (s *StorageService) invalidate(ctx context.Context, creds swift.Credentials, container string) {
	if err := s.cache.InvalidateContainer(ctx, creds.StorageURL, container); err != nil {
		log.Warn().Err(err).Str("container", container).Msg("listing: cache invalidate failed")
	}
}
