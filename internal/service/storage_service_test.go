package service

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/swiftbrowser/internal/cache"
	"github.com/andresuchdata/swiftbrowser/internal/config"
	"github.com/andresuchdata/swiftbrowser/internal/domain"
	"github.com/andresuchdata/swiftbrowser/internal/swift"
	"github.com/andresuchdata/swiftbrowser/internal/swift/swiftfake"
	"github.com/andresuchdata/swiftbrowser/internal/tempurl"
)

const storageURL = "http://swift.example.com:8080/v1/AUTH_test"

type fixture struct {
	svc     *StorageService
	account *swiftfake.Account
	creds   swift.Credentials
}

func newFixture(t *testing.T, listingCache cache.ListingCache) *fixture {
	account := swiftfake.NewAccount(storageURL)
	connector := swiftfake.NewConnector(account, map[string]string{"test:tester": "testing"})

	svc := NewStorageService(connector, listingCache, &config.Config{Swift: config.SwiftConfig{DeleteConcurrency: 4}})
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }

	creds, err := svc.Login(context.Background(), "test:tester", "testing")
	require.NoError(t, err)
	return &fixture{svc: svc, account: account, creds: creds}
}

func newRedisCache(t *testing.T) cache.ListingCache {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisListingCache(client, time.Minute)
}

func TestLoginRejected(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Login(context.Background(), "test:tester", "nope")
	assert.ErrorIs(t, err, swift.ErrInvalidCredentials)
}

func TestOverviewUsesCacheUntilMutation(t *testing.T) {
	f := newFixture(t, newRedisCache(t))
	ctx := context.Background()
	f.account.AddObject("photos", "a.jpg", "image/jpeg", []byte("abc"))

	stat, containers, err := f.svc.Overview(ctx, f.creds)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stat.ContainerCount)
	require.Len(t, containers, 1)
	assert.Equal(t, int64(3), containers[0].Bytes)

	_, _, err = f.svc.Overview(ctx, f.creds)
	require.NoError(t, err)
	assert.Equal(t, 1, f.account.Calls("Containers"))

	require.NoError(t, f.svc.CreateContainer(ctx, f.creds, "docs"))
	_, containers, err = f.svc.Overview(ctx, f.creds)
	require.NoError(t, err)
	assert.Len(t, containers, 2)
	assert.Equal(t, 2, f.account.Calls("Containers"))
}

func TestLogoutForgetsSessionListings(t *testing.T) {
	f := newFixture(t, newRedisCache(t))
	ctx := context.Background()
	f.account.AddObject("photos", "a.jpg", "image/jpeg", []byte("abc"))

	_, err := f.svc.ObjectView(ctx, f.creds, "photos", "")
	require.NoError(t, err)
	_, err = f.svc.ObjectView(ctx, f.creds, "photos", "")
	require.NoError(t, err)
	assert.Equal(t, 1, f.account.Calls("Objects"))

	f.svc.Logout(ctx, f.creds)
	_, err = f.svc.ObjectView(ctx, f.creds, "photos", "")
	require.NoError(t, err)
	assert.Equal(t, 2, f.account.Calls("Objects"))
}

func TestCreateContainerValidatesName(t *testing.T) {
	f := newFixture(t, nil)
	assert.ErrorIs(t, f.svc.CreateContainer(context.Background(), f.creds, "  "), ErrInvalidContainerName)
	assert.ErrorIs(t, f.svc.CreateContainer(context.Background(), f.creds, "a/b"), ErrInvalidContainerName)
}

func TestDeleteContainerRemovesObjects(t *testing.T) {
	f := newFixture(t, nil)
	for i := 0; i < 25; i++ {
		f.account.AddObject("bulk", fmt.Sprintf("dir/%02d.txt", i), "text/plain", []byte("x"))
	}

	require.NoError(t, f.svc.DeleteContainer(context.Background(), f.creds, "bulk"))
	assert.False(t, f.account.HasContainer("bulk"))
	assert.Equal(t, 25, f.account.Calls("DeleteObject"))
}

func TestDeleteContainerStopsOnError(t *testing.T) {
	f := newFixture(t, nil)
	f.account.AddObject("bulk", "a.txt", "text/plain", []byte("x"))
	f.account.Fail("DeleteObject", swift.NewStatusError(403, "Forbidden"))

	err := f.svc.DeleteContainer(context.Background(), f.creds, "bulk")
	require.Error(t, err)
	assert.True(t, swift.IsForbidden(err))
	assert.True(t, f.account.HasContainer("bulk"))
}

func TestObjectView(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.account.AddObject("photos", "top.txt", "text/plain", []byte("1"))
	f.account.AddObject("photos", "a/", domain.DirectoryContentType, nil)
	f.account.AddObject("photos", "a/b.txt", "text/plain", []byte("22"))
	f.account.AddObject("photos", "a/c/d.txt", "text/plain", []byte("333"))

	view, err := f.svc.ObjectView(ctx, f.creds, "photos", "")
	require.NoError(t, err)
	assert.Equal(t, "AUTH_test", view.Account)
	assert.Empty(t, view.Prefixes)
	require.Len(t, view.Folders, 1)
	assert.Equal(t, "a/", view.Folders[0].Entry)
	require.Len(t, view.Objects, 1)
	assert.Equal(t, "top.txt", view.Objects[0].Name)
	assert.False(t, view.Public)

	view, err = f.svc.ObjectView(ctx, f.creds, "photos", "a/")
	require.NoError(t, err)
	assert.Equal(t, []domain.Breadcrumb{{DisplayName: "a", FullName: "a/"}}, view.Prefixes)
	require.Len(t, view.Folders, 1)
	assert.Equal(t, "a/c/", view.Folders[0].Entry)
	require.Len(t, view.Objects, 1, "the marker of the current folder is hidden")
	assert.Equal(t, "a/b.txt", view.Objects[0].Name)

	_, err = f.svc.ObjectView(ctx, f.creds, "missing", "")
	assert.True(t, swift.IsNotFound(err))
}

func TestTogglePublicAndPublicView(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.account.AddObject("photos", "a/b.txt", "text/plain", []byte("x"))

	_, err := f.svc.PublicView(ctx, "AUTH_test", "photos", "")
	require.Error(t, err)

	public, err := f.svc.TogglePublic(ctx, f.creds, "photos")
	require.NoError(t, err)
	assert.True(t, public)

	view, err := f.svc.PublicView(ctx, "AUTH_test", "photos", "a/")
	require.NoError(t, err)
	assert.True(t, view.Public)
	require.Len(t, view.Objects, 1)

	public, err = f.svc.TogglePublic(ctx, f.creds, "photos")
	require.NoError(t, err)
	assert.False(t, public)
	headers, err := f.account.ContainerHeaders(ctx, "photos")
	require.NoError(t, err)
	assert.Empty(t, headers[swift.ContainerReadHeader])
}

func TestACLGrantAndRevoke(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.account.CreateContainer(ctx, "shared"))

	require.NoError(t, f.svc.GrantACL(ctx, f.creds, "shared", domain.GrantRequest{Username: "proj:alice", Read: true}))
	require.NoError(t, f.svc.GrantACL(ctx, f.creds, "shared", domain.GrantRequest{Username: "proj:alice", Read: true, Write: true, ProjectAccess: true}))
	require.NoError(t, f.svc.GrantACL(ctx, f.creds, "shared", domain.GrantRequest{Username: "proj:alice", Read: true}))

	entries, err := f.svc.ACLs(ctx, f.creds, "shared")
	require.NoError(t, err)
	assert.Equal(t, []domain.ACLEntry{
		{Grant: "proj:*", Read: true, Write: true, IsProject: true},
		{Grant: "proj:alice", Read: true},
	}, entries)

	require.NoError(t, f.svc.RevokeACL(ctx, f.creds, "shared", "proj:*"))
	entries, err = f.svc.ACLs(ctx, f.creds, "shared")
	require.NoError(t, err)
	assert.Equal(t, []domain.ACLEntry{{Grant: "proj:alice", Read: true}}, entries)

	assert.Error(t, f.svc.GrantACL(ctx, f.creds, "shared", domain.GrantRequest{Read: true}))
}

func TestCreatePseudoFolder(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.account.CreateContainer(ctx, "photos"))

	name, err := f.svc.CreatePseudoFolder(ctx, f.creds, "photos", "a/", "/new//folder/")
	require.NoError(t, err)
	assert.Equal(t, "a/new/folder/", name)
	data, ok := f.account.Object("photos", name)
	require.True(t, ok)
	assert.Empty(t, data)

	_, err = f.svc.CreatePseudoFolder(ctx, f.creds, "photos", "", "../x")
	assert.ErrorIs(t, err, domain.ErrInvalidFolderName)
}

func TestDeleteObjectReturnsParent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.account.AddObject("photos", "a/b/c.txt", "text/plain", []byte("x"))

	parent, err := f.svc.DeleteObject(ctx, f.creds, "photos", "a/b/c.txt")
	require.NoError(t, err)
	assert.Equal(t, "a/b/", parent)

	parent, err = f.svc.DeleteObject(ctx, f.creds, "photos", "a/b/c.txt")
	assert.True(t, swift.IsNotFound(err))
	assert.Equal(t, "a/b/", parent)
}

func TestDownloadAndShareURL(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	download, err := f.svc.DownloadURL(ctx, f.creds, "photos", "a/b c.jpg")
	require.NoError(t, err)
	key := swift.HeaderValue(f.account.Headers(), tempurl.AccountKeyHeader)
	require.Len(t, key, 32)

	want, err := tempurl.Sign(storageURL, "photos", "a/b c.jpg", key, "GET", time.Unix(1700000600, 0))
	require.NoError(t, err)
	assert.Equal(t, want, download)

	share, err := f.svc.ShareURL(ctx, f.creds, "photos", "a/b c.jpg")
	require.NoError(t, err)
	u, err := url.Parse(share)
	require.NoError(t, err)
	assert.Equal(t, "1700604800", u.Query().Get("temp_url_expires"))
	assert.Equal(t, 1, f.account.Calls("UpdateAccount"), "the key is created once")
}

func TestUploadForm(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.UploadForm(ctx, f.creds, "missing", "", "http://localhost:8080")
	assert.True(t, swift.IsNotFound(err))

	require.NoError(t, f.account.CreateContainer(ctx, "photos"))
	form, err := f.svc.UploadForm(ctx, f.creds, "photos", "a/", "http://localhost:8080/")
	require.NoError(t, err)

	assert.Equal(t, storageURL+"/photos/a/", form.SwiftURL)
	assert.Equal(t, "http://localhost:8080/objects/photos/a/", form.RedirectURL)
	assert.Equal(t, tempurl.UploadMaxFileSize, form.MaxFileSize)
	assert.Equal(t, 1, form.MaxFileCount)
	assert.Equal(t, int64(1700000900), form.Expires)

	key := swift.HeaderValue(f.account.Headers(), tempurl.AccountKeyHeader)
	assert.Equal(t, tempurl.FormPost("/v1/AUTH_test/photos/a/", form.RedirectURL, form.MaxFileSize, 1, form.Expires, key), form.Signature)
}

func TestUploadFormEscapesPrefix(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.account.CreateContainer(ctx, "photos"))
	key := ""

	cases := []struct {
		prefix  string
		escaped string
	}{
		{prefix: "a#b/", escaped: "a%23b/"},
		{prefix: "q?x/", escaped: "q%3Fx/"},
		{prefix: "100%/", escaped: "100%25/"},
		{prefix: "my docs/", escaped: "my%20docs/"},
	}
	for _, tc := range cases {
		t.Run(tc.prefix, func(t *testing.T) {
			form, err := f.svc.UploadForm(ctx, f.creds, "photos", tc.prefix, "http://localhost:8080")
			require.NoError(t, err)

			assert.Equal(t, storageURL+"/photos/"+tc.escaped, form.SwiftURL)
			assert.Equal(t, "http://localhost:8080/objects/photos/"+tc.escaped, form.RedirectURL)

			// the browser posts to the decoded form of the action
			u, err := url.Parse(form.SwiftURL)
			require.NoError(t, err)
			assert.Equal(t, "/v1/AUTH_test/photos/"+tc.prefix, u.Path)
			assert.Empty(t, u.RawQuery)
			assert.Empty(t, u.Fragment)

			if key == "" {
				key = swift.HeaderValue(f.account.Headers(), tempurl.AccountKeyHeader)
			}
			assert.Equal(t, tempurl.FormPost(u.Path, form.RedirectURL, form.MaxFileSize, 1, form.Expires, key), form.Signature)
		})
	}
}

func TestExpiredSession(t *testing.T) {
	f := newFixture(t, nil)
	stale := f.creds
	stale.Token = "gone"

	_, _, err := f.svc.Overview(context.Background(), stale)
	require.Error(t, err)
	assert.True(t, swift.IsUnauthorized(err))
}
