package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixList(t *testing.T) {
	assert.Empty(t, PrefixList(""))
	assert.Equal(t, []Breadcrumb{
		{DisplayName: "a", FullName: "a/"},
		{DisplayName: "b", FullName: "a/b/"},
	}, PrefixList("a/b/"))
	assert.Equal(t, []Breadcrumb{
		{DisplayName: "a", FullName: "a/"},
		{DisplayName: "c", FullName: "a/c/"},
	}, PrefixList("/a//c"))
}

func TestSplitListing(t *testing.T) {
	objects := []Object{
		{Subdir: "photos/"},
		{Name: "photos", ContentType: XDirectoryContentType},
		{Name: "docs/", ContentType: DirectoryContentType},
		{Subdir: "docs/"},
		{Name: "readme.txt", ContentType: "text/plain", Bytes: 12},
		{Subdir: "current/"},
	}

	folders, plain := SplitListing(objects, "current/")
	assert.Equal(t, []PseudoFolder{
		{Entry: "photos/", Subdir: "photos/"},
		{Entry: "docs/", Subdir: "docs/"},
	}, folders)
	require.Len(t, plain, 1)
	assert.Equal(t, "readme.txt", plain[0].Name)
}

func TestParentPrefix(t *testing.T) {
	assert.Equal(t, "", ParentPrefix("file.txt"))
	assert.Equal(t, "a/b/", ParentPrefix("a/b/file.txt"))
	assert.Equal(t, "a/", ParentPrefix("a/b/"))
	assert.Equal(t, "", ParentPrefix("a/"))
}

func TestAccountName(t *testing.T) {
	assert.Equal(t, "AUTH_test", AccountName("https://swift.example.com/v1/AUTH_test"))
	assert.Equal(t, "AUTH_test", AccountName("https://swift.example.com/v1/AUTH_test/"))
}

func TestParseACL(t *testing.T) {
	acl := ParseACL(" .r:*, ,team:alice,.r:*,,")
	assert.Equal(t, ACL{".r:*", "team:alice"}, acl)
	assert.Equal(t, ".r:*,team:alice", acl.String())
	assert.Empty(t, ParseACL(""))
}

func TestIsPublic(t *testing.T) {
	assert.False(t, IsPublic(""))
	assert.False(t, IsPublic("team:alice"))
	assert.True(t, IsPublic(".rlistings"))
	assert.True(t, IsPublic("team:alice,.r:*"))
}

func TestTogglePublic(t *testing.T) {
	public := TogglePublic("team:alice")
	assert.Equal(t, "team:alice,.r:*,.rlistings", public)

	private := TogglePublic(public)
	assert.Equal(t, "team:alice", private)

	assert.Equal(t, ".r:*,.rlistings", TogglePublic(""))
	assert.Equal(t, "", TogglePublic(".rlistings,.r:*"))
}

func TestGrant(t *testing.T) {
	read, write := Grant("a:b", "", GrantRequest{Username: "proj:user", Read: true, Write: true})
	assert.Equal(t, "a:b,proj:user", read)
	assert.Equal(t, "proj:user", write)

	read, write = Grant(read, write, GrantRequest{Username: "proj:user", Read: true})
	assert.Equal(t, "a:b,proj:user", read)
	assert.Equal(t, "proj:user", write)

	read, write = Grant("", "", GrantRequest{Username: "proj:user", Read: true, ProjectAccess: true})
	assert.Equal(t, "proj:*", read)
	assert.Equal(t, "", write)
}

func TestRevoke(t *testing.T) {
	read, write := Revoke("a:b,proj:*", "proj:*", "proj:*")
	assert.Equal(t, "a:b", read)
	assert.Equal(t, "", write)
}

func TestACLTable(t *testing.T) {
	entries := ACLTable("proj:*,a:b,.r:*", "a:b")
	assert.Equal(t, []ACLEntry{
		{Grant: ".r:*", Read: true},
		{Grant: "a:b", Read: true, Write: true},
		{Grant: "proj:*", Read: true, IsProject: true},
	}, entries)
}

func TestFolderObjectName(t *testing.T) {
	cases := []struct {
		prefix, name, want string
	}{
		{"", "photos", "photos/"},
		{"", "/photos/", "photos/"},
		{"a/b/", "c", "a/b/c/"},
		{"a/", "c/../d", "a/d/"},
		{"a/", "./c", "a/c/"},
	}
	for _, tc := range cases {
		got, err := FolderObjectName(tc.prefix, tc.name)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, got, tc.name)
	}

	for _, bad := range []string{"", "  ", ".", "..", "../x"} {
		_, err := FolderObjectName("", bad)
		assert.ErrorIs(t, err, ErrInvalidFolderName, bad)
	}
	_, err := FolderObjectName("a/", "../..")
	assert.ErrorIs(t, err, ErrInvalidFolderName)
}

func TestFormatTimestamp(t *testing.T) {
	want := time.Unix(1700000000, 0).Local().Format("2006-01-02 15:04:05")
	assert.Equal(t, want, FormatTimestamp("1700000000.12345"))
	assert.Equal(t, want, FormatTimestamp(int64(1700000000)))
	assert.Equal(t, "not a date", FormatTimestamp("not a date"))
	assert.Equal(t, want, FormatTimestamp(uint64(1700000000)))
	assert.Equal(t, want, FormatTimestamp(int32(1700000000)))
	assert.Equal(t, "", FormatTimestamp(nil))
	assert.Equal(t, "true", FormatTimestamp(true))
	assert.Equal(t, "[1 2]", FormatTimestamp([]int{1, 2}))
}
