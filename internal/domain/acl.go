package domain

import (
	"sort"
	"strings"
)

// Referrer grants that make a container world readable and listable.
const (
	PublicReadGrant    = ".r:*"
	PublicListingGrant = ".rlistings"
)

// ACL is an ordered, duplicate free list of grants from an
// X-Container-Read or X-Container-Write header.
type ACL []string

// ParseACL splits a comma separated ACL header. Whitespace and empty
// elements are dropped and only the first occurrence of a grant is kept.
func ParseACL(header string) ACL {
	acl := make(ACL, 0)
	for _, part := range strings.Split(header, ",") {
		acl = acl.With(strings.TrimSpace(part))
	}
	return acl
}

// String renders the ACL back into header form
func (a ACL) String() string {
	return strings.Join(a, ",")
}

// Contains reports whether grant is present
func (a ACL) Contains(grant string) bool {
	for _, g := range a {
		if g == grant {
			return true
		}
	}
	return false
}

// With returns the ACL with grant appended unless it is empty or already present.
func (a ACL) With(grant string) ACL {
	if grant == "" || a.Contains(grant) {
		return a
	}
	return append(a, grant)
}

// Without returns a copy of the ACL with grant removed
func (a ACL) Without(grant string) ACL {
	out := make(ACL, 0, len(a))
	for _, g := range a {
		if g != grant {
			out = append(out, g)
		}
	}
	return out
}

// IsPublic reports whether a read ACL holds any of the public grants
func IsPublic(readACL string) bool {
	acl := ParseACL(readACL)
	return acl.Contains(PublicReadGrant) || acl.Contains(PublicListingGrant)
}

// TogglePublic flips a read ACL between private and public.
// A container counts as public here when .r:* is present; making it private
// removes both public grants, making it public appends both.
func TogglePublic(readACL string) string {
	acl := ParseACL(readACL)
	if acl.Contains(PublicReadGrant) {
		return acl.Without(PublicReadGrant).Without(PublicListingGrant).String()
	}
	return acl.With(PublicReadGrant).With(PublicListingGrant).String()
}

// GrantRequest is the payload of the add ACL form.
// Username is expected as project_id:user_id for Keystone.
type GrantRequest struct {
	Username      string
	Read          bool
	Write         bool
	ProjectAccess bool
}

// GrantName returns the grant string for the request. With project access
// the whole project is granted as project_id:*.
func (r GrantRequest) GrantName() string {
	username := strings.TrimSpace(r.Username)
	if !r.ProjectAccess {
		return username
	}
	projectID := strings.SplitN(username, ":", 2)[0]
	return projectID + ":*"
}

// Grant adds the request's grant to the selected ACLs and returns the new headers.
func Grant(readACL, writeACL string, req GrantRequest) (string, string) {
	read := ParseACL(readACL)
	write := ParseACL(writeACL)
	grant := req.GrantName()

	if req.Read {
		read = read.With(grant)
	}
	if req.Write {
		write = write.With(grant)
	}
	return read.String(), write.String()
}

// Revoke removes grant from both ACLs
func Revoke(readACL, writeACL, grant string) (string, string) {
	grant = strings.TrimSpace(grant)
	return ParseACL(readACL).Without(grant).String(), ParseACL(writeACL).Without(grant).String()
}

// ACLTable merges both ACLs into one row per grant, sorted by grant.
func ACLTable(readACL, writeACL string) []ACLEntry {
	read := ParseACL(readACL)
	write := ParseACL(writeACL)

	entries := make([]ACLEntry, 0, len(read)+len(write))
	for _, grant := range append(append(ACL{}, read...), write...) {
		found := false
		for _, e := range entries {
			if e.Grant == grant {
				found = true
				break
			}
		}
		if found {
			continue
		}
		entries = append(entries, ACLEntry{
			Grant:     grant,
			Read:      read.Contains(grant),
			Write:     write.Contains(grant),
			IsProject: strings.HasSuffix(grant, ":*") && !strings.HasPrefix(grant, "."),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Grant < entries[j].Grant })
	return entries
}
