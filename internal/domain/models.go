// internal/domain/models.go
package domain

import "time"

// Content types used by Swift clients to mark pseudo folders.
// Rackspace Cloudfiles uses application/directory, Cyberduck uses application/x-directory.
const (
	DirectoryContentType  = "application/directory"
	XDirectoryContentType = "application/x-directory"
)

// AccountStat represents the HEAD of a Swift account
type AccountStat struct {
	BytesUsed      int64             `json:"bytes_used"`
	ContainerCount int64             `json:"container_count"`
	ObjectCount    int64             `json:"object_count"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Container represents a single entry of an account listing
type Container struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
	Bytes int64  `json:"bytes"`
}

// Object represents a single entry of a container listing.
// Subdir is only set for delimiter listings and marks a pseudo folder.
type Object struct {
	Name         string    `json:"name"`
	Bytes        int64     `json:"bytes"`
	ContentType  string    `json:"content_type"`
	Hash         string    `json:"hash,omitempty"`
	LastModified time.Time `json:"last_modified"`
	Subdir       string    `json:"subdir,omitempty"`
}

// IsDirectoryMarker reports whether the object is a zero byte folder marker
func (o Object) IsDirectoryMarker() bool {
	return o.ContentType == DirectoryContentType || o.ContentType == XDirectoryContentType
}

// PseudoFolder is a folder entry in an object view.
// Entry always carries exactly one trailing slash, Subdir is the raw name returned by Swift.
type PseudoFolder struct {
	Entry  string `json:"entry"`
	Subdir string `json:"subdir"`
}

// Breadcrumb is one element of a prefix navigation bar
type Breadcrumb struct {
	DisplayName string `json:"display_name"`
	FullName    string `json:"full_name"`
}

// ACLEntry is one row of the container ACL table
type ACLEntry struct {
	Grant     string `json:"grant"`
	Read      bool   `json:"read"`
	Write     bool   `json:"write"`
	IsProject bool   `json:"is_project"`
}

// FlashLevel mirrors the message levels shown to the user
type FlashLevel string

const (
	FlashInfo    FlashLevel = "info"
	FlashSuccess FlashLevel = "success"
	FlashError   FlashLevel = "error"
)

// Flash is a one-shot message rendered on the next page
type Flash struct {
	Level   FlashLevel `json:"level"`
	Message string     `json:"message"`
	Link    string     `json:"link,omitempty"`
}

// ObjectView is everything needed to render a container listing
type ObjectView struct {
	Account   string         `json:"account"`
	Container string         `json:"container"`
	Prefix    string         `json:"prefix"`
	Prefixes  []Breadcrumb   `json:"prefixes"`
	Folders   []PseudoFolder `json:"folders"`
	Objects   []Object       `json:"objects"`
	Public    bool           `json:"public"`
}

// UploadForm holds the fields of a Swift formpost upload form
type UploadForm struct {
	SwiftURL     string
	RedirectURL  string
	MaxFileSize  int64
	MaxFileCount int
	Expires      int64
	Signature    string
}
