package domain

import (
	"strings"
)

// PrefixList builds the breadcrumbs for a pseudo folder prefix.
// "a/b/" gives [{a a/} {b a/b/}]; empty elements are skipped.
func PrefixList(prefix string) []Breadcrumb {
	crumbs := make([]Breadcrumb, 0)
	if prefix == "" {
		return crumbs
	}

	full := ""
	for _, element := range strings.Split(prefix, "/") {
		if element == "" {
			continue
		}
		full += element + "/"
		crumbs = append(crumbs, Breadcrumb{DisplayName: element, FullName: full})
	}
	return crumbs
}

// SplitListing separates a delimiter listing into pseudo folders and plain objects.
func SplitListing(objects []Object, prefix string) ([]PseudoFolder, []Object) {
	folders := make([]PseudoFolder, 0)
	plain := make([]Object, 0, len(objects))
	seen := make(map[string]struct{})

	for _, obj := range objects {
		if obj.IsDirectoryMarker() {
			obj.Subdir = obj.Name
		}

		if obj.Subdir == "" {
			plain = append(plain, obj)
			continue
		}

		// Cyberduck appends a slash to the name of a pseudofolder
		entry := strings.Trim(obj.Subdir, "/") + "/"
		if entry == prefix {
			continue
		}
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		folders = append(folders, PseudoFolder{Entry: entry, Subdir: obj.Subdir})
	}

	return folders, plain
}

// ParentPrefix returns the prefix an object lives under, with a trailing slash,
// or an empty string for top level objects. A pseudo folder's trailing slash is ignored.
func ParentPrefix(objectName string) string {
	name := strings.TrimSuffix(objectName, "/")
	idx := strings.LastIndex(name, "/")
	if idx < 0 {
		return ""
	}
	return name[:idx+1]
}

// AccountName returns the last path element of a storage URL, e.g. AUTH_test.
func AccountName(storageURL string) string {
	trimmed := strings.TrimRight(storageURL, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
