package web

import (
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/andresuchdata/swiftbrowser/internal/domain"
)

// Funcs returns the template helpers shared by all pages
func Funcs() template.FuncMap {
	return template.FuncMap{
		"dateconv":   domain.FormatTimestamp,
		"bytes":      humanBytes,
		"comma":      humanize.Comma,
		"ago":        ago,
		"pathescape": PathEscape,
		"basename":   basename,
		"dict":       dict,
	}
}

func humanBytes(n int64) string {
	if n < 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(n))
}

func ago(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

// PathEscape escapes every segment of an object path but keeps the slashes
func PathEscape(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// basename returns the last element of an object or folder name
func basename(name string) string {
	trimmed := strings.TrimSuffix(name, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			m[k] = kv[i+1]
		}
	}
	return m
}
