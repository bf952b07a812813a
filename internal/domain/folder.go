package domain

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidFolderName is returned when a pseudo folder name is empty or leaves the container
var ErrInvalidFolderName = errors.New("invalid folder name")

// FolderObjectName builds the object name of a pseudo folder marker
// created as foldername under prefix. The result has exactly one trailing slash.
func FolderObjectName(prefix, foldername string) (string, error) {
	name := strings.TrimSpace(foldername)
	if name == "" {
		return "", ErrInvalidFolderName
	}
	if prefix != "" {
		name = prefix + "/" + name
	}

	cleaned := strings.Trim(path.Clean(name), "/")
	if cleaned == "" || cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidFolderName
	}
	return cleaned + "/", nil
}

const timestampLayout = "2006-01-02 15:04:05"

// FormatTimestamp renders unix seconds as local date and time.
// Values that are not numbers are returned unchanged.
func FormatTimestamp(v interface{}) string {
	var seconds float64
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return t
		}
		seconds = parsed
	case int:
		seconds = float64(t)
	case int32:
		seconds = float64(t)
	case int64:
		seconds = float64(t)
	case uint:
		seconds = float64(t)
	case uint32:
		seconds = float64(t)
	case uint64:
		seconds = float64(t)
	case float32:
		seconds = float64(t)
	case float64:
		seconds = t
	case time.Time:
		return t.Local().Format(timestampLayout)
	default:
		return fmt.Sprint(v)
	}

	sec := int64(seconds)
	nsec := int64((seconds - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).Local().Format(timestampLayout)
}
