// Package tempurl signs Swift temporary URLs and formpost upload forms.
package tempurl

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Defaults used by the web views.
const (
	DownloadTTL        = 10 * time.Minute
	ShareTTL           = 7 * 24 * time.Hour
	UploadTTL          = 15 * time.Minute
	UploadMaxFileSize  = int64(5 * 1024 * 1024 * 1024)
	UploadMaxFileCount = 1

	keyLength   = 32
	keyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// AccountKeyHeader is the account metadata header holding the signing key
const AccountKeyHeader = "X-Account-Meta-Temp-Url-Key"

// Sign returns a temporary URL for container/object below storageURL,
// valid for method until expires.
func Sign(storageURL, container, object, key, method string, expires time.Time) (string, error) {
	if key == "" {
		return "", fmt.Errorf("tempurl: empty key")
	}
	u, err := url.Parse(storageURL)
	if err != nil {
		return "", fmt.Errorf("tempurl: parse storage url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("tempurl: storage url %q is not absolute", storageURL)
	}

	if method == "" {
		method = "GET"
	}
	exp := strconv.FormatInt(expires.Unix(), 10)
	path := fmt.Sprintf("%s/%s/%s", strings.TrimRight(u.Path, "/"), container, object)
	sig := hmacHex(key, strings.ToUpper(method)+"\n"+exp+"\n"+path)

	// Swift verifies the signature against the decoded path
	escaped := (&url.URL{Path: path}).EscapedPath()
	return fmt.Sprintf("%s://%s%s?temp_url_sig=%s&temp_url_expires=%s", u.Scheme, u.Host, escaped, sig, exp), nil
}

// FormPost returns the signature expected by the Swift formpost middleware.
func FormPost(path, redirect string, maxFileSize int64, maxFileCount int, expires int64, key string) string {
	body := fmt.Sprintf("%s\n%s\n%d\n%d\n%d", path, redirect, maxFileSize, maxFileCount, expires)
	return hmacHex(key, body)
}

// GenerateKey returns a random key of lower case letters and digits
func GenerateKey() (string, error) {
	max := big.NewInt(int64(len(keyAlphabet)))
	var b strings.Builder
	b.Grow(keyLength)
	for i := 0; i < keyLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("tempurl: generate key: %w", err)
		}
		b.WriteByte(keyAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func hmacHex(key, body string) string {
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}
