package web

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/swiftbrowser/internal/domain"
)

func TestNewRendererParsesAllPages(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"containerview.html", "create_container.html", "create_pseudofolder.html", "edit_acl.html",
		"error.html", "login.html", "objectview.html", "publicview.html", "tempurl.html", "upload_form.html",
	}, r.Pages())
}

func TestRenderObjectView(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	view := domain.ObjectView{
		Account:   "AUTH_test",
		Container: "photos",
		Prefix:    "a/",
		Prefixes:  domain.PrefixList("a/"),
		Folders:   []domain.PseudoFolder{{Entry: "a/my dir/", Subdir: "a/my dir/"}},
		Objects:   []domain.Object{{Name: "a/<b>.jpg", Bytes: 2048, LastModified: time.Now().Add(-time.Hour)}},
		Public:    true,
	}
	w := httptest.NewRecorder()
	err = r.Instance("objectview.html", map[string]any{
		"Username":  "test:tester",
		"CSRFToken": "tok123",
		"Flashes":   []domain.Flash{{Level: domain.FlashSuccess, Message: "Object deleted."}},
		"View":      view,
	}).Render(w)
	require.NoError(t, err)

	body := w.Body.String()
	assert.Contains(t, body, `href="/objects/photos/a/my%20dir/"`)
	assert.Contains(t, body, `/download/photos/a/%3Cb%3E.jpg`)
	assert.Contains(t, body, "&lt;b&gt;.jpg")
	assert.Contains(t, body, "2.0 KiB")
	assert.Contains(t, body, "Make private")
	assert.Contains(t, body, `/public/AUTH_test/photos/a/`)
	assert.Contains(t, body, `value="tok123"`)
	assert.Contains(t, body, "flash-success")
	assert.Contains(t, body, "1 hour ago")
}

func TestRenderUnknownPageFallsBack(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, r.Instance("nope.html", nil).Render(w))
	assert.Contains(t, w.Body.String(), "unknown page nope.html")
}

func TestFuncs(t *testing.T) {
	assert.Equal(t, "a%20b/c%3F/", PathEscape("a b/c?/"))
	assert.Equal(t, "c", basename("a/b/c"))
	assert.Equal(t, "b", basename("a/b/"))
	assert.Equal(t, "1.0 KiB", humanBytes(1024))
	assert.Equal(t, "0 B", humanBytes(-1))
	assert.Empty(t, ago(time.Time{}))
	assert.Equal(t, map[string]any{"a": 1}, dict("a", 1, "dangling"))
}
