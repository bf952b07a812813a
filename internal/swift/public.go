package swift

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/swiftbrowser/internal/domain"
	"github.com/andresuchdata/swiftbrowser/internal/metrics"
	ncw "github.com/ncw/swift"
	"github.com/pkg/errors"
)

const publicPageSize = 10000

// publicLister lists containers carrying a ".rlistings" read ACL.
// ncw/swift always authenticates, so anonymous requests are made directly.
type publicLister struct {
	baseURL string
	http    *http.Client
	metrics *metrics.Metrics
}

func (p *publicLister) Objects(ctx context.Context, container string, opts ListOptions) ([]domain.Object, error) {
	var all []ncw.Object
	marker := ""
	for {
		page, err := p.page(ctx, container, opts, marker)
		p.metrics.ObserveSwift("public_object_list", err)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < publicPageSize {
			break
		}
		last := page[len(page)-1]
		marker = last.Name
		if last.SubDir != "" {
			marker = last.SubDir
		}
	}
	return convertObjects(all), nil
}

func (p *publicLister) page(ctx context.Context, container string, opts ListOptions, marker string) ([]ncw.Object, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(publicPageSize))
	if opts.Prefix != "" {
		q.Set("prefix", opts.Prefix)
	}
	if opts.Delimiter != 0 {
		q.Set("delimiter", string(opts.Delimiter))
	}
	if marker != "" {
		q.Set("marker", marker)
	}
	target := p.baseURL + (&url.URL{Path: "/" + container}).EscapedPath() + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build public listing request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "public listing of %q", container)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, errors.Wrapf(NewStatusError(resp.StatusCode, resp.Status), "public listing of %q", container)
	}

	var page []ncw.Object
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, errors.Wrapf(err, "decode public listing of %q", container)
	}
	for i := range page {
		if page[i].SubDir != "" {
			page[i].PseudoDirectory = true
			page[i].Name = page[i].SubDir
			page[i].ContentType = domain.DirectoryContentType
		}
		page[i].LastModified = parseLastModified(page[i].ServerLastModified)
	}
	return page, nil
}

// parseLastModified reads the listing timestamp, eg 2011-06-30T08:20:47.736680
func parseLastModified(v string) time.Time {
	if i := strings.IndexByte(v, '.'); i >= 0 {
		v = v[:i]
	}
	t, err := time.Parse("2006-01-02T15:04:05", v)
	if err != nil {
		return time.Time{}
	}
	return t
}
