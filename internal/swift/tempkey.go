package swift

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/swiftbrowser/internal/tempurl"
)

// TempKey returns the account temp URL key, creating one if the account has none
func TempKey(ctx context.Context, client Client) (string, error) {
	stat, err := client.Account(ctx)
	if err != nil {
		return "", err
	}
	if key := HeaderValue(stat.Metadata, tempurl.AccountKeyHeader); key != "" {
		return key, nil
	}

	key, err := tempurl.GenerateKey()
	if err != nil {
		return "", errors.Wrap(err, "generate temp url key")
	}
	if err := client.UpdateAccount(ctx, map[string]string{tempurl.AccountKeyHeader: key}); err != nil {
		return "", err
	}
	log.Info().Str("storage_url", client.StorageURL()).Msg("created account temp url key")
	return key, nil
}

// HeaderValue looks a header up regardless of the case used by the server
func HeaderValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	canonical := http.CanonicalHeaderKey(name)
	if v, ok := headers[canonical]; ok {
		return v
	}
	for k, v := range headers {
		if http.CanonicalHeaderKey(k) == canonical {
			return v
		}
	}
	return ""
}
