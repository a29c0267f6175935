package engine

import (
	"net/url"
	"strings"

	"github.com/kbukum/httpbridge/errors"
)

// EncodeURL percent-encodes the path and query of raw. Query parameters keep
// their order; values that are already escaped are not escaped twice.
func EncodeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.InvalidInput("url", err.Error()).WithCause(err)
	}
	if u.RawQuery == "" {
		return u.String(), nil
	}

	params := strings.Split(u.RawQuery, "&")
	for i, p := range params {
		k, v, hasValue := strings.Cut(p, "=")
		k = reescape(k)
		if hasValue {
			params[i] = k + "=" + reescape(v)
		} else {
			params[i] = k
		}
	}
	u.RawQuery = strings.Join(params, "&")
	return u.String(), nil
}

func reescape(s string) string {
	if unescaped, err := url.QueryUnescape(s); err == nil {
		s = unescaped
	}
	return url.QueryEscape(s)
}
