package gate

import (
	"log/slog"
	"net/url"
)

const (
	LogKindKey = "kind"
	LogMaskVal = "xxxxxx"

	// TokenParam is the query parameter a login service hands a token back in.
	TokenParam = "token"
)

var (
	AppLogKind  = slog.StringValue("app")
	HTTPLogKind = slog.StringValue("http")

	// MaskedLogValue is a convenience [log/slog.Value]
	// to be used in implementations of [log/slog.LogValuer]
	// to hide sensitive data from log messages.
	MaskedLogValue = slog.StringValue(LogMaskVal)

	// maskedParams are the query params never written to a log.
	maskedParams = []string{"password", TokenParam}
)

// Mask replaces the values for key in vals with a single LogMaskVal.
func Mask(vals url.Values, key string) {
	if _, ok := vals[key]; !ok {
		return
	}

	vals[key] = []string{LogMaskVal}
}

// MaskURL copies u, masking the values of sensitive query params.
// MaskURL returns the empty string for a nil u.
func MaskURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	masked := *u
	q := masked.Query()
	for _, key := range maskedParams {
		Mask(q, key)
	}

	if len(q) > 0 {
		masked.RawQuery = q.Encode()
	}

	return masked.String()
}
