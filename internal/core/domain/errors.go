package domain

import "errors"

// Sentinels are plain errors so they stay in the Unwrap chain when call
// sites attach zerr metadata; zerr copies its own error type on With, which
// would break errors.Is matching against the sentinel.
var (
	// ErrNoConnectionNoCache is returned when a load is attempted offline and
	// no cached entry exists for the key. It is deliberately distinct from
	// ErrNetworkFailure so callers can render an offline state instead of a
	// generic failure.
	ErrNoConnectionNoCache = errors.New("no connection and no cached data")

	// ErrNetworkFailure is returned when a network fetch fails and no stale
	// cache fallback is available.
	ErrNetworkFailure = errors.New("network request failed")

	// ErrDecodingFailure is returned when a response body cannot be parsed.
	ErrDecodingFailure = errors.New("failed to decode response")

	// ErrUnknownPattern is returned when a screen declares a pattern the
	// cache does not know.
	ErrUnknownPattern = errors.New("unknown screen pattern")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = errors.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = errors.New("failed to parse config file")

	// ErrBundleReadFailed is returned when a sync-bundle file cannot be read.
	ErrBundleReadFailed = errors.New("failed to read bundle file")

	// ErrBundleParseFailed is returned when a sync-bundle file cannot be parsed.
	ErrBundleParseFailed = errors.New("failed to parse bundle file")
)
