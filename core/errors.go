package core

import "errors"

var (
	ErrBadArguments        = errors.New("arguments are not acceptable")
	ErrFetchFailed         = errors.New("all fetch strategies failed")
	ErrUpstreamUnavailable = errors.New("all sources are unavailable")
	ErrProxyDisabled       = errors.New("no scraper proxy token configured")
)
