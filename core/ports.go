package core

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mocks.go -package=core

// Scanner is the surface the REST layer and the scheduler consume.
type Scanner interface {
	Scan(ctx context.Context) (CodesReply, error)
	Codes(ctx context.Context) CodesReply
	Health(ctx context.Context) HealthReply
}

// Fetcher retrieves one source's content. FetchJSON walks the fallback
// strategy chain; FetchText uses the authenticated proxy only and fails
// with ErrProxyDisabled when no token is configured.
type Fetcher interface {
	FetchJSON(ctx context.Context, url string) (map[string]any, error)
	FetchText(ctx context.Context, url string) (string, error)
	ProxyEnabled() bool
}

type Publisher interface {
	Publish(event EventType) error
}

type Metrics interface {
	ScanStarted()
	ScanFinished(newCodes int, err error)
	SourceFailed()
	SetCodesCached(n int)
}
