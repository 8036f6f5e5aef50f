package enrichlib

import (
	"context"
	"net"
	"net/http"
)

// HTTPClient is a minimal interface of http.Client which is used by
// providers. Please see NewHTTPClient.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// GeoLookupClient resolves a single IP address into GeoRecord.
//
// Implementation has to take care of transient failures like rate
// limiting on its own. Any returned error is treated as a final
// failure for this IP.
type GeoLookupClient interface {
	Name() string
	Lookup(context.Context, net.IP) (GeoRecord, error)
}

// Logger is used by Enricher to report what is going on.
type Logger interface {
	LookupError(ip string, name string, err error)
	RunInfo(summary Summary)
}

// Observer receives events of a single run. Methods are called from
// a single goroutine so implementation does not need to be
// thread-safe. They should return quickly.
type Observer interface {
	Progress(Progress)
	LookupError(ip string, err error)
}
