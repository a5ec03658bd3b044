package port

import "errors"

// ErrUpstreamUnavailable marks failures of an external dependency (price feed, RPC node).
var ErrUpstreamUnavailable = errors.New("upstream unavailable")
