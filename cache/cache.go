// Package cache provides the page-cache collaborator used by the request
// pipeline: a bounded in-memory LRU with TTL expiry as the default, and a
// Redis-backed implementation with the identical contract for apps that want
// renders shared across processes.
package cache

import (
	"context"
	"time"
)

// Default bounds of the stock page cache.
const (
	DefaultCapacity = 100
	DefaultTTL      = 60 * time.Second
)

// PageCache is the contract the pipeline consumes. Get reports a miss with
// found == false; an error means the lookup itself failed. An app may
// substitute any implementation with the same contract.
type PageCache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}
