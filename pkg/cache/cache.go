// Package cache provides content-addressed caching for optimization
// results and rendered artifacts, with file, redis and null backends.
package cache

import (
	"context"
	"time"
)

// Default TTLs per key type. Optimization results are pure functions of
// their key, so both can live long; artifacts are larger and cheaper to
// rebuild from a cached circuit.
const (
	TTLCircuit  = 30 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache stores opaque byte values under string keys with optional TTLs.
// Implementations must treat a missing key as a miss, not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys from the inputs that determine an output.
type Keyer interface {
	// CircuitKey identifies an optimization result: the source program
	// hash plus everything that changes what the optimizer produces.
	CircuitKey(sourceHash string, opts CircuitKeyOpts) string

	// ArtifactKey identifies a rendered artifact derived from an
	// optimized circuit.
	ArtifactKey(circuitHash string, opts ArtifactKeyOpts) string
}

// CircuitKeyOpts captures the optimizer settings that affect the result.
type CircuitKeyOpts struct {
	Schedule string `json:"schedule"`
	Rounds   int    `json:"rounds"`
}

// ArtifactKeyOpts captures the rendering settings that affect an artifact.
type ArtifactKeyOpts struct {
	Format    string `json:"format"`
	ShowWires bool   `json:"show_wires"`
}

// DefaultKeyer hashes the option structs into stable prefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// CircuitKey generates a key for an optimization result.
func (k *DefaultKeyer) CircuitKey(sourceHash string, opts CircuitKeyOpts) string {
	return hashKey("circuit", sourceHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(circuitHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", circuitHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix so separate contexts (users,
// projects) get disjoint cache namespaces.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// CircuitKey generates a prefixed key for an optimization result.
func (k *ScopedKeyer) CircuitKey(sourceHash string, opts CircuitKeyOpts) string {
	return k.prefix + k.inner.CircuitKey(sourceHash, opts)
}

// ArtifactKey generates a prefixed key for a rendered artifact.
func (k *ScopedKeyer) ArtifactKey(circuitHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(circuitHash, opts)
}
