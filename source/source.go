/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

package source

import (
	"context"
)

// Source is a splittable, validatable producer of elements. Implementations are value like:
// every decode of a serialized source yields an independent instance.
type Source interface {
	// Validate reports whether the source is internally consistent.
	Validate() error

	// CreateReader opens a fresh reader. The returned reader is owned by the caller and must be closed.
	CreateReader(ctx context.Context, options *Options) (Reader, error)

	// SplitIntoBundles splits the source into independent sub sources of roughly
	// desiredBundleSizeBytes each. A source that cannot split returns itself.
	SplitIntoBundles(desiredBundleSizeBytes int64, options *Options) ([]Source, error)

	EstimatedSizeBytes(options *Options) (int64, error)
	ProducesSortedKeys(options *Options) (bool, error)

	// SourceType is the tag the encoding registry resolves the source codec by.
	SourceType() string
	String() string
}

// Reader is the native pull contract of a Source.
//
// Start must be called exactly once before Advance. Current is only valid while the last
// Start or Advance returned true.
type Reader interface {
	Start() (bool, error)
	Advance() (bool, error)
	Current() (interface{}, error)
	Close() error
}
