// Package testutil provides testing utilities for lsmkit.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random keys, values and skewed access
// patterns.
//
// # Random Data Generation
//
//	rng := testutil.NewRNG(seed)
//	values := rng.Values(1000, 256)          // random payloads
//	keys := testutil.SortedKeys(1000, 16)    // strictly increasing keys
//
// # Skewed Access Patterns
//
//	accesses := rng.ZipfAccesses(100000, 1000, 1.2)
package testutil
