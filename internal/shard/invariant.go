package shard

import "fmt"

// debugAssertions gates invariant checks that are too expensive (or too
// redundant with the type system) to run in production builds. Flip to
// true locally when chasing a consistency bug; mirrors the original
// implementation's LRU_ASSERT/LRU_ERR macros, which were compiled out of
// release builds entirely.
const debugAssertions = false

func assert(cond bool, format string, args ...any) {
	if !debugAssertions {
		return
	}
	if !cond {
		panic(fmt.Sprintf("shard: invariant violated: "+format, args...))
	}
}
